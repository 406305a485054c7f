// Package request decodes and validates incoming HTTP requests: JSON
// bodies, path ids and query parameters.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// validate is shared; validator caches struct metadata per instance.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names ("first_name") rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON decodes the body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	if err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// Validate checks v's validate tags. Failures are
// validator.ValidationErrors.
func Validate(v any) error {
	return validate.Struct(v)
}

// Bind decodes the JSON body into dst and validates it.
func Bind(r *http.Request, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		return err
	}
	return Validate(dst)
}

// PathID parses the chi URL parameter name as a positive int64.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", name)
	}
	return id, nil
}

// OptionalInt64 parses query parameter name. A missing parameter yields
// nil.
func OptionalInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: must be an integer", name)
	}
	return &v, nil
}

// RequiredInt64 is OptionalInt64 for parameters that must be present.
func RequiredInt64(r *http.Request, name string) (int64, error) {
	v, err := OptionalInt64(r, name)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fmt.Errorf("missing query parameter %s", name)
	}
	return *v, nil
}

// Pagination reads skip and limit. skip defaults to 0, limit to
// DefaultLimit; a limit above MaxLimit is capped.
func Pagination(r *http.Request) (skip, limit int, err error) {
	q := r.URL.Query()

	skip = 0
	if raw := q.Get("skip"); raw != "" {
		skip, err = strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return 0, 0, errors.New("invalid skip: must be a non-negative integer")
		}
	}

	limit = DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("invalid limit: must be a positive integer")
		}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return skip, limit, nil
}
