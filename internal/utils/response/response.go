// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Success responses may be any JSON shape (a student, a list…). Error
// responses always look like:
//
//	{ "detail": "Email already exists" }
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Response is the standard envelope returned for errors and for
// confirmations that carry no resource.
type Response struct {
	Detail string `json:"detail"`
}

// WriteJSON writes data as JSON with the given status code.
// Header() → WriteHeader() → body, in that order.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Error writes {"detail": msg} with status.
func Error(w http.ResponseWriter, status int, msg string) {
	_ = WriteJSON(w, status, Detail(msg))
}

// BadRequest writes a 400 for a body that failed to decode or validate.
// Validation failures are rendered field by field.
func BadRequest(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		_ = WriteJSON(w, http.StatusBadRequest, ValidationError(verrs))
		return
	}
	Error(w, http.StatusBadRequest, err.Error())
}

// InternalError logs err with the request-scoped logger and writes a
// generic 500. The cause is never sent to the client.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Ctx(r.Context()).Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	Error(w, http.StatusInternalServerError, "internal server error")
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Detail wraps a message in the standard envelope.
func Detail(msg string) Response {
	return Response{Detail: msg}
}

// ValidationError turns validator field errors into one readable
// sentence per field, joined with ", ".
//
//	{ "detail": "field email must be a valid email address, field password is required" }
func ValidationError(errs validator.ValidationErrors) Response {
	msgs := make([]string, 0, len(errs))

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email address", e.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s characters", e.Field(), e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s characters", e.Field(), e.Param()))
		case "alphanum":
			msgs = append(msgs, fmt.Sprintf("field %s must be alphanumeric", e.Field()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("field %s must be greater than %s", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{Detail: strings.Join(msgs, ", ")}
}
