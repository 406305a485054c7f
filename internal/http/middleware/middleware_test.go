package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/channels-api/internal/auth"
)

func TestAuthenticate(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "iss", time.Minute)
	token, err := tokens.Issue(9, "nine@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen *auth.Claims
	h := Authenticate(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CurrentStudent(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if tc.status == http.StatusUnauthorized {
				if w.Header().Get("WWW-Authenticate") != "Bearer" {
					t.Fatal("expected WWW-Authenticate header")
				}
				if seen != nil {
					t.Fatal("handler must not run on rejected token")
				}
				return
			}
			if seen == nil || seen.StudentID != 9 {
				t.Fatalf("expected claims for student 9, got %+v", seen)
			}
		})
	}
}

func TestCurrentStudentWithoutClaims(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := CurrentStudent(r.Context()); ok {
		t.Fatal("expected no claims on bare context")
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/students/1", nil))

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if event["method"] != "DELETE" || event["path"] != "/students/1" {
		t.Fatalf("unexpected event: %v", event)
	}
	if event["status"] != float64(http.StatusTeapot) {
		t.Fatalf("expected status 418, got %v", event["status"])
	}
}
