// Package middleware holds the HTTP middleware specific to this service:
// bearer authentication and request logging.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/aanand-mishra/channels-api/internal/auth"
	"github.com/aanand-mishra/channels-api/internal/utils/response"
)

type claimsKey struct{}

// TokenParser is implemented by *auth.TokenManager.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Authenticate rejects requests without a valid bearer token with 401
// and stores the decoded claims in the request context.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.ExtractBearerToken(r.Header.Get("Authorization"))
			if err != nil {
				unauthorized(w, "Not authenticated")
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				msg := "Could not validate credentials"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "Token has expired"
				}
				log.Ctx(r.Context()).Debug().Err(err).Msg("rejected bearer token")
				unauthorized(w, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	response.Error(w, http.StatusUnauthorized, msg)
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// CurrentStudent returns the authenticated caller, if any.
func CurrentStudent(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok && claims != nil
}
