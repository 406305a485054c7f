// Package token exchanges a student's email and password for a bearer
// access token.
package token

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aanand-mishra/channels-api/internal/auth"
	"github.com/aanand-mishra/channels-api/internal/storage"
	"github.com/aanand-mishra/channels-api/internal/types"
	"github.com/aanand-mishra/channels-api/internal/utils/request"
	"github.com/aanand-mishra/channels-api/internal/utils/response"
)

const msgBadCredentials = "Incorrect email or password"

// Issuer is implemented by *auth.TokenManager.
type Issuer interface {
	Issue(studentID int64, email string) (string, error)
	TTL() time.Duration
}

// New handles POST /token.
//
//	{ "email": "ada@example.com", "password": "s3cretpass" }
//
// 200 with { "access_token": "...", "token_type": "bearer", "expires_in": 1800 },
// 401 when the email is unknown or the password does not match.
func New(st storage.Students, tokens Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in types.TokenRequest
		if err := request.Bind(r, &in); err != nil {
			response.BadRequest(w, err)
			return
		}

		student, hash, err := st.GetStudentCredentials(r.Context(), in.Email)
		if errors.Is(err, storage.ErrNotFound) {
			unauthorized(w)
			return
		}
		if err != nil {
			response.InternalError(w, r, err)
			return
		}

		ok, err := auth.CheckPassword(hash, in.Password)
		if err != nil {
			response.InternalError(w, r, err)
			return
		}
		if !ok {
			log.Ctx(r.Context()).Warn().Int64("student_id", student.ID).Msg("password mismatch")
			unauthorized(w)
			return
		}

		signed, err := tokens.Issue(student.ID, student.Email)
		if err != nil {
			response.InternalError(w, r, err)
			return
		}

		_ = response.WriteJSON(w, http.StatusOK, types.Token{
			AccessToken: signed,
			TokenType:   "bearer",
			ExpiresIn:   int64(tokens.TTL().Seconds()),
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	response.Error(w, http.StatusUnauthorized, msgBadCredentials)
}
