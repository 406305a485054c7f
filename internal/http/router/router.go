// Package router assembles the HTTP routing table.
//
//	GET    /health
//	POST   /token
//	GET    /students/            list students
//	POST   /students/            signup
//	GET    /students/{id}        student + followed channels
//	PUT    /students/{id}        update own record      (bearer)
//	DELETE /students/{id}        delete own record      (bearer)
//	GET    /channels/            list channels
//	POST   /channels/            create a channel       (bearer)
//	GET    /channels/{id}        one channel
//	GET    /subscriptions/       list, filterable by channel_id / student_id
//	POST   /subscriptions/       subscribe              (bearer)
//	DELETE /subscriptions/       unsubscribe            (bearer)
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/aanand-mishra/channels-api/internal/auth"
	"github.com/aanand-mishra/channels-api/internal/http/handlers/channel"
	"github.com/aanand-mishra/channels-api/internal/http/handlers/student"
	"github.com/aanand-mishra/channels-api/internal/http/handlers/subscription"
	"github.com/aanand-mishra/channels-api/internal/http/handlers/token"
	"github.com/aanand-mishra/channels-api/internal/http/middleware"
	"github.com/aanand-mishra/channels-api/internal/storage"
	"github.com/aanand-mishra/channels-api/internal/utils/response"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Storage storage.Storage
	Tokens  *auth.TokenManager
	Logger  zerolog.Logger

	// CORSOrigins enables CORS for these origins when non-empty.
	CORSOrigins []string

	// RateLimit is requests per minute per client IP; 0 disables it.
	RateLimit int
}

// New returns the root handler.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: d.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}).Handler)
	}
	if d.RateLimit > 0 {
		r.Use(httprate.LimitByIP(d.RateLimit, time.Minute))
	}

	requireAuth := middleware.Authenticate(d.Tokens)
	st := d.Storage

	r.Get("/health", health(st))
	r.Post("/token", token.New(st, d.Tokens))

	r.Route("/students", func(r chi.Router) {
		r.Get("/", student.GetList(st))
		r.Post("/", student.New(st))
		r.Get("/{id}", student.GetByID(st))

		r.With(requireAuth).Put("/{id}", student.Update(st))
		r.With(requireAuth).Delete("/{id}", student.Delete(st))
	})

	r.Route("/channels", func(r chi.Router) {
		r.Get("/", channel.GetList(st))
		r.With(requireAuth).Post("/", channel.New(st))
		r.Get("/{id}", channel.GetByID(st))
	})

	r.Route("/subscriptions", func(r chi.Router) {
		r.Get("/", subscription.GetList(st))
		r.With(requireAuth).Post("/", subscription.New(st))
		r.With(requireAuth).Delete("/", subscription.Delete(st))
	})

	return r
}

func health(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
			_ = response.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		_ = response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
