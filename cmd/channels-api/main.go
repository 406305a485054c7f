// Command channels-api serves the students / channels / subscriptions API.
//
// Startup:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open (and migrate) the database
//  4. Build the router
//  5. Start the HTTP server in a separate goroutine
//  6. Block until SIGINT / SIGTERM, then shut down gracefully
//
// Running:
//
//	go run ./cmd/channels-api --config=config/local.yaml
//
// or
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/channels-api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/channels-api/internal/auth"
	"github.com/aanand-mishra/channels-api/internal/config"
	"github.com/aanand-mishra/channels-api/internal/http/router"
	"github.com/aanand-mishra/channels-api/internal/logger"
	"github.com/aanand-mishra/channels-api/internal/storage/gormdb"
)

const version = "1.0.0"

func main() {
	cfg := config.MustLoad()

	log := logger.Setup(cfg.Env, cfg.LogLevel)
	log.Info().
		Str("version", version).
		Str("storage_driver", cfg.Storage.Driver).
		Msg("starting channels-api")

	// ── Storage ───────────────────────────────────────────────────────────
	storage, err := gormdb.New(cfg.Storage, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialise storage")
		os.Exit(1)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close storage")
		}
	}()
	log.Info().Str("driver", cfg.Storage.Driver).Msg("storage initialised")

	// ── Routes ────────────────────────────────────────────────────────────
	handler := router.New(router.Deps{
		Storage:     storage,
		Tokens:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Logger:      log,
		CORSOrigins: cfg.HTTPServer.CORSOrigins,
		RateLimit:   cfg.HTTPServer.RateLimit,
	})

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ── Serve ─────────────────────────────────────────────────────────────
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.HTTPServer.Addr).Msg("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		log.Info().Msg("shutdown signal received, stopping server")
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server encountered an error")
		}
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────
	// In-flight requests get five seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server gracefully")
		return
	}

	log.Info().Msg("server stopped gracefully")
}
