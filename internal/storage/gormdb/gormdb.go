// Package gormdb implements storage.Storage on top of GORM.
//
// Two dialects are supported:
//
//   - sqlite: a single file (or in-memory) database through the
//     mattn/go-sqlite3 driver. Default for local development and tests.
//   - postgres: through gorm.io/driver/postgres, which runs on pgx.
//
// The schema is created with AutoMigrate on startup; running it on an
// already migrated database is a no-op.
package gormdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aanand-mishra/channels-api/internal/config"
	"github.com/aanand-mishra/channels-api/internal/storage"
)

// Storage is the GORM-backed implementation of storage.Storage.
// *gorm.DB wraps a connection pool and is safe for concurrent use.
type Storage struct {
	db *gorm.DB
}

var _ storage.Storage = (*Storage)(nil)

// New opens the database described by cfg, migrates the schema and
// returns a ready-to-use *Storage.
func New(cfg config.Storage, log zerolog.Logger) (*Storage, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("gormdb.New: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(log),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gormdb.New: open db: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("gormdb.New: pool: %w", err)
		}
		// SQLite serialises writers; one connection avoids "database is
		// locked" and keeps a shared in-memory database alive.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&Student{}, &Channel{}, &Subscription{}); err != nil {
		return nil, fmt.Errorf("gormdb.New: migrate: %w", err)
	}

	return &Storage{db: db}, nil
}

func dialectorFor(cfg config.Storage) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(withForeignKeys(cfg.DSN)), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// withForeignKeys turns on foreign key enforcement, which SQLite leaves
// off per connection unless asked.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_fk=") || strings.Contains(dsn, "_foreign_keys=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_fk=1"
}

// Ping checks the underlying connection pool.
func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("Ping: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases every pooled connection.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("Close: %w", err)
	}
	return sqlDB.Close()
}

// gormWriter forwards GORM's printf-style log lines to zerolog.
type gormWriter struct {
	log zerolog.Logger
}

// Printf implements gormlogger.Writer.
func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Str("component", "gorm").Msgf(format, args...)
}

func newGormLogger(log zerolog.Logger) gormlogger.Interface {
	return gormlogger.New(gormWriter{log: log}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// clampPage keeps paging arguments inside sane bounds.
func clampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	return skip, limit
}
