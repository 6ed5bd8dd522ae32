// Package database stores users, consent and analyzed conversation turns
// in Postgres or SQLite through sqlx.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/jonesrussell/north-cloud/triage/infrastructure/config"
	"github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/infrastructure/retry"
)

// DefaultPingTimeout bounds each connection check.
const DefaultPingTimeout = 5 * time.Second

// Connect opens the configured database, retrying while it comes up, and
// applies pool settings. SQLite is limited to one open connection.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log logger.Logger) (*sqlx.DB, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var db *sqlx.DB
	retryCfg := retry.Config{
		MaxAttempts:  cfg.ConnectAttempts,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			log.Warn("Database not ready, retrying",
				logger.String("driver", cfg.Driver),
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Error(err),
			)
		},
	}

	err := retry.Do(ctx, retryCfg, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, DefaultPingTimeout)
		defer cancel()

		conn, connErr := sqlx.ConnectContext(pingCtx, cfg.Driver, cfg.DSN())
		if connErr != nil {
			return connErr
		}
		db = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("Connected to database", logger.String("driver", cfg.Driver))
	return db, nil
}
