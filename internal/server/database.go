package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/material-list/internal/repository"
)

// ConnectDB opens the history database at dsn and applies the schema.
func ConnectDB(ctx context.Context, dsn string, dialTimeout time.Duration, logger *slog.Logger) (*repository.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := repository.Open(ctx, repository.Config{
		DSN:             dsn,
		MaxConns:        4,
		MaxConnLifetime: 30 * time.Minute,
		DialTimeout:     dialTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		db.Close(logger)
		return nil, err
	}
	return db, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, db *repository.DB, logger *slog.Logger, timeout time.Duration) error {
	logger.Debug("pinging database")
	if err := db.HealthCheck(ctx, timeout); err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	logger.Debug("database ping successful")
	return nil
}
