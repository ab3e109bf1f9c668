package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/bol-intake/internal/repository"
)

// ConnectDB opens the history store, migrates it and checks it responds.
func ConnectDB(ctx context.Context, dsn string, logger *slog.Logger) (*repository.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := repository.Open(ctx, repository.Config{
		DSN:             dsn,
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		DialTimeout:     3 * time.Second,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to history store", "error", err)
		return nil, err
	}
	if err := PingDB(ctx, db, logger, 5*time.Second); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, db *repository.DB, logger *slog.Logger, timeout time.Duration) error {
	logger.Debug("pinging database")
	if err := repository.HealthCheck(ctx, db, timeout); err != nil {
		logger.Error("database ping failed", "error", err)
		return err
	}
	logger.Debug("database ping successful")
	return nil
}
