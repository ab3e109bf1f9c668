package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	// DSN is sqlite://<path> (":memory:" allowed) or a postgres:// URL.
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DB is the history database handle. Postgres connections come from a pgx pool that is
// closed together with the handle.
type DB struct {
	*sql.DB
	Dialect string
	pool    *pgxpool.Pool
}

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Open connects to the history database and creates its tables.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		db  *DB
		err error
	)
	switch {
	case strings.HasPrefix(cfg.DSN, "sqlite://"):
		db, err = openSQLite(strings.TrimPrefix(cfg.DSN, "sqlite://"))
	case strings.HasPrefix(cfg.DSN, "postgres://"), strings.HasPrefix(cfg.DSN, "postgresql://"):
		db, err = openPostgres(ctx, cfg)
	default:
		err = fmt.Errorf("unsupported history dsn %q", redact(cfg.DSN))
	}
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		logger.Error("failed to migrate database", "error", err)
		return nil, err
	}
	logger.Info("connected to history database", "dialect", db.Dialect)
	return db, nil
}

func openSQLite(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite dsn has no path")
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection: sqlite serialises writers, and :memory: is per connection.
	sqlDB.SetMaxOpenConns(1)
	return &DB{DB: sqlDB, Dialect: DialectSQLite}, nil
}

func openPostgres(ctx context.Context, cfg Config) (*DB, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "bol-intake"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &DB{DB: stdlib.OpenDBFromPool(pool), Dialect: DialectPostgres, pool: pool}, nil
}

// Close closes the database connections gracefully.
func (db *DB) Close() error {
	err := db.DB.Close()
	if db.pool != nil {
		db.pool.Close()
	}
	return err
}

// HealthCheck pings the database, bounded by timeout when it is positive.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS extraction_runs (
		id               TEXT PRIMARY KEY,
		source_path      TEXT NOT NULL,
		content_hash     TEXT NOT NULL,
		status           TEXT NOT NULL,
		method           TEXT NOT NULL DEFAULT '',
		started_at       TEXT NOT NULL,
		finished_at      TEXT,
		page_count       INTEGER NOT NULL DEFAULT 0,
		word_count       INTEGER NOT NULL DEFAULT 0,
		text_confidence  DOUBLE PRECISION NOT NULL DEFAULT 0,
		field_confidence INTEGER NOT NULL DEFAULT 0,
		order_number     TEXT NOT NULL DEFAULT '',
		serial_count     INTEGER NOT NULL DEFAULT 0,
		error_message    TEXT,
		extracted_json   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS extraction_runs_hash_idx ON extraction_runs (content_hash)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id            TEXT PRIMARY KEY,
		run_id        TEXT,
		order_number  TEXT NOT NULL,
		serial_number TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL,
		record_id     TEXT NOT NULL DEFAULT '',
		job_number    TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		submitted_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS submissions_order_idx ON submissions (order_number)`,
}

// Migrate creates the history tables when missing.
func Migrate(ctx context.Context, db *DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Timestamps are stored as fixed-width UTC text: both backends read them back identically
// and lexical order is chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func redact(dsn string) string {
	if i := strings.Index(dsn, "@"); i >= 0 {
		if j := strings.Index(dsn, "://"); j >= 0 && j < i {
			return dsn[:j+3] + "***" + dsn[i:]
		}
	}
	return dsn
}
