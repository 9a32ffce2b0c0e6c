package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// DB is the history database handle. Postgres connections go through a
// pgx pool; everything else is an SQLite file (or :memory:).
type DB struct {
	SQL     *sql.DB
	Dialect Dialect
	pool    *pgxpool.Pool
}

// DialectFor picks the driver from the DSN scheme.
func DialectFor(dsn string) Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Open connects to the history database and pings it.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	d := &DB{Dialect: DialectFor(cfg.DSN)}
	logger.Info("connecting to database", "dialect", d.Dialect)

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	switch d.Dialect {
	case DialectPostgres:
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("failed to parse database dsn", "error", err)
			return nil, err
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		if cfg.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = cfg.MaxConnLifetime
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "material-list"
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, err
		}
		d.pool = pool
		d.SQL = stdlib.OpenDBFromPool(pool)
	default:
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			logger.Error("failed to open sqlite database", "error", err)
			return nil, err
		}
		// Each connection to :memory: is its own database, and SQLite
		// serializes writers anyway.
		db.SetMaxOpenConns(1)
		d.SQL = db
	}

	if err := d.SQL.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		d.Close(logger)
		return nil, err
	}
	logger.Info("successfully connected to database", "dialect", d.Dialect)
	return d, nil
}

// Close closes the database connections gracefully
func (d *DB) Close(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing database connections")
	if d.SQL != nil {
		if err := d.SQL.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}
	if d.pool != nil {
		d.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return d.SQL.PingContext(ctx)
}

// Rebind rewrites '?' placeholders as $1, $2, ... for Postgres.
func (d *DB) Rebind(query string) string {
	if d.Dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS extract_job (
		id          TEXT PRIMARY KEY,
		input_path  TEXT NOT NULL,
		output_path TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL,
		error_kind  TEXT NOT NULL DEFAULT '',
		message     TEXT NOT NULL DEFAULT '',
		entries     INTEGER NOT NULL DEFAULT 0,
		pages       INTEGER NOT NULL DEFAULT 0,
		started_at  BIGINT NOT NULL,
		finished_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS extract_job_finished_at_idx ON extract_job (finished_at)`,
}

// Migrate creates the history tables if they are missing.
func Migrate(ctx context.Context, d *DB) error {
	for _, stmt := range schema {
		if _, err := d.SQL.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
