package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Config holds receipt store connection settings. Driver is "sqlite"
// (pure-Go, file or in-memory DSN) or "pgx" (postgres DSN).
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects, pings, applies pool limits and ensures the schema exists.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Driver == "" {
		cfg.Driver = "sqlite"
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime <= 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	logger.Info("store.open", "driver", cfg.Driver)
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// sqlite serializes writers; a single connection avoids table locks and
	// keeps in-memory databases on one connection.
	if cfg.Driver == "sqlite" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	logger.Info("store.open.ok", "driver", cfg.Driver)
	return db, nil
}

// ensureSchema creates the two tables on first run. The DDL sticks to types
// both dialects accept.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS receipts (
			id              TEXT PRIMARY KEY,
			merchant        TEXT NOT NULL,
			receipt_date    TEXT NOT NULL,
			invoice_number  TEXT NOT NULL DEFAULT 'Unknown',
			subtotal        DOUBLE PRECISION NOT NULL DEFAULT 0,
			tax             DOUBLE PRECISION NOT NULL DEFAULT 0,
			total           DOUBLE PRECISION NOT NULL DEFAULT 0,
			source_filename TEXT NOT NULL DEFAULT '',
			uploaded_at     TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS line_items (
			id         TEXT PRIMARY KEY,
			receipt_id TEXT NOT NULL REFERENCES receipts(id),
			position   INTEGER NOT NULL,
			name       TEXT NOT NULL,
			qty        INTEGER NOT NULL DEFAULT 1,
			price      DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_line_items_receipt ON line_items (receipt_id)`,
		`CREATE INDEX IF NOT EXISTS idx_receipts_dup ON receipts (merchant, receipt_date, total)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec ddl: %w", err)
		}
	}
	return nil
}

// HealthCheck pings the store with a short timeout to catch DSN issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
