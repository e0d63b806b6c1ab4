package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const schemaLockID int64 = 2026101901

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS body_profiles (
	id TEXT PRIMARY KEY,
	shop TEXT NOT NULL,
	customer_id TEXT NOT NULL,
	shape TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	measurements JSONB NOT NULL,
	result JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (shop, customer_id)
);

CREATE TABLE IF NOT EXISTS product_shape_scores (
	shop TEXT NOT NULL,
	product_id TEXT NOT NULL,
	product_title TEXT NOT NULL,
	shape TEXT NOT NULL,
	score INTEGER NOT NULL,
	reasoning TEXT NOT NULL,
	source TEXT NOT NULL,
	analyzed_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (shop, product_id, shape)
);

CREATE INDEX IF NOT EXISTS idx_product_shape_scores_shape ON product_shape_scores(shop, shape, score DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
