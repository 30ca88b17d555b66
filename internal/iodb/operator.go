// Package iodb implements database operations using pgxpool.
// This is an impure I/O package that implements the db.Operator
// contract defined in pkg/db.
package iodb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sdss/lvmmag/pkg/config"
	"github.com/sdss/lvmmag/pkg/db"
)

// pgxOperator implements db.Operator using pgxpool for connection
// pooling.
type pgxOperator struct {
	pool *pgxpool.Pool
}

// NewPgxOperator creates a new database operator (without connecting).
func NewPgxOperator() db.Operator {
	return &pgxOperator{}
}

// ConnString builds a pgx connection string from the database
// configuration. It is shared with the per-worker connections opened
// by the extraction and load stages.
func ConnString(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)
}

// Connect establishes a connection pool to PostgreSQL and verifies it
// with a ping. Connectivity failures are fatal for the run, so they
// surface here before any work starts.
func (p *pgxOperator) Connect(
	ctx context.Context,
	cfg *config.DatabaseConfig,
) error {
	poolConfig, err := pgxpool.ParseConfig(ConnString(cfg))
	if err != nil {
		return &ConnectionError{
			Host: cfg.Host, Port: cfg.Port,
			Database: cfg.Database, Err: err,
		}
	}

	// The pool only serves preflight checks; workers open their own
	// connections.
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return &ConnectionError{
			Host: cfg.Host, Port: cfg.Port,
			Database: cfg.Database, Err: err,
		}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return &ConnectionError{
			Host: cfg.Host, Port: cfg.Port,
			Database: cfg.Database, Err: err,
		}
	}

	p.pool = pool
	return nil
}

// Close releases all database connections.
func (p *pgxOperator) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

// Pool returns the underlying pgxpool.Pool.
func (p *pgxOperator) Pool() *pgxpool.Pool {
	return p.pool
}

// TableExists checks if a table exists in the given schema.
func (p *pgxOperator) TableExists(
	ctx context.Context,
	schema, table string,
) (bool, error) {
	if p.pool == nil {
		return false, &NotConnectedError{}
	}

	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = $1
			AND table_name = $2
		)
	`

	var exists bool
	err := p.pool.QueryRow(ctx, query, schema, table).Scan(&exists)
	if err != nil {
		return false, &TableCheckError{
			Schema: schema, Table: table, Err: err,
		}
	}

	return exists, nil
}
