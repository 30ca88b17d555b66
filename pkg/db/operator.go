package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sdss/lvmmag/pkg/config"
)

// Operator defines the interface for basic database management
// operations: connection lifecycle and the preflight checks both
// pipeline stages run before doing any work.
//
// The pool is used only for preflight and ad-hoc queries. Extraction
// and load workers never share it; each worker opens its own dedicated
// connection because connection handles are not safely transferable
// across workers.
type Operator interface {
	// Connect establishes a connection pool to the database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pgxpool.Pool.
	Pool() *pgxpool.Pool

	// TableExists checks if a table exists in the given schema.
	TableExists(ctx context.Context, schema, table string) (bool, error)
}
