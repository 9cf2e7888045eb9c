package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// Duck is the analytical store handle for one pipeline run: a single
// process-local connection to a file-backed DuckDB database. It is scoped,
// not ambient: the orchestrator opens it after both raw files are cached and
// releases it with a defer on every exit path, so a failure partway through
// transformation still closes the handle.
type Duck struct {
	DB   *sql.DB
	Path string
}

// OpenDuck opens (or creates) the analytical database at path. An empty path
// opens an in-memory database, which the tests use.
func OpenDuck(path string) (*Duck, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb at %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to duckdb at %q: %w", path, err)
	}
	return &Duck{DB: db, Path: path}, nil
}

// Close releases the database handle.
func (d *Duck) Close() error {
	return d.DB.Close()
}

// Exec runs a single statement against the analytical store.
func (d *Duck) Exec(ctx context.Context, query string, args ...interface{}) error {
	if _, err := d.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("duckdb exec failed: %w", err)
	}
	return nil
}

// CountRows returns the row count of a table. The table name comes from a
// fixed set of internal constants, never from input.
func (d *Duck) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := d.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return n, nil
}
