// Package sqlite provides the SQLite driver for nquery/store.
//
// It uses mattn/go-sqlite3 (github.com/mattn/go-sqlite3) as the
// underlying database/sql driver with CGO and registers itself
// automatically when imported:
//
//	import _ "github.com/ncobase/nquery/store/sqlite"
//
// Example connection strings:
//
//	"file:test.db?cache=shared&mode=rwc"  // URI format with options
//	"test.db"                             // Simple file path
//	":memory:"                            // In-memory database
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/ncobase/nquery/store"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// driver implements store.Driver for SQLite.
type driver struct{}

// Name returns the driver identifier used in configuration files.
func (d *driver) Name() string {
	return "sqlite"
}

// Dialect returns the SQL-builder dialect name.
func (d *driver) Dialect() string {
	return "sqlite3"
}

// Open establishes a SQLite connection, applies the pool options and
// verifies the connection with a ping before returning it.
//
// SQLite typically works best with MaxOpenConns=1 for write safety;
// that is the default when no pool options are given.
func (d *driver) Open(ctx context.Context, dsn string, opts store.PoolOptions) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite: connection source is empty")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open connection: %w", err)
	}

	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	} else {
		db.SetMaxIdleConns(2)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(1)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping database: %w", err)
	}

	return sqlx.NewDb(db, "sqlite3"), nil
}

// init registers the SQLite driver with the store package.
func init() {
	store.RegisterDriver(&driver{})
}
