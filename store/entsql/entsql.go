// Package entsql is the SQL storage adapter of the query engine. It
// translates a validated fetch specification into a parameterized
// statement with ent's dialect-aware SQL builder and executes it through
// sqlx, scanning rows into field-keyed maps.
//
// Literals never reach the statement text: every value binds as an
// argument, and LIKE patterns are built from escaped literals with an
// explicit ESCAPE clause.
package entsql

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/ncobase/nquery/ecode"
	"github.com/ncobase/nquery/store"
)

// Backend executes fetch specifications against one SQL database.
type Backend struct {
	db      *sqlx.DB
	dialect string
}

// New wraps an open sqlx handle. The dialect string follows ent's
// dialect names ("postgres", "sqlite3", "mysql").
func New(db *sqlx.DB, dialect string) *Backend {
	return &Backend{db: db, dialect: dialect}
}

// Query runs the page-fetch SELECT and returns field-keyed rows in spec
// order. Driver failures come back as opaque backend faults.
func (b *Backend) Query(ctx context.Context, spec store.Spec) ([]store.Row, error) {
	selector, err := compileSelect(b.dialect, spec)
	if err != nil {
		return nil, err
	}
	stmt, args := selector.Query()
	rows, err := b.db.QueryxContext(ctx, stmt, args...)
	if err != nil {
		return nil, ecode.Backend(err)
	}
	defer rows.Close()

	var out []store.Row
	for rows.Next() {
		row := make(store.Row)
		if err := rows.MapScan(row); err != nil {
			return nil, ecode.Backend(err)
		}
		out = append(out, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, ecode.Backend(err)
	}
	return out, nil
}

// Count runs the total-count query for the same filter and scope.
func (b *Backend) Count(ctx context.Context, spec store.Spec) (int64, error) {
	selector, err := compileCount(b.dialect, spec)
	if err != nil {
		return 0, err
	}
	stmt, args := selector.Query()
	var total int64
	if err := b.db.QueryRowxContext(ctx, stmt, args...).Scan(&total); err != nil {
		return 0, ecode.Backend(err)
	}
	return total, nil
}

// normalizeRow converts driver byte slices to strings so rows compare
// and render uniformly across drivers.
func normalizeRow(row store.Row) store.Row {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return row
}
