// Package store defines the two narrow capabilities the query engine
// consumes from a storage backend: translating a filter/scope/seek
// specification into the backend's native condition representation, and
// mapping capability fields to physical columns. Concrete adapters live
// in the subpackages.
package store

import (
	"context"

	"github.com/ncobase/nquery/filter"
	"github.com/ncobase/nquery/order"
	"github.com/ncobase/nquery/scope"
)

// Row is one fetched row keyed by lowercase field name.
type Row map[string]any

// Spec is the fully validated description of one page fetch, produced
// by the query layer. Everything in it has already passed schema and
// policy validation; adapters translate, they do not re-validate.
type Spec struct {
	Schema *filter.Schema
	Table  string

	// Columns carrying the authorization predicate.
	TenantColumn   string
	ResourceColumn string

	Filter filter.Node
	Scope  scope.Scope
	Order  order.Spec     // effective order, tiebreaker included
	Seek   []filter.Value // one per order key; empty on a first page
	Limit  int            // rows to fetch, overfetch already applied
}

// Backend is the execution capability. Query returns at most Spec.Limit
// rows in Spec.Order; Count returns the total number of rows matching
// the filter and scope, ignoring seek position and limit.
type Backend interface {
	Query(ctx context.Context, spec Spec) ([]Row, error)
	Count(ctx context.Context, spec Spec) (int64, error)
}
