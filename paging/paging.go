// Package paging orchestrates one page fetch over a scoped query:
// clamp the requested size, overfetch one row to detect further pages,
// and issue the next continuation token from the last returned row.
//
// The pager is stateless between calls. Cursors carry no server-side
// session, so any number of callers may walk the same listing
// concurrently. A failed fetch surfaces as a backend fault and is never
// retried here.
package paging

import (
	"context"

	"github.com/ncobase/nquery/logging/logger"
	"github.com/ncobase/nquery/query"
	"github.com/ncobase/nquery/store"
)

// Request holds the caller-supplied pagination parameters.
type Request struct {
	Limit        int  `json:"limit"`
	IncludeTotal bool `json:"include_total"`
}

// Result holds one fetched page.
type Result[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next,omitempty"`
	HasMore    bool   `json:"has_more"`
	Total      *int64 `json:"total,omitempty"`
}

// Options fix the page-size policy of a pager.
type Options struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultOptions returns the stock page-size policy.
func DefaultOptions() Options {
	return Options{DefaultLimit: 20, MaxLimit: 100}
}

// Clamp forces a requested page size into [1, max]. Out-of-range
// requests degrade silently instead of failing, so legacy callers keep
// working.
func (o Options) Clamp(requested int) int {
	switch {
	case requested <= 0:
		return o.DefaultLimit
	case requested > o.MaxLimit:
		return o.MaxLimit
	default:
		return requested
	}
}

// Pager executes page fetches against one backend.
type Pager struct {
	be   store.Backend
	opts Options
}

// New builds a pager. Zero options fall back to the defaults.
func New(be store.Backend, opts Options) *Pager {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultOptions().DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = DefaultOptions().MaxLimit
	}
	return &Pager{be: be, opts: opts}
}

// Fetch runs one page of a scoped query and maps each row into T.
//
// One extra row beyond the clamped limit is requested to decide
// has_more without a counting query. When more rows remain, the next
// cursor is built from the last returned row's order-field values. The
// total count runs as a separate query, and only on request.
func Fetch[T any](ctx context.Context, p *Pager, q *query.Scoped, req Request, mapFn func(store.Row) (T, error)) (*Result[T], error) {
	limit := p.opts.Clamp(req.Limit)

	rows, err := q.Fetch(ctx, p.be, limit+1)
	if err != nil {
		logger.Errorf(ctx, "page fetch failed for %s: %v", q, err)
		return nil, err
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	items := make([]T, 0, len(rows))
	for _, row := range rows {
		item, err := mapFn(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	result := &Result[T]{Items: items, HasMore: hasMore}
	if hasMore {
		next, err := q.NextCursor(rows[len(rows)-1])
		if err != nil {
			return nil, err
		}
		result.NextCursor = next
	}

	if req.IncludeTotal {
		total, err := q.Count(ctx, p.be)
		if err != nil {
			return nil, err
		}
		result.Total = &total
	}

	logger.Debugf(ctx, "page fetch %s: %d items, has_more=%v", q, len(items), hasMore)
	return result, nil
}

// FetchRows is Fetch with rows passed through unmapped.
func FetchRows(ctx context.Context, p *Pager, q *query.Scoped, req Request) (*Result[store.Row], error) {
	return Fetch(ctx, p, q, req, func(r store.Row) (store.Row, error) { return r, nil })
}
