// Package query assembles listing inputs into an executable, scoped
// query. It is deliberately split into two nominal states:
//
//   - Builder holds the untrusted inputs (filter, order, cursor) and
//     has no execution capability at all.
//   - Scoped is produced only by Builder.Bind, which validates the
//     inputs against the entity schema and attaches the authorization
//     scope. Only Scoped can reach the storage backend.
//
// Unscoped execution is therefore unrepresentable: there is no way to
// obtain a Scoped value without passing a scope through Bind, and every
// execution entry point additionally rejects a zero Scoped at runtime.
package query

import (
	"context"
	"strings"

	"github.com/ncobase/nquery/cursor"
	"github.com/ncobase/nquery/ecode"
	"github.com/ncobase/nquery/filter"
	"github.com/ncobase/nquery/logging/logger"
	"github.com/ncobase/nquery/order"
	"github.com/ncobase/nquery/scope"
	"github.com/ncobase/nquery/store"
)

// Options fix the entity-level execution parameters of a builder.
type Options struct {
	Table          string
	TenantColumn   string
	ResourceColumn string
	Tiebreaker     string // unique field appended to every order

	FilterLimits filter.Limits
	OrderLimits  order.Limits
}

// Builder is the unscoped state: inputs only, no execution methods.
type Builder struct {
	schema *filter.Schema
	opts   Options

	rawFilter   string
	rawOrder    string
	cursorToken string
}

// New starts a builder for one entity. Options default the tiebreaker
// to "id" and the parser limits to their stock values.
func New(schema *filter.Schema, opts Options) *Builder {
	if opts.Tiebreaker == "" {
		opts.Tiebreaker = "id"
	}
	if opts.TenantColumn == "" {
		opts.TenantColumn = "tenant_id"
	}
	if opts.ResourceColumn == "" {
		opts.ResourceColumn = "id"
	}
	if opts.FilterLimits == (filter.Limits{}) {
		opts.FilterLimits = filter.DefaultLimits()
	}
	if opts.OrderLimits == (order.Limits{}) {
		opts.OrderLimits = order.DefaultLimits()
	}
	return &Builder{schema: schema, opts: opts}
}

// Filter attaches the raw filter string.
func (b *Builder) Filter(raw string) *Builder {
	b.rawFilter = raw
	return b
}

// Order attaches the raw order string.
func (b *Builder) Order(raw string) *Builder {
	b.rawOrder = raw
	return b
}

// Cursor attaches the raw continuation token.
func (b *Builder) Cursor(token string) *Builder {
	b.cursorToken = token
	return b
}

// Bind validates every input and attaches the scope, producing the
// executable state. Validation order: scope first (invariant faults
// fail loudest), then the order-with-cursor policy, then the filter,
// then the cursor including its fingerprint binding.
func (b *Builder) Bind(ctx context.Context, sc scope.Scope) (*Scoped, error) {
	if err := sc.Validate(); err != nil {
		logger.Errorf(ctx, "query bind for %q with invalid scope: %v", b.schema.Entity(), err)
		return nil, err
	}
	if err := cursor.CheckOrderPolicy(b.rawOrder, b.cursorToken); err != nil {
		return nil, err
	}

	node, err := filter.ParseWithLimits(b.rawFilter, b.schema, b.opts.FilterLimits)
	if err != nil {
		return nil, err
	}
	fingerprint := filter.Fingerprint(b.rawFilter)

	s := &Scoped{
		schema:      b.schema,
		opts:        b.opts,
		scope:       sc,
		filter:      node,
		fingerprint: fingerprint,
		bound:       true,
	}

	if b.cursorToken != "" {
		if err := s.resume(b.cursorToken); err != nil {
			return nil, err
		}
		return s, nil
	}

	spec, err := order.ParseWithLimits(b.rawOrder, b.schema, b.opts.OrderLimits)
	if err != nil {
		return nil, err
	}
	s.order = spec.WithTiebreaker(b.opts.Tiebreaker)
	return s, nil
}

// Scoped is the bound state: the validated query plus its scope. It is
// the only type in the module that can execute against a backend.
type Scoped struct {
	schema      *filter.Schema
	opts        Options
	scope       scope.Scope
	filter      filter.Node
	fingerprint string
	order       order.Spec
	seek        []filter.Value
	bound       bool
}

// resume loads pagination state from a continuation token: the
// effective order comes exclusively from the cursor, and the seek keys
// are re-typed against the schema so a tampered token never reaches
// the backend.
func (s *Scoped) resume(token string) error {
	c, err := cursor.Decode(token)
	if err != nil {
		return err
	}
	if err := c.CheckFingerprint(s.fingerprint); err != nil {
		return err
	}
	// The stored order was issued by this engine and may carry one
	// field more than the caller-facing limit: Bind appends the
	// tiebreaker after the limit is enforced.
	limits := s.opts.OrderLimits
	if limits.MaxFields > 0 {
		limits.MaxFields++
	}
	spec, err := order.ParseWithLimits(c.Order, s.schema, limits)
	if err != nil {
		// If an engine-issued order no longer parses, the token is
		// stale or forged.
		return ecode.Validation(ecode.CodeCursorCorrupt,
			"cursor order does not resolve: %v", err)
	}
	keys := spec.Keys()
	seek := make([]filter.Value, len(keys))
	for i, k := range keys {
		f, err := s.schema.Resolve(k.Field)
		if err != nil {
			return err
		}
		v, err := filter.ParseKey(c.Keys[i], f.Name, f.Kind)
		if err != nil {
			return ecode.Validation(ecode.CodeCursorCorrupt,
				"cursor seek key %d does not parse as %s", i, f.Kind)
		}
		seek[i] = v
	}
	s.order = spec
	s.seek = seek
	return nil
}

// guard is the runtime arm of the two-state contract: a Scoped that did
// not come out of Bind fails immediately and unconditionally.
func (s *Scoped) guard() error {
	if s == nil || !s.bound {
		return ecode.Invariant(ecode.CodeInvalidScope,
			"query executed without a bound scope")
	}
	return nil
}

// Order returns the effective order, tiebreaker included.
func (s *Scoped) Order() order.Spec { return s.order }

// Fingerprint returns the digest of the filter text this query runs.
func (s *Scoped) Fingerprint() string { return s.fingerprint }

// Schema returns the entity schema the query was validated against.
func (s *Scoped) Schema() *filter.Schema { return s.schema }

// Resuming reports whether the query continues a previous page.
func (s *Scoped) Resuming() bool { return len(s.seek) > 0 }

// spec assembles the backend specification for one fetch.
func (s *Scoped) spec(limit int) store.Spec {
	return store.Spec{
		Schema:         s.schema,
		Table:          s.opts.Table,
		TenantColumn:   s.opts.TenantColumn,
		ResourceColumn: s.opts.ResourceColumn,
		Filter:         s.filter,
		Scope:          s.scope,
		Order:          s.order,
		Seek:           s.seek,
		Limit:          limit,
	}
}

// Fetch runs the page query for up to limit rows.
func (s *Scoped) Fetch(ctx context.Context, be store.Backend, limit int) ([]store.Row, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return be.Query(ctx, s.spec(limit))
}

// Count runs the total-count query for the same filter and scope.
func (s *Scoped) Count(ctx context.Context, be store.Backend) (int64, error) {
	if err := s.guard(); err != nil {
		return 0, err
	}
	return be.Count(ctx, s.spec(0))
}

// CheckTenant verifies that a specific target tenant is visible to the
// bound scope, logging refused access for auditing.
func (s *Scoped) CheckTenant(ctx context.Context, tenant string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.scope.CheckTenant(tenant); err != nil {
		if ecode.IsAuthorization(err) {
			logger.Audit(ctx, ecode.CodeOf(err), s.schema.Entity())
		}
		return err
	}
	return nil
}

// NextCursor issues the continuation token for a page whose last
// returned row is given. Seek keys are taken from the row's order-field
// values, so every order field must be present in the row and backed by
// a non-nullable column.
func (s *Scoped) NextCursor(last store.Row) (string, error) {
	if err := s.guard(); err != nil {
		return "", err
	}
	keys := s.order.Keys()
	encoded := make([]string, len(keys))
	for i, k := range keys {
		f, err := s.schema.Resolve(k.Field)
		if err != nil {
			return "", err
		}
		raw, ok := last[f.Name]
		if !ok {
			return "", ecode.Invariant(ecode.CodeCursorInconsistent,
				"row is missing order field %q", f.Name)
		}
		encoded[i], err = filter.EncodeKeyValue(raw, f.Kind)
		if err != nil {
			return "", err
		}
	}
	return cursor.New(encoded, s.order, s.fingerprint).Encode()
}

// String renders the query shape for debug logging. It never includes
// literal values.
func (s *Scoped) String() string {
	var sb strings.Builder
	sb.WriteString(s.schema.Entity())
	sb.WriteString(" order=")
	sb.WriteString(s.order.String())
	if s.fingerprint != "" {
		sb.WriteString(" filter=")
		sb.WriteString(s.fingerprint)
	}
	return sb.String()
}
