package entsql

import (
	"strings"

	"entgo.io/ent/dialect/sql"
	"github.com/ncobase/nquery/ecode"
	"github.com/ncobase/nquery/filter"
	"github.com/ncobase/nquery/order"
	"github.com/ncobase/nquery/store"
)

// compileSelect builds the page-fetch SELECT for a spec: aliased field
// columns, scope AND filter AND seek predicate, order, limit.
func compileSelect(dialect string, spec store.Spec) (*sql.Selector, error) {
	selector := sql.Dialect(dialect).
		Select(selectColumns(spec.Schema)...).
		From(sql.Table(spec.Table))

	pred, err := compileWhere(spec, true)
	if err != nil {
		return nil, err
	}
	if pred != nil {
		selector.Where(pred)
	}
	for _, k := range spec.Order.Keys() {
		col, err := columnOf(spec.Schema, k.Field)
		if err != nil {
			return nil, err
		}
		if k.Direction == order.Desc {
			selector.OrderBy(sql.Desc(col))
		} else {
			selector.OrderBy(sql.Asc(col))
		}
	}
	if spec.Limit > 0 {
		selector.Limit(spec.Limit)
	}
	return selector, nil
}

// compileCount builds the COUNT query: same scope and filter, no seek,
// no order, no limit.
func compileCount(dialect string, spec store.Spec) (*sql.Selector, error) {
	selector := sql.Dialect(dialect).
		Select(sql.Count("*")).
		From(sql.Table(spec.Table))
	pred, err := compileWhere(spec, false)
	if err != nil {
		return nil, err
	}
	if pred != nil {
		selector.Where(pred)
	}
	return selector, nil
}

// compileWhere combines scope, filter and (optionally) the seek
// predicate. The scope condition is always joined with AND so no filter
// can widen visibility past it.
func compileWhere(spec store.Spec, withSeek bool) (*sql.Predicate, error) {
	var preds []*sql.Predicate

	if p := compileScope(spec); p != nil {
		preds = append(preds, p)
	}
	if spec.Filter != nil {
		p, err := compileNode(spec.Schema, spec.Filter)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if withSeek && len(spec.Seek) > 0 {
		p, err := compileSeek(spec)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	switch len(preds) {
	case 0:
		return nil, nil
	case 1:
		return preds[0], nil
	default:
		return sql.And(preds...), nil
	}
}

// compileScope renders the authorization predicate. An empty scope
// denies everything rather than matching everything.
func compileScope(spec store.Spec) *sql.Predicate {
	s := spec.Scope
	switch {
	case s.IsUnrestricted():
		return nil
	case s.IsDenyAll():
		return sql.False()
	}
	var preds []*sql.Predicate
	if tenants := s.Tenants(); tenants != nil {
		preds = append(preds, sql.In(spec.TenantColumn, anySlice(tenants)...))
	}
	if resources := s.Resources(); resources != nil {
		preds = append(preds, sql.In(spec.ResourceColumn, anySlice(resources)...))
	}
	if len(preds) == 1 {
		return preds[0]
	}
	return sql.And(preds...)
}

func anySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// compileNode translates a validated filter tree into a predicate.
func compileNode(schema *filter.Schema, node filter.Node) (*sql.Predicate, error) {
	switch n := node.(type) {
	case *filter.And:
		children, err := compileChildren(schema, n.Children)
		if err != nil {
			return nil, err
		}
		return sql.And(children...), nil
	case *filter.Or:
		children, err := compileChildren(schema, n.Children)
		if err != nil {
			return nil, err
		}
		return sql.Or(children...), nil
	case *filter.Not:
		child, err := compileNode(schema, n.Child)
		if err != nil {
			return nil, err
		}
		return sql.Not(child), nil
	case *filter.Compare:
		return compileCompare(n)
	}
	return nil, ecode.Invariant(ecode.CodeBackendFault, "unhandled filter node %T", node)
}

func compileChildren(schema *filter.Schema, nodes []filter.Node) ([]*sql.Predicate, error) {
	out := make([]*sql.Predicate, 0, len(nodes))
	for _, n := range nodes {
		p, err := compileNode(schema, n)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func compileCompare(n *filter.Compare) (*sql.Predicate, error) {
	col := n.Field.Column
	if n.Op == filter.OpIn {
		// Empty lists match nothing instead of producing invalid SQL.
		if len(n.Values) == 0 {
			return sql.False(), nil
		}
		args := make([]any, len(n.Values))
		for i, v := range n.Values {
			args[i] = v.Arg()
		}
		return sql.In(col, args...), nil
	}
	if n.Value.IsNull() {
		switch n.Op {
		case filter.OpEq:
			return sql.IsNull(col), nil
		case filter.OpNe:
			return sql.Not(sql.IsNull(col)), nil
		}
		return nil, ecode.Invariant(ecode.CodeBackendFault,
			"null literal reached operator %s", n.Op)
	}
	arg := n.Value.Arg()
	switch n.Op {
	case filter.OpEq:
		return sql.EQ(col, arg), nil
	case filter.OpNe:
		return sql.NEQ(col, arg), nil
	case filter.OpLt:
		return sql.LT(col, arg), nil
	case filter.OpLe:
		return sql.LTE(col, arg), nil
	case filter.OpGt:
		return sql.GT(col, arg), nil
	case filter.OpGe:
		return sql.GTE(col, arg), nil
	case filter.OpContains:
		return like(col, "%"+likeEscape(arg.(string))+"%"), nil
	case filter.OpStartsWith:
		return like(col, likeEscape(arg.(string))+"%"), nil
	case filter.OpEndsWith:
		return like(col, "%"+likeEscape(arg.(string))), nil
	}
	return nil, ecode.Invariant(ecode.CodeBackendFault, "unhandled operator %s", n.Op)
}

// like renders "col LIKE pattern ESCAPE '\'" so the escaping in
// likeEscape holds on every dialect, SQLite included.
func like(col, pattern string) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		b.Ident(col).WriteString(" LIKE ").Arg(pattern).WriteString(` ESCAPE '\'`)
	})
}

// likeEscape neutralizes LIKE metacharacters in a user literal.
func likeEscape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '%', '_', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// compileSeek builds the keyset "seek past" predicate: a lexicographic
// comparison over the order keys, each respecting its own direction.
//
//	(k0 > v0) OR (k0 = v0 AND k1 > v1) OR ...
//
// with > flipped to < for descending keys. Cost is independent of page
// depth and the position is stable under concurrent writes.
func compileSeek(spec store.Spec) (*sql.Predicate, error) {
	keys := spec.Order.Keys()
	if len(spec.Seek) != len(keys) {
		return nil, ecode.Invariant(ecode.CodeCursorInconsistent,
			"%d seek values for %d order keys", len(spec.Seek), len(keys))
	}
	var branches []*sql.Predicate
	for i := range keys {
		var terms []*sql.Predicate
		for j := 0; j < i; j++ {
			col, err := columnOf(spec.Schema, keys[j].Field)
			if err != nil {
				return nil, err
			}
			terms = append(terms, sql.EQ(col, spec.Seek[j].Arg()))
		}
		col, err := columnOf(spec.Schema, keys[i].Field)
		if err != nil {
			return nil, err
		}
		arg := spec.Seek[i].Arg()
		if keys[i].Direction == order.Desc {
			terms = append(terms, sql.LT(col, arg))
		} else {
			terms = append(terms, sql.GT(col, arg))
		}
		if len(terms) == 1 {
			branches = append(branches, terms[0])
		} else {
			branches = append(branches, sql.And(terms...))
		}
	}
	if len(branches) == 1 {
		return branches[0], nil
	}
	return sql.Or(branches...), nil
}

func columnOf(schema *filter.Schema, field string) (string, error) {
	f, err := schema.Resolve(field)
	if err != nil {
		return "", err
	}
	return f.Column, nil
}

// selectColumns aliases every physical column to its field name so rows
// scan into field-keyed maps regardless of column naming.
func selectColumns(schema *filter.Schema) []string {
	names := schema.Names()
	cols := make([]string, 0, len(names))
	for _, name := range names {
		f, _ := schema.Resolve(name)
		if f.Column == name {
			cols = append(cols, f.Column)
		} else {
			cols = append(cols, sql.As(f.Column, name))
		}
	}
	return cols
}
