// Package order parses and serializes the compact multi-field sort
// specification used by listing requests and cursors.
//
// The wire form is a comma-separated list of field names, each
// optionally prefixed with + (ascending, the default) or - (descending):
//
//	-created_at,+name,id
//
// Parsing a serialized specification always reproduces it exactly.
package order

import (
	"strings"

	"github.com/ncobase/nquery/ecode"
	"github.com/ncobase/nquery/filter"
)

// Direction of one sort key.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// String returns "asc" or "desc".
func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Key is one (field, direction) pair of a sort specification.
type Key struct {
	Field     string
	Direction Direction
}

// Spec is an ordered, non-empty sequence of sort keys with unique
// field names.
type Spec struct {
	keys []Key
}

// Limits bound order input from untrusted callers.
type Limits struct {
	MaxLength int // bytes of order text
	MaxFields int // sort keys
}

// DefaultLimits returns the stock order budgets.
func DefaultLimits() Limits {
	return Limits{MaxLength: 1024, MaxFields: 10}
}

// Parse parses a signed-token order string against an entity schema
// using the default limits. A blank input yields a zero Spec, meaning
// "no caller-specified order".
func Parse(input string, schema *filter.Schema) (Spec, error) {
	return ParseWithLimits(input, schema, DefaultLimits())
}

// ParseWithLimits parses and validates an order string. Every field must
// resolve against the schema; duplicate fields are rejected.
func ParseWithLimits(input string, schema *filter.Schema, limits Limits) (Spec, error) {
	if strings.TrimSpace(input) == "" {
		return Spec{}, nil
	}
	if limits.MaxLength > 0 && len(input) > limits.MaxLength {
		return Spec{}, ecode.Validation(ecode.CodeMalformedOrder,
			"order exceeds maximum length of %d bytes", limits.MaxLength)
	}
	segments := strings.Split(input, ",")
	if limits.MaxFields > 0 && len(segments) > limits.MaxFields {
		return Spec{}, ecode.Validation(ecode.CodeMalformedOrder,
			"order exceeds maximum of %d fields", limits.MaxFields)
	}
	var keys []Key
	seen := make(map[string]bool, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return Spec{}, ecode.Validation(ecode.CodeMalformedOrder,
				"order contains an empty segment")
		}
		dir := Asc
		switch seg[0] {
		case '+':
			seg = seg[1:]
		case '-':
			dir = Desc
			seg = seg[1:]
		}
		if seg == "" {
			return Spec{}, ecode.Validation(ecode.CodeMalformedOrder,
				"order contains a sign with no field name")
		}
		f, err := schema.Resolve(seg)
		if err != nil {
			return Spec{}, err
		}
		if seen[f.Name] {
			return Spec{}, ecode.Validation(ecode.CodeMalformedOrder,
				"order names field %q twice", f.Name)
		}
		seen[f.Name] = true
		keys = append(keys, Key{Field: f.Name, Direction: dir})
	}
	return Spec{keys: keys}, nil
}

// FromKeys builds a Spec directly from keys. Used when the order comes
// from a trusted source such as an engine default.
func FromKeys(keys ...Key) Spec {
	out := make([]Key, len(keys))
	copy(out, keys)
	return Spec{keys: out}
}

// IsZero reports whether the spec carries no keys.
func (s Spec) IsZero() bool { return len(s.keys) == 0 }

// Len returns the number of sort keys.
func (s Spec) Len() int { return len(s.keys) }

// Keys returns a copy of the sort keys in order.
func (s Spec) Keys() []Key {
	out := make([]Key, len(s.keys))
	copy(out, s.keys)
	return out
}

// String serializes the spec back to the compact signed-token form.
// Ascending keys are written bare, matching the parse default.
func (s Spec) String() string {
	var sb strings.Builder
	for i, k := range s.keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		if k.Direction == Desc {
			sb.WriteByte('-')
		}
		sb.WriteString(k.Field)
	}
	return sb.String()
}

// Equal reports whether two specs carry the same keys in the same order
// with the same directions.
func (s Spec) Equal(other Spec) bool {
	if len(s.keys) != len(other.keys) {
		return false
	}
	for i, k := range s.keys {
		if other.keys[i] != k {
			return false
		}
	}
	return true
}

// WithTiebreaker appends the given field ascending unless the spec
// already names it. The tiebreaker keeps keyset pagination total even
// when the caller sorts on non-unique columns.
func (s Spec) WithTiebreaker(field string) Spec {
	field = strings.ToLower(field)
	for _, k := range s.keys {
		if k.Field == field {
			return s
		}
	}
	keys := make([]Key, 0, len(s.keys)+1)
	keys = append(keys, s.keys...)
	keys = append(keys, Key{Field: field, Direction: Asc})
	return Spec{keys: keys}
}

// Primary returns the direction of the first key. Zero specs report
// ascending.
func (s Spec) Primary() Direction {
	if len(s.keys) == 0 {
		return Asc
	}
	return s.keys[0].Direction
}
