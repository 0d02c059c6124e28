package filter

import (
	"strings"

	"github.com/ncobase/nquery/ecode"
)

// Field is one capability entry of an entity: a queryable field name,
// its kind, and the physical column it maps to.
type Field struct {
	Name   string
	Kind   FieldKind
	Column string
}

// Schema is the closed field-capability set of one queryable entity.
// Names resolve case-insensitively; anything outside the set is an
// UnknownField fault, never a passthrough.
type Schema struct {
	entity string
	fields map[string]Field
	names  []string
}

// NewSchema builds the capability set for an entity. Field names must be
// unique within the entity (case-insensitive). A field with an empty
// Column defaults to its lowercase name.
func NewSchema(entity string, fields ...Field) (*Schema, error) {
	s := &Schema{
		entity: entity,
		fields: make(map[string]Field, len(fields)),
	}
	for _, f := range fields {
		key := strings.ToLower(f.Name)
		if key == "" {
			return nil, ecode.Invariant(ecode.CodeUnknownField,
				"entity %q registers a field with an empty name", entity)
		}
		if _, dup := s.fields[key]; dup {
			return nil, ecode.Invariant(ecode.CodeUnknownField,
				"entity %q registers field %q twice", entity, key)
		}
		if f.Column == "" {
			f.Column = key
		}
		f.Name = key
		s.fields[key] = f
		s.names = append(s.names, key)
	}
	return s, nil
}

// MustSchema is NewSchema for statically known capability sets.
func MustSchema(entity string, fields ...Field) *Schema {
	s, err := NewSchema(entity, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Entity returns the entity name the schema was built for.
func (s *Schema) Entity() string { return s.entity }

// Names returns the field names in registration order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Resolve looks up a field by name, case-insensitively.
func (s *Schema) Resolve(name string) (Field, error) {
	f, ok := s.fields[strings.ToLower(name)]
	if !ok {
		return Field{}, ecode.Validation(ecode.CodeUnknownField,
			"entity %q has no field %q", s.entity, name)
	}
	return f, nil
}

// Has reports whether a field name resolves against the schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.fields[strings.ToLower(name)]
	return ok
}
