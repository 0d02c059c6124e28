package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ncobase/nquery/ecode"
	"github.com/shopspring/decimal"
)

// Layouts for the calendar and clock kinds. DateTimeUtc uses RFC 3339
// and is normalized to UTC on coercion.
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05.999999999"
)

// Value is a typed literal bound to a field kind, or an explicit null.
// A Value is produced by coercion and is immutable afterwards.
type Value struct {
	kind FieldKind
	null bool

	s string
	i int64
	f float64
	b bool
	u uuid.UUID
	t time.Time
	d decimal.Decimal
}

// Null returns the null value for the given kind.
func Null(kind FieldKind) Value {
	return Value{kind: kind, null: true}
}

// Kind returns the field kind this value was coerced to.
func (v Value) Kind() FieldKind { return v.kind }

// IsNull reports whether the value is the explicit null marker.
func (v Value) IsNull() bool { return v.null }

// Arg returns the value in a form suitable for binding as a SQL
// argument. Uuid and Decimal bind as their canonical strings so the
// same tree works across drivers.
func (v Value) Arg() any {
	if v.null {
		return nil
	}
	switch v.kind {
	case KindString:
		return v.s
	case KindInt64:
		return v.i
	case KindFloat64:
		return v.f
	case KindBool:
		return v.b
	case KindUuid:
		return v.u.String()
	case KindDateTimeUtc:
		return v.t.UTC()
	case KindDate:
		return v.t.Format(dateLayout)
	case KindTime:
		return v.t.Format(timeLayout)
	case KindDecimal:
		return v.d.String()
	}
	return nil
}

// literal is the parser's untyped intermediate before coercion.
type literal struct {
	raw      string // textual payload (unquoted for strings)
	isString bool
	isNumber bool
	isBool   bool
	isNull   bool
	boolVal  bool
}

// coerce turns an untyped literal into a typed Value of the target kind,
// or fails with a TypeMismatch condition.
func coerce(lit literal, field string, kind FieldKind) (Value, error) {
	if lit.isNull {
		return Null(kind), nil
	}
	mismatch := func(want string) (Value, error) {
		return Value{}, ecode.Validation(ecode.CodeTypeMismatch,
			"field %q expects %s, got %q", field, want, lit.raw)
	}
	switch kind {
	case KindString:
		if !lit.isString {
			return mismatch("a string literal")
		}
		return Value{kind: kind, s: lit.raw}, nil
	case KindInt64:
		if !lit.isNumber {
			return mismatch("an integer literal")
		}
		n, err := strconv.ParseInt(lit.raw, 10, 64)
		if err != nil {
			return mismatch("an integer literal")
		}
		return Value{kind: kind, i: n}, nil
	case KindFloat64:
		if !lit.isNumber {
			return mismatch("a numeric literal")
		}
		f, err := strconv.ParseFloat(lit.raw, 64)
		if err != nil {
			return mismatch("a numeric literal")
		}
		return Value{kind: kind, f: f}, nil
	case KindBool:
		if !lit.isBool {
			return mismatch("a boolean literal")
		}
		return Value{kind: kind, b: lit.boolVal}, nil
	case KindUuid:
		if !lit.isString {
			return mismatch("a uuid string")
		}
		u, err := uuid.Parse(lit.raw)
		if err != nil {
			return mismatch("a uuid string")
		}
		return Value{kind: kind, u: u}, nil
	case KindDateTimeUtc:
		if !lit.isString {
			return mismatch("an RFC 3339 timestamp string")
		}
		t, err := time.Parse(time.RFC3339Nano, lit.raw)
		if err != nil {
			return mismatch("an RFC 3339 timestamp string")
		}
		return Value{kind: kind, t: t.UTC()}, nil
	case KindDate:
		if !lit.isString {
			return mismatch("a date string (YYYY-MM-DD)")
		}
		t, err := time.Parse(dateLayout, lit.raw)
		if err != nil {
			return mismatch("a date string (YYYY-MM-DD)")
		}
		return Value{kind: kind, t: t}, nil
	case KindTime:
		if !lit.isString {
			return mismatch("a time string (HH:MM:SS)")
		}
		t, err := time.Parse(timeLayout, lit.raw)
		if err != nil {
			return mismatch("a time string (HH:MM:SS)")
		}
		return Value{kind: kind, t: t}, nil
	case KindDecimal:
		if !lit.isNumber && !lit.isString {
			return mismatch("a decimal literal")
		}
		d, err := decimal.NewFromString(lit.raw)
		if err != nil {
			return mismatch("a decimal literal")
		}
		return Value{kind: kind, d: d}, nil
	}
	return Value{}, ecode.Invariant(ecode.CodeTypeMismatch, "unhandled field kind %v", kind)
}

// EncodeKey renders the value in the canonical textual form used for
// cursor seek keys. ParseKey inverts it.
func (v Value) EncodeKey() string {
	if v.null {
		return ""
	}
	switch v.kind {
	case KindString:
		return v.s
	case KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindFloat64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindUuid:
		return v.u.String()
	case KindDateTimeUtc:
		return v.t.UTC().Format(time.RFC3339Nano)
	case KindDate:
		return v.t.Format(dateLayout)
	case KindTime:
		return v.t.Format(timeLayout)
	case KindDecimal:
		return v.d.String()
	}
	return ""
}

// EncodeKeyValue renders a raw driver value in the canonical seek-key
// form for its field kind, so ParseKey can re-type it on the next
// request. Drivers disagree on scan types (byte slices for text, int64
// for bools on SQLite), which this normalizes.
//
// SQL NULL has no seek-key form: keyset comparison is undefined over
// NULL, so order fields must come from non-nullable columns.
func EncodeKeyValue(raw any, kind FieldKind) (string, error) {
	if raw == nil {
		return "", ecode.Invariant(ecode.CodeCursorInconsistent,
			"%s seek key is NULL; order fields must be non-nullable", kind)
	}
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	switch kind {
	case KindString, KindUuid, KindDate, KindTime, KindDecimal:
		switch v := raw.(type) {
		case string:
			return v, nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64), nil
		}
	case KindInt64:
		if v, ok := raw.(int64); ok {
			return strconv.FormatInt(v, 10), nil
		}
	case KindFloat64:
		switch v := raw.(type) {
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		}
	case KindBool:
		switch v := raw.(type) {
		case bool:
			return strconv.FormatBool(v), nil
		case int64:
			return strconv.FormatBool(v != 0), nil
		}
	case KindDateTimeUtc:
		switch v := raw.(type) {
		case time.Time:
			return v.UTC().Format(time.RFC3339Nano), nil
		case string:
			return v, nil
		}
	}
	return "", ecode.Invariant(ecode.CodeCursorInconsistent,
		"cannot encode %T as a %s seek key", raw, kind)
}

// ParseKey parses a cursor seek-key string back into a typed value of
// the given kind. Failures surface as TypeMismatch so a tampered cursor
// never reaches the backend.
func ParseKey(raw string, field string, kind FieldKind) (Value, error) {
	lit := literal{raw: raw}
	switch kind {
	case KindString, KindUuid, KindDateTimeUtc, KindDate, KindTime:
		lit.isString = true
	case KindInt64, KindFloat64, KindDecimal:
		lit.isNumber = true
	case KindBool:
		switch strings.ToLower(raw) {
		case "true":
			lit.isBool, lit.boolVal = true, true
		case "false":
			lit.isBool, lit.boolVal = true, false
		}
	}
	return coerce(lit, field, kind)
}
