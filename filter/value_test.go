package filter

import (
	"strings"
	"testing"
	"time"

	"github.com/ncobase/nquery/ecode"
)

func TestCoerceRoundTripsThroughKeyEncoding(t *testing.T) {
	cases := []struct {
		kind FieldKind
		lit  literal
		key  string
	}{
		{KindString, literal{raw: "hello", isString: true}, "hello"},
		{KindInt64, literal{raw: "-42", isNumber: true}, "-42"},
		{KindFloat64, literal{raw: "2.5", isNumber: true}, "2.5"},
		{KindBool, literal{raw: "true", isBool: true, boolVal: true}, "true"},
		{KindUuid, literal{raw: "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", isString: true},
			"6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{KindDate, literal{raw: "2024-06-01", isString: true}, "2024-06-01"},
		{KindDecimal, literal{raw: "19.990", isNumber: true}, "19.99"},
	}
	for _, c := range cases {
		v, err := coerce(c.lit, "f", c.kind)
		if err != nil {
			t.Fatalf("coerce(%v, %s): %v", c.lit, c.kind, err)
		}
		if got := v.EncodeKey(); got != c.key {
			t.Errorf("EncodeKey(%s) = %q, want %q", c.kind, got, c.key)
		}
		back, err := ParseKey(v.EncodeKey(), "f", c.kind)
		if err != nil {
			t.Fatalf("ParseKey(%s): %v", c.kind, err)
		}
		if back.EncodeKey() != v.EncodeKey() {
			t.Errorf("%s key round-trip: %q != %q", c.kind, back.EncodeKey(), v.EncodeKey())
		}
	}
}

func TestCoerceDateTimeNormalizesToUTC(t *testing.T) {
	v, err := coerce(literal{raw: "2024-06-01T10:30:00+02:00", isString: true}, "created_at", KindDateTimeUtc)
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	got, ok := v.Arg().(time.Time)
	if !ok {
		t.Fatalf("Arg() = %T, want time.Time", v.Arg())
	}
	if got.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", got.Location())
	}
	if got.Hour() != 8 {
		t.Errorf("hour = %d, want 8", got.Hour())
	}
}

func TestParseKeyRejectsTamperedValues(t *testing.T) {
	cases := []struct {
		kind FieldKind
		raw  string
	}{
		{KindInt64, "12abc"},
		{KindBool, "yes"},
		{KindUuid, "zzzz"},
		{KindDateTimeUtc, "not-a-time"},
	}
	for _, c := range cases {
		if _, err := ParseKey(c.raw, "f", c.kind); err == nil {
			t.Errorf("ParseKey(%q, %s) succeeded, want error", c.raw, c.kind)
		}
	}
}

func TestEncodeKeyValueNormalizesDriverTypes(t *testing.T) {
	cases := []struct {
		kind FieldKind
		raw  any
		want string
	}{
		{KindString, []byte("alpha"), "alpha"},
		{KindInt64, int64(42), "42"},
		{KindBool, int64(1), "true"}, // SQLite booleans scan as integers
		{KindBool, false, "false"},
		{KindDateTimeUtc, "2024-06-01T00:00:00Z", "2024-06-01T00:00:00Z"},
		{KindDecimal, "19.99", "19.99"},
	}
	for _, c := range cases {
		got, err := EncodeKeyValue(c.raw, c.kind)
		if err != nil {
			t.Fatalf("EncodeKeyValue(%v, %s): %v", c.raw, c.kind, err)
		}
		if got != c.want {
			t.Errorf("EncodeKeyValue(%v, %s) = %q, want %q", c.raw, c.kind, got, c.want)
		}
		if _, err := ParseKey(got, "f", c.kind); err != nil {
			t.Errorf("ParseKey(%q, %s) after encode: %v", got, c.kind, err)
		}
	}
	if _, err := EncodeKeyValue(struct{}{}, KindInt64); err == nil {
		t.Error("unencodable driver type accepted")
	}
}

func TestEncodeKeyValueRejectsNull(t *testing.T) {
	_, err := EncodeKeyValue(nil, KindString)
	if ecode.CodeOf(err) != ecode.CodeCursorInconsistent {
		t.Fatalf("code = %v, want cursor_inconsistent (err: %v)", ecode.CodeOf(err), err)
	}
	if !strings.Contains(err.Error(), "non-nullable") {
		t.Errorf("error does not name the constraint: %v", err)
	}
}

func TestNullValue(t *testing.T) {
	v := Null(KindString)
	if !v.IsNull() {
		t.Fatal("IsNull() = false")
	}
	if v.Arg() != nil {
		t.Errorf("Arg() = %v, want nil", v.Arg())
	}
}
