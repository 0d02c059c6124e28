package filter

// FieldKind enumerates the closed set of value kinds a queryable field
// may carry. The kind decides which operators are legal on the field and
// how literals are coerced.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt64
	KindFloat64
	KindBool
	KindUuid
	KindDateTimeUtc
	KindDate
	KindTime
	KindDecimal
)

var kindNames = map[FieldKind]string{
	KindString:      "string",
	KindInt64:       "int64",
	KindFloat64:     "float64",
	KindBool:        "bool",
	KindUuid:        "uuid",
	KindDateTimeUtc: "datetime_utc",
	KindDate:        "date",
	KindTime:        "time",
	KindDecimal:     "decimal",
}

// String returns the canonical lowercase name of the kind.
func (k FieldKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}
