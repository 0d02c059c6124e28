package filter

// Operator enumerates the comparison operators of the filter grammar.
type Operator string

const (
	OpEq         Operator = "eq"
	OpNe         Operator = "ne"
	OpLt         Operator = "lt"
	OpLe         Operator = "le"
	OpGt         Operator = "gt"
	OpGe         Operator = "ge"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startswith"
	OpEndsWith   Operator = "endswith"
	OpIn         Operator = "in"
)

// comparisonKeywords maps the infix keyword tokens to operators.
var comparisonKeywords = map[string]Operator{
	"eq": OpEq,
	"ne": OpNe,
	"lt": OpLt,
	"le": OpLe,
	"gt": OpGt,
	"ge": OpGe,
}

// functionKeywords maps the call-form tokens to operators.
var functionKeywords = map[string]Operator{
	"contains":   OpContains,
	"startswith": OpStartsWith,
	"endswith":   OpEndsWith,
}

// SupportedBy reports whether the operator is legal on a field of the
// given kind. Substring matching and membership are string-only.
func (o Operator) SupportedBy(k FieldKind) bool {
	switch o {
	case OpContains, OpStartsWith, OpEndsWith, OpIn:
		return k == KindString
	default:
		return true
	}
}

// allowsNull reports whether the operator accepts a null literal.
// Only equality and inequality translate to IS NULL / IS NOT NULL.
func (o Operator) allowsNull() bool {
	return o == OpEq || o == OpNe
}
