package filter

import (
	"strings"
	"testing"

	"github.com/ncobase/nquery/ecode"
)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := NewSchema("project",
		Field{Name: "id", Kind: KindUuid},
		Field{Name: "name", Kind: KindString},
		Field{Name: "status", Kind: KindString},
		Field{Name: "priority", Kind: KindInt64},
		Field{Name: "score", Kind: KindFloat64},
		Field{Name: "budget", Kind: KindDecimal},
		Field{Name: "archived", Kind: KindBool},
		Field{Name: "created_at", Kind: KindDateTimeUtc},
		Field{Name: "due_date", Kind: KindDate},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return s
}

func TestParseSimpleComparison(t *testing.T) {
	s := testSchema(t)
	node, err := Parse("status eq 'active'", s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cmp, ok := node.(*Compare)
	if !ok {
		t.Fatalf("expected *Compare, got %T", node)
	}
	if cmp.Field.Name != "status" || cmp.Op != OpEq {
		t.Errorf("unexpected node: %+v", cmp)
	}
	if cmp.Value.Arg() != "active" {
		t.Errorf("value = %v, want active", cmp.Value.Arg())
	}
}

func TestParseBooleanStructure(t *testing.T) {
	s := testSchema(t)
	node, err := Parse("status eq 'active' and priority ge 3 or archived eq true", s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	or, ok := node.(*Or)
	if !ok {
		t.Fatalf("expected *Or at root, got %T", node)
	}
	if len(or.Children) != 2 {
		t.Fatalf("or children = %d, want 2", len(or.Children))
	}
	and, ok := or.Children[0].(*And)
	if !ok {
		t.Fatalf("expected *And, got %T", or.Children[0])
	}
	if len(and.Children) != 2 {
		t.Errorf("and children = %d, want 2", len(and.Children))
	}
}

func TestParseNotAndParens(t *testing.T) {
	s := testSchema(t)
	node, err := Parse("not (status eq 'closed' or status eq 'archived')", s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	not, ok := node.(*Not)
	if !ok {
		t.Fatalf("expected *Not, got %T", node)
	}
	if _, ok := not.Child.(*Or); !ok {
		t.Errorf("expected *Or child, got %T", not.Child)
	}
}

func TestParseFunctions(t *testing.T) {
	s := testSchema(t)
	for _, in := range []string{
		"contains(name, 'acme')",
		"startswith(name, 'nco')",
		"endswith(name, 'base')",
	} {
		node, err := Parse(in, s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if _, ok := node.(*Compare); !ok {
			t.Errorf("Parse(%q) = %T, want *Compare", in, node)
		}
	}
}

func TestParseInList(t *testing.T) {
	s := testSchema(t)
	node, err := Parse("status in ('open', 'review', 'blocked')", s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cmp := node.(*Compare)
	if cmp.Op != OpIn || len(cmp.Values) != 3 {
		t.Fatalf("unexpected in node: %+v", cmp)
	}
}

func TestParseEmptyInList(t *testing.T) {
	s := testSchema(t)
	node, err := Parse("status in ()", s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cmp := node.(*Compare)
	if cmp.Op != OpIn || len(cmp.Values) != 0 {
		t.Fatalf("unexpected in node: %+v", cmp)
	}
}

func TestParseStringQuoteEscape(t *testing.T) {
	s := testSchema(t)
	node, err := Parse("name eq 'O''Brien'", s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := node.(*Compare).Value.Arg(); got != "O'Brien" {
		t.Errorf("value = %q, want O'Brien", got)
	}
}

func TestParseBlankInputYieldsNoFilter(t *testing.T) {
	s := testSchema(t)
	for _, in := range []string{"", "   ", "\t\n"} {
		node, err := Parse(in, s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if node != nil {
			t.Errorf("Parse(%q) = %v, want nil", in, node)
		}
	}
}

func TestParseCaseInsensitiveFieldsAndKeywords(t *testing.T) {
	s := testSchema(t)
	node, err := Parse("STATUS EQ 'active' AND Priority GT 1", s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	and, ok := node.(*And)
	if !ok {
		t.Fatalf("expected *And, got %T", node)
	}
	if and.Children[0].(*Compare).Field.Name != "status" {
		t.Errorf("field not lowercased: %+v", and.Children[0])
	}
}

func TestParseUnknownField(t *testing.T) {
	s := testSchema(t)
	_, err := Parse("nickname eq 'x'", s)
	if ecode.CodeOf(err) != ecode.CodeUnknownField {
		t.Fatalf("code = %v, want unknown_field (err: %v)", ecode.CodeOf(err), err)
	}
}

func TestParseTypeMismatch(t *testing.T) {
	s := testSchema(t)
	cases := []string{
		"priority eq 'high'",     // string literal against int64
		"archived eq 1",          // number against bool
		"created_at eq 'later'",  // junk against datetime
		"due_date eq '01/02/03'", // wrong date layout
		"id eq 'not-a-uuid'",
		"priority lt null", // null outside eq/ne
	}
	for _, in := range cases {
		_, err := Parse(in, s)
		if ecode.CodeOf(err) != ecode.CodeTypeMismatch {
			t.Errorf("Parse(%q) code = %v, want type_mismatch (err: %v)", in, ecode.CodeOf(err), err)
		}
	}
}

func TestParseOperatorNotSupported(t *testing.T) {
	s := testSchema(t)
	cases := []string{
		"contains(priority, 'x')",
		"startswith(created_at, '2024')",
		"endswith(archived, 'e')",
		"priority in (1, 2)",
	}
	for _, in := range cases {
		_, err := Parse(in, s)
		if ecode.CodeOf(err) != ecode.CodeOperatorNotSupported {
			t.Errorf("Parse(%q) code = %v, want operator_not_supported_for_kind (err: %v)",
				in, ecode.CodeOf(err), err)
		}
	}
}

func TestParseMalformedSyntax(t *testing.T) {
	s := testSchema(t)
	cases := []string{
		"status eq",
		"status 'active'",
		"eq status 'active'",
		"and status eq 'active'",
		"null eq 'active'",
		"contains(eq, 'x')",
		"(status eq 'x'",
		"status eq 'unterminated",
		"status eq 'x' and",
		"status eq 'x' garbage",
		"contains(name 'x')",
		"status ~ 'x'",
	}
	for _, in := range cases {
		_, err := Parse(in, s)
		if ecode.CodeOf(err) != ecode.CodeMalformedSyntax {
			t.Errorf("Parse(%q) code = %v, want malformed_syntax (err: %v)", in, ecode.CodeOf(err), err)
		}
	}
}

func TestParseFieldShadowingKeyword(t *testing.T) {
	// Schema resolution wins over keyword classification in field
	// position, so an entity may declare a field spelled like an
	// operator.
	s, err := NewSchema("x", Field{Name: "le", Kind: KindString})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	node, err := Parse("le eq 'low'", s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if node.(*Compare).Field.Name != "le" {
		t.Errorf("unexpected node: %+v", node)
	}
}

func TestParseNullComparison(t *testing.T) {
	s := testSchema(t)
	node, err := Parse("due_date eq null", s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cmp := node.(*Compare)
	if !cmp.Value.IsNull() {
		t.Errorf("expected null value, got %+v", cmp.Value)
	}
}

func TestParseRangeOnSameField(t *testing.T) {
	s := testSchema(t)
	node, err := Parse("priority ge 1 and priority le 5", s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	and := node.(*And)
	if len(and.Children) != 2 {
		t.Fatalf("and children = %d, want 2", len(and.Children))
	}
}

func TestParseLengthBudget(t *testing.T) {
	s := testSchema(t)
	long := "name eq '" + strings.Repeat("a", 9000) + "'"
	_, err := Parse(long, s)
	if ecode.CodeOf(err) != ecode.CodeMalformedSyntax {
		t.Fatalf("code = %v, want malformed_syntax (err: %v)", ecode.CodeOf(err), err)
	}
}

func TestParseDepthBudget(t *testing.T) {
	s := testSchema(t)
	in := strings.Repeat("(", 80) + "status eq 'x'" + strings.Repeat(")", 80)
	_, err := Parse(in, s)
	if ecode.CodeOf(err) != ecode.CodeMalformedSyntax {
		t.Fatalf("code = %v, want malformed_syntax (err: %v)", ecode.CodeOf(err), err)
	}
}

func TestParseNodeBudget(t *testing.T) {
	s := testSchema(t)
	parts := make([]string, 30)
	for i := range parts {
		parts[i] = "priority eq 1"
	}
	in := strings.Join(parts, " and ")
	limits := DefaultLimits()
	limits.MaxNodes = 10
	_, err := ParseWithLimits(in, s, limits)
	if ecode.CodeOf(err) != ecode.CodeMalformedSyntax {
		t.Fatalf("code = %v, want malformed_syntax (err: %v)", ecode.CodeOf(err), err)
	}
}

func TestSchemaRejectsDuplicateFields(t *testing.T) {
	_, err := NewSchema("x",
		Field{Name: "name", Kind: KindString},
		Field{Name: "NAME", Kind: KindInt64},
	)
	if !ecode.IsInvariant(err) {
		t.Fatalf("expected invariant fault, got %v", err)
	}
}
