package filter

import (
	"strings"

	"github.com/ncobase/nquery/ecode"
)

// Limits bound the parser's appetite for untrusted input. Every limit is
// enforced before the corresponding allocation, so a hostile filter is
// rejected cheaply instead of after building a huge tree.
type Limits struct {
	MaxLength int // bytes of filter text
	MaxNodes  int // total tree nodes
	MaxDepth  int // nesting depth (parentheses and not)
}

// DefaultLimits returns the stock parser budgets.
func DefaultLimits() Limits {
	return Limits{
		MaxLength: 8192,
		MaxNodes:  2000,
		MaxDepth:  64,
	}
}

// Parse parses a filter string against an entity schema using the
// default limits. An empty or blank input yields a nil tree: no filter.
func Parse(input string, schema *Schema) (Node, error) {
	return ParseWithLimits(input, schema, DefaultLimits())
}

// ParseWithLimits parses and validates a filter string in a single pass.
// Field existence, operator legality and literal coercion are all
// checked during the parse; any failure aborts the whole parse and no
// partial tree is ever returned.
func ParseWithLimits(input string, schema *Schema, limits Limits) (Node, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	if limits.MaxLength > 0 && len(input) > limits.MaxLength {
		return nil, ecode.Validation(ecode.CodeMalformedSyntax,
			"filter exceeds maximum length of %d bytes", limits.MaxLength)
	}
	toks, err := lexFilter(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, schema: schema, limits: limits}
	node, err := p.parseOr(0)
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.syntaxErrorf("unexpected %q after expression", p.peek().text)
	}
	return node, nil
}

// Token kinds of the filter lexer.
type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokLParen
	tokRParen
	tokComma
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lexFilter(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case c == '\'':
			start := i
			i++
			var sb strings.Builder
			closed := false
			for i < len(input) {
				if input[i] == '\'' {
					// '' is an escaped quote inside the literal
					if i+1 < len(input) && input[i+1] == '\'' {
						sb.WriteByte('\'')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				sb.WriteByte(input[i])
				i++
			}
			if !closed {
				return nil, ecode.Validation(ecode.CodeMalformedSyntax,
					"unterminated string literal at position %d", start)
			}
			toks = append(toks, token{tokString, sb.String(), start})
		case c == '-' || (c >= '0' && c <= '9'):
			start := i
			i++
			for i < len(input) && isNumberByte(input[i]) {
				i++
			}
			toks = append(toks, token{tokNumber, input[start:i], start})
		case isIdentByte(c):
			start := i
			for i < len(input) && isIdentByte(input[i]) {
				i++
			}
			toks = append(toks, token{tokIdent, input[start:i], start})
		default:
			return nil, ecode.Validation(ecode.CodeMalformedSyntax,
				"unexpected character %q at position %d", string(c), i)
		}
	}
	toks = append(toks, token{tokEOF, "", len(input)})
	return toks, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isNumberByte(c byte) bool {
	return c == '.' || c == '+' || c == '-' || c == 'e' || c == 'E' ||
		(c >= '0' && c <= '9')
}

type parser struct {
	toks   []token
	pos    int
	nodes  int
	schema *Schema
	limits Limits
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) atEnd() bool { return p.peek().kind == tokEOF }

// keyword reports whether the current token is the given bare word.
func (p *parser) keyword(word string) bool {
	t := p.peek()
	return t.kind == tokIdent && strings.EqualFold(t.text, word)
}

func (p *parser) syntaxErrorf(format string, args ...any) error {
	return ecode.Validation(ecode.CodeMalformedSyntax, format, args...)
}

// addNode charges one node against the budget.
func (p *parser) addNode() error {
	p.nodes++
	if p.limits.MaxNodes > 0 && p.nodes > p.limits.MaxNodes {
		return ecode.Validation(ecode.CodeMalformedSyntax,
			"filter exceeds maximum of %d nodes", p.limits.MaxNodes)
	}
	return nil
}

func (p *parser) checkDepth(depth int) error {
	if p.limits.MaxDepth > 0 && depth > p.limits.MaxDepth {
		return ecode.Validation(ecode.CodeMalformedSyntax,
			"filter exceeds maximum nesting depth of %d", p.limits.MaxDepth)
	}
	return nil
}

func (p *parser) parseOr(depth int) (Node, error) {
	left, err := p.parseAnd(depth)
	if err != nil {
		return nil, err
	}
	if !p.keyword("or") {
		return left, nil
	}
	children := []Node{left}
	for p.keyword("or") {
		p.next()
		right, err := p.parseAnd(depth)
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if err := p.addNode(); err != nil {
		return nil, err
	}
	return &Or{Children: children}, nil
}

func (p *parser) parseAnd(depth int) (Node, error) {
	left, err := p.parseUnary(depth)
	if err != nil {
		return nil, err
	}
	if !p.keyword("and") {
		return left, nil
	}
	children := []Node{left}
	for p.keyword("and") {
		p.next()
		right, err := p.parseUnary(depth)
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if err := p.addNode(); err != nil {
		return nil, err
	}
	return &And{Children: children}, nil
}

func (p *parser) parseUnary(depth int) (Node, error) {
	if p.keyword("not") {
		if err := p.checkDepth(depth + 1); err != nil {
			return nil, err
		}
		p.next()
		child, err := p.parseUnary(depth + 1)
		if err != nil {
			return nil, err
		}
		if err := p.addNode(); err != nil {
			return nil, err
		}
		return &Not{Child: child}, nil
	}
	return p.parsePrimary(depth)
}

func (p *parser) parsePrimary(depth int) (Node, error) {
	t := p.peek()
	switch t.kind {
	case tokLParen:
		if err := p.checkDepth(depth + 1); err != nil {
			return nil, err
		}
		p.next()
		inner, err := p.parseOr(depth + 1)
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, p.syntaxErrorf("expected ')' at position %d", p.peek().pos)
		}
		p.next()
		return inner, nil
	case tokIdent:
		if _, isFn := functionKeywords[strings.ToLower(t.text)]; isFn {
			return p.parseFunction()
		}
		return p.parseComparison()
	default:
		return nil, p.syntaxErrorf("expected a field, function or '(' at position %d", t.pos)
	}
}

// parseFunction parses contains/startswith/endswith(field, literal).
func (p *parser) parseFunction() (Node, error) {
	name := p.next()
	op := functionKeywords[strings.ToLower(name.text)]
	if p.peek().kind != tokLParen {
		return nil, p.syntaxErrorf("expected '(' after %s", strings.ToLower(name.text))
	}
	p.next()
	fieldTok := p.next()
	if fieldTok.kind != tokIdent {
		return nil, p.syntaxErrorf("expected a field name at position %d", fieldTok.pos)
	}
	field, err := p.resolveField(fieldTok)
	if err != nil {
		return nil, err
	}
	if !op.SupportedBy(field.Kind) {
		return nil, p.operatorError(op, field)
	}
	if p.peek().kind != tokComma {
		return nil, p.syntaxErrorf("expected ',' at position %d", p.peek().pos)
	}
	p.next()
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if lit.isNull {
		return nil, ecode.Validation(ecode.CodeTypeMismatch,
			"%s does not accept null", op)
	}
	val, err := coerce(lit, field.Name, field.Kind)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokRParen {
		return nil, p.syntaxErrorf("expected ')' at position %d", p.peek().pos)
	}
	p.next()
	if err := p.addNode(); err != nil {
		return nil, err
	}
	return &Compare{Field: field, Op: op, Value: val}, nil
}

// parseComparison parses "field op literal" and "field in (list)".
func (p *parser) parseComparison() (Node, error) {
	fieldTok := p.next()
	field, err := p.resolveField(fieldTok)
	if err != nil {
		return nil, err
	}
	opTok := p.peek()
	if opTok.kind != tokIdent {
		return nil, p.syntaxErrorf("expected an operator after %q", field.Name)
	}
	word := strings.ToLower(opTok.text)
	if word == "in" {
		p.next()
		return p.parseIn(field)
	}
	op, ok := comparisonKeywords[word]
	if !ok {
		return nil, p.syntaxErrorf("unknown operator %q", opTok.text)
	}
	p.next()
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if lit.isNull && !op.allowsNull() {
		return nil, ecode.Validation(ecode.CodeTypeMismatch,
			"null is only comparable with eq and ne, not %s", op)
	}
	val, err := coerce(lit, field.Name, field.Kind)
	if err != nil {
		return nil, err
	}
	if err := p.addNode(); err != nil {
		return nil, err
	}
	return &Compare{Field: field, Op: op, Value: val}, nil
}

// parseIn parses the parenthesized literal list of an in comparison.
// Literals only; each element is coerced to the field kind.
func (p *parser) parseIn(field Field) (Node, error) {
	if !OpIn.SupportedBy(field.Kind) {
		return nil, p.operatorError(OpIn, field)
	}
	if p.peek().kind != tokLParen {
		return nil, p.syntaxErrorf("expected '(' after in")
	}
	p.next()
	var values []Value
	if p.peek().kind != tokRParen {
		for {
			lit, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			if lit.isNull {
				return nil, ecode.Validation(ecode.CodeTypeMismatch,
					"in lists do not accept null")
			}
			val, err := coerce(lit, field.Name, field.Kind)
			if err != nil {
				return nil, err
			}
			values = append(values, val)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if p.peek().kind != tokRParen {
		return nil, p.syntaxErrorf("expected ')' at position %d", p.peek().pos)
	}
	p.next()
	if err := p.addNode(); err != nil {
		return nil, err
	}
	return &Compare{Field: field, Op: OpIn, Values: values}, nil
}

func (p *parser) parseLiteral() (literal, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return literal{raw: t.text, isString: true}, nil
	case tokNumber:
		return literal{raw: t.text, isNumber: true}, nil
	case tokIdent:
		switch strings.ToLower(t.text) {
		case "true":
			return literal{raw: t.text, isBool: true, boolVal: true}, nil
		case "false":
			return literal{raw: t.text, isBool: true}, nil
		case "null":
			return literal{raw: t.text, isNull: true}, nil
		}
		return literal{}, p.syntaxErrorf("expected a literal, got %q at position %d", t.text, t.pos)
	default:
		return literal{}, p.syntaxErrorf("expected a literal at position %d", t.pos)
	}
}

// resolveField resolves a token in field position. A reserved keyword
// that is not also a schema field is a syntax error, not an unknown
// field: "eq status 'active'" is a misplaced operator, not a lookup of
// a field named eq.
func (p *parser) resolveField(t token) (Field, error) {
	field, err := p.schema.Resolve(t.text)
	if err != nil {
		if isReservedWord(t.text) {
			return Field{}, p.syntaxErrorf("expected a field name, got keyword %q at position %d",
				t.text, t.pos)
		}
		return Field{}, err
	}
	return field, nil
}

func isReservedWord(word string) bool {
	w := strings.ToLower(word)
	if _, ok := comparisonKeywords[w]; ok {
		return true
	}
	if _, ok := functionKeywords[w]; ok {
		return true
	}
	switch w {
	case "and", "or", "not", "in", "null", "true", "false":
		return true
	}
	return false
}

func (p *parser) operatorError(op Operator, field Field) error {
	return ecode.Validation(ecode.CodeOperatorNotSupported,
		"%s is not supported on %s field %q", op, field.Kind, field.Name)
}
