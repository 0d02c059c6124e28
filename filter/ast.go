package filter

// Node is one node of a validated filter tree. Trees are built bottom-up
// by the parser and never mutated afterwards.
type Node interface {
	isNode()
}

// Compare is a leaf comparison of one field against a literal, or for
// OpIn against a list of literals.
type Compare struct {
	Field  Field
	Op     Operator
	Value  Value
	Values []Value // OpIn only
}

// And joins two or more children; all must hold.
type And struct {
	Children []Node
}

// Or joins two or more children; at least one must hold.
type Or struct {
	Children []Node
}

// Not negates its child.
type Not struct {
	Child Node
}

func (*Compare) isNode() {}
func (*And) isNode()     {}
func (*Or) isNode()      {}
func (*Not) isNode()     {}
