// nodes.go contains the AST node types themselves. A node either
// produces a value (String, Variable) or performs a binding mutation
// (SetVar, DelVar); there is no separate statement category in this
// grammar the way the teacher's language has Expression vs Stmt.

package ast

// String is a literal source fragment. Numeric is non-nil when the
// fragment's text satisfies the language's numeric lexical form,
// computed once at parse time so the VM never has to re-parse it.
type String struct {
	Text    string
	Numeric *float64
}

func (n String) Accept(v Visitor) any { return v.VisitString(n) }

// Variable is an evaluation of a VarAccess: read the head, apply every
// accessor in order, and produce the final value.
type Variable struct {
	Access VarAccess
}

func (n Variable) Accept(v Visitor) any { return v.VisitVariable(n) }

// SetVar is an assignment: evaluate Value, then either bind it directly
// (Access has no accessors) or walk Access's accessors and write through
// the last one.
type SetVar struct {
	Access VarAccess
	Value  []Node
}

func (n SetVar) Accept(v Visitor) any { return v.VisitSetVar(n) }

// DelVar is a deletion: remove the binding named by Access directly, or
// walk its accessors and delete through the last one.
type DelVar struct {
	Access VarAccess
}

func (n DelVar) Accept(v Visitor) any { return v.VisitDelVar(n) }
