package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

//  Expression nodes

// Expr is implemented by every node that produces a value. The set of
// implementations is closed; lowering type-switches over exactly these.
type Expr interface {
	exprNode()
	String() string
}

// NumberLiteral is a floating-point constant.
//
//	x + 1.5
//	    ^^^  NumberLiteral{Value: 1.5}
type NumberLiteral struct {
	Value float64
}

func (*NumberLiteral) exprNode() {}
func (n *NumberLiteral) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// VariableRef is a read of a named variable. The name is resolved at
// lowering time against the enclosing function's parameters, not at parse
// time.
type VariableRef struct {
	Name string
}

func (*VariableRef) exprNode()        {}
func (v *VariableRef) String() string { return v.Name }

// BinaryExpr represents Left Op Right. Op is restricted to the characters
// registered in the parser's precedence table.
type BinaryExpr struct {
	Op    rune
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %c %s)", b.Left, b.Op, b.Right)
}

// CallExpr represents callee(args). The callee name is resolved at lowering
// time against the target module's function table.
type CallExpr struct {
	Callee string
	Args   []Expr
}

func (*CallExpr) exprNode() {}
func (c *CallExpr) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee, strings.Join(parts, ", "))
}

//  Declarations

// AnonName is the name given to the function synthesized around a bare
// top-level expression.
const AnonName = "__anon_expr"

// Prototype is a function signature: its name and its parameter names.
// Parameter-name uniqueness is a caller invariant and is not checked here.
type Prototype struct {
	Name   string
	Params []string
}

func (p *Prototype) String() string {
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(p.Params, " "))
}

// Function pairs a prototype with its body expression. The body's value is
// the function's implicit return.
type Function struct {
	Proto *Prototype
	Body  Expr
}

func (f *Function) String() string {
	return fmt.Sprintf("def %s %s", f.Proto, f.Body)
}
