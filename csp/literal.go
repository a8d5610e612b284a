package csp

import (
	"fmt"

	"github.com/crillab/gophercsp/domain"
)

// A Literal is one of BoolLit, *LinearLit, *ProductLit and *PowerLit.
type Literal interface {
	fmt.Stringer
	isLiteral()
}

// A BoolLit is a possibly negated boolean variable.
type BoolLit struct {
	Var      *BoolVar
	Negative bool
}

func (BoolLit) isLiteral() {}

// Negation returns the opposite literal.
func (l BoolLit) Negation() BoolLit { return BoolLit{Var: l.Var, Negative: !l.Negative} }

func (l BoolLit) String() string {
	if l.Negative {
		return "(not " + l.Var.Name + ")"
	}
	return l.Var.Name
}

// Op is the comparison operator of a linear literal.
type Op byte

const (
	// LE means sum <= 0.
	LE Op = iota
	// EQ means sum == 0.
	EQ
	// NE means sum != 0.
	NE
)

func (op Op) String() string {
	switch op {
	case LE:
		return "le"
	case EQ:
		return "eq"
	default:
		return "ne"
	}
}

// A LinearLit compares a linear sum with 0.
type LinearLit struct {
	Sum *LinearSum
	Op  Op
}

func (*LinearLit) isLiteral() {}

// NewLinearLit returns the literal "sum op 0", normalized: for EQ and NE the sum is
// divided by the gcd of its coefficients and constant.
func NewLinearLit(sum *LinearSum, op Op) *LinearLit {
	if op != LE {
		if g := sum.Factor(); g > 1 {
			sum = sum.Clone()
			sum.Divide(g)
		}
	}
	return &LinearLit{Sum: sum, Op: op}
}

func (l *LinearLit) String() string {
	return fmt.Sprintf("(%s %s 0)", l.Op, l.Sum)
}

// A ProductLit states that Z = X*Y.
type ProductLit struct {
	Z, X, Y *IntVar
}

func (*ProductLit) isLiteral() {}

func (l *ProductLit) String() string {
	return fmt.Sprintf("(eq %s (mul %s %s))", l.Z.Name, l.X.Name, l.Y.Name)
}

// A PowerLit states that Z = X**N. It cannot be encoded.
type PowerLit struct {
	Z, X *IntVar
	N    int
}

func (*PowerLit) isLiteral() {}

func (l *PowerLit) String() string {
	return fmt.Sprintf("(eq %s (pow %s %d))", l.Z.Name, l.X.Name, l.N)
}

// IsSimple is true if l can be encoded as a single SAT literal: boolean literals
// and linear comparisons of a single variable with a constant.
func IsSimple(l Literal) bool {
	switch l := l.(type) {
	case BoolLit:
		return true
	case *LinearLit:
		return l.Op == LE && l.Sum.Size() <= 1
	default:
		return false
	}
}

// LiteralVars returns the integer variables appearing in l.
func LiteralVars(l Literal) []*IntVar {
	switch l := l.(type) {
	case *LinearLit:
		return l.Sum.Vars()
	case *ProductLit:
		return []*IntVar{l.Z, l.X, l.Y}
	case *PowerLit:
		return []*IntVar{l.Z, l.X}
	default:
		return nil
	}
}

// IsValid is true if l holds for every value of its variables.
func IsValid(l Literal) bool {
	switch l := l.(type) {
	case *LinearLit:
		d := l.Sum.Domain()
		if d.IsEmpty() {
			return false
		}
		switch l.Op {
		case LE:
			return d.Upper() <= 0
		case EQ:
			return d.Size() == 1 && d.Lower() == 0
		default:
			return !d.Contains(0)
		}
	case *ProductLit:
		x, y, z := l.X.dom, l.Y.dom, l.Z.dom
		return x.Size() == 1 && y.Size() == 1 && z.Size() == 1 && z.Lower() == x.Lower()*y.Lower()
	default:
		return false
	}
}

// IsUnsatisfiable is true if l holds for no value of its variables.
func IsUnsatisfiable(l Literal) bool {
	switch l := l.(type) {
	case *LinearLit:
		d := l.Sum.Domain()
		if d.IsEmpty() {
			return true
		}
		switch l.Op {
		case LE:
			return d.Lower() > 0
		case EQ:
			return !d.Contains(0)
		default:
			return d.Size() == 1 && d.Lower() == 0
		}
	case *ProductLit:
		return l.Z.dom.Cap(l.X.dom.Mul(l.Y.dom)).IsEmpty()
	default:
		return false
	}
}

// bound returns the bounds that l imposes on v, clipped to its current domain.
// ok is false when l does not restrict v.
func bound(l Literal, v *IntVar) (lb, ub int, ok bool) {
	lb, ub = v.dom.Lower(), v.dom.Upper()
	switch l := l.(type) {
	case *LinearLit:
		a := l.Sum.Coef(v)
		if a == 0 || l.Op == NE {
			return lb, ub, false
		}
		rest := l.Sum.DomainExcept(v)
		if rest.IsEmpty() {
			return 1, 0, true
		}
		// a*v + rest <= 0
		if a > 0 {
			ub = min(ub, domain.FloorDiv(-rest.Lower(), a))
		} else {
			lb = max(lb, domain.CeilDiv(-rest.Lower(), a))
		}
		if l.Op == EQ { // and a*v + rest >= 0
			if a > 0 {
				lb = max(lb, domain.CeilDiv(-rest.Upper(), a))
			} else {
				ub = min(ub, domain.FloorDiv(-rest.Upper(), a))
			}
		}
		return lb, ub, true
	case *ProductLit:
		var d *domain.Domain
		switch v {
		case l.Z:
			d = l.X.dom.Mul(l.Y.dom)
		case l.X:
			if l.Y.dom.Contains(0) {
				return lb, ub, false
			}
			d = l.Z.dom.Div(l.Y.dom)
		case l.Y:
			if l.X.dom.Contains(0) {
				return lb, ub, false
			}
			d = l.Z.dom.Div(l.X.dom)
		default:
			return lb, ub, false
		}
		if d.IsEmpty() {
			return 1, 0, true
		}
		return max(lb, d.Lower()), min(ub, d.Upper()), true
	default:
		return lb, ub, false
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
