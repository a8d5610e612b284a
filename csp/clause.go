package csp

import (
	"strings"

	"github.com/samber/lo"
)

// A Clause is a disjunction of literals.
// Boolean literals and arithmetic literals are stored separately.
type Clause struct {
	BoolLits  []BoolLit
	ArithLits []Literal
	Comment   string
}

// NewClause returns a clause made of the given literals.
func NewClause(lits ...Literal) *Clause {
	c := &Clause{}
	for _, l := range lits {
		c.Add(l)
	}
	return c
}

// Add appends l to the clause.
func (c *Clause) Add(l Literal) {
	if b, ok := l.(BoolLit); ok {
		c.BoolLits = append(c.BoolLits, b)
	} else {
		c.ArithLits = append(c.ArithLits, l)
	}
}

// AddAll appends all the literals of d to c.
func (c *Clause) AddAll(d *Clause) {
	c.BoolLits = append(c.BoolLits, d.BoolLits...)
	c.ArithLits = append(c.ArithLits, d.ArithLits...)
}

// Clone returns a copy of c, sharing its literals.
func (c *Clause) Clone() *Clause {
	return &Clause{
		BoolLits:  append([]BoolLit(nil), c.BoolLits...),
		ArithLits: append([]Literal(nil), c.ArithLits...),
		Comment:   c.Comment,
	}
}

// Size returns the number of literals in c.
func (c *Clause) Size() int { return len(c.BoolLits) + len(c.ArithLits) }

// Literals returns all the literals of c, boolean ones first.
func (c *Clause) Literals() []Literal {
	res := make([]Literal, 0, c.Size())
	for _, l := range c.BoolLits {
		res = append(res, l)
	}
	return append(res, c.ArithLits...)
}

// ComplexCount returns the number of literals in c that are not simple.
func (c *Clause) ComplexCount() int {
	return lo.CountBy(c.ArithLits, func(l Literal) bool { return !IsSimple(l) })
}

// IsSimple is true iff c has at most one complex literal.
func (c *Clause) IsSimple() bool { return c.ComplexCount() <= 1 }

// IsValid is true if c is satisfied whatever the values of its variables.
func (c *Clause) IsValid() bool {
	for i, l := range c.BoolLits {
		for _, l2 := range c.BoolLits[i+1:] {
			if l.Var == l2.Var && l.Negative != l2.Negative {
				return true
			}
		}
	}
	return lo.SomeBy(c.ArithLits, IsValid)
}

// IntVars returns the integer variables appearing in c, without duplicates.
func (c *Clause) IntVars() []*IntVar {
	var res []*IntVar
	for _, l := range c.ArithLits {
		res = append(res, LiteralVars(l)...)
	}
	return lo.Uniq(res)
}

// removeUnsatisfiable removes the arithmetic literals that can never hold and
// returns how many were removed.
func (c *Clause) removeUnsatisfiable() int {
	n := len(c.ArithLits)
	c.ArithLits = lo.Reject(c.ArithLits, func(l Literal, _ int) bool { return IsUnsatisfiable(l) })
	return n - len(c.ArithLits)
}

func (c *Clause) String() string {
	lits := lo.Map(c.Literals(), func(l Literal, _ int) string { return l.String() })
	switch len(lits) {
	case 0:
		return "false"
	case 1:
		return lits[0]
	}
	return "(or " + strings.Join(lits, " ") + ")"
}
