package csp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crillab/gophercsp/domain"
)

var (
	// ErrDuplicate is returned when a name is declared twice.
	ErrDuplicate = errors.New("duplicate declaration")
	// ErrUnsupported is returned for constructs that cannot be compiled.
	ErrUnsupported = errors.New("unsupported construct")
)

// Objective is the optimization direction of a problem.
type Objective byte

const (
	// None means the problem is a pure satisfaction problem.
	None Objective = iota
	// Minimize means the objective variable should be minimized.
	Minimize
	// Maximize means the objective variable should be maximized.
	Maximize
)

func (o Objective) String() string {
	switch o {
	case Minimize:
		return "minimize"
	case Maximize:
		return "maximize"
	default:
		return "none"
	}
}

// A CSP is a constraint satisfaction problem: variables, clauses and relations.
type CSP struct {
	IntVars      []*IntVar
	BoolVars     []*BoolVar
	Clauses      []*Clause
	Relations    []*Relation
	Objective    Objective
	ObjectiveVar *IntVar
	ints         map[string]*IntVar
	bools        map[string]*BoolVar
	rels         map[string]*Relation
	nbVars       int
}

// New returns an empty CSP.
func New() *CSP {
	return &CSP{
		ints:  make(map[string]*IntVar),
		bools: make(map[string]*BoolVar),
		rels:  make(map[string]*Relation),
	}
}

func (c *CSP) checkName(name string) error {
	_, ok1 := c.ints[name]
	_, ok2 := c.bools[name]
	if ok1 || ok2 {
		return fmt.Errorf("%w: variable %q", ErrDuplicate, name)
	}
	return nil
}

// AddIntVar adds v to the problem.
func (c *CSP) AddIntVar(v *IntVar) error {
	if err := c.checkName(v.Name); err != nil {
		return err
	}
	v.index = c.nbVars
	c.nbVars++
	c.ints[v.Name] = v
	c.IntVars = append(c.IntVars, v)
	return nil
}

// NewIntVar creates a variable, adds it to the problem and returns it.
func (c *CSP) NewIntVar(name string, dom *domain.Domain, aux bool) (*IntVar, error) {
	v := NewIntVar(name, dom)
	v.Aux = aux
	if err := c.AddIntVar(v); err != nil {
		return nil, err
	}
	return v, nil
}

// AddBoolVar adds v to the problem.
func (c *CSP) AddBoolVar(v *BoolVar) error {
	if err := c.checkName(v.Name); err != nil {
		return err
	}
	v.index = c.nbVars
	c.nbVars++
	c.bools[v.Name] = v
	c.BoolVars = append(c.BoolVars, v)
	return nil
}

// NewBoolVar creates a boolean variable, adds it to the problem and returns it.
func (c *CSP) NewBoolVar(name string, aux bool) (*BoolVar, error) {
	v := NewBoolVar(name)
	v.Aux = aux
	if err := c.AddBoolVar(v); err != nil {
		return nil, err
	}
	return v, nil
}

// IntVar returns the integer variable with the given name, or nil.
func (c *CSP) IntVar(name string) *IntVar { return c.ints[name] }

// BoolVar returns the boolean variable with the given name, or nil.
func (c *CSP) BoolVar(name string) *BoolVar { return c.bools[name] }

// AddRelation registers a relation.
func (c *CSP) AddRelation(r *Relation) error {
	if _, ok := c.rels[r.Name]; ok {
		return fmt.Errorf("%w: relation %q", ErrDuplicate, r.Name)
	}
	c.rels[r.Name] = r
	c.Relations = append(c.Relations, r)
	return nil
}

// Relation returns the relation with the given name, or nil.
func (c *CSP) Relation(name string) *Relation { return c.rels[name] }

// AddClause adds a clause to the problem.
func (c *CSP) AddClause(cl *Clause) {
	c.Clauses = append(c.Clauses, cl)
}

// SetObjective sets the objective of the problem.
func (c *CSP) SetObjective(dir Objective, v *IntVar) {
	c.Objective = dir
	c.ObjectiveVar = v
}

// IsUnsatisfiable is true if some variable has an empty domain or some clause is empty.
func (c *CSP) IsUnsatisfiable() bool {
	for _, v := range c.IntVars {
		if v.IsUnsatisfiable() {
			return true
		}
	}
	for _, cl := range c.Clauses {
		if cl.Size() == 0 {
			return true
		}
	}
	return false
}

// Stats returns a one-line summary of the size of the problem.
func (c *CSP) Stats() string {
	nbAux := 0
	size := 0
	for _, v := range c.IntVars {
		if v.Aux {
			nbAux++
		}
		size += v.dom.Size()
	}
	return fmt.Sprintf("%d integer variables (%d aux, total size %d), %d boolean variables, %d clauses",
		len(c.IntVars), nbAux, size, len(c.BoolVars), len(c.Clauses))
}

// String returns the problem in the input language.
func (c *CSP) String() string {
	var sb strings.Builder
	for _, v := range c.IntVars {
		d := v.dom
		switch {
		case d.IsEmpty():
			fmt.Fprintf(&sb, "; %s has an empty domain\n", v.Name)
		case d.IsInterval():
			fmt.Fprintf(&sb, "(int %s %d %d)\n", v.Name, d.Lower(), d.Upper())
		default:
			sb.WriteString("(int " + v.Name + " (")
			for i, r := range d.Ranges() {
				if i > 0 {
					sb.WriteByte(' ')
				}
				if r[0] == r[1] {
					fmt.Fprintf(&sb, "%d", r[0])
				} else {
					fmt.Fprintf(&sb, "(%d %d)", r[0], r[1])
				}
			}
			sb.WriteString("))\n")
		}
	}
	for _, v := range c.BoolVars {
		fmt.Fprintf(&sb, "(bool %s)\n", v.Name)
	}
	if c.Objective != None {
		fmt.Fprintf(&sb, "(objective %s %s)\n", c.Objective, c.ObjectiveVar.Name)
	}
	for _, cl := range c.Clauses {
		if cl.Comment != "" {
			fmt.Fprintf(&sb, "; %s\n", cl.Comment)
		}
		sb.WriteString(cl.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
