package csp

import (
	"fmt"
	"strings"

	"github.com/crillab/gophercsp/domain"
)

// A Relation is an extensional constraint: the list of tuples that are allowed
// (supports) or forbidden (conflicts).
type Relation struct {
	Name      string
	Arity     int
	Conflicts bool // If true, tuples are the forbidden ones
	tuples    map[string]bool
}

// NewRelation returns a relation over the given tuples. All tuples must have the given arity.
func NewRelation(name string, arity int, conflicts bool, tuples [][]int) (*Relation, error) {
	if arity <= 0 {
		return nil, fmt.Errorf("relation %s: invalid arity %d", name, arity)
	}
	r := &Relation{Name: name, Arity: arity, Conflicts: conflicts, tuples: make(map[string]bool, len(tuples))}
	for _, t := range tuples {
		if len(t) != arity {
			return nil, fmt.Errorf("relation %s: tuple %v should have %d values", name, t, arity)
		}
		r.tuples[tupleKey(t)] = true
	}
	return r, nil
}

func tupleKey(t []int) string {
	var sb strings.Builder
	for i, v := range t {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprint(&sb, v)
	}
	return sb.String()
}

// Negation returns the relation holding exactly when r does not.
func (r *Relation) Negation() *Relation {
	return &Relation{Name: r.Name, Arity: r.Arity, Conflicts: !r.Conflicts, tuples: r.tuples}
}

// Size returns the number of tuples of r.
func (r *Relation) Size() int { return len(r.tuples) }

// Contains is true iff t is one of the listed tuples.
func (r *Relation) Contains(t []int) bool { return r.tuples[tupleKey(t)] }

// Forbidden is true iff the relation rejects t.
func (r *Relation) Forbidden(t []int) bool {
	return r.Contains(t) == r.Conflicts
}

// A Range is an interval of values [Lo, Hi].
type Range struct {
	Lo, Hi int
}

// A Brick is a hyper-rectangle: one range per dimension.
type Brick []Range

func (b Brick) String() string {
	parts := make([]string, len(b))
	for i, r := range b {
		parts[i] = fmt.Sprintf("%d..%d", r.Lo, r.Hi)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Contains is true iff the point p is inside b.
func (b Brick) Contains(p []int) bool {
	for i, r := range b {
		if p[i] < r.Lo || p[i] > r.Hi {
			return false
		}
	}
	return true
}

// Bricks returns a set of bricks covering exactly the forbidden points of the
// Cartesian product of the given domains. Ranges are expressed on domain values:
// a range [lo, hi] covers all the values of the domain between lo and hi.
func (r *Relation) Bricks(doms []*domain.Domain) []Brick {
	values := make([][]int, len(doms))
	for i, d := range doms {
		values[i] = d.Values()
		if len(values[i]) == 0 {
			return nil
		}
	}
	point := make([]int, r.Arity)
	return r.bricks(values, point, 0, values[0])
}

// bricks computes the bricks of dimensions i.. when the dimensions before i are
// fixed in point, and dimension i ranges over vals.
func (r *Relation) bricks(values [][]int, point []int, i int, vals []int) []Brick {
	if i == r.Arity-1 {
		var res []Brick
		start := -1
		for j, v := range vals {
			point[i] = v
			if r.Forbidden(point) {
				if start < 0 {
					start = j
				}
			} else if start >= 0 {
				res = append(res, Brick{{vals[start], vals[j-1]}})
				start = -1
			}
		}
		if start >= 0 {
			res = append(res, Brick{{vals[start], vals[len(vals)-1]}})
		}
		return res
	}
	if len(vals) == 1 {
		point[i] = vals[0]
		sub := r.bricks(values, point, i+1, values[i+1])
		res := make([]Brick, len(sub))
		for j, b := range sub {
			res[j] = append(Brick{{vals[0], vals[0]}}, b...)
		}
		return res
	}
	mid := len(vals) / 2
	left := r.bricks(values, point, i, vals[:mid])
	right := r.bricks(values, point, i, vals[mid:])
	return mergeBricks(left, right, vals[mid-1], vals[mid])
}

// mergeBricks joins the bricks of left ending at last with the bricks of right
// starting at first when their other ranges are identical.
func mergeBricks(left, right []Brick, last, first int) []Brick {
	open := make(map[string][]int)
	for j, b := range left {
		if b[0].Hi == last {
			k := b[1:].String()
			open[k] = append(open[k], j)
		}
	}
	res := append([]Brick(nil), left...)
	for _, b := range right {
		if b[0].Lo == first {
			k := b[1:].String()
			if js := open[k]; len(js) > 0 {
				j := js[0]
				open[k] = js[1:]
				merged := append(Brick{{res[j][0].Lo, b[0].Hi}}, b[1:]...)
				res[j] = merged
				continue
			}
		}
		res = append(res, b)
	}
	return res
}

// Clauses returns the clauses forbidding each brick of r over the given variables.
// The extra literals are added to each clause.
func (r *Relation) Clauses(args []*IntVar, extra ...Literal) ([]*Clause, error) {
	if len(args) != r.Arity {
		return nil, fmt.Errorf("relation %s expects %d arguments, got %d", r.Name, r.Arity, len(args))
	}
	doms := make([]*domain.Domain, len(args))
	for i, v := range args {
		doms[i] = v.dom
	}
	var res []*Clause
	for _, b := range r.Bricks(doms) {
		cl := NewClause(extra...)
		for i, rg := range b {
			v := args[i]
			if rg.Lo > v.dom.Lower() { // v <= lo-1
				s := VarSum(v).AddConst(-(rg.Lo - 1))
				cl.Add(&LinearLit{Sum: s, Op: LE})
			}
			if rg.Hi < v.dom.Upper() { // v >= hi+1
				s := VarSum(v).Mul(-1).AddConst(rg.Hi + 1)
				cl.Add(&LinearLit{Sum: s, Op: LE})
			}
		}
		cl.Comment = fmt.Sprintf("%s %v", r.Name, b)
		res = append(res, cl)
	}
	return res, nil
}
