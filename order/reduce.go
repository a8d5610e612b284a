package order

import (
	"fmt"

	"github.com/crillab/gophercsp/csp"
	"github.com/crillab/gophercsp/domain"
	"github.com/golang/glog"
)

// Reduce prepares the problem for the encoding.
// Product literals are expanded into linear case splits, equalities become two
// inequalities, and disequalities a guarded disjunction of two inequalities.
// Every inequality is divided by the gcd of its coefficients. At last, the domain
// of each integer variable is shifted so that its lower bound is 0, the shift
// being recorded in the variable's Offset.
// Calling Reduce on a reduced problem does nothing.
func (e *Encoder) Reduce() error {
	var cls []*csp.Clause
	for _, cl := range e.pb.Clauses {
		res, err := e.reduceClause(cl)
		if err != nil {
			return err
		}
		cls = append(cls, res...)
	}
	e.pb.Clauses = cls
	if _, err := e.pb.Simplify(e.ctx, false); err != nil {
		return fmt.Errorf("could not simplify reduced clauses: %w", err)
	}
	nbShifted := e.shift()
	glog.V(1).Infof("reduction: %d clauses, %d domains shifted", len(e.pb.Clauses), nbShifted)
	e.reduced = true
	return nil
}

// without returns a copy of cl without its i-th arithmetic literal.
func without(cl *csp.Clause, i int) *csp.Clause {
	res := cl.Clone()
	res.ArithLits = append(append([]csp.Literal(nil), cl.ArithLits[:i]...), cl.ArithLits[i+1:]...)
	return res
}

// le returns the literal "s <= 0".
func le(s *csp.LinearSum) *csp.LinearLit {
	return &csp.LinearLit{Sum: s, Op: csp.LE}
}

// reduceClause returns clauses equivalent to cl, made of boolean literals and
// normalized LE literals only.
func (e *Encoder) reduceClause(cl *csp.Clause) ([]*csp.Clause, error) {
	for i, l := range cl.ArithLits {
		var (
			cls []*csp.Clause
			err error
		)
		switch l := l.(type) {
		case *csp.PowerLit:
			return nil, fmt.Errorf("%w: cannot encode %v", csp.ErrUnsupported, l)
		case *csp.ProductLit:
			cls = expandProduct(without(cl, i), l)
		case *csp.LinearLit:
			switch l.Op {
			case csp.EQ:
				c1, c2 := without(cl, i), without(cl, i)
				c1.Add(le(l.Sum))
				c2.Add(le(l.Sum.Mul(-1)))
				cls = []*csp.Clause{c1, c2}
			case csp.NE:
				if cls, err = e.splitNE(without(cl, i), l.Sum); err != nil {
					return nil, err
				}
			default:
				g := l.Sum.CoefGCD()
				if g <= 1 {
					continue
				}
				// a*x + b <= 0 iff (a/g)*x + ceil(b/g) <= 0
				s := l.Sum.AddConst(domain.CeilDiv(l.Sum.B, g)*g - l.Sum.B)
				s.Divide(g)
				c := cl.Clone()
				c.ArithLits[i] = le(s)
				cls = []*csp.Clause{c}
			}
		}
		var res []*csp.Clause
		for _, c := range cls {
			r, err := e.reduceClause(c)
			if err != nil {
				return nil, err
			}
			res = append(res, r...)
		}
		return res, nil
	}
	return []*csp.Clause{cl}, nil
}

// splitNE returns the clauses of "cl or s != 0", that is "cl or s <= -1 or -s <= -1".
// When s has several variables, the second inequality is guarded by a fresh boolean
// so that each clause keeps a single complex literal.
func (e *Encoder) splitNE(cl *csp.Clause, s *csp.LinearSum) ([]*csp.Clause, error) {
	lt, gt := le(s.AddConst(1)), le(s.Mul(-1).AddConst(1))
	if s.Size() <= 1 {
		cl.Add(lt)
		cl.Add(gt)
		return []*csp.Clause{cl}, nil
	}
	p, err := e.pb.NewBoolVar(e.ctx.NextName(csp.AdjustBool), true)
	if err != nil {
		return nil, err
	}
	cl.Add(lt)
	cl.Add(csp.BoolLit{Var: p})
	guard := csp.NewClause(csp.BoolLit{Var: p, Negative: true}, gt)
	guard.Comment = cl.Comment
	return []*csp.Clause{cl, guard}, nil
}

// expandProduct returns the clauses of "cl or z = x*y": for each value k of the
// factor with the smallest domain, u = k implies z - k*w = 0.
func expandProduct(cl *csp.Clause, l *csp.ProductLit) []*csp.Clause {
	u, w := l.X, l.Y
	if w.Domain().Size() < u.Domain().Size() {
		u, w = w, u
	}
	du := u.Domain()
	var res []*csp.Clause
	for _, k := range du.Values() {
		c := cl.Clone()
		if k > du.Lower() { // u <= k-1
			c.Add(le(csp.VarSum(u).AddConst(-k + 1)))
		}
		if k < du.Upper() { // u >= k+1
			c.Add(le(csp.VarSum(u).Mul(-1).AddConst(k + 1)))
		}
		c.Add(csp.NewLinearLit(csp.VarSum(l.Z).Sub(csp.VarSum(w).Mul(k)), csp.EQ))
		res = append(res, c)
	}
	return res
}

// shift translates every domain so that its lower bound is 0, and rewrites the
// linear literals accordingly. It returns the number of shifted variables.
func (e *Encoder) shift() int {
	offsets := make(map[*csp.IntVar]int)
	for _, v := range e.pb.IntVars {
		d := v.Domain()
		if d.IsEmpty() || d.Lower() == 0 {
			continue
		}
		lb := d.Lower()
		offsets[v] = lb
		v.Offset += lb
		v.SetDomain(d.Shift(-lb))
	}
	if len(offsets) == 0 {
		return 0
	}
	for _, cl := range e.pb.Clauses {
		for i, l := range cl.ArithLits {
			if l, ok := l.(*csp.LinearLit); ok {
				cl.ArithLits[i] = &csp.LinearLit{Sum: l.Sum.Shift(offsets), Op: l.Op}
			}
		}
	}
	return len(offsets)
}
