package csp

import "github.com/golang/glog"

// Simplify rewrites every clause with more than one complex literal so that at most
// one remains: each excess literal L is replaced by a fresh boolean p, and the clause
// (not p or L) is added. When all is true, complex literals are replaced even when
// they are alone in their clause, as long as the clause has other literals.
// Simplify returns the number of guards it introduced.
func (c *CSP) Simplify(ctx *Context, all bool) (int, error) {
	nbGuards := 0
	n := len(c.Clauses)
	for i := 0; i < n; i++ {
		cl := c.Clauses[i]
		keep := 1
		if all && cl.Size() > 1 {
			keep = 0
		}
		if cl.ComplexCount() <= keep {
			continue
		}
		var lits []Literal
		for _, l := range cl.ArithLits {
			if IsSimple(l) || keep > 0 {
				if !IsSimple(l) {
					keep--
				}
				lits = append(lits, l)
				continue
			}
			p, err := c.NewBoolVar(ctx.NextName(SimplifyBool), true)
			if err != nil {
				return nbGuards, err
			}
			nbGuards++
			cl.BoolLits = append(cl.BoolLits, BoolLit{Var: p})
			c.AddClause(NewClause(BoolLit{Var: p, Negative: true}, l))
		}
		cl.ArithLits = lits
	}
	if nbGuards > 0 {
		glog.V(1).Infof("simplification: %d guards introduced", nbGuards)
	}
	return nbGuards, nil
}
