package csp

import (
	"github.com/golang/glog"
	"github.com/samber/lo"
)

// clauseBound returns the bounds a clause imposes on v: the union of the bounds
// imposed by each of its literals. ok is false if one of the literals does not
// restrict v, in which case nothing can be deduced.
func clauseBound(cl *Clause, v *IntVar) (lb, ub int, ok bool) {
	lb, ub = v.dom.Upper()+1, v.dom.Lower()-1
	for _, l := range cl.ArithLits {
		llb, lub, lok := bound(l, v)
		if !lok {
			return 0, 0, false
		}
		if llb > lub {
			continue // l cannot hold
		}
		lb, ub = min(lb, llb), max(ub, lub)
	}
	return lb, ub, true
}

// Propagate tightens variable domains from the clauses until a fixpoint is reached.
// Unsatisfiable literals are removed from the clauses, and valid clauses are removed
// from the problem. Use IsUnsatisfiable afterwards to know whether a contradiction
// was found.
func (c *CSP) Propagate() {
	for _, v := range c.IntVars {
		v.modified = true
	}
	for round := 1; ; round++ {
		touched := make(map[*IntVar]bool)
		for _, v := range c.IntVars {
			if v.modified {
				touched[v] = true
				v.modified = false
			}
		}
		if len(touched) == 0 {
			break
		}
		nbValues, nbLits := 0, 0
		for _, cl := range c.Clauses {
			vars := cl.IntVars()
			if !lo.SomeBy(vars, func(v *IntVar) bool { return touched[v] }) {
				continue
			}
			nbLits += cl.removeUnsatisfiable()
			if cl.Size() == 0 {
				glog.V(1).Infof("propagation: clause became empty")
				return
			}
			if len(cl.BoolLits) > 0 {
				continue
			}
			for _, v := range vars {
				lb, ub, ok := clauseBound(cl, v)
				if !ok {
					continue
				}
				nbValues += v.Bound(lb, ub)
				if v.IsUnsatisfiable() {
					glog.V(1).Infof("propagation: domain of %s became empty", v.Name)
					return
				}
			}
		}
		glog.V(2).Infof("propagation round %d: %d values and %d literals removed", round, nbValues, nbLits)
		if nbValues == 0 && nbLits == 0 {
			break
		}
	}
	n := len(c.Clauses)
	c.Clauses = lo.Reject(c.Clauses, func(cl *Clause, _ int) bool { return cl.IsValid() })
	glog.V(1).Infof("propagation: %d valid clauses removed", n-len(c.Clauses))
}
