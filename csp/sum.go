package csp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crillab/gophercsp/domain"
)

// A LinearSum is an expression of the form a1*x1 + ... + an*xn + B.
// Coefficients are never zero.
type LinearSum struct {
	B     int
	coefs map[*IntVar]int
	vars  []*IntVar // Sorted by creation rank
	dom   *domain.Domain
	stamp int // Sum of the versions of vars when dom was computed
}

// NewLinearSum returns the constant sum b.
func NewLinearSum(b int) *LinearSum {
	return &LinearSum{B: b, coefs: make(map[*IntVar]int)}
}

// VarSum returns the sum 1*v.
func VarSum(v *IntVar) *LinearSum {
	s := NewLinearSum(0)
	s.SetCoef(v, 1)
	return s
}

// Clone returns a copy of s.
func (s *LinearSum) Clone() *LinearSum {
	res := NewLinearSum(s.B)
	for _, v := range s.vars {
		res.coefs[v] = s.coefs[v]
	}
	res.vars = append([]*IntVar(nil), s.vars...)
	return res
}

// Size returns the number of variables in s.
func (s *LinearSum) Size() int { return len(s.vars) }

// IsConstant is true iff s has no variable.
func (s *LinearSum) IsConstant() bool { return len(s.vars) == 0 }

// IsVar returns v if s is exactly 1*v + 0.
func (s *LinearSum) IsVar() (*IntVar, bool) {
	if len(s.vars) == 1 && s.B == 0 && s.coefs[s.vars[0]] == 1 {
		return s.vars[0], true
	}
	return nil, false
}

// Vars returns the variables of s, in a deterministic order.
// The returned slice must not be modified.
func (s *LinearSum) Vars() []*IntVar { return s.vars }

// Coef returns the coefficient of v in s, 0 if v does not appear.
func (s *LinearSum) Coef(v *IntVar) int { return s.coefs[v] }

// SetCoef sets the coefficient of v. A zero coefficient removes v from s.
func (s *LinearSum) SetCoef(v *IntVar, a int) {
	s.dom = nil
	_, present := s.coefs[v]
	switch {
	case a == 0 && present:
		delete(s.coefs, v)
		for i, w := range s.vars {
			if w == v {
				s.vars = append(s.vars[:i], s.vars[i+1:]...)
				break
			}
		}
	case a == 0:
	case present:
		s.coefs[v] = a
	default:
		s.coefs[v] = a
		i := sort.Search(len(s.vars), func(i int) bool { return less(v, s.vars[i]) })
		s.vars = append(s.vars, nil)
		copy(s.vars[i+1:], s.vars[i:])
		s.vars[i] = v
	}
}

func less(v, w *IntVar) bool {
	if v.index != w.index {
		return v.index < w.index
	}
	return v.Name < w.Name
}

// Add returns s + t.
func (s *LinearSum) Add(t *LinearSum) *LinearSum {
	res := s.Clone()
	res.B += t.B
	for _, v := range t.vars {
		res.SetCoef(v, res.coefs[v]+t.coefs[v])
	}
	return res
}

// Sub returns s - t.
func (s *LinearSum) Sub(t *LinearSum) *LinearSum {
	return s.Add(t.Mul(-1))
}

// Mul returns c*s.
func (s *LinearSum) Mul(c int) *LinearSum {
	if c == 0 {
		return NewLinearSum(0)
	}
	res := s.Clone()
	res.B *= c
	for _, v := range res.vars {
		res.coefs[v] *= c
	}
	return res
}

// AddConst returns s + c.
func (s *LinearSum) AddConst(c int) *LinearSum {
	res := s.Clone()
	res.B += c
	return res
}

// Shift returns the sum obtained when each variable v is replaced by v+offsets[v].
// It is used when the domain of v is translated by -offsets[v].
func (s *LinearSum) Shift(offsets map[*IntVar]int) *LinearSum {
	res := s.Clone()
	for _, v := range s.vars {
		res.B += s.coefs[v] * offsets[v]
	}
	return res
}

// CoefGCD returns the gcd of the coefficients of s, 0 if s is constant.
func (s *LinearSum) CoefGCD() int {
	g := 0
	for _, v := range s.vars {
		g = domain.GCD(g, s.coefs[v])
	}
	return g
}

// Factor returns the gcd of the coefficients and of the constant of s.
func (s *LinearSum) Factor() int {
	return domain.GCD(s.CoefGCD(), s.B)
}

// Divide divides, in place, every coefficient and the constant by g.
// All of them must be multiples of g.
func (s *LinearSum) Divide(g int) {
	if g == 1 {
		return
	}
	for _, v := range s.vars {
		s.coefs[v] /= g
	}
	s.B /= g
	s.dom = nil
}

func (s *LinearSum) currentStamp() int {
	st := 0
	for _, v := range s.vars {
		st += v.version
	}
	return st
}

// Domain returns the domain of s, given the current domains of its variables.
// The result is cached until one of those domains changes.
func (s *LinearSum) Domain() *domain.Domain {
	if st := s.currentStamp(); s.dom == nil || st != s.stamp {
		s.dom = s.DomainExcept(nil)
		s.stamp = st
	}
	return s.dom
}

// DomainExcept returns the domain of s without the term of v.
func (s *LinearSum) DomainExcept(v *IntVar) *domain.Domain {
	d := domain.Singleton(s.B)
	for _, w := range s.vars {
		if w != v {
			d = d.Add(w.dom.MulConst(s.coefs[w]))
		}
	}
	return d
}

// String returns the sum in the input language syntax.
func (s *LinearSum) String() string {
	var terms []string
	for _, v := range s.vars {
		a := s.coefs[v]
		if a == 1 {
			terms = append(terms, v.Name)
		} else {
			terms = append(terms, fmt.Sprintf("(mul %d %s)", a, v.Name))
		}
	}
	if s.B != 0 || len(terms) == 0 {
		terms = append(terms, fmt.Sprint(s.B))
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return "(add " + strings.Join(terms, " ") + ")"
}
