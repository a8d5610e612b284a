package csp

import (
	"math"

	"github.com/crillab/gophercsp/domain"
)

// Sentinel SAT codes for literals whose truth value is already known.
// Negating one yields the other.
const (
	TrueCode  = math.MaxInt32
	FalseCode = -TrueCode
)

// An IntVar is an integer variable.
type IntVar struct {
	Name   string
	Aux    bool      // Introduced during compilation
	Offset int       // Added to the decoded value
	Digits []*IntVar // Positional-base digits, least significant first, if any
	Code   int       // First SAT variable of the channels "x <= d"
	Value  int       // Decoded value
	index  int       // Creation rank, used for deterministic iteration
	dom    *domain.Domain
	// version is incremented each time the domain changes.
	version  int
	modified bool
}

// NewIntVar returns a new variable. It must be added to a CSP before use.
func NewIntVar(name string, dom *domain.Domain) *IntVar {
	return &IntVar{Name: name, dom: dom, modified: true}
}

// Domain returns the current domain of v.
func (v *IntVar) Domain() *domain.Domain { return v.dom }

// SetDomain replaces the domain of v, marking it as modified if it changed.
func (v *IntVar) SetDomain(d *domain.Domain) {
	if d == v.dom {
		return
	}
	v.dom = d
	v.version++
	v.modified = true
}

// Bound restricts the domain of v to [lb, ub] and returns the number of
// values that were removed.
func (v *IntVar) Bound(lb, ub int) int {
	before := v.dom.Size()
	v.SetDomain(v.dom.Bound(lb, ub))
	return before - v.dom.Size()
}

// IsUnsatisfiable is true iff the domain of v is empty.
func (v *IntVar) IsUnsatisfiable() bool { return v.dom.IsEmpty() }

// NbChannels is the number of SAT variables needed to order-encode v.
func (v *IntVar) NbChannels() int {
	if n := v.dom.Size(); n > 1 {
		return n - 1
	}
	return 0
}

// CodeLE returns the SAT literal meaning "v <= c", or one of TrueCode and FalseCode
// when c is outside of the domain's bounds.
func (v *IntVar) CodeLE(c int) int {
	switch {
	case c < v.dom.Lower():
		return FalseCode
	case c >= v.dom.Upper():
		return TrueCode
	}
	return v.Code + v.dom.SizeLE(c) - 1
}

// IsModified is true if the domain of v changed since the last call to ClearModified.
func (v *IntVar) IsModified() bool { return v.modified }

// ClearModified resets the modification flag of v.
func (v *IntVar) ClearModified() { v.modified = false }

func (v *IntVar) String() string { return v.Name }

// A BoolVar is a boolean variable.
type BoolVar struct {
	Name  string
	Aux   bool
	Code  int
	Value bool
	index int
}

// NewBoolVar returns a new boolean variable. It must be added to a CSP before use.
func NewBoolVar(name string) *BoolVar {
	return &BoolVar{Name: name}
}

func (v *BoolVar) String() string { return v.Name }
