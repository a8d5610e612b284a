package order

import (
	"bufio"
	"fmt"
	"io"

	"github.com/crillab/gophercsp/csp"
	"github.com/crillab/gophercsp/sat"
)

// ErrMalformedOutput is returned when the solver output is neither a model nor
// a known status.
var ErrMalformedOutput = sat.ErrMalformedOutput

// A Result is the decoded answer of a solver.
type Result struct {
	Status       sat.Status
	Objective    csp.Objective
	ObjectiveVar string
	ints         []namedInt
	bools        []namedBool
}

type namedInt struct {
	name  string
	value int
}

type namedBool struct {
	name  string
	value bool
}

// Int returns the value of the integer variable called name.
func (r *Result) Int(name string) (int, bool) {
	for _, v := range r.ints {
		if v.name == name {
			return v.value, true
		}
	}
	return 0, false
}

// Bool returns the value of the boolean variable called name.
func (r *Result) Bool(name string) (val, ok bool) {
	for _, v := range r.bools {
		if v.name == name {
			return v.value, true
		}
	}
	return false, false
}

// decodeInt returns the smallest value of e's domain whose channel is true,
// or the greatest value if no channel is true.
func decodeInt(e IntEntry, m sat.Model) int {
	vals := e.Domain.Values()
	for i, v := range vals[:len(vals)-1] {
		if m.Value(e.Code + i) {
			return v + e.Offset
		}
	}
	return vals[len(vals)-1] + e.Offset
}

// Decode reads the output of a SAT solver run on the CNF described by m.
func Decode(r io.Reader, m *VarMap) (*Result, error) {
	status, model, err := sat.ParseOutput(r)
	if err != nil {
		return nil, err
	}
	res := &Result{Status: status, Objective: m.Objective, ObjectiveVar: m.ObjectiveVar}
	if status != sat.Sat {
		return res, nil
	}
	digits := make(map[string]int)
	for _, e := range m.Ints {
		if e.Domain.IsEmpty() {
			return nil, fmt.Errorf("%w: variable %s has an empty domain", ErrMalformedOutput, e.Name)
		}
		val := decodeInt(e, model)
		digits[e.Name] = val
		res.ints = append(res.ints, namedInt{e.Name, val})
	}
	for _, e := range m.BigInts {
		val, weight := e.Offset, 1
		for i, d := range e.Digits {
			dv, ok := digits[d]
			if !ok {
				return nil, fmt.Errorf("unknown digit %s of %s", d, e.Name)
			}
			val += dv * weight
			if i < len(m.Bases) {
				weight *= m.Bases[i]
			}
		}
		res.ints = append(res.ints, namedInt{e.Name, val})
	}
	for _, e := range m.Bools {
		res.bools = append(res.bools, namedBool{e.Name, model.Value(e.Code)})
	}
	return res, nil
}

// Write writes the result: the status line, then one "a name value" line per
// variable and, when there is an objective, its value.
func (r *Result) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, r.Status.Line())
	if r.Status == sat.Sat {
		for _, v := range r.ints {
			fmt.Fprintf(bw, "a %s %d\n", v.name, v.value)
		}
		for _, v := range r.bools {
			fmt.Fprintf(bw, "a %s %t\n", v.name, v.value)
		}
		if r.Objective != csp.None {
			if val, ok := r.Int(r.ObjectiveVar); ok {
				fmt.Fprintf(bw, "c OBJECTIVE %s %d\n", r.ObjectiveVar, val)
				fmt.Fprintf(bw, "o %d\n", val)
			}
		}
	}
	return bw.Flush()
}

// Apply sets the Value of the variables of pb found in r.
func (r *Result) Apply(pb *csp.CSP) {
	for _, v := range r.ints {
		if x := pb.IntVar(v.name); x != nil {
			x.Value = v.value
		}
	}
	for _, v := range r.bools {
		if x := pb.BoolVar(v.name); x != nil {
			x.Value = v.value
		}
	}
}
