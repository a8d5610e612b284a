package order

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/crillab/gophercsp/csp"
	"github.com/crillab/gophercsp/domain"
)

// An IntEntry describes how an order-encoded integer variable is stored.
type IntEntry struct {
	Name   string
	Offset int
	Code   int
	Domain *domain.Domain // Shifted domain: values are decoded as Domain value + Offset
}

// A BigIntEntry describes an integer variable stored in positional base: its value
// is Offset + sum(digit_i * base_0 * ... * base_i-1). Digits are int entries.
type BigIntEntry struct {
	Name   string
	Offset int
	Digits []string
}

// A BoolEntry gives the SAT variable of a boolean variable.
type BoolEntry struct {
	Name string
	Code int
}

// A VarMap tells how to read CSP variables from a SAT model.
type VarMap struct {
	Objective    csp.Objective
	ObjectiveVar string
	Bases        []int
	Ints         []IntEntry
	BigInts      []BigIntEntry
	Bools        []BoolEntry
}

// NewVarMap returns the map of the encoded problem pb. Auxiliary variables are
// only included when all is true.
func NewVarMap(pb *csp.CSP, all bool) *VarMap {
	m := &VarMap{Objective: pb.Objective}
	if pb.ObjectiveVar != nil {
		m.ObjectiveVar = pb.ObjectiveVar.Name
	}
	digits := make(map[*csp.IntVar]bool)
	for _, v := range pb.IntVars {
		if len(v.Digits) > 0 && (all || !v.Aux) {
			for _, d := range v.Digits {
				digits[d] = true
			}
		}
	}
	for _, v := range pb.IntVars {
		switch {
		case len(v.Digits) > 0:
			if all || !v.Aux {
				e := BigIntEntry{Name: v.Name, Offset: v.Offset}
				for _, d := range v.Digits {
					e.Digits = append(e.Digits, d.Name)
				}
				m.BigInts = append(m.BigInts, e)
			}
		case all || !v.Aux || digits[v] || v == pb.ObjectiveVar:
			m.Ints = append(m.Ints, IntEntry{Name: v.Name, Offset: v.Offset, Code: v.Code, Domain: v.Domain()})
		}
	}
	for _, v := range pb.BoolVars {
		if all || !v.Aux {
			m.Bools = append(m.Bools, BoolEntry{Name: v.Name, Code: v.Code})
		}
	}
	return m
}

// Write writes m in the map file format.
func (m *VarMap) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if m.Objective != csp.None {
		fmt.Fprintf(bw, "objective %s %s\n", m.Objective, m.ObjectiveVar)
	}
	if len(m.Bases) > 0 {
		bw.WriteString("bases")
		for _, b := range m.Bases {
			fmt.Fprintf(bw, " %d", b)
		}
		bw.WriteByte('\n')
	}
	for _, e := range m.Ints {
		fmt.Fprintf(bw, "int %s %d %d %s\n", e.Name, e.Offset, e.Code, e.Domain)
	}
	for _, e := range m.BigInts {
		fmt.Fprintf(bw, "bigint %s %d %s\n", e.Name, e.Offset, strings.Join(e.Digits, " "))
	}
	for _, e := range m.Bools {
		fmt.Fprintf(bw, "bool %s %d\n", e.Name, e.Code)
	}
	return bw.Flush()
}

// WriteMap writes the map of the encoded problem in the file at path.
// It must be called after Encode, once codes are assigned.
func (e *Encoder) WriteMap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %q: %v", path, err)
	}
	if err := NewVarMap(e.pb, false).Write(f); err != nil {
		f.Close()
		return fmt.Errorf("could not write map file %q: %v", path, err)
	}
	return f.Close()
}

// ReadMap reads a map file.
func ReadMap(r io.Reader) (*VarMap, error) {
	var m VarMap
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<24)
	for nbLine := 1; sc.Scan(); nbLine++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if err := m.parseLine(fields); err != nil {
			return nil, fmt.Errorf("invalid map file: line %d: %v", nbLine, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("could not read map file: %v", err)
	}
	return &m, nil
}

func atois(fields []string) ([]int, error) {
	res := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%q is not an int", f)
		}
		res[i] = v
	}
	return res, nil
}

func (m *VarMap) parseLine(fields []string) error {
	switch fields[0] {
	case "objective":
		if len(fields) != 3 {
			return fmt.Errorf("objective expects a direction and a variable")
		}
		switch fields[1] {
		case "minimize":
			m.Objective = csp.Minimize
		case "maximize":
			m.Objective = csp.Maximize
		default:
			return fmt.Errorf("invalid objective direction %q", fields[1])
		}
		m.ObjectiveVar = fields[2]
	case "bases":
		bases, err := atois(fields[1:])
		if err != nil {
			return err
		}
		m.Bases = bases
	case "int":
		if len(fields) < 5 {
			return fmt.Errorf("int expects a name, an offset, a code and a domain")
		}
		ints, err := atois(fields[2:4])
		if err != nil {
			return err
		}
		d, err := domain.Parse(fields[4:])
		if err != nil {
			return err
		}
		m.Ints = append(m.Ints, IntEntry{Name: fields[1], Offset: ints[0], Code: ints[1], Domain: d})
	case "bigint":
		if len(fields) < 4 {
			return fmt.Errorf("bigint expects a name, an offset and digits")
		}
		offset, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("%q is not an int", fields[2])
		}
		m.BigInts = append(m.BigInts, BigIntEntry{Name: fields[1], Offset: offset, Digits: fields[3:]})
	case "bool":
		if len(fields) != 3 {
			return fmt.Errorf("bool expects a name and a code")
		}
		code, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("%q is not an int", fields[2])
		}
		m.Bools = append(m.Bools, BoolEntry{Name: fields[1], Code: code})
	default:
		return fmt.Errorf("unknown entry %q", fields[0])
	}
	return nil
}
