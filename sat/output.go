package sat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedOutput is returned when a solver output cannot be understood.
var ErrMalformedOutput = errors.New("malformed solver output")

// A Model associates a binding to each SAT variable: Model[i] is the value of variable i+1.
type Model []bool

// Value returns the truth value of the DIMACS literal lit. Variables outside the
// model are considered false.
func (m Model) Value(lit int) bool {
	v := lit
	if v < 0 {
		v = -v
	}
	val := v <= len(m) && m[v-1]
	if lit < 0 {
		return !val
	}
	return val
}

// Write writes the status line of status followed, on Sat, by the model as a "v" line.
func Write(w io.Writer, status Status, m Model) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, status.Line())
	if status == Sat {
		bw.WriteString("v")
		for i, val := range m {
			if val {
				fmt.Fprintf(bw, " %d", i+1)
			} else {
				fmt.Fprintf(bw, " %d", -i-1)
			}
		}
		bw.WriteString(" 0\n")
	}
	return bw.Flush()
}

func malformed(nbLine int, format string, args ...interface{}) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedOutput, nbLine, fmt.Sprintf(format, args...))
}

// statusWord returns the status meant by the content of a status line.
func statusWord(s string) (Status, bool) {
	switch s {
	case "SATISFIABLE", "SAT", "OPTIMUM FOUND":
		return Sat, true
	case "UNSATISFIABLE", "UNSAT":
		return Unsat, true
	case "UNKNOWN", "INDETERMINATE":
		return Indet, true
	}
	return Indet, false
}

// ParseOutput reads the output of a SAT solver.
// It accepts status lines ("s SATISFIABLE", or a bare "SAT"), comment and objective
// lines ("c", "o"), and literals, with or without a "v" prefix.
// An output without any status line is malformed.
func ParseOutput(f io.Reader) (Status, Model, error) {
	r := bufio.NewReader(f)
	var (
		status Status
		found  bool
		model  Model
	)
	for nbLine := 1; ; nbLine++ {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return Indet, nil, fmt.Errorf("could not read solver output: %v", err)
		}
		line = strings.TrimSpace(line)
		if line != "" {
			fields := strings.Fields(line)
			switch fields[0] {
			case "c", "o":
			case "s":
				st, ok := statusWord(strings.Join(fields[1:], " "))
				if !ok {
					return Indet, nil, malformed(nbLine, "invalid status %q", line)
				}
				status, found = st, true
			case "v":
				if model, err = readLits(model, fields[1:]); err != nil {
					return Indet, nil, malformed(nbLine, "%v", err)
				}
			default:
				if st, ok := statusWord(line); ok {
					status, found = st, true
					break
				}
				var lerr error
				if model, lerr = readLits(model, fields); lerr != nil {
					return Indet, nil, malformed(nbLine, "%v", lerr)
				}
			}
		}
		if err == io.EOF {
			break
		}
	}
	if !found {
		return Indet, nil, fmt.Errorf("%w: no status line", ErrMalformedOutput)
	}
	if status != Sat {
		return status, nil, nil
	}
	return status, model, nil
}

// readLits adds the literals in fields to m. A 0 ends the list.
func readLits(m Model, fields []string) (Model, error) {
	for _, f := range fields {
		lit, err := strconv.Atoi(f)
		if err != nil {
			return m, fmt.Errorf("%q is not a literal", f)
		}
		if lit == 0 {
			break
		}
		v := lit
		if v < 0 {
			v = -v
		}
		for len(m) < v {
			m = append(m, false)
		}
		m[v-1] = lit > 0
	}
	return m, nil
}
