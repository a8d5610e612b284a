package sat

// Status is the answer of a solver.
type Status byte

const (
	// Indet means the solver gave no answer, for instance because of a timeout.
	Indet = Status(iota)
	// Sat means the problem has a model.
	Sat
	// Unsat means the problem has no model.
	Unsat
)

func (s Status) String() string {
	switch s {
	case Indet:
		return "INDETERMINATE"
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		panic("invalid status")
	}
}

// Line returns the competition-format status line for s, without the trailing newline.
func (s Status) Line() string {
	switch s {
	case Sat:
		return "s SATISFIABLE"
	case Unsat:
		return "s UNSATISFIABLE"
	default:
		return "s UNKNOWN"
	}
}
