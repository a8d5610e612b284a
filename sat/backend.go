package sat

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// A Backend solves the DIMACS problem stored in a file and writes its answer
// on w, in the competition format.
// When ctx is done before an answer is found, the status is UNKNOWN.
type Backend interface {
	Solve(ctx context.Context, cnf string, w io.Writer) error
}

// New returns the backend with the given name: "gophersat", "gini", or a command
// line running an external solver, the path of the CNF file being appended to it.
func New(name string, verbose bool) (Backend, error) {
	switch name {
	case "gophersat":
		return &Gophersat{Verbose: verbose}, nil
	case "gini":
		return &Gini{Verbose: verbose}, nil
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no solver given")
	}
	return &Command{Path: fields[0], Args: fields[1:]}, nil
}
