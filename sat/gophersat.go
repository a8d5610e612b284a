package sat

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/crillab/gophersat/solver"
	"github.com/golang/glog"
)

// Gophersat is the CDCL solver from github.com/crillab/gophersat.
type Gophersat struct {
	Verbose bool // Write statistics as comment lines
}

// Solve implements Backend.
// Gophersat cannot be interrupted: on cancellation, the search goes on in the
// background until it ends and its result is discarded.
func (g *Gophersat) Solve(ctx context.Context, cnf string, w io.Writer) error {
	f, err := os.Open(cnf)
	if err != nil {
		return fmt.Errorf("could not open %q: %v", cnf, err)
	}
	pb, err := solver.ParseCNF(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("could not parse %q: %v", cnf, err)
	}
	s := solver.New(pb)
	if g.Verbose {
		fmt.Fprintf(w, "c | Number of clauses   : %9d\n", len(pb.Clauses))
		fmt.Fprintf(w, "c | Number of variables : %9d\n", pb.NbVars)
	}
	done := make(chan solver.Status, 1)
	go func() { done <- s.Solve() }()
	var status solver.Status
	select {
	case <-ctx.Done():
		glog.V(1).Infof("gophersat: %v", ctx.Err())
		return Write(w, Indet, nil)
	case status = <-done:
	}
	if g.Verbose {
		fmt.Fprintf(w, "c nb conflicts: %d\nc nb restarts: %d\nc nb decisions: %d\n", s.Stats.NbConflicts, s.Stats.NbRestarts, s.Stats.NbDecisions)
	}
	switch status {
	case solver.Sat:
		return Write(w, Sat, s.Model())
	case solver.Unsat:
		return Write(w, Unsat, nil)
	default:
		return Write(w, Indet, nil)
	}
}
