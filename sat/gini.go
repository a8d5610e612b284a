package sat

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/golang/glog"
)

// pollInterval is the delay between two checks of a running gini search.
const pollInterval = 10 * time.Millisecond

// Gini is the solver from github.com/go-air/gini. Unlike gophersat, it can be
// stopped, so cancelling the context ends the search.
type Gini struct {
	Verbose bool
}

// LoadGini returns a gini solver holding the clauses of the DIMACS file at path.
func LoadGini(path string) (*gini.Gini, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %v", path, err)
	}
	defer f.Close()
	g, err := gini.NewDimacs(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse %q: %v", path, err)
	}
	return g, nil
}

// GiniModel returns the values of the variables of g after a satisfiable search.
func GiniModel(g *gini.Gini) Model {
	m := make(Model, int(g.MaxVar()))
	for i := range m {
		m[i] = g.Value(z.Var(i + 1).Pos())
	}
	return m
}

// Solve implements Backend.
func (g *Gini) Solve(ctx context.Context, cnf string, w io.Writer) error {
	s, err := LoadGini(cnf)
	if err != nil {
		return err
	}
	if g.Verbose {
		fmt.Fprintf(w, "c | Number of variables : %9d\n", s.MaxVar())
	}
	res := wait(ctx, s)
	glog.V(1).Infof("gini: result %d", res)
	switch res {
	case 1:
		return Write(w, Sat, GiniModel(s))
	case -1:
		return Write(w, Unsat, nil)
	default:
		return Write(w, Indet, nil)
	}
}

// wait runs the search of s until it ends or ctx is done.
func wait(ctx context.Context, s *gini.Gini) int {
	run := s.GoSolve()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			glog.V(1).Infof("gini: %v", ctx.Err())
			return run.Stop()
		case <-tick.C:
			if res, done := run.Test(); done {
				return res
			}
		}
	}
}
