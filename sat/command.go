package sat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/golang/glog"
)

// Command runs an external solver. Exit codes 10 (sat) and 20 (unsat) are
// the usual ones and are not treated as failures.
type Command struct {
	Path string
	Args []string
}

// Solve implements Backend.
func (c *Command) Solve(ctx context.Context, cnf string, w io.Writer) error {
	args := append(append([]string(nil), c.Args...), cnf)
	cmd := exec.CommandContext(ctx, c.Path, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	glog.V(1).Infof("running %s %v", c.Path, args)
	err := cmd.Run()
	if ctx.Err() != nil {
		return Write(w, Indet, nil)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && (exitErr.ExitCode() == 10 || exitErr.ExitCode() == 20) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("could not run %s: %v", c.Path, err)
	}
	_, err = io.Copy(w, &out)
	return err
}
