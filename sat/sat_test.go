package sat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		output string
		status Status
		model  Model
	}{
		{"s SATISFIABLE\nv 1 -2 3 0\n", Sat, Model{true, false, true}},
		{"c comment\ns SATISFIABLE\nv 1 -2\nv 3\nv 0\n", Sat, Model{true, false, true}},
		{"SAT\n-1 2 0", Sat, Model{false, true}},
		{"s OPTIMUM FOUND\no 12\nv -1 -2 0\n", Sat, Model{false, false}},
		{"s UNSATISFIABLE\n", Unsat, nil},
		{"UNSAT\n", Unsat, nil},
		{"c timeout\ns UNKNOWN\n", Indet, nil},
	}
	for _, test := range tests {
		status, model, err := ParseOutput(strings.NewReader(test.output))
		if err != nil {
			t.Errorf("could not parse %q: %v", test.output, err)
			continue
		}
		if status != test.status {
			t.Errorf("%q: expected status %v, got %v", test.output, test.status, status)
		}
		if fmt.Sprint(model) != fmt.Sprint(test.model) {
			t.Errorf("%q: expected model %v, got %v", test.output, test.model, model)
		}
	}
}

func TestParseOutputMalformed(t *testing.T) {
	tests := []string{
		"",
		"v 1 2 0\n",
		"s MAYBE\n",
		"s SATISFIABLE\nv 1 x 0\n",
		"hello\n",
	}
	for _, output := range tests {
		if _, _, err := ParseOutput(strings.NewReader(output)); !errors.Is(err, ErrMalformedOutput) {
			t.Errorf("%q: expected ErrMalformedOutput, got %v", output, err)
		}
	}
}

func TestModelValue(t *testing.T) {
	m := Model{true, false}
	if !m.Value(1) || m.Value(-1) || m.Value(2) || !m.Value(-2) || m.Value(5) || !m.Value(-5) {
		t.Errorf("invalid values for model %v", m)
	}
}

func writeCNF(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pb.cnf")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("could not write CNF: %v", err)
	}
	return path
}

func checkBackend(t *testing.T, b Backend) {
	t.Helper()
	// x1 xor x2, x2 => x3, not x3
	sat := writeCNF(t, "p cnf 3 4\n1 2 0\n-1 -2 0\n-2 3 0\n-3 0\n")
	var out bytes.Buffer
	if err := b.Solve(context.Background(), sat, &out); err != nil {
		t.Fatalf("could not solve: %v", err)
	}
	status, model, err := ParseOutput(&out)
	if err != nil {
		t.Fatalf("could not parse output: %v", err)
	}
	if status != Sat {
		t.Fatalf("expected SAT, got %v", status)
	}
	if !model.Value(1) || model.Value(2) || model.Value(3) {
		t.Errorf("invalid model %v", model)
	}
	unsat := writeCNF(t, "p cnf 2 4\n1 2 0\n-1 2 0\n1 -2 0\n-1 -2 0\n")
	out.Reset()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.Solve(ctx, unsat, &out); err != nil {
		t.Fatalf("could not solve: %v", err)
	}
	if status, _, err := ParseOutput(&out); err != nil || status != Unsat {
		t.Errorf("expected UNSAT, got %v (%v)", status, err)
	}
}

func TestGophersat(t *testing.T) {
	checkBackend(t, &Gophersat{})
}

func TestGini(t *testing.T) {
	checkBackend(t, &Gini{})
}

// pigeons returns the DIMACS encoding of n+1 pigeons in n holes.
func pigeons(n int) string {
	v := func(p, h int) int { return p*n + h + 1 }
	var sb strings.Builder
	var clauses []string
	for p := 0; p <= n; p++ {
		var cl []string
		for h := 0; h < n; h++ {
			cl = append(cl, fmt.Sprint(v(p, h)))
		}
		clauses = append(clauses, strings.Join(cl, " "))
	}
	for h := 0; h < n; h++ {
		for p := 0; p <= n; p++ {
			for q := p + 1; q <= n; q++ {
				clauses = append(clauses, fmt.Sprintf("%d %d", -v(p, h), -v(q, h)))
			}
		}
	}
	fmt.Fprintf(&sb, "p cnf %d %d\n", (n+1)*n, len(clauses))
	for _, cl := range clauses {
		sb.WriteString(cl + " 0\n")
	}
	return sb.String()
}

func TestGiniCancel(t *testing.T) {
	path := writeCNF(t, pigeons(12))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	var out bytes.Buffer
	start := time.Now()
	if err := (&Gini{}).Solve(ctx, path, &out); err != nil {
		t.Fatalf("could not solve: %v", err)
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Errorf("search was not stopped: took %v", d)
	}
	if status, _, err := ParseOutput(&out); err != nil || status != Indet {
		t.Errorf("expected UNKNOWN, got %v (%v)", status, err)
	}
}

func TestCommand(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no shell available")
	}
	b, err := New("/bin/sh -c 'echo s UNSATISFIABLE; exit 20' solver", false)
	if err != nil {
		t.Fatalf("could not create backend: %v", err)
	}
	if _, ok := b.(*Command); !ok {
		t.Fatalf("expected a command backend, got %T", b)
	}
	cmd := &Command{Path: "/bin/sh", Args: []string{"-c", "echo s UNSATISFIABLE; exit 20", "solver"}}
	var out bytes.Buffer
	if err := cmd.Solve(context.Background(), "pb.cnf", &out); err != nil {
		t.Fatalf("could not run command: %v", err)
	}
	if out.String() != "s UNSATISFIABLE\n" {
		t.Errorf("unexpected output %q", out.String())
	}
	cmd = &Command{Path: "/bin/sh", Args: []string{"-c", "exit 3", "solver"}}
	if err := cmd.Solve(context.Background(), "pb.cnf", &out); err == nil {
		t.Errorf("expected an error for exit code 3")
	}
}

func ExampleWrite() {
	Write(os.Stdout, Sat, Model{true, false, true})
	Write(os.Stdout, Indet, nil)
	// Output:
	// s SATISFIABLE
	// v 1 -2 3 0
	// s UNKNOWN
}
