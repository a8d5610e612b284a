package order

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crillab/gophercsp/csp"
	"github.com/crillab/gophercsp/decomp"
	"github.com/crillab/gophercsp/expr"
	"github.com/crillab/gophercsp/sat"
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

func compile(t *testing.T, ctx *csp.Context, src string) *csp.CSP {
	t.Helper()
	es, err := expr.ParseString(src)
	if err != nil {
		t.Fatalf("could not parse %q: %v", src, err)
	}
	pb, err := decomp.Compile(ctx, es, decomp.DefaultOptions())
	if err != nil {
		t.Fatalf("could not compile %q: %v", src, err)
	}
	if _, err := pb.Simplify(ctx, false); err != nil {
		t.Fatalf("could not simplify %q: %v", src, err)
	}
	return pb
}

// encode encodes src and returns the path of the CNF file and the map of all variables.
func encode(t *testing.T, src string) (string, *VarMap, *Encoder) {
	t.Helper()
	ctx := csp.NewContext()
	pb := compile(t, ctx, src)
	enc := New(ctx, pb)
	path := filepath.Join(t.TempDir(), "pb.cnf")
	if err := enc.Encode(path); err != nil {
		t.Fatalf("could not encode %q: %v", src, err)
	}
	return path, NewVarMap(pb, true), enc
}

func load(t *testing.T, path string) *gini.Gini {
	t.Helper()
	g, err := sat.LoadGini(path)
	if err != nil {
		t.Fatalf("invalid CNF: %v", err)
	}
	return g
}

func entry(t *testing.T, m *VarMap, name string) IntEntry {
	t.Helper()
	for _, e := range m.Ints {
		if e.Name == name {
			return e
		}
	}
	t.Fatalf("no variable %s in map", name)
	return IntEntry{}
}

// units returns the unit clauses forcing the variable called name to val.
func units(t *testing.T, m *VarMap, name string, val int) [][]int {
	e := entry(t, m, name)
	vals := e.Domain.Values()
	var res [][]int
	for i, v := range vals[:len(vals)-1] {
		if v+e.Offset >= val {
			res = append(res, []int{e.Code + i})
		} else {
			res = append(res, []int{-(e.Code + i)})
		}
	}
	return res
}

// solve solves the CNF loaded in g under the given unit assumptions.
func solve(g *gini.Gini, assumed [][]int) (sat.Status, sat.Model) {
	for _, u := range assumed {
		g.Assume(z.Dimacs2Lit(u[0]))
	}
	if g.Solve() != 1 {
		return sat.Unsat, nil
	}
	return sat.Sat, sat.GiniModel(g)
}

func decode(t *testing.T, status sat.Status, model sat.Model, m *VarMap) *Result {
	t.Helper()
	var out bytes.Buffer
	if err := sat.Write(&out, status, model); err != nil {
		t.Fatalf("could not write model: %v", err)
	}
	res, err := Decode(&out, m)
	if err != nil {
		t.Fatalf("could not decode: %v", err)
	}
	return res
}

func TestHeader(t *testing.T) {
	path, _, enc := encode(t, "(int x 0 3) (int y 0 3) (le (+ x y) 4)")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("could not open CNF: %v", err)
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil {
		t.Fatalf("could not read header: %v", err)
	}
	if len(line) != headerWidth {
		t.Errorf("header should be %d bytes long, got %d", headerWidth, len(line))
	}
	want := fmt.Sprintf("p cnf %d %d", enc.NbVars(), enc.NbClauses())
	if strings.TrimSpace(line) != want {
		t.Errorf("expected header %q, got %q", want, line)
	}
	if enc.NbVars() != 6 {
		t.Errorf("expected 6 SAT variables, got %d", enc.NbVars())
	}
	load(t, path)
}

func TestRoundTrip(t *testing.T) {
	path, m, _ := encode(t, "(int x -2 3) (int y (1 4 7)) (int z 5) (bool p)")
	g := load(t, path)
	for _, e := range m.Ints {
		for _, v := range e.Domain.Values() {
			want := v + e.Offset
			status, model := solve(g, units(t, m, e.Name, want))
			if status != sat.Sat {
				t.Errorf("%s=%d: expected a model", e.Name, want)
				continue
			}
			res := decode(t, status, model, m)
			if got, ok := res.Int(e.Name); !ok || got != want {
				t.Errorf("%s: expected %d, got %d", e.Name, want, got)
			}
		}
	}
	p := m.Bools[0].Code
	for _, val := range []bool{true, false} {
		lit := p
		if !val {
			lit = -p
		}
		status, model := solve(g, [][]int{{lit}})
		if status != sat.Sat {
			t.Fatalf("p=%t: expected a model", val)
		}
		res := decode(t, status, model, m)
		if got, ok := res.Bool("p"); !ok || got != val {
			t.Errorf("p: expected %t, got %t", val, got)
		}
	}
}

func TestReduceIdempotent(t *testing.T) {
	ctx := csp.NewContext()
	pb := compile(t, ctx, `
		(int x -3 3) (int y 1 4) (int z 0 9) (int w (2 4 8))
		(eq (+ x y) z)
		(ne (+ x z) 2)
		(le (+ (* 2 x) (* 4 y)) 5)
		(eq (* y w) 8)`)
	enc := New(ctx, pb)
	if err := enc.Reduce(); err != nil {
		t.Fatalf("could not reduce: %v", err)
	}
	first := pb.String()
	for _, v := range pb.IntVars {
		if v.Domain().Lower() != 0 {
			t.Errorf("%s: domain %v should start at 0", v.Name, v.Domain())
		}
	}
	for _, cl := range pb.Clauses {
		if !cl.IsSimple() {
			t.Errorf("clause %v is not simple", cl)
		}
		for _, l := range cl.ArithLits {
			if ll, ok := l.(*csp.LinearLit); !ok || ll.Op != csp.LE || ll.Sum.CoefGCD() > 1 {
				t.Errorf("literal %v is not reduced", l)
			}
		}
	}
	if x := pb.IntVar("x"); x.Offset != -3 {
		t.Errorf("expected offset -3 for x, got %d", x.Offset)
	}
	if err := enc.Reduce(); err != nil {
		t.Fatalf("could not reduce again: %v", err)
	}
	if second := pb.String(); second != first {
		t.Errorf("second reduction changed the problem:\n%s\nbecame\n%s", first, second)
	}
}

func TestAllDifferent(t *testing.T) {
	path, m, _ := encode(t, "(int x 0 2) (int y 0 2) (int z 0 2) (alldifferent x y z)")
	g := load(t, path)
	nbSat := 0
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			for z := 0; z < 3; z++ {
				var extra [][]int
				extra = append(extra, units(t, m, "x", x)...)
				extra = append(extra, units(t, m, "y", y)...)
				extra = append(extra, units(t, m, "z", z)...)
				status, _ := solve(g, extra)
				distinct := x != y && y != z && x != z
				if (status == sat.Sat) != distinct {
					t.Errorf("(%d, %d, %d): expected satisfiable=%t, got %v", x, y, z, distinct, status)
				}
				if status == sat.Sat {
					nbSat++
				}
			}
		}
	}
	if nbSat != 6 {
		t.Errorf("expected 6 permutations, got %d", nbSat)
	}
}

func TestCount(t *testing.T) {
	path, m, _ := encode(t, "(int x1 1 3) (int x2 1 3) (int x3 1 3) (int c 0 3) (count 2 (x1 x2 x3) eq c)")
	g := load(t, path)
	var extra [][]int
	extra = append(extra, units(t, m, "x1", 2)...)
	extra = append(extra, units(t, m, "x2", 2)...)
	extra = append(extra, units(t, m, "x3", 3)...)
	status, model := solve(g, extra)
	if status != sat.Sat {
		t.Fatalf("expected a model")
	}
	res := decode(t, status, model, m)
	if c, _ := res.Int("c"); c != 2 {
		t.Errorf("expected c=2, got %d", c)
	}
}

// TestLinear checks the encoding of arithmetic constraints against their
// definition, for every assignment of x, y and z.
func TestLinear(t *testing.T) {
	tests := []struct {
		constraint string
		holds      func(x, y, z int) bool
	}{
		{"(le (+ (* 2 x) (* -3 y) z) 1)", func(x, y, z int) bool { return 2*x-3*y+z <= 1 }},
		{"(eq (+ x y) z)", func(x, y, z int) bool { return x+y == z }},
		{"(ne (- x y) (* 2 z))", func(x, y, z int) bool { return x-y != 2*z }},
		{"(ge (* 3 x) (+ y (* 2 z)))", func(x, y, z int) bool { return 3*x >= y+2*z }},
		{"(eq (* x y) z)", func(x, y, z int) bool { return x*y == z }},
		{"(or (lt x 0) (gt (+ y z) 6))", func(x, y, z int) bool { return x < 0 || y+z > 6 }},
	}
	xs, ys, zs := []int{-2, -1, 0, 1, 2}, []int{0, 3, 5}, []int{1, 2, 3}
	for _, test := range tests {
		path, m, _ := encode(t, "(int x -2 2) (int y (0 3 5)) (int z 1 3) "+test.constraint)
		g := load(t, path)
		for _, x := range xs {
			for _, y := range ys {
				for _, z := range zs {
					var extra [][]int
					extra = append(extra, units(t, m, "x", x)...)
					extra = append(extra, units(t, m, "y", y)...)
					extra = append(extra, units(t, m, "z", z)...)
					status, _ := solve(g, extra)
					if want := test.holds(x, y, z); (status == sat.Sat) != want {
						t.Errorf("%s with x=%d, y=%d, z=%d: expected %t, got %v", test.constraint, x, y, z, want, status)
					}
				}
			}
		}
	}
}

func TestUnsatisfiable(t *testing.T) {
	path, _, enc := encode(t, "(int x 0 5) (and (le x 3) (lt 3 1))")
	if enc.NbClauses() != 2 {
		t.Errorf("expected a contradictory pair of clauses, got %d clauses", enc.NbClauses())
	}
	if status, _ := solve(load(t, path), nil); status != sat.Unsat {
		t.Errorf("expected UNSAT, got %v", status)
	}
}

func TestMapFile(t *testing.T) {
	ctx := csp.NewContext()
	pb := compile(t, ctx, "(int x -2 3) (int y (1 4 7)) (bool p) (int z 0 9) (objective minimize z) (le (abs x) z)")
	enc := New(ctx, pb)
	dir := t.TempDir()
	if err := enc.Encode(filepath.Join(dir, "pb.cnf")); err != nil {
		t.Fatalf("could not encode: %v", err)
	}
	if err := enc.WriteMap(filepath.Join(dir, "pb.map")); err != nil {
		t.Fatalf("could not write map: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(dir, "pb.map"))
	if err != nil {
		t.Fatalf("could not read map: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	want := []string{
		"objective minimize z",
		fmt.Sprintf("int x -2 %d 0..5", pb.IntVar("x").Code),
		fmt.Sprintf("int y 1 %d 0 3 6", pb.IntVar("y").Code),
		fmt.Sprintf("int z 0 %d 0..9", pb.IntVar("z").Code),
		fmt.Sprintf("bool p %d", pb.BoolVar("p").Code),
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("invalid map file:\n%s\nexpected:\n%s", content, strings.Join(want, "\n"))
	}
	m, err := ReadMap(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("could not read map: %v", err)
	}
	var buf bytes.Buffer
	if err := m.Write(&buf); err != nil {
		t.Fatalf("could not write map: %v", err)
	}
	if buf.String() != string(content) {
		t.Errorf("map changed after reading:\n%s\nbecame\n%s", content, buf.String())
	}
	for _, bad := range []string{"int x 0 1", "int x a 1 0..3", "bool p", "objective best z", "foo 1"} {
		if _, err := ReadMap(strings.NewReader(bad)); err == nil {
			t.Errorf("%q: expected an error", bad)
		}
	}
}

func TestDecodeBigInt(t *testing.T) {
	const mapFile = "bases 10 10\nint d0 0 1 0..9\nint d1 0 10 0..9\nbigint n 5 d0 d1\n"
	m, err := ReadMap(strings.NewReader(mapFile))
	if err != nil {
		t.Fatalf("could not read map: %v", err)
	}
	// d0 = 3, d1 = 4
	model := make(sat.Model, 18)
	for i := 3; i < 9; i++ {
		model[i] = true
	}
	for i := 9 + 4; i < 18; i++ {
		model[i] = true
	}
	res := decode(t, sat.Sat, model, m)
	if n, _ := res.Int("n"); n != 5+3+4*10 {
		t.Errorf("expected n=48, got %d", n)
	}
}

func TestDecodeErrors(t *testing.T) {
	m := &VarMap{}
	for _, output := range []string{"", "v 1 2 0\n", "s PERHAPS\n"} {
		if _, err := Decode(strings.NewReader(output), m); err == nil {
			t.Errorf("%q: expected an error", output)
		}
	}
	res, err := Decode(strings.NewReader("s UNSATISFIABLE\n"), m)
	if err != nil || res.Status != sat.Unsat {
		t.Errorf("expected UNSAT, got %v (%v)", res, err)
	}
}

func TestSolve(t *testing.T) {
	tests := []struct {
		src    string
		status sat.Status
		want   map[string]int
	}{
		{"(int x 0 9) (int y 0 9) (eq (+ x y) 12) (eq (- x y) 2)", sat.Sat, map[string]int{"x": 7, "y": 5}},
		{"(int x (1 3 5)) (int y 0 4) (eq (* x y) 12)", sat.Sat, map[string]int{"x": 3, "y": 4}},
		{"(int x -5 5) (int y -5 5) (eq (abs x) 3) (lt x 0) (eq y (div x 2))", sat.Sat, map[string]int{"x": -3, "y": -2}},
		{"(int x 0 3) (int y 0 3) (ne x y) (eq (+ x y) 6)", sat.Unsat, nil},
		{"(int x 1 9) (int y 1 9) (alldifferent x y) (eq (mod x 3) 0) (eq (* x y) 18) (lt x y)", sat.Sat, map[string]int{"x": 3, "y": 6}},
	}
	backends := map[string]sat.Backend{"gophersat": &sat.Gophersat{}, "gini": &sat.Gini{}}
	for name, b := range backends {
		for _, test := range tests {
			res := run(t, test.src, b)
			if res.Status != test.status {
				t.Errorf("%s: %s: expected %v, got %v", name, test.src, test.status, res.Status)
				continue
			}
			for v, want := range test.want {
				if got, ok := res.Int(v); !ok || got != want {
					t.Errorf("%s: %s: expected %s=%d, got %d", name, test.src, v, want, got)
				}
			}
		}
	}
}

// run compiles, encodes and solves src with b, going through the map file.
func run(t *testing.T, src string, b sat.Backend) *Result {
	t.Helper()
	ctx := csp.NewContext()
	es, err := expr.ParseString(src)
	if err != nil {
		t.Fatalf("could not parse %q: %v", src, err)
	}
	pb, err := decomp.Compile(ctx, es, decomp.DefaultOptions())
	if err != nil {
		t.Fatalf("could not compile %q: %v", src, err)
	}
	pb.Propagate()
	if pb.IsUnsatisfiable() {
		return &Result{Status: sat.Unsat}
	}
	if _, err := pb.Simplify(ctx, false); err != nil {
		t.Fatalf("could not simplify: %v", err)
	}
	dir := t.TempDir()
	cnf, mapFile := filepath.Join(dir, "pb.cnf"), filepath.Join(dir, "pb.map")
	enc := New(ctx, pb)
	if err := enc.Encode(cnf); err != nil {
		t.Fatalf("could not encode: %v", err)
	}
	if err := enc.WriteMap(mapFile); err != nil {
		t.Fatalf("could not write map: %v", err)
	}
	var out bytes.Buffer
	if err := b.Solve(context.Background(), cnf, &out); err != nil {
		t.Fatalf("could not solve: %v", err)
	}
	f, err := os.Open(mapFile)
	if err != nil {
		t.Fatalf("could not open map: %v", err)
	}
	defer f.Close()
	m, err := ReadMap(f)
	if err != nil {
		t.Fatalf("could not read map: %v", err)
	}
	res, err := Decode(&out, m)
	if err != nil {
		t.Fatalf("could not decode: %v", err)
	}
	res.Apply(pb)
	return res
}

func ExampleResult_Write() {
	m, _ := ReadMap(strings.NewReader("objective minimize x\nint x 2 1 0..3\nbool p 4\n"))
	res, _ := Decode(strings.NewReader("s SATISFIABLE\nv -1 2 3 4 0\n"), m)
	res.Write(os.Stdout)
	// Output:
	// s SATISFIABLE
	// a x 3
	// a p true
	// c OBJECTIVE x 3
	// o 3
}
