package decomp

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/crillab/gophercsp/csp"
	"github.com/crillab/gophercsp/expr"
)

func compile(t *testing.T, src string, opts Options) *csp.CSP {
	t.Helper()
	es, err := expr.ParseString(src)
	if err != nil {
		t.Fatalf("could not parse %q: %v", src, err)
	}
	pb, err := Compile(csp.NewContext(), es, opts)
	if err != nil {
		t.Fatalf("could not compile %q: %v", src, err)
	}
	return pb
}

func compileErr(src string) error {
	es, err := expr.ParseString(src)
	if err != nil {
		return err
	}
	_, err = Compile(csp.NewContext(), es, DefaultOptions())
	return err
}

func TestDeclarations(t *testing.T) {
	pb := compile(t, `
		(domain d 0 5)
		(domain s (1 (3 5) 9))
		(int x d)
		(int y s)
		(int z -2 2)
		(int c 7)
		(bool p)
		(objective maximize z)`, DefaultOptions())
	tests := []struct {
		name string
		dom  string
	}{{"x", "0..5"}, {"y", "1 3..5 9"}, {"z", "-2..2"}, {"c", "7..7"}}
	for _, test := range tests {
		v := pb.IntVar(test.name)
		if v == nil {
			t.Errorf("variable %s not declared", test.name)
			continue
		}
		if got := v.Domain().String(); got != test.dom {
			t.Errorf("variable %s: expected domain %s, got %s", test.name, test.dom, got)
		}
	}
	if pb.BoolVar("p") == nil {
		t.Errorf("boolean p not declared")
	}
	if pb.Objective != csp.Maximize || pb.ObjectiveVar != pb.IntVar("z") {
		t.Errorf("invalid objective")
	}
}

func TestSemanticErrors(t *testing.T) {
	tests := []string{
		"(int x 0 3) (int x 0 3)",
		"(int x 3 0)",
		"(int x d)",
		"(int x 0 3) (le x y)",
		"(bool p) (le p 3)",
		"(int x 0 3) (foo x)",
		"(relation R 2 (supports (1 2) (3)))",
		"(relation R 2 (supports (1 2))) (int x 0 3) (R x)",
		"(int x 0 3) (eq x (div x 0))",
		"(int x 0 3) (alldifferent (x) x)",
		"(int x 0 3) (lex_less (x x) (x))",
		"(objective minimize q)",
		"(predicate (p a) (le a 2)) (p 1 2)",
		"3",
	}
	for _, src := range tests {
		if err := compileErr(src); !errors.Is(err, ErrSemantic) {
			t.Errorf("%s: expected a semantic error, got %v", src, err)
		}
	}
}

func TestUnsupported(t *testing.T) {
	tests := []string{
		"(int x 0 3) (int y 0 3) (eq (pow x y) 1)",
		"(int x 0 300) (int y 1 300) (eq (div x y) 1)",
	}
	for _, src := range tests {
		if err := compileErr(src); !errors.Is(err, csp.ErrUnsupported) {
			t.Errorf("%s: expected ErrUnsupported, got %v", src, err)
		}
	}
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(le x y)", "(le (add x (mul -1 y)) 0)"},
		{"(< x 3)", "(le (add x -2) 0)"},
		{"(>= (+ x 1) (* 2 y))", "(le (add (mul -1 x) (mul 2 y) -1) 0)"},
		{"(not (= x y))", "(ne (add x (mul -1 y)) 0)"},
		{"(eq (* 2 x) (* 4 y))", "(eq (add x (mul -2 y)) 0)"},
		{"(gt (- x) 1)", "(le (add x 2) 0)"},
	}
	for _, test := range tests {
		pb := compile(t, "(int x 0 5) (int y 0 5) "+test.src, DefaultOptions())
		if len(pb.Clauses) != 1 {
			t.Errorf("%s: expected 1 clause, got %d", test.src, len(pb.Clauses))
			continue
		}
		if got := pb.Clauses[0].String(); got != test.want {
			t.Errorf("%s: expected %s, got %s", test.src, test.want, got)
		}
	}
}

func TestConstants(t *testing.T) {
	pb := compile(t, "(int x 0 5) (le 1 2) (or (lt 3 1) (le x 3)) true (not false)", DefaultOptions())
	if len(pb.Clauses) != 1 || pb.Clauses[0].String() != "(le (add x -3) 0)" {
		t.Errorf("constant comparisons should vanish, got %v", pb.Clauses)
	}
	pb = compile(t, "(int x 0 5) (and (le x 3) (lt 3 1))", DefaultOptions())
	if !pb.IsUnsatisfiable() {
		t.Errorf("problem should be unsatisfiable")
	}
}

func TestNegation(t *testing.T) {
	pb := compile(t, "(bool p) (bool q) (int x 0 3) (not (and p (or q (le x 1))))", DefaultOptions())
	// not p or (not q and x > 1)
	if len(pb.Clauses) != 3 {
		t.Fatalf("expected 3 clauses, got %d: %v", len(pb.Clauses), pb.Clauses)
	}
	if len(pb.BoolVars) != 3 {
		t.Errorf("expected a guard for the conjunction, got %d booleans", len(pb.BoolVars))
	}
	want := []string{"(or (not p) $B1)", "(or (not q) (not $B1))", "(or (not $B1) (le (add (mul -1 x) 2) 0))"}
	for i, cl := range pb.Clauses {
		if got := cl.String(); got != want[i] {
			t.Errorf("clause %d: expected %s, got %s", i, want[i], got)
		}
	}
}

func TestMemo(t *testing.T) {
	pb := compile(t, "(int x -3 3) (int y 0 3) (le (abs x) y) (ge (+ (abs x) (abs x)) 1) (le (abs x) 2)", DefaultOptions())
	nbAux := 0
	for _, v := range pb.IntVars {
		if v.Aux {
			nbAux++
			if got := v.Domain().String(); got != "0..3" {
				t.Errorf("invalid domain for %s: %s", v.Name, got)
			}
		}
	}
	if nbAux != 1 {
		t.Errorf("expected a single auxiliary variable for (abs x), got %d", nbAux)
	}
}

func TestMemoEviction(t *testing.T) {
	opts := DefaultOptions()
	opts.MemoSize = 1
	es, _ := expr.ParseString("(int x -3 3) (int y -3 3) (ge (+ (abs x) (abs y) (abs x)) 1)")
	pb := csp.New()
	cv, err := New(csp.NewContext(), pb, opts)
	if err != nil {
		t.Fatalf("could not create converter: %v", err)
	}
	if err := cv.Convert(es); err != nil {
		t.Fatalf("could not convert: %v", err)
	}
	if cv.Memo().Evictions() == 0 {
		t.Errorf("expected evictions with a memo of size 1")
	}
}

func TestProduct(t *testing.T) {
	pb := compile(t, "(int x 0 3) (int y 1 2) (eq (* x y) 4)", DefaultOptions())
	var prod *csp.ProductLit
	for _, cl := range pb.Clauses {
		for _, l := range cl.ArithLits {
			if p, ok := l.(*csp.ProductLit); ok {
				prod = p
			}
		}
	}
	if prod == nil {
		t.Fatalf("no product literal in %v", pb.Clauses)
	}
	if got := prod.Z.Domain().String(); got != "0..4 6" {
		t.Errorf("invalid domain for the product: %s", got)
	}
}

func TestSignProduct(t *testing.T) {
	pb := compile(t, "(int x -3 3) (int y -3 3) (gt (* x y) 0)", DefaultOptions())
	for _, cl := range pb.Clauses {
		for _, l := range cl.ArithLits {
			if _, ok := l.(*csp.ProductLit); ok {
				t.Errorf("sign comparison should not need a product")
			}
		}
	}
}

func TestGlobals(t *testing.T) {
	tests := []struct {
		src       string
		nbClauses int
	}{
		{"(alldifferent x y z)", 3 + 2},
		{"(alldifferent (x y z))", 3 + 2},
		{"(element x (y z 3) 2)", 2 + 3},
		{"(lex_less (x y) (y z))", 2},
		{"(weightedsum ((2 x) (3 y)) <= 6)", 1},
		{"(count 2 (x y z) >= 2)", 1},
	}
	for _, test := range tests {
		src := "(int x 1 3) (int y 1 3) (int z 1 3) " + test.src
		pb := compile(t, src, DefaultOptions())
		if !strings.HasPrefix(test.src, "(count") && len(pb.Clauses) != test.nbClauses {
			t.Errorf("%s: expected %d clauses, got %d: %v", test.src, test.nbClauses, len(pb.Clauses), pb.Clauses)
		}
	}
	opts := DefaultOptions()
	opts.Pigeon = false
	if pb := compile(t, "(int x 1 3) (int y 1 3) (int z 1 3) (alldifferent x y z)", opts); len(pb.Clauses) != 3 {
		t.Errorf("expected 3 clauses without pigeonhole, got %d", len(pb.Clauses))
	}
}

func TestPredicate(t *testing.T) {
	pb := compile(t, "(predicate (between v lo hi) (and (ge v lo) (le v hi))) (int x 0 9) (between x 2 4)", DefaultOptions())
	var got []string
	for _, cl := range pb.Clauses {
		got = append(got, cl.String())
	}
	want := "(le (add (mul -1 x) 2) 0) (le (add x -4) 0)"
	if strings.Join(got, " ") != want {
		t.Errorf("expected %s, got %s", want, strings.Join(got, " "))
	}
}

func TestRelation(t *testing.T) {
	pb := compile(t, "(relation less 2 (supports (0 1) (0 2) (1 2))) (int x 0 2) (int y 0 2) (bool p) (or p (less x y))", DefaultOptions())
	if len(pb.Clauses) < 2 {
		t.Errorf("expected a guarded relation, got %v", pb.Clauses)
	}
	if pb.Clauses[0].String() != "(or p $B1)" {
		t.Errorf("expected guard clause first, got %v", pb.Clauses[0])
	}
}

func ExampleCompile() {
	es, _ := expr.ParseString("(int x 0 3) (int y 0 3) (imp (eq x 0) (ge y 2))")
	pb, err := Compile(csp.NewContext(), es, DefaultOptions())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Print(pb)
	// Output:
	// (int x 0 3)
	// (int y 0 3)
	// ; (imp (eq x 0) (ge y 2))
	// (or (ne x 0) (le (add (mul -1 y) 2) 0))
}
