package expr

import (
	"errors"
	"fmt"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"(int x 0 9)", []string{"(int x 0 9)"}},
		{"; comment\n(bool p) ; other\n(or p (not p))", []string{"(bool p)", "(or p (not p))"}},
		{"(<= (+ x -3) y)", []string{"(<= (+ x -3) y)"}},
		{"(relation R 2 (supports (1 2) (2 3)))", []string{"(relation R 2 (supports (1 2) (2 3)))"}},
		{"()", []string{"()"}},
		{"", nil},
		{"x$1 a.b", []string{"x$1", "a.b"}},
	}
	for _, test := range tests {
		es, err := ParseString(test.input)
		if err != nil {
			t.Errorf("could not parse %q: %v", test.input, err)
			continue
		}
		if len(es) != len(test.want) {
			t.Errorf("parsing %q: expected %d expressions, got %d", test.input, len(test.want), len(es))
			continue
		}
		for i, e := range es {
			if e.String() != test.want[i] {
				t.Errorf("parsing %q: expected %s, got %s", test.input, test.want[i], e)
			}
		}
	}
}

func TestParseInts(t *testing.T) {
	es, err := ParseString("(-3 4 +5 - +)")
	if err != nil {
		t.Fatalf("could not parse: %v", err)
	}
	l := es[0].(List)
	if _, ok := l[0].(Int); !ok {
		t.Errorf("-3 should be an Int")
	}
	if l[2] != Int(5) {
		t.Errorf("+5 should be the Int 5, got %v", l[2])
	}
	if !IsSymbol(l[3], "-") || !IsSymbol(l[4], "+") {
		t.Errorf("- and + should be symbols")
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"(int x 0 9", ")", "(a (b)"} {
		if _, err := ParseString(input); !errors.Is(err, ErrSyntax) {
			t.Errorf("parsing %q: expected a syntax error, got %v", input, err)
		}
	}
}

func TestSubstitute(t *testing.T) {
	es, _ := ParseString("(le (add x y) z)")
	got := Substitute(es[0], map[string]Expr{"x": Int(3), "z": Seq("mul", Symbol("a"), Int(2))})
	if got.String() != "(le (add 3 y) (mul a 2))" {
		t.Errorf("invalid substitution, got %v", got)
	}
}

func ExampleParse() {
	es, err := ParseString("(int x 1 3) (alldifferent x y z) ; done")
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, e := range es {
		l := e.(List)
		fmt.Println(l.Head(), len(l.Args()))
	}
	// Output:
	// int 3
	// alldifferent 3
}
