package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crillab/gophercsp/decomp"
)

func testConfig() config {
	return config{solver: "gophersat", memo: decomp.DefaultMemoSize, pigeon: true}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("could not write %s: %v", name, err)
	}
	return path
}

func TestRun(t *testing.T) {
	path := writeFile(t, "pb.csp", `
; two numbers
(int x 0 9)
(int y 0 9)
(eq (+ x y) 12)
(eq (- x y) 2)
(objective maximize x)`)
	var out bytes.Buffer
	if err := run(path, testConfig(), &out); err != nil {
		t.Fatalf("could not run: %v", err)
	}
	for _, want := range []string{"s SATISFIABLE\n", "a x 7\n", "a y 5\n", "o 7\n"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output should contain %q, got:\n%s", want, out.String())
		}
	}
}

func TestRunUnsat(t *testing.T) {
	path := writeFile(t, "pb.csp", "(int x 0 3) (int y 0 3) (gt (+ x y) 7)")
	var out bytes.Buffer
	if err := run(path, testConfig(), &out); err != nil {
		t.Fatalf("could not run: %v", err)
	}
	if !strings.Contains(out.String(), "s UNSATISFIABLE\n") {
		t.Errorf("expected UNSAT, got:\n%s", out.String())
	}
}

func TestEncodeThenDecode(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, "pb.csp", "(int x (1 3 5)) (bool p) (imp p (ge x 4))")
	cfg := testConfig()
	cfg.encodeOnly = true
	cfg.cnf, cfg.mapFile = filepath.Join(dir, "pb.cnf"), filepath.Join(dir, "pb.map")
	var out bytes.Buffer
	if err := run(path, cfg, &out); err != nil {
		t.Fatalf("could not encode: %v", err)
	}
	// p is variable 1, x <= 1 and x <= 3 are variables 2 and 3
	output := writeFile(t, "pb.out", "c external solver\ns SATISFIABLE\nv 1 -2 -3 0\n")
	out.Reset()
	if err := decodeFile(output, cfg.mapFile, &out); err != nil {
		t.Fatalf("could not decode: %v", err)
	}
	if want := "s SATISFIABLE\na x 5\na p true\n"; out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}
}

func TestEncodeOnlyTemporaryFiles(t *testing.T) {
	path := writeFile(t, "pb.csp", "(int x 0 3) (int y 0 3) (lt x y)")
	cfg := testConfig()
	cfg.encodeOnly = true
	var out bytes.Buffer
	if err := run(path, cfg, &out); err != nil {
		t.Fatalf("could not encode: %v", err)
	}
	line := strings.TrimSpace(out.String())
	if !strings.HasPrefix(line, "c CNF written to ") {
		t.Fatalf("unexpected output %q", line)
	}
	files := strings.Split(strings.TrimPrefix(line, "c CNF written to "), ", map written to ")
	if len(files) != 2 {
		t.Fatalf("unexpected output %q", line)
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("%s should have been kept: %v", f, err)
		}
		os.Remove(f)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []string{"(int x 0 3", "(int x 0 3) (foo x)", "(int x 0 3) (eq (pow x x) 1)"}
	for _, src := range tests {
		path := writeFile(t, "pb.csp", src)
		if err := run(path, testConfig(), &bytes.Buffer{}); err == nil {
			t.Errorf("%s: expected an error", src)
		}
	}
	if err := run("/does/not/exist.csp", testConfig(), &bytes.Buffer{}); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
