package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/crillab/gophercsp/csp"
	"github.com/crillab/gophercsp/decomp"
	"github.com/crillab/gophercsp/expr"
	"github.com/crillab/gophercsp/order"
	"github.com/crillab/gophercsp/sat"
	"github.com/golang/glog"
)

type config struct {
	cnf, mapFile, out string
	solver            string
	timeout           time.Duration
	encodeOnly        bool
	decode            bool
	memo              int
	pigeon            bool
	simplifyAll       bool
	dump              bool
	verbose           bool
}

func main() {
	debug.SetGCPercent(300)
	var cfg config
	flag.StringVar(&cfg.cnf, "cnf", "", "path of the CNF file (a temporary file if empty)")
	flag.StringVar(&cfg.mapFile, "map", "", "path of the map file (a temporary file if empty)")
	flag.StringVar(&cfg.out, "out", "", "path where the solver output is saved")
	flag.StringVar(&cfg.solver, "solver", "gophersat", "solver: gophersat, gini, or a command line running an external solver")
	flag.DurationVar(&cfg.timeout, "timeout", 0, "maximum solving time, 0 for none")
	flag.BoolVar(&cfg.encodeOnly, "encode-only", false, "writes the CNF and map files without solving")
	flag.BoolVar(&cfg.decode, "decode", false, "decodes the solver output given as argument, using the -map file")
	flag.IntVar(&cfg.memo, "memo", decomp.DefaultMemoSize, "maximum number of memoized sub-expressions")
	flag.BoolVar(&cfg.pigeon, "pigeon", true, "adds pigeonhole clauses to alldifferent constraints")
	flag.BoolVar(&cfg.simplifyAll, "simplify-all", false, "guards every complex literal that is not alone in its clause")
	flag.BoolVar(&cfg.dump, "dump", false, "dumps the CSP before encoding, as comment lines")
	flag.BoolVar(&cfg.verbose, "verbose", false, "sets verbose mode on")
	flag.Parse()
	if len(flag.Args()) != 1 {
		fmt.Fprintf(os.Stderr, "Syntax : %s [options] (file.csp|solver-output)\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Args()[0]
	var err error
	if cfg.decode {
		err = decodeFile(path, cfg.mapFile, os.Stdout)
	} else {
		err = run(path, cfg, os.Stdout)
	}
	glog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func decodeFile(path, mapFile string, w io.Writer) error {
	if mapFile == "" {
		return fmt.Errorf("-decode needs a -map file")
	}
	mf, err := os.Open(mapFile)
	if err != nil {
		return fmt.Errorf("could not open %q: %v", mapFile, err)
	}
	defer mf.Close()
	m, err := order.ReadMap(mf)
	if err != nil {
		return fmt.Errorf("could not read %q: %v", mapFile, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open %q: %v", path, err)
	}
	defer f.Close()
	res, err := order.Decode(f, m)
	if err != nil {
		return fmt.Errorf("could not decode %q: %w", path, err)
	}
	return res.Write(w)
}

func parse(path string, ctx *csp.Context, cfg config) (*csp.CSP, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %v", path, err)
	}
	defer f.Close()
	es, err := expr.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse %q: %w", path, err)
	}
	opts := decomp.Options{MemoSize: cfg.memo, Pigeon: cfg.pigeon}
	pb, err := decomp.Compile(ctx, es, opts)
	if err != nil {
		return nil, fmt.Errorf("could not compile %q: %w", path, err)
	}
	return pb, nil
}

// tempPath returns path, or the path of a new temporary file and a function removing it.
func tempPath(path, pattern string) (string, func(), error) {
	if path != "" {
		return path, func() {}, nil
	}
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("could not create temporary file: %v", err)
	}
	f.Close()
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}

func run(path string, cfg config, w io.Writer) error {
	if cfg.verbose {
		fmt.Fprintf(w, "c compiling %s\n", path)
	}
	ctx := csp.NewContext()
	pb, err := parse(path, ctx, cfg)
	if err != nil {
		return err
	}
	if cfg.verbose {
		fmt.Fprintf(w, "c %s\n", pb.Stats())
	}
	pb.Propagate()
	if pb.IsUnsatisfiable() {
		fmt.Fprintln(w, "c unsatisfiable after propagation")
		fmt.Fprintln(w, sat.Unsat.Line())
		return nil
	}
	if _, err := pb.Simplify(ctx, cfg.simplifyAll); err != nil {
		return fmt.Errorf("could not simplify: %w", err)
	}
	if cfg.dump {
		for _, line := range strings.Split(strings.TrimSuffix(pb.String(), "\n"), "\n") {
			fmt.Fprintf(w, "c %s\n", line)
		}
	}
	cnf, removeCNF, err := tempPath(cfg.cnf, "*.cnf")
	if err != nil {
		return err
	}
	if !cfg.encodeOnly {
		defer removeCNF()
	}
	enc := order.New(ctx, pb)
	enc.Comments = cfg.verbose
	if err := enc.Encode(cnf); err != nil {
		return fmt.Errorf("could not encode: %w", err)
	}
	if cfg.verbose {
		fmt.Fprintf(w, "c %s\n", pb.Stats())
		fmt.Fprintf(w, "c %d SAT variables, %d clauses\n", enc.NbVars(), enc.NbClauses())
	}
	if cfg.mapFile != "" || cfg.encodeOnly {
		mapFile, removeMap, err := tempPath(cfg.mapFile, "*.map")
		if err != nil {
			return err
		}
		if cfg.mapFile == "" && !cfg.encodeOnly {
			defer removeMap()
		}
		if err := enc.WriteMap(mapFile); err != nil {
			return err
		}
		if cfg.encodeOnly {
			fmt.Fprintf(w, "c CNF written to %s, map written to %s\n", cnf, mapFile)
			return nil
		}
	}
	return solve(cnf, order.NewVarMap(pb, false), cfg, w)
}

func solve(cnf string, m *order.VarMap, cfg config, w io.Writer) error {
	backend, err := sat.New(cfg.solver, cfg.verbose)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}
	var out bytes.Buffer
	start := time.Now()
	if err := backend.Solve(ctx, cnf, &out); err != nil {
		return err
	}
	if cfg.verbose {
		fmt.Fprintf(w, "c solved in %v\n", time.Since(start))
	}
	if cfg.out != "" {
		if err := os.WriteFile(cfg.out, out.Bytes(), 0644); err != nil {
			return fmt.Errorf("could not save solver output: %v", err)
		}
	}
	res, err := order.Decode(&out, m)
	if err != nil {
		return fmt.Errorf("could not decode solver output: %w", err)
	}
	return res.Write(w)
}
