package decomp

import (
	"errors"
	"fmt"

	"github.com/crillab/gophercsp/csp"
	"github.com/crillab/gophercsp/domain"
	"github.com/crillab/gophercsp/expr"
	"github.com/golang/glog"
)

// ErrSemantic is returned when an expression is syntactically valid but meaningless:
// unknown symbols, wrong arities, malformed declarations.
var ErrSemantic = errors.New("semantic error")

func semErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSemantic, fmt.Sprintf(format, args...))
}

// maxExpansionDepth bounds the nesting of predicate calls.
const maxExpansionDepth = 1000

// Options tune the decomposition.
type Options struct {
	MemoSize int  // Capacity of the memo; 0 means DefaultMemoSize
	Pigeon   bool // Add pigeonhole clauses to alldifferent constraints
}

// DefaultOptions returns the options used by default.
func DefaultOptions() Options {
	return Options{MemoSize: DefaultMemoSize, Pigeon: true}
}

type predicate struct {
	params []string
	body   expr.Expr
}

// A Converter translates expressions into the variables and clauses of a CSP.
type Converter struct {
	ctx     *csp.Context
	pb      *csp.CSP
	opts    Options
	memo    *Memo
	domains map[string]*domain.Domain
	preds   map[string]*predicate
	pending []expr.Expr // Definitions of auxiliary variables, not converted yet
	depth   int
}

// New returns a converter adding its output to pb.
func New(ctx *csp.Context, pb *csp.CSP, opts Options) (*Converter, error) {
	memo, err := NewMemo(opts.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("could not create memo: %v", err)
	}
	return &Converter{
		ctx:     ctx,
		pb:      pb,
		opts:    opts,
		memo:    memo,
		domains: make(map[string]*domain.Domain),
		preds:   make(map[string]*predicate),
	}, nil
}

// Compile converts all the expressions into a new CSP.
func Compile(ctx *csp.Context, es []expr.Expr, opts Options) (*csp.CSP, error) {
	pb := csp.New()
	cv, err := New(ctx, pb, opts)
	if err != nil {
		return nil, err
	}
	if err := cv.Convert(es); err != nil {
		return nil, err
	}
	return pb, nil
}

// Memo returns the memo used by cv.
func (cv *Converter) Memo() *Memo { return cv.memo }

// Convert converts the given declarations and constraints.
func (cv *Converter) Convert(es []expr.Expr) error {
	for _, e := range es {
		if err := cv.convert(e); err != nil {
			return fmt.Errorf("could not convert %v: %w", e, err)
		}
	}
	glog.V(1).Infof("decomposition: %s", cv.pb.Stats())
	glog.V(1).Infof("decomposition: memo has %d entries, %d hits, %d evictions", cv.memo.Len(), cv.memo.Hits(), cv.memo.Evictions())
	return nil
}

func (cv *Converter) convert(e expr.Expr) error {
	if l, ok := e.(expr.List); ok {
		switch l.Head() {
		case "domain":
			return cv.declareDomain(l.Args())
		case "int":
			return cv.declareInt(l.Args())
		case "bool":
			return cv.declareBool(l.Args())
		case "objective":
			return cv.declareObjective(l.Args())
		case "relation":
			return cv.declareRelation(l.Args())
		case "predicate":
			return cv.declarePredicate(l.Args())
		}
	}
	return cv.addConstraint(e)
}

func (cv *Converter) addConstraint(e expr.Expr) error {
	cls, err := cv.formula(e, false)
	if err != nil {
		return err
	}
	for _, cl := range cls {
		if cl.Comment == "" {
			cl.Comment = e.String()
		}
		cv.pb.AddClause(cl)
	}
	for len(cv.pending) > 0 {
		def := cv.pending[0]
		cv.pending = cv.pending[1:]
		cls, err := cv.formula(def, false)
		if err != nil {
			return err
		}
		for _, cl := range cls {
			cl.Comment = def.String()
			cv.pb.AddClause(cl)
		}
	}
	return nil
}

func symbolName(e expr.Expr) (string, error) {
	s, ok := e.(expr.Symbol)
	if !ok {
		return "", semErr("%v is not a valid name", e)
	}
	return string(s), nil
}

// parseDomain parses "lb ub", "v" or "(v (lo hi) ...)".
func parseDomain(args []expr.Expr) (*domain.Domain, error) {
	switch len(args) {
	case 1:
		switch a := args[0].(type) {
		case expr.Int:
			return domain.Singleton(int(a)), nil
		case expr.List:
			var vs []int
			for _, e := range a {
				switch e := e.(type) {
				case expr.Int:
					vs = append(vs, int(e))
				case expr.List:
					bounds, ok := e.Ints()
					if !ok || len(bounds) != 2 {
						return nil, semErr("invalid range %v", e)
					}
					for v := bounds[0]; v <= bounds[1]; v++ {
						vs = append(vs, v)
					}
				default:
					return nil, semErr("invalid domain value %v", e)
				}
			}
			d, err := domain.NewSet(vs)
			if err != nil {
				return nil, semErr("%v", err)
			}
			return d, nil
		}
	case 2:
		lb, ok1 := args[0].(expr.Int)
		ub, ok2 := args[1].(expr.Int)
		if ok1 && ok2 {
			d, err := domain.New(int(lb), int(ub))
			if err != nil {
				return nil, semErr("%v", err)
			}
			return d, nil
		}
	}
	return nil, semErr("invalid domain %v", expr.List(args))
}

func (cv *Converter) declareDomain(args []expr.Expr) error {
	if len(args) < 2 {
		return semErr("domain declaration needs a name and values")
	}
	name, err := symbolName(args[0])
	if err != nil {
		return err
	}
	if _, ok := cv.domains[name]; ok {
		return semErr("domain %s declared twice", name)
	}
	d, err := parseDomain(args[1:])
	if err != nil {
		return err
	}
	cv.domains[name] = d
	return nil
}

func (cv *Converter) declareInt(args []expr.Expr) error {
	if len(args) < 2 {
		return semErr("int declaration needs a name and a domain")
	}
	name, err := symbolName(args[0])
	if err != nil {
		return err
	}
	var d *domain.Domain
	if s, ok := args[1].(expr.Symbol); ok && len(args) == 2 {
		if d, ok = cv.domains[string(s)]; !ok {
			return semErr("unknown domain %s", s)
		}
	} else if d, err = parseDomain(args[1:]); err != nil {
		return err
	}
	if _, err := cv.pb.NewIntVar(name, d, false); err != nil {
		return semErr("%v", err)
	}
	return nil
}

func (cv *Converter) declareBool(args []expr.Expr) error {
	if len(args) != 1 {
		return semErr("bool declaration needs exactly one name")
	}
	name, err := symbolName(args[0])
	if err != nil {
		return err
	}
	if _, err := cv.pb.NewBoolVar(name, false); err != nil {
		return semErr("%v", err)
	}
	return nil
}

func (cv *Converter) declareObjective(args []expr.Expr) error {
	if len(args) != 2 {
		return semErr("objective declaration needs a direction and a variable")
	}
	var dir csp.Objective
	switch {
	case expr.IsSymbol(args[0], "minimize"):
		dir = csp.Minimize
	case expr.IsSymbol(args[0], "maximize"):
		dir = csp.Maximize
	default:
		return semErr("invalid objective direction %v", args[0])
	}
	name, err := symbolName(args[1])
	if err != nil {
		return err
	}
	v := cv.pb.IntVar(name)
	if v == nil {
		return semErr("unknown integer variable %s", name)
	}
	cv.pb.SetObjective(dir, v)
	return nil
}

func (cv *Converter) declareRelation(args []expr.Expr) error {
	if len(args) != 3 {
		return semErr("relation declaration needs a name, an arity and tuples")
	}
	name, err := symbolName(args[0])
	if err != nil {
		return err
	}
	arity, ok := args[1].(expr.Int)
	if !ok || arity <= 0 {
		return semErr("invalid arity %v for relation %s", args[1], name)
	}
	body, ok := args[2].(expr.List)
	if !ok || (body.Head() != "supports" && body.Head() != "conflicts") {
		return semErr("relation %s: expected (supports ...) or (conflicts ...)", name)
	}
	tuples := make([][]int, 0, len(body.Args()))
	for _, t := range body.Args() {
		l, ok := t.(expr.List)
		if !ok {
			return semErr("relation %s: invalid tuple %v", name, t)
		}
		vs, ok := l.Ints()
		if !ok || len(vs) != int(arity) {
			return semErr("relation %s: invalid tuple %v", name, t)
		}
		tuples = append(tuples, vs)
	}
	r, err := csp.NewRelation(name, int(arity), body.Head() == "conflicts", tuples)
	if err != nil {
		return semErr("%v", err)
	}
	if err := cv.pb.AddRelation(r); err != nil {
		return semErr("%v", err)
	}
	return nil
}

func (cv *Converter) declarePredicate(args []expr.Expr) error {
	if len(args) != 2 {
		return semErr("predicate declaration needs a signature and a body")
	}
	sig, ok := args[0].(expr.List)
	if !ok || len(sig) == 0 {
		return semErr("invalid predicate signature %v", args[0])
	}
	names := make([]string, len(sig))
	for i, e := range sig {
		name, err := symbolName(e)
		if err != nil {
			return err
		}
		names[i] = name
	}
	if _, ok := cv.preds[names[0]]; ok {
		return semErr("predicate %s declared twice", names[0])
	}
	cv.preds[names[0]] = &predicate{params: names[1:], body: args[1]}
	return nil
}

// expand returns the body of the predicate p applied to args.
func (cv *Converter) expand(name string, p *predicate, args []expr.Expr) (expr.Expr, error) {
	if len(args) != len(p.params) {
		return nil, semErr("predicate %s expects %d arguments, got %d", name, len(p.params), len(args))
	}
	bindings := make(map[string]expr.Expr, len(args))
	for i, param := range p.params {
		bindings[param] = args[i]
	}
	return expr.Substitute(p.body, bindings), nil
}

// newAuxInt creates an auxiliary integer variable.
func (cv *Converter) newAuxInt(d *domain.Domain) (*csp.IntVar, error) {
	return cv.pb.NewIntVar(cv.ctx.NextName(csp.DecompInt), d, true)
}

// newAuxBool creates an auxiliary boolean variable.
func (cv *Converter) newAuxBool() (*csp.BoolVar, error) {
	return cv.pb.NewBoolVar(cv.ctx.NextName(csp.DecompBool), true)
}
