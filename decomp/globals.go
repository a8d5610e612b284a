package decomp

import (
	"github.com/crillab/gophercsp/domain"
	"github.com/crillab/gophercsp/expr"
	"github.com/samber/lo"
)

// A global constraint is rewritten into an equivalent formula.
type global func(cv *Converter, args []expr.Expr) (expr.Expr, error)

var globals map[string]global

func init() {
	globals = map[string]global{
		"alldifferent":                  allDifferent,
		"weightedsum":                   weightedSum,
		"cumulative":                    cumulative,
		"element":                       element,
		"disjunctive":                   disjunctive,
		"lex_less":                      lexLess(false),
		"lex_lesseq":                    lexLess(true),
		"nvalue":                        nValue,
		"count":                         count,
		"global_cardinality":            globalCardinality,
		"global_cardinality_with_costs": globalCardinalityWithCosts,
	}
}

var (
	trueExpr = expr.Symbol("true")
	zero     = expr.Int(0)
	one      = expr.Int(1)
)

func and(es []expr.Expr) expr.Expr {
	if len(es) == 0 {
		return trueExpr
	}
	return expr.Seq("and", es...)
}

func sum(es []expr.Expr) expr.Expr {
	if len(es) == 0 {
		return zero
	}
	return expr.Seq("add", es...)
}

// seq returns the elements of a sequence argument: either a list of expressions
// that is not itself an operation, or the arguments themselves.
func (cv *Converter) seq(args []expr.Expr) []expr.Expr {
	if len(args) == 1 {
		if l, ok := args[0].(expr.List); ok && !operators[canonical(l.Head())] && globals[l.Head()] == nil {
			return l
		}
	}
	return args
}

func list(e expr.Expr, what string) (expr.List, error) {
	l, ok := e.(expr.List)
	if !ok {
		return nil, semErr("%s should be a list, got %v", what, e)
	}
	return l, nil
}

func comparisonOp(e expr.Expr) (string, error) {
	s, ok := e.(expr.Symbol)
	if ok {
		if op := canonical(string(s)); negatedOp[op] != "" {
			return op, nil
		}
	}
	return "", semErr("invalid comparison operator %v", e)
}

// (alldifferent x1 ... xn) or (alldifferent (x1 ... xn))
func allDifferent(cv *Converter, args []expr.Expr) (expr.Expr, error) {
	xs := cv.seq(args)
	var res []expr.Expr
	for i := range xs {
		for j := i + 1; j < len(xs); j++ {
			res = append(res, expr.Seq("ne", xs[i], xs[j]))
		}
	}
	if cv.opts.Pigeon && len(xs) > 2 {
		doms := make([]*domain.Domain, len(xs))
		for i, x := range xs {
			d, err := cv.domainOf(x)
			if err != nil {
				return nil, err
			}
			doms[i] = d
		}
		lb := lo.Min(lo.Map(doms, func(d *domain.Domain, _ int) int { return d.Lower() }))
		ub := lo.Max(lo.Map(doms, func(d *domain.Domain, _ int) int { return d.Upper() }))
		n := len(xs)
		res = append(res,
			expr.Seq("or", lo.Map(xs, func(x expr.Expr, _ int) expr.Expr {
				return expr.Seq("ge", x, expr.Int(lb+n-1))
			})...),
			expr.Seq("or", lo.Map(xs, func(x expr.Expr, _ int) expr.Expr {
				return expr.Seq("le", x, expr.Int(ub-n+1))
			})...))
	}
	return and(res), nil
}

// (weightedsum ((a1 x1) ... (an xn)) op c)
func weightedSum(cv *Converter, args []expr.Expr) (expr.Expr, error) {
	if err := checkArity("weightedsum", args, 3); err != nil {
		return nil, err
	}
	terms, err := list(args[0], "weightedsum terms")
	if err != nil {
		return nil, err
	}
	op, err := comparisonOp(args[1])
	if err != nil {
		return nil, err
	}
	var es []expr.Expr
	for _, t := range terms {
		l, ok := t.(expr.List)
		if !ok || len(l) != 2 {
			return nil, semErr("invalid weighted term %v", t)
		}
		es = append(es, expr.Seq("mul", l[0], l[1]))
	}
	return expr.Seq(op, sum(es), args[2]), nil
}

// (cumulative ((o1 d1 e1 h1) ...) limit), where either o or e can be nil.
func cumulative(cv *Converter, args []expr.Expr) (expr.Expr, error) {
	if err := checkArity("cumulative", args, 2); err != nil {
		return nil, err
	}
	tasks, err := list(args[0], "cumulative tasks")
	if err != nil {
		return nil, err
	}
	limit := args[1]
	type task struct {
		o, d, e, h expr.Expr
		od, ed     *domain.Domain
	}
	var res []expr.Expr
	ts := make([]task, len(tasks))
	points := domain.Empty()
	for i, t := range tasks {
		l, ok := t.(expr.List)
		if !ok || len(l) != 4 {
			return nil, semErr("invalid task %v", t)
		}
		o, d, e, h := l[0], l[1], l[2], l[3]
		switch {
		case expr.IsSymbol(o, "nil") && expr.IsSymbol(e, "nil"):
			return nil, semErr("task %v needs an origin or an end", t)
		case expr.IsSymbol(o, "nil"):
			o = expr.Seq("sub", e, d)
		case expr.IsSymbol(e, "nil"):
			e = expr.Seq("add", o, d)
		default:
			res = append(res, expr.Seq("eq", expr.Seq("add", o, d), e))
		}
		od, err := cv.domainOf(o)
		if err != nil {
			return nil, err
		}
		ed, err := cv.domainOf(e)
		if err != nil {
			return nil, err
		}
		ts[i] = task{o: o, d: d, e: e, h: h, od: od, ed: ed}
		points = points.Cup(od)
	}
	// The load only increases when a task starts.
	for _, t := range points.Values() {
		var terms []expr.Expr
		for _, tk := range ts {
			switch {
			case tk.od.Lower() > t || tk.ed.Upper() <= t:
			case tk.od.Upper() <= t && tk.ed.Lower() > t:
				terms = append(terms, tk.h)
			default:
				active := expr.Seq("and", expr.Seq("le", tk.o, expr.Int(t)), expr.Seq("gt", tk.e, expr.Int(t)))
				terms = append(terms, expr.Seq("if", active, tk.h, zero))
			}
		}
		if len(terms) > 0 {
			res = append(res, expr.Seq("le", sum(terms), limit))
		}
	}
	return and(res), nil
}

// (element index (a1 ... an) value), with 1-based indices.
func element(cv *Converter, args []expr.Expr) (expr.Expr, error) {
	if err := checkArity("element", args, 3); err != nil {
		return nil, err
	}
	index, value := args[0], args[2]
	array, err := list(args[1], "element array")
	if err != nil {
		return nil, err
	}
	res := []expr.Expr{
		expr.Seq("ge", index, one),
		expr.Seq("le", index, expr.Int(len(array))),
	}
	for i, a := range array {
		res = append(res, expr.Seq("or", expr.Seq("ne", index, expr.Int(i+1)), expr.Seq("eq", value, a)))
	}
	return and(res), nil
}

// (disjunctive ((o1 d1) ... (on dn)))
func disjunctive(cv *Converter, args []expr.Expr) (expr.Expr, error) {
	if err := checkArity("disjunctive", args, 1); err != nil {
		return nil, err
	}
	tasks, err := list(args[0], "disjunctive tasks")
	if err != nil {
		return nil, err
	}
	os := make([]expr.Expr, len(tasks))
	ds := make([]expr.Expr, len(tasks))
	for i, t := range tasks {
		l, ok := t.(expr.List)
		if !ok || len(l) < 2 {
			return nil, semErr("invalid task %v", t)
		}
		os[i], ds[i] = l[0], l[1]
	}
	var res []expr.Expr
	for i := range tasks {
		for j := i + 1; j < len(tasks); j++ {
			res = append(res, expr.Seq("or",
				expr.Seq("le", expr.Seq("add", os[i], ds[i]), os[j]),
				expr.Seq("le", expr.Seq("add", os[j], ds[j]), os[i]),
				expr.Seq("eq", ds[i], zero),
				expr.Seq("eq", ds[j], zero)))
		}
	}
	return and(res), nil
}

// (lex_less (x1 ... xn) (y1 ... yn)) and (lex_lesseq (x1 ... xn) (y1 ... yn))
func lexLess(orEqual bool) global {
	return func(cv *Converter, args []expr.Expr) (expr.Expr, error) {
		if err := checkArity("lex_less", args, 2); err != nil {
			return nil, err
		}
		xs, err := list(args[0], "first sequence")
		if err != nil {
			return nil, err
		}
		ys, err := list(args[1], "second sequence")
		if err != nil {
			return nil, err
		}
		if len(xs) != len(ys) || len(xs) == 0 {
			return nil, semErr("lexicographic comparison of sequences of lengths %d and %d", len(xs), len(ys))
		}
		n := len(xs)
		op := "lt"
		if orEqual {
			op = "le"
		}
		res := expr.Expr(expr.Seq(op, xs[n-1], ys[n-1]))
		for i := n - 2; i >= 0; i-- {
			res = expr.Seq("and",
				expr.Seq("le", xs[i], ys[i]),
				expr.Seq("or", expr.Seq("lt", xs[i], ys[i]), res))
		}
		return res, nil
	}
}

// (nvalue count (x1 ... xn))
func nValue(cv *Converter, args []expr.Expr) (expr.Expr, error) {
	if err := checkArity("nvalue", args, 2); err != nil {
		return nil, err
	}
	c := args[0]
	xs, err := list(args[1], "nvalue variables")
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return expr.Seq("eq", c, zero), nil
	}
	// x_i counts iff no later variable takes the same value.
	terms := []expr.Expr{one}
	for i := 0; i < len(xs)-1; i++ {
		var eqs []expr.Expr
		for j := i + 1; j < len(xs); j++ {
			eqs = append(eqs, expr.Seq("eq", xs[i], xs[j]))
		}
		terms = append(terms, expr.Seq("if", expr.Seq("or", eqs...), zero, one))
	}
	return expr.Seq("and",
		expr.Seq("eq", c, sum(terms)),
		expr.Seq("ge", c, one),
		expr.Seq("le", c, expr.Int(len(xs)))), nil
}

// countExpr returns the number of xs equal to value.
func countExpr(value expr.Expr, xs []expr.Expr) expr.Expr {
	return sum(lo.Map(xs, func(x expr.Expr, _ int) expr.Expr {
		return expr.Seq("if", expr.Seq("eq", x, value), one, zero)
	}))
}

// (count value (x1 ... xn) op c)
func count(cv *Converter, args []expr.Expr) (expr.Expr, error) {
	if err := checkArity("count", args, 4); err != nil {
		return nil, err
	}
	xs, err := list(args[1], "count variables")
	if err != nil {
		return nil, err
	}
	op, err := comparisonOp(args[2])
	if err != nil {
		return nil, err
	}
	return expr.Seq(op, countExpr(args[0], xs), args[3]), nil
}

func cardinalities(cv *Converter, args []expr.Expr) (xs expr.List, pairs []expr.List, res []expr.Expr, err error) {
	if xs, err = list(args[0], "global_cardinality variables"); err != nil {
		return nil, nil, nil, err
	}
	cards, err := list(args[1], "global_cardinality values")
	if err != nil {
		return nil, nil, nil, err
	}
	var counts []expr.Expr
	for _, p := range cards {
		l, ok := p.(expr.List)
		if !ok || len(l) != 2 {
			return nil, nil, nil, semErr("invalid cardinality %v", p)
		}
		pairs = append(pairs, l)
		res = append(res, expr.Seq("eq", countExpr(l[0], xs), l[1]))
		counts = append(counts, l[1])
	}
	res = append(res, expr.Seq("le", sum(counts), expr.Int(len(xs))))
	return xs, pairs, res, nil
}

// (global_cardinality (x1 ... xn) ((v1 c1) ... (vm cm)))
func globalCardinality(cv *Converter, args []expr.Expr) (expr.Expr, error) {
	if err := checkArity("global_cardinality", args, 2); err != nil {
		return nil, err
	}
	_, _, res, err := cardinalities(cv, args)
	if err != nil {
		return nil, err
	}
	return and(res), nil
}

// (global_cardinality_with_costs (x1 ... xn) ((v1 c1) ...) ((i j w) ...) cost),
// where w is the cost of assigning value v_j to x_i (1-based indices).
func globalCardinalityWithCosts(cv *Converter, args []expr.Expr) (expr.Expr, error) {
	if err := checkArity("global_cardinality_with_costs", args, 4); err != nil {
		return nil, err
	}
	xs, pairs, res, err := cardinalities(cv, args[:2])
	if err != nil {
		return nil, err
	}
	matrix, err := list(args[2], "cost matrix")
	if err != nil {
		return nil, err
	}
	var costs []expr.Expr
	for _, e := range matrix {
		l, ok := e.(expr.List)
		if !ok || len(l) != 3 {
			return nil, semErr("invalid cost %v", e)
		}
		ij, ok := l[:2].Ints()
		if !ok || ij[0] < 1 || ij[0] > len(xs) || ij[1] < 1 || ij[1] > len(pairs) {
			return nil, semErr("invalid cost indices %v", e)
		}
		x, v := xs[ij[0]-1], pairs[ij[1]-1][0]
		costs = append(costs, expr.Seq("mul", l[2], expr.Seq("if", expr.Seq("eq", x, v), one, zero)))
	}
	return and(append(res, expr.Seq("eq", args[3], sum(costs)))), nil
}
