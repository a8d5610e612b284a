package decomp

import (
	"github.com/crillab/gophercsp/csp"
	"github.com/crillab/gophercsp/expr"
)

var aliases = map[string]string{
	"!":  "not",
	"&&": "and",
	"||": "or",
	"=>": "imp",
	"=":  "eq",
	"!=": "ne",
	"<=": "le",
	"<":  "lt",
	">=": "ge",
	">":  "gt",
	"+":  "add",
	"-":  "sub",
	"*":  "mul",
	"/":  "div",
	"%":  "mod",
}

func canonical(head string) string {
	if c, ok := aliases[head]; ok {
		return c
	}
	return head
}

// Operators of the language, after aliases are resolved.
var operators = map[string]bool{
	"not": true, "and": true, "or": true, "imp": true, "xor": true, "iff": true,
	"eq": true, "ne": true, "le": true, "lt": true, "ge": true, "gt": true,
	"add": true, "sub": true, "neg": true, "mul": true, "div": true, "mod": true,
	"abs": true, "min": true, "max": true, "if": true, "pow": true,
}

// negatedOp gives the comparison holding exactly when the key does not.
var negatedOp = map[string]string{
	"eq": "ne", "ne": "eq", "le": "gt", "gt": "le", "lt": "ge", "ge": "lt",
}

func checkArity(head string, args []expr.Expr, n int) error {
	if len(args) != n {
		return semErr("%s expects %d arguments, got %d", head, n, len(args))
	}
	return nil
}

// constant returns the clauses of a formula whose truth value is known.
func constant(b bool) []*csp.Clause {
	if b {
		return nil
	}
	return []*csp.Clause{csp.NewClause()}
}

// formula converts e, negated when neg is true, into a conjunction of clauses.
func (cv *Converter) formula(e expr.Expr, neg bool) ([]*csp.Clause, error) {
	switch e := e.(type) {
	case expr.Int:
		return nil, semErr("integer %v used as a constraint", e)
	case expr.Symbol:
		switch e {
		case "true":
			return constant(!neg), nil
		case "false":
			return constant(neg), nil
		}
		if v := cv.pb.BoolVar(string(e)); v != nil {
			return []*csp.Clause{csp.NewClause(csp.BoolLit{Var: v, Negative: neg})}, nil
		}
		return nil, semErr("unknown boolean %s", e)
	case expr.List:
		return cv.listFormula(e, neg)
	}
	panic("invalid expression type")
}

func (cv *Converter) listFormula(l expr.List, neg bool) ([]*csp.Clause, error) {
	head := canonical(l.Head())
	args := l.Args()
	switch head {
	case "":
		return nil, semErr("invalid constraint %v", l)
	case "not":
		if err := checkArity(head, args, 1); err != nil {
			return nil, err
		}
		return cv.formula(args[0], !neg)
	case "and":
		if neg {
			return cv.disjunction(args, true)
		}
		return cv.conjunction(args, false)
	case "or":
		if neg {
			return cv.conjunction(args, true)
		}
		return cv.disjunction(args, false)
	case "imp":
		if err := checkArity(head, args, 2); err != nil {
			return nil, err
		}
		return cv.formula(expr.Seq("or", expr.Seq("not", args[0]), args[1]), neg)
	case "xor":
		if err := checkArity(head, args, 2); err != nil {
			return nil, err
		}
		a, b := args[0], args[1]
		return cv.formula(expr.Seq("and",
			expr.Seq("or", a, b),
			expr.Seq("or", expr.Seq("not", a), expr.Seq("not", b))), neg)
	case "iff":
		if err := checkArity(head, args, 2); err != nil {
			return nil, err
		}
		a, b := args[0], args[1]
		return cv.formula(expr.Seq("and",
			expr.Seq("or", expr.Seq("not", a), b),
			expr.Seq("or", a, expr.Seq("not", b))), neg)
	case "if":
		if err := checkArity(head, args, 3); err != nil {
			return nil, err
		}
		c, a, b := args[0], args[1], args[2]
		return cv.formula(expr.Seq("and",
			expr.Seq("or", expr.Seq("not", c), a),
			expr.Seq("or", c, b)), neg)
	case "eq", "ne", "le", "lt", "ge", "gt":
		if err := checkArity(head, args, 2); err != nil {
			return nil, err
		}
		return cv.comparison(head, args[0], args[1], neg)
	}
	if g, ok := globals[head]; ok {
		f, err := g(cv, args)
		if err != nil {
			return nil, err
		}
		return cv.formula(f, neg)
	}
	if r := cv.pb.Relation(head); r != nil {
		return cv.relation(r, args, neg)
	}
	if p, ok := cv.preds[head]; ok {
		if cv.depth >= maxExpansionDepth {
			return nil, semErr("predicate %s: expansion too deep", head)
		}
		body, err := cv.expand(head, p, args)
		if err != nil {
			return nil, err
		}
		cv.depth++
		defer func() { cv.depth-- }()
		return cv.formula(body, neg)
	}
	return nil, semErr("unknown constraint %s", head)
}

func (cv *Converter) conjunction(args []expr.Expr, neg bool) ([]*csp.Clause, error) {
	var res []*csp.Clause
	for _, a := range args {
		cls, err := cv.formula(a, neg)
		if err != nil {
			return nil, err
		}
		res = append(res, cls...)
	}
	return res, nil
}

// disjunction converts the disjunction of args. A disjunct made of several clauses
// is guarded by a fresh boolean p: p is added to the main clause, and not(p) to
// each clause of the disjunct.
func (cv *Converter) disjunction(args []expr.Expr, neg bool) ([]*csp.Clause, error) {
	main := csp.NewClause()
	var res []*csp.Clause
	for _, a := range args {
		cls, err := cv.formula(a, neg)
		if err != nil {
			return nil, err
		}
		switch len(cls) {
		case 0:
			return nil, nil
		case 1:
			main.AddAll(cls[0])
		default:
			p, err := cv.newAuxBool()
			if err != nil {
				return nil, err
			}
			main.Add(csp.BoolLit{Var: p})
			for _, cl := range cls {
				cl.Add(csp.BoolLit{Var: p, Negative: true})
			}
			res = append(res, cls...)
		}
	}
	return append([]*csp.Clause{main}, res...), nil
}

func (cv *Converter) isBoolean(e expr.Expr) bool {
	s, ok := e.(expr.Symbol)
	return ok && (s == "true" || s == "false" || cv.pb.BoolVar(string(s)) != nil)
}

// comparison converts (op a b), negated when neg is true.
func (cv *Converter) comparison(op string, a, b expr.Expr, neg bool) ([]*csp.Clause, error) {
	if neg {
		op = negatedOp[op]
	}
	switch op {
	case "ge":
		op, a, b = "le", b, a
	case "gt":
		op, a, b = "lt", b, a
	}
	if (op == "eq" || op == "ne") && cv.isBoolean(a) && cv.isBoolean(b) {
		if op == "eq" {
			return cv.formula(expr.Seq("iff", a, b), false)
		}
		return cv.formula(expr.Seq("xor", a, b), false)
	}
	if f, ok := absComparison(op, a, b); ok {
		return cv.formula(f, false)
	}
	if f, ok := cv.signComparison(op, a, b); ok {
		return cv.formula(f, false)
	}
	sa, err := cv.linearize(a)
	if err != nil {
		return nil, err
	}
	sb, err := cv.linearize(b)
	if err != nil {
		return nil, err
	}
	s := sa.Sub(sb)
	switch op {
	case "le":
		return literal(s, csp.LE), nil
	case "lt":
		return literal(s.AddConst(1), csp.LE), nil
	case "eq":
		return literal(s, csp.EQ), nil
	default:
		return literal(s, csp.NE), nil
	}
}

// literal returns the clauses of "s op 0".
func literal(s *csp.LinearSum, op csp.Op) []*csp.Clause {
	if s.IsConstant() {
		switch op {
		case csp.LE:
			return constant(s.B <= 0)
		case csp.EQ:
			return constant(s.B == 0)
		default:
			return constant(s.B != 0)
		}
	}
	return []*csp.Clause{csp.NewClause(csp.NewLinearLit(s, op))}
}

func isCall(e expr.Expr, head string) (expr.List, bool) {
	l, ok := e.(expr.List)
	if !ok || canonical(l.Head()) != head {
		return nil, false
	}
	return l, true
}

// absComparison rewrites comparisons involving an absolute value into linear ones.
// op is one of le, lt, eq and ne.
func absComparison(op string, a, b expr.Expr) (expr.Expr, bool) {
	if l, ok := isCall(a, "abs"); ok && len(l) == 2 {
		x := l[1]
		switch op {
		case "le", "lt":
			return expr.Seq("and", expr.Seq(op, x, b), expr.Seq(op, expr.Seq("neg", x), b)), true
		case "eq":
			return expr.Seq("and",
				expr.Seq("ge", b, expr.Int(0)),
				expr.Seq("or", expr.Seq("eq", x, b), expr.Seq("eq", x, expr.Seq("neg", b)))), true
		default:
			return expr.Seq("or",
				expr.Seq("lt", b, expr.Int(0)),
				expr.Seq("and", expr.Seq("ne", x, b), expr.Seq("ne", x, expr.Seq("neg", b)))), true
		}
	}
	if l, ok := isCall(b, "abs"); ok && len(l) == 2 {
		x := l[1]
		switch op {
		case "le", "lt":
			return expr.Seq("or", expr.Seq(op, a, x), expr.Seq(op, a, expr.Seq("neg", x))), true
		default:
			return absComparison(op, b, a)
		}
	}
	return nil, false
}

// signComparison rewrites the comparison of a product of two variables with 0
// as a combination of the signs of the factors. op is one of le, lt, eq and ne.
func (cv *Converter) signComparison(op string, a, b expr.Expr) (expr.Expr, bool) {
	prod, zero := a, b
	if v, ok := cv.eval(zero); !ok || v != 0 {
		prod, zero = b, a
		if v, ok := cv.eval(zero); !ok || v != 0 {
			return nil, false
		}
		// 0 op prod: swap the direction of the inequality
		switch op {
		case "le":
			op = "ge"
		case "lt":
			op = "gt"
		}
	}
	l, ok := isCall(prod, "mul")
	if !ok || len(l) != 3 {
		return nil, false
	}
	x, y := l[1], l[2]
	if _, ok := cv.eval(x); ok {
		return nil, false
	}
	if _, ok := cv.eval(y); ok {
		return nil, false
	}
	zero = expr.Int(0)
	both := func(opx, opy string) expr.Expr {
		return expr.Seq("and", expr.Seq(opx, x, zero), expr.Seq(opy, y, zero))
	}
	switch op {
	case "eq":
		return expr.Seq("or", expr.Seq("eq", x, zero), expr.Seq("eq", y, zero)), true
	case "ne":
		return expr.Seq("and", expr.Seq("ne", x, zero), expr.Seq("ne", y, zero)), true
	case "gt":
		return expr.Seq("or", both("gt", "gt"), both("lt", "lt")), true
	case "ge":
		return expr.Seq("or", both("ge", "ge"), both("le", "le")), true
	case "lt":
		return expr.Seq("or", both("gt", "lt"), both("lt", "gt")), true
	default:
		return expr.Seq("or", both("ge", "le"), both("le", "ge")), true
	}
}

// relation converts the application of r to args.
func (cv *Converter) relation(r *csp.Relation, args []expr.Expr, neg bool) ([]*csp.Clause, error) {
	if len(args) != r.Arity {
		return nil, semErr("relation %s expects %d arguments, got %d", r.Name, r.Arity, len(args))
	}
	vars := make([]*csp.IntVar, len(args))
	for i, a := range args {
		s, err := cv.linearize(a)
		if err != nil {
			return nil, err
		}
		if vars[i], err = cv.toVar(s); err != nil {
			return nil, err
		}
	}
	if neg {
		r = r.Negation()
	}
	return r.Clauses(vars)
}
