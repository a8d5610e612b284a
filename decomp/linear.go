package decomp

import (
	"fmt"
	"sort"

	"github.com/crillab/gophercsp/csp"
	"github.com/crillab/gophercsp/domain"
	"github.com/crillab/gophercsp/expr"
)

// eval returns the value of e if it is a constant expression.
func (cv *Converter) eval(e expr.Expr) (int, bool) {
	switch e := e.(type) {
	case expr.Int:
		return int(e), true
	case expr.List:
		head := canonical(e.Head())
		args := e.Args()
		if !operators[head] || len(args) == 0 {
			return 0, false
		}
		vals := make([]int, len(args))
		for i, a := range args {
			v, ok := cv.eval(a)
			if !ok {
				return 0, false
			}
			vals[i] = v
		}
		return evalOp(head, vals)
	}
	return 0, false
}

func evalOp(head string, vals []int) (int, bool) {
	switch head {
	case "add":
		res := 0
		for _, v := range vals {
			res += v
		}
		return res, true
	case "sub":
		if len(vals) == 1 {
			return -vals[0], true
		}
		res := vals[0]
		for _, v := range vals[1:] {
			res -= v
		}
		return res, true
	case "neg":
		return -vals[0], len(vals) == 1
	case "mul":
		res := 1
		for _, v := range vals {
			res *= v
		}
		return res, true
	case "div", "mod":
		if len(vals) != 2 || vals[1] == 0 {
			return 0, false
		}
		if head == "div" {
			return domain.FloorDiv(vals[0], vals[1]), true
		}
		return domain.FloorMod(vals[0], vals[1]), true
	case "abs":
		if len(vals) != 1 {
			return 0, false
		}
		if vals[0] < 0 {
			return -vals[0], true
		}
		return vals[0], true
	case "min", "max":
		res := vals[0]
		for _, v := range vals[1:] {
			if head == "min" && v < res || head == "max" && v > res {
				res = v
			}
		}
		return res, true
	case "pow":
		if len(vals) != 2 || vals[1] < 0 {
			return 0, false
		}
		return domain.Pow(vals[0], vals[1]), true
	}
	return 0, false
}

// linearize converts an integer expression into a linear sum, flattening
// non-linear sub-expressions into auxiliary variables.
func (cv *Converter) linearize(e expr.Expr) (*csp.LinearSum, error) {
	if v, ok := cv.eval(e); ok {
		return csp.NewLinearSum(v), nil
	}
	switch e := e.(type) {
	case expr.Symbol:
		if v := cv.pb.IntVar(string(e)); v != nil {
			return csp.VarSum(v), nil
		}
		if cv.pb.BoolVar(string(e)) != nil {
			return nil, semErr("boolean %s used as an integer", e)
		}
		return nil, semErr("unknown integer variable %s", e)
	case expr.List:
		head := canonical(e.Head())
		args := e.Args()
		switch head {
		case "add":
			res := csp.NewLinearSum(0)
			for _, a := range args {
				s, err := cv.linearize(a)
				if err != nil {
					return nil, err
				}
				res = res.Add(s)
			}
			return res, nil
		case "sub", "neg":
			if len(args) == 0 || head == "neg" && len(args) != 1 {
				return nil, semErr("invalid arity for %s", head)
			}
			res, err := cv.linearize(args[0])
			if err != nil {
				return nil, err
			}
			if len(args) == 1 {
				return res.Mul(-1), nil
			}
			for _, a := range args[1:] {
				s, err := cv.linearize(a)
				if err != nil {
					return nil, err
				}
				res = res.Sub(s)
			}
			return res, nil
		case "mul":
			if len(args) == 0 {
				return nil, semErr("mul expects arguments")
			}
			res, err := cv.linearize(args[0])
			if err != nil {
				return nil, err
			}
			for _, a := range args[1:] {
				s, err := cv.linearize(a)
				if err != nil {
					return nil, err
				}
				if res, err = cv.multiply(res, s); err != nil {
					return nil, err
				}
			}
			return res, nil
		case "pow":
			return cv.power(args)
		case "abs", "min", "max", "if", "div", "mod":
			v, err := cv.flatten(head, args)
			if err != nil {
				return nil, err
			}
			return csp.VarSum(v), nil
		}
		return nil, semErr("unknown integer expression %v", e)
	}
	return nil, semErr("invalid integer expression %v", e)
}

// multiply returns s*t. When neither is constant, their product is represented
// by an auxiliary variable.
func (cv *Converter) multiply(s, t *csp.LinearSum) (*csp.LinearSum, error) {
	switch {
	case s.IsConstant():
		return t.Mul(s.B), nil
	case t.IsConstant():
		return s.Mul(t.B), nil
	}
	x, err := cv.toVar(s)
	if err != nil {
		return nil, err
	}
	y, err := cv.toVar(t)
	if err != nil {
		return nil, err
	}
	names := []string{x.Name, y.Name}
	sort.Strings(names)
	key := fmt.Sprintf("(mul %s %s)", names[0], names[1])
	if z, ok := cv.memo.Get(key); ok {
		return csp.VarSum(z), nil
	}
	z, err := cv.newAuxInt(x.Domain().Mul(y.Domain()))
	if err != nil {
		return nil, err
	}
	cl := csp.NewClause(&csp.ProductLit{Z: z, X: x, Y: y})
	cl.Comment = fmt.Sprintf("%s = %s", z.Name, key)
	cv.pb.AddClause(cl)
	cv.memo.Add(key, z)
	return csp.VarSum(z), nil
}

// power converts (pow a n) for a constant, non-negative n into repeated multiplications.
func (cv *Converter) power(args []expr.Expr) (*csp.LinearSum, error) {
	if err := checkArity("pow", args, 2); err != nil {
		return nil, err
	}
	n, ok := cv.eval(args[1])
	if !ok {
		return nil, fmt.Errorf("%w: pow with a variable exponent", csp.ErrUnsupported)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: pow with a negative exponent", csp.ErrUnsupported)
	}
	base, err := cv.linearize(args[0])
	if err != nil {
		return nil, err
	}
	res := csp.NewLinearSum(1)
	for i := 0; i < n; i++ {
		if res, err = cv.multiply(res, base); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// toVar returns a variable equal to s, creating it if needed.
func (cv *Converter) toVar(s *csp.LinearSum) (*csp.IntVar, error) {
	if v, ok := s.IsVar(); ok {
		return v, nil
	}
	key := s.String()
	if v, ok := cv.memo.Get(key); ok {
		return v, nil
	}
	v, err := cv.newAuxInt(s.Domain())
	if err != nil {
		return nil, err
	}
	cl := csp.NewClause(csp.NewLinearLit(csp.VarSum(v).Sub(s), csp.EQ))
	cl.Comment = fmt.Sprintf("%s = %s", v.Name, key)
	cv.pb.AddClause(cl)
	cv.memo.Add(key, v)
	return v, nil
}

// define creates an auxiliary variable with domain d standing for key, and queues its
// definition, built by def from the variable's name.
func (cv *Converter) define(key string, d *domain.Domain, def func(v expr.Expr) expr.Expr) (*csp.IntVar, error) {
	v, err := cv.newAuxInt(d)
	if err != nil {
		return nil, err
	}
	cv.memo.Add(key, v)
	cv.pending = append(cv.pending, def(expr.Symbol(v.Name)))
	return v, nil
}

func (cv *Converter) domainOf(e expr.Expr) (*domain.Domain, error) {
	s, err := cv.linearize(e)
	if err != nil {
		return nil, err
	}
	return s.Domain(), nil
}

// flatten returns the auxiliary variable standing for (head args...).
func (cv *Converter) flatten(head string, args []expr.Expr) (*csp.IntVar, error) {
	key := expr.Seq(head, args...).String()
	if v, ok := cv.memo.Get(key); ok {
		return v, nil
	}
	switch head {
	case "abs":
		if err := checkArity(head, args, 1); err != nil {
			return nil, err
		}
		a := args[0]
		d, err := cv.domainOf(a)
		if err != nil {
			return nil, err
		}
		return cv.define(key, d.Abs(), func(v expr.Expr) expr.Expr {
			na := expr.Seq("neg", a)
			return expr.Seq("and", expr.Seq("ge", v, a), expr.Seq("ge", v, na),
				expr.Seq("or", expr.Seq("le", v, a), expr.Seq("le", v, na)))
		})
	case "min", "max":
		return cv.flattenMinMax(head, key, args)
	case "if":
		if err := checkArity(head, args, 3); err != nil {
			return nil, err
		}
		c, a, b := args[0], args[1], args[2]
		da, err := cv.domainOf(a)
		if err != nil {
			return nil, err
		}
		db, err := cv.domainOf(b)
		if err != nil {
			return nil, err
		}
		return cv.define(key, da.Cup(db), func(v expr.Expr) expr.Expr {
			return expr.Seq("and",
				expr.Seq("or", expr.Seq("not", c), expr.Seq("eq", v, a)),
				expr.Seq("or", c, expr.Seq("eq", v, b)))
		})
	case "div", "mod":
		if err := checkArity(head, args, 2); err != nil {
			return nil, err
		}
		q, r, err := cv.flattenDivMod(args[0], args[1])
		if err != nil {
			return nil, err
		}
		if head == "div" {
			return q, nil
		}
		return r, nil
	}
	return nil, semErr("unknown integer expression %s", head)
}

func (cv *Converter) flattenMinMax(head, key string, args []expr.Expr) (*csp.IntVar, error) {
	if len(args) == 0 {
		return nil, semErr("%s expects arguments", head)
	}
	if len(args) == 1 {
		s, err := cv.linearize(args[0])
		if err != nil {
			return nil, err
		}
		return cv.toVar(s)
	}
	if len(args) > 2 {
		first, err := cv.flatten(head, args[:2])
		if err != nil {
			return nil, err
		}
		rest := append([]expr.Expr{expr.Symbol(first.Name)}, args[2:]...)
		return cv.flatten(head, rest)
	}
	a, b := args[0], args[1]
	da, err := cv.domainOf(a)
	if err != nil {
		return nil, err
	}
	db, err := cv.domainOf(b)
	if err != nil {
		return nil, err
	}
	d, in, out := da.Min(db), "le", "ge"
	if head == "max" {
		d, in, out = da.Max(db), "ge", "le"
	}
	return cv.define(key, d, func(v expr.Expr) expr.Expr {
		return expr.Seq("and", expr.Seq(in, v, a), expr.Seq(in, v, b),
			expr.Seq("or", expr.Seq(out, v, a), expr.Seq(out, v, b)))
	})
}

// remainderRange returns the constraint on the remainder r of a division by k != 0.
func remainderRange(r expr.Expr, k int) expr.Expr {
	if k > 0 {
		return expr.Seq("and", expr.Seq("ge", r, expr.Int(0)), expr.Seq("le", r, expr.Int(k-1)))
	}
	return expr.Seq("and", expr.Seq("le", r, expr.Int(0)), expr.Seq("ge", r, expr.Int(k+1)))
}

// flattenDivMod introduces the quotient and the remainder of a by b.
func (cv *Converter) flattenDivMod(a, b expr.Expr) (q, r *csp.IntVar, err error) {
	da, err := cv.domainOf(a)
	if err != nil {
		return nil, nil, err
	}
	var db *domain.Domain
	var divisor expr.Expr
	k, isConst := cv.eval(b)
	if isConst {
		if k == 0 {
			return nil, nil, semErr("division by zero")
		}
		db, divisor = domain.Singleton(k), expr.Int(k)
	} else {
		sb, err := cv.linearize(b)
		if err != nil {
			return nil, nil, err
		}
		y, err := cv.toVar(sb)
		if err != nil {
			return nil, nil, err
		}
		db, divisor = y.Domain(), expr.Symbol(y.Name)
		if db.Size() > domain.MaxSetSize {
			return nil, nil, fmt.Errorf("%w: divisor %v has %d values", csp.ErrUnsupported, b, db.Size())
		}
	}
	if q, err = cv.newAuxInt(da.Div(db)); err != nil {
		return nil, nil, err
	}
	if r, err = cv.newAuxInt(da.Mod(db)); err != nil {
		return nil, nil, err
	}
	cv.memo.Add(expr.Seq("div", a, b).String(), q)
	cv.memo.Add(expr.Seq("mod", a, b).String(), r)
	qs, rs := expr.Symbol(q.Name), expr.Symbol(r.Name)
	// a = k*q + r, with the remainder of the sign of k
	def := func(k int) expr.Expr {
		return expr.Seq("and",
			expr.Seq("eq", a, expr.Seq("add", expr.Seq("mul", expr.Int(k), qs), rs)),
			remainderRange(rs, k))
	}
	if isConst {
		cv.pending = append(cv.pending, def(k))
		return q, r, nil
	}
	cases := []expr.Expr{expr.Seq("ne", divisor, expr.Int(0))}
	for _, k := range db.Values() {
		if k != 0 {
			cases = append(cases, expr.Seq("or", expr.Seq("ne", divisor, expr.Int(k)), def(k)))
		}
	}
	cv.pending = append(cv.pending, expr.Seq("and", cases...))
	return q, r, nil
}
