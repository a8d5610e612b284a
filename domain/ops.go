package domain

// enumerable is true iff the exact image of a binary operation over d and e can
// be computed by enumeration.
func (d *Domain) enumerable(e *Domain) bool {
	return d.Size() <= MaxSetSize && e.Size() <= MaxSetSize && d.Size()*e.Size() <= MaxSetSize
}

// combine enumerates f over d × e. Pairs for which f reports false are skipped.
func (d *Domain) combine(e *Domain, f func(x, y int) (int, bool)) *Domain {
	var res []int
	for _, x := range d.Values() {
		for _, y := range e.Values() {
			if z, ok := f(x, y); ok {
				res = append(res, z)
			}
		}
	}
	return derived(res)
}

func (d *Domain) apply(f func(x int) int) *Domain {
	vs := d.Values()
	for i, v := range vs {
		vs[i] = f(v)
	}
	return derived(vs)
}

// Add returns {x+y | x in d, y in e}.
func (d *Domain) Add(e *Domain) *Domain {
	if d.IsEmpty() || e.IsEmpty() {
		return empty
	}
	if d.values == nil && e.values == nil || !d.enumerable(e) {
		return interval(d.lb+e.lb, d.ub+e.ub)
	}
	return d.combine(e, func(x, y int) (int, bool) { return x + y, true })
}

// Sub returns {x-y | x in d, y in e}.
func (d *Domain) Sub(e *Domain) *Domain {
	return d.Add(e.Neg())
}

// Neg returns {-x | x in d}.
func (d *Domain) Neg() *Domain {
	if d.IsEmpty() {
		return d
	}
	if d.values == nil {
		return interval(-d.ub, -d.lb)
	}
	vs := make([]int, len(d.values))
	for i, v := range d.values {
		vs[len(vs)-1-i] = -v
	}
	return &Domain{lb: -d.ub, ub: -d.lb, values: vs}
}

// MulConst returns {c*x | x in d}. Only intervals larger than MaxSetSize are
// approximated.
func (d *Domain) MulConst(c int) *Domain {
	switch {
	case d.IsEmpty() || c == 1:
		return d
	case c == 0:
		return Singleton(0)
	case c == -1:
		return d.Neg()
	case d.values == nil && d.Size() > MaxSetSize:
		return interval(min(c*d.lb, c*d.ub), max(c*d.lb, c*d.ub))
	}
	vs := d.Values()
	for i, v := range vs {
		vs[i] = c * v
	}
	return fromSorted(sortUniq(vs))
}

// Mul returns {x*y | x in d, y in e}, or an enclosing interval.
func (d *Domain) Mul(e *Domain) *Domain {
	if d.IsEmpty() || e.IsEmpty() {
		return empty
	}
	if d.Size() == 1 {
		return e.MulConst(d.lb)
	}
	if e.Size() == 1 {
		return d.MulConst(e.lb)
	}
	if d.enumerable(e) {
		return d.combine(e, func(x, y int) (int, bool) { return x * y, true })
	}
	a, b, c, f := d.lb*e.lb, d.lb*e.ub, d.ub*e.lb, d.ub*e.ub
	return interval(min4(a, b, c, f), max4(a, b, c, f))
}

// divisors returns the candidate divisors used to bound a division by an
// interval [c, d]: its bounds and, when they belong to it, -1 and 1.
func divisors(c, d int) []int {
	var res []int
	for _, y := range []int{c, d, -1, 1} {
		if y != 0 && c <= y && y <= d {
			res = append(res, y)
		}
	}
	return res
}

// Div returns {floor(x/y) | x in d, y in e, y != 0}, or an enclosing interval.
// The result is empty if e is {0}.
func (d *Domain) Div(e *Domain) *Domain {
	if d.IsEmpty() || e.IsEmpty() {
		return empty
	}
	if d.enumerable(e) {
		return d.combine(e, func(x, y int) (int, bool) {
			if y == 0 {
				return 0, false
			}
			return FloorDiv(x, y), true
		})
	}
	ys := divisors(e.lb, e.ub)
	if len(ys) == 0 {
		return empty
	}
	lb, ub := maxInt, minInt
	for _, x := range []int{d.lb, d.ub} {
		for _, y := range ys {
			q := FloorDiv(x, y)
			lb, ub = min(lb, q), max(ub, q)
		}
	}
	return interval(lb, ub)
}

// Mod returns {x mod y | x in d, y in e, y != 0} with floor semantics, or an
// enclosing interval. The result is empty if e is {0}.
func (d *Domain) Mod(e *Domain) *Domain {
	if d.IsEmpty() || e.IsEmpty() {
		return empty
	}
	if d.enumerable(e) {
		return d.combine(e, func(x, y int) (int, bool) {
			if y == 0 {
				return 0, false
			}
			return FloorMod(x, y), true
		})
	}
	lb, ub := maxInt, minInt
	if e.ub > 0 {
		hi := e.ub - 1
		if d.lb >= 0 {
			hi = min(hi, d.ub)
		}
		lb, ub = 0, hi
	}
	if e.lb < 0 {
		lo := e.lb + 1
		if d.ub <= 0 {
			lo = max(lo, d.lb)
		}
		lb, ub = min(lb, lo), max(ub, 0)
	}
	return interval(lb, ub)
}

// Abs returns {|x| | x in d}.
func (d *Domain) Abs() *Domain {
	switch {
	case d.IsEmpty() || d.lb >= 0:
		return d
	case d.ub <= 0:
		return d.Neg()
	case d.Size() <= MaxSetSize:
		return d.apply(abs)
	}
	return interval(0, max(-d.lb, d.ub))
}

// Pow returns {x**y | x in d, y in e, y >= 0}, or an enclosing interval.
func (d *Domain) Pow(e *Domain) *Domain {
	if d.IsEmpty() || e.IsEmpty() || e.ub < 0 {
		return empty
	}
	e = e.Bound(0, e.ub)
	if d.enumerable(e) {
		return d.combine(e, func(x, y int) (int, bool) { return Pow(x, y), true })
	}
	lb, ub := maxInt, minInt
	for _, x := range []int{d.lb, d.ub, 0} {
		if x == 0 && (d.lb > 0 || d.ub < 0) {
			continue
		}
		for _, y := range []int{e.lb, e.lb + 1, e.ub - 1, e.ub} {
			if y < e.lb || y > e.ub {
				continue
			}
			p := Pow(x, y)
			lb, ub = min(lb, p), max(ub, p)
		}
	}
	return interval(lb, ub)
}

// Min returns {min(x, y) | x in d, y in e}, or an enclosing interval.
func (d *Domain) Min(e *Domain) *Domain {
	if d.IsEmpty() || e.IsEmpty() {
		return empty
	}
	if d.ub <= e.lb {
		return d
	}
	if e.ub <= d.lb {
		return e
	}
	if d.enumerable(e) {
		return d.combine(e, func(x, y int) (int, bool) { return min(x, y), true })
	}
	return interval(min(d.lb, e.lb), min(d.ub, e.ub))
}

// Max returns {max(x, y) | x in d, y in e}, or an enclosing interval.
func (d *Domain) Max(e *Domain) *Domain {
	if d.IsEmpty() || e.IsEmpty() {
		return empty
	}
	if d.lb >= e.ub {
		return d
	}
	if e.lb >= d.ub {
		return e
	}
	if d.enumerable(e) {
		return d.combine(e, func(x, y int) (int, bool) { return max(x, y), true })
	}
	return interval(max(d.lb, e.lb), max(d.ub, e.ub))
}

// Cup returns the union of d and e, or an enclosing interval when the union is
// not an interval and has more than MaxSetSize values.
func (d *Domain) Cup(e *Domain) *Domain {
	switch {
	case d.IsEmpty():
		return e
	case e.IsEmpty():
		return d
	case d.values == nil && e.values == nil && d.lb <= e.ub+1 && e.lb <= d.ub+1:
		return interval(min(d.lb, e.lb), max(d.ub, e.ub))
	case d.Size()+e.Size() > 2*MaxSetSize:
		return interval(min(d.lb, e.lb), max(d.ub, e.ub))
	}
	return derived(append(d.Values(), e.Values()...))
}

// Cap returns the intersection of d and e. The result is exact.
func (d *Domain) Cap(e *Domain) *Domain {
	if d.IsEmpty() {
		return d
	}
	if e.IsEmpty() {
		return e
	}
	if d.values == nil && e.values == nil {
		lb, ub := max(d.lb, e.lb), min(d.ub, e.ub)
		if lb == d.lb && ub == d.ub {
			return d
		}
		return interval(lb, ub)
	}
	small, big := d, e
	if small.values == nil || big.values != nil && big.Size() < small.Size() {
		small, big = e, d
	}
	var res []int
	for _, v := range small.ValuesIn(big.lb, big.ub) {
		if big.Contains(v) {
			res = append(res, v)
		}
	}
	if len(res) == d.Size() {
		return d
	}
	return fromSorted(res)
}

// Bound returns the values of d between lb and ub. d itself is returned when
// all its values are already in [lb, ub].
func (d *Domain) Bound(lb, ub int) *Domain {
	if d.IsEmpty() || lb <= d.lb && d.ub <= ub {
		return d
	}
	if lb > ub {
		return empty
	}
	return d.Cap(interval(lb, ub))
}
