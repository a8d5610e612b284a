package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// MaxSetSize is the largest number of combinations enumerated when computing
// the exact image of an arithmetic operation.
const MaxSetSize = 128

// ErrEmptyDomain is returned when a domain is built from no value at all.
var ErrEmptyDomain = errors.New("empty domain")

// A Domain is a finite set of integers, represented either as an interval or as an
// explicit, ascending set of values.
type Domain struct {
	lb, ub int
	values []int // nil for intervals
}

var empty = &Domain{lb: 1, ub: 0}

// Empty returns the distinguished empty domain.
func Empty() *Domain { return empty }

// New returns the interval [lb, ub].
func New(lb, ub int) (*Domain, error) {
	if lb > ub {
		return nil, fmt.Errorf("%w: %d..%d", ErrEmptyDomain, lb, ub)
	}
	return &Domain{lb: lb, ub: ub}, nil
}

// MustNew is like New but panics when lb > ub.
func MustNew(lb, ub int) *Domain {
	d, err := New(lb, ub)
	if err != nil {
		panic(err)
	}
	return d
}

// Singleton returns the domain {v}.
func Singleton(v int) *Domain {
	return &Domain{lb: v, ub: v}
}

// NewSet returns the domain made of the given values. Duplicates are allowed and
// the order is irrelevant. The set is kept exact whatever its size; it is demoted
// to an interval only when it is dense.
func NewSet(values []int) (*Domain, error) {
	if len(values) == 0 {
		return nil, ErrEmptyDomain
	}
	return fromSorted(sortUniq(values)), nil
}

func interval(lb, ub int) *Domain {
	if lb > ub {
		return empty
	}
	return &Domain{lb: lb, ub: ub}
}

func sortUniq(values []int) []int {
	vs := lo.Uniq(values)
	sort.Ints(vs)
	return vs
}

// fromSorted builds a domain from sorted, distinct values.
func fromSorted(vs []int) *Domain {
	if len(vs) == 0 {
		return empty
	}
	lb, ub := vs[0], vs[len(vs)-1]
	if ub-lb+1 == len(vs) {
		return &Domain{lb: lb, ub: ub}
	}
	return &Domain{lb: lb, ub: ub, values: vs}
}

// derived builds the domain of computed values: it is exact when small enough,
// and the enclosing interval otherwise.
func derived(values []int) *Domain {
	vs := sortUniq(values)
	if len(vs) > MaxSetSize {
		return interval(vs[0], vs[len(vs)-1])
	}
	return fromSorted(vs)
}

// IsEmpty is true iff d has no value.
func (d *Domain) IsEmpty() bool { return d.lb > d.ub }

// IsInterval is true iff d is represented as a contiguous interval.
func (d *Domain) IsInterval() bool { return d.values == nil }

// Lower returns the smallest value of d.
func (d *Domain) Lower() int { return d.lb }

// Upper returns the largest value of d.
func (d *Domain) Upper() int { return d.ub }

// Size returns the number of values in d.
func (d *Domain) Size() int {
	if d.IsEmpty() {
		return 0
	}
	if d.values != nil {
		return len(d.values)
	}
	return d.ub - d.lb + 1
}

// Contains is true iff v belongs to d.
func (d *Domain) Contains(v int) bool {
	if v < d.lb || v > d.ub {
		return false
	}
	if d.values == nil {
		return true
	}
	i := sort.SearchInts(d.values, v)
	return i < len(d.values) && d.values[i] == v
}

// SizeLE returns the number of values of d that are lower than or equal to v.
func (d *Domain) SizeLE(v int) int {
	switch {
	case d.IsEmpty() || v < d.lb:
		return 0
	case v >= d.ub:
		return d.Size()
	case d.values == nil:
		return v - d.lb + 1
	default:
		return sort.SearchInts(d.values, v+1)
	}
}

// Values returns all the values of d, in ascending order.
func (d *Domain) Values() []int {
	return d.ValuesIn(d.lb, d.ub)
}

// ValuesIn returns the values v of d such that lb <= v <= ub, in ascending order.
func (d *Domain) ValuesIn(lb, ub int) []int {
	lb, ub = max(lb, d.lb), min(ub, d.ub)
	if lb > ub {
		return nil
	}
	if d.values == nil {
		res := make([]int, 0, ub-lb+1)
		for v := lb; v <= ub; v++ {
			res = append(res, v)
		}
		return res
	}
	i := sort.SearchInts(d.values, lb)
	j := sort.SearchInts(d.values, ub+1)
	return append([]int(nil), d.values[i:j]...)
}

// Each calls f on each value v of d such that lb <= v <= ub, in ascending order,
// until f returns false.
func (d *Domain) Each(lb, ub int, f func(v int) bool) {
	lb, ub = max(lb, d.lb), min(ub, d.ub)
	if lb > ub {
		return
	}
	if d.values == nil {
		for v := lb; v <= ub; v++ {
			if !f(v) {
				return
			}
		}
		return
	}
	for i := sort.SearchInts(d.values, lb); i < len(d.values) && d.values[i] <= ub; i++ {
		if !f(d.values[i]) {
			return
		}
	}
}

// Equal is true iff d and e contain exactly the same values.
func (d *Domain) Equal(e *Domain) bool {
	if d.IsEmpty() || e.IsEmpty() {
		return d.IsEmpty() && e.IsEmpty()
	}
	if d.lb != e.lb || d.ub != e.ub || d.Size() != e.Size() {
		return false
	}
	if d.values == nil || e.values == nil {
		return true // same bounds, same size: both are dense
	}
	for i, v := range d.values {
		if e.values[i] != v {
			return false
		}
	}
	return true
}

// Shift returns the domain {v+k | v in d}.
func (d *Domain) Shift(k int) *Domain {
	if k == 0 || d.IsEmpty() {
		return d
	}
	if d.values == nil {
		return interval(d.lb+k, d.ub+k)
	}
	vs := make([]int, len(d.values))
	for i, v := range d.values {
		vs[i] = v + k
	}
	return &Domain{lb: d.lb + k, ub: d.ub + k, values: vs}
}

// String returns the domain in the map file syntax: either "lb..ub", or a
// space-separated list of values and ranges, such as "1 3..5 9".
func (d *Domain) String() string {
	if d.IsEmpty() {
		return "{}"
	}
	if d.values == nil {
		return fmt.Sprintf("%d..%d", d.lb, d.ub)
	}
	return strings.Join(lo.Map(d.Ranges(), func(r [2]int, _ int) string {
		if r[0] == r[1] {
			return strconv.Itoa(r[0])
		}
		return fmt.Sprintf("%d..%d", r[0], r[1])
	}), " ")
}

// Ranges returns the maximal runs of consecutive values of d.
func (d *Domain) Ranges() [][2]int {
	if d.IsEmpty() {
		return nil
	}
	if d.values == nil {
		return [][2]int{{d.lb, d.ub}}
	}
	var res [][2]int
	start := d.values[0]
	for i := 1; i < len(d.values); i++ {
		if d.values[i] != d.values[i-1]+1 {
			res = append(res, [2]int{start, d.values[i-1]})
			start = d.values[i]
		}
	}
	return append(res, [2]int{start, d.ub})
}

// Parse parses a domain written in the syntax produced by String, already split
// into fields.
func Parse(fields []string) (*Domain, error) {
	var vs []int
	for _, f := range fields {
		if i := strings.Index(f, ".."); i >= 0 {
			lb, err := strconv.Atoi(f[:i])
			if err != nil {
				return nil, fmt.Errorf("invalid range %q: %v", f, err)
			}
			ub, err := strconv.Atoi(f[i+2:])
			if err != nil {
				return nil, fmt.Errorf("invalid range %q: %v", f, err)
			}
			if len(fields) == 1 {
				return New(lb, ub)
			}
			for v := lb; v <= ub; v++ {
				vs = append(vs, v)
			}
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %v", f, err)
		}
		vs = append(vs, v)
	}
	return NewSet(vs)
}
