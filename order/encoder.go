package order

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/crillab/gophercsp/csp"
	"github.com/crillab/gophercsp/domain"
	"github.com/golang/glog"
)

// An Encoding translates a CSP into CNF and describes how to read the solution back.
// Order encoding is the only one provided; a positional (digit) encoding for very
// large domains would implement the same interface.
type Encoding interface {
	Reduce() error
	Encode(path string) error
	WriteMap(path string) error
}

// headerWidth is the size of the "p cnf" line, newline included. The line is
// written first with zero counts, then overwritten once the counts are known.
const headerWidth = 64

// An Encoder encodes a CSP with the order encoding.
type Encoder struct {
	Comments  bool // Write variable codes and constraint comments in the CNF
	ctx       *csp.Context
	pb        *csp.CSP
	reduced   bool
	nbVars    int
	nbClauses int
	w         *bufio.Writer
	buf       []byte
}

var _ Encoding = (*Encoder)(nil)

// New returns an encoder for pb. Auxiliary variables are named through ctx.
func New(ctx *csp.Context, pb *csp.CSP) *Encoder {
	return &Encoder{ctx: ctx, pb: pb}
}

// NbVars returns the number of SAT variables of the last encoding.
func (e *Encoder) NbVars() int { return e.nbVars }

// NbClauses returns the number of clauses of the last encoding.
func (e *Encoder) NbClauses() int { return e.nbClauses }

func header(nbVars, nbClauses int) string {
	h := fmt.Sprintf("p cnf %d %d", nbVars, nbClauses)
	return h + strings.Repeat(" ", headerWidth-1-len(h)) + "\n"
}

// Encode writes the CNF translation of the problem in the file at path.
// The problem is reduced first if needed.
func (e *Encoder) Encode(path string) (err error) {
	if !e.reduced {
		if err := e.Reduce(); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %q: %v", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("could not close %q: %v", path, cerr)
		}
	}()
	e.w = bufio.NewWriter(f)
	e.nbVars, e.nbClauses = 0, 0
	if _, err := e.w.WriteString(header(0, 0)); err != nil {
		return fmt.Errorf("could not write DIMACS output: %v", err)
	}
	if err := e.encode(); err != nil {
		return err
	}
	if err := e.w.Flush(); err != nil {
		return fmt.Errorf("could not write DIMACS output: %v", err)
	}
	if _, err := f.WriteAt([]byte(header(e.nbVars, e.nbClauses)), 0); err != nil {
		return fmt.Errorf("could not rewrite DIMACS header: %v", err)
	}
	glog.V(1).Infof("encoding: %d SAT variables, %d clauses", e.nbVars, e.nbClauses)
	return nil
}

func (e *Encoder) encode() error {
	if e.pb.IsUnsatisfiable() {
		e.writeClause(nil)
		return e.w.Flush()
	}
	e.assignCodes()
	if e.Comments {
		for _, v := range e.pb.BoolVars {
			e.comment(fmt.Sprintf("%s=%d", v.Name, v.Code))
		}
		for _, v := range e.pb.IntVars {
			e.comment(fmt.Sprintf("%s=%d %s offset %d", v.Name, v.Code, v.Domain(), v.Offset))
		}
	}
	for _, v := range e.pb.IntVars {
		for i := 0; i < v.NbChannels()-1; i++ {
			e.writeClause([]int{-(v.Code + i), v.Code + i + 1})
		}
	}
	for _, cl := range e.pb.Clauses {
		if e.Comments && cl.Comment != "" {
			e.comment(cl.Comment)
		}
		if err := e.encodeClause(cl); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) assignCodes() {
	code := 1
	for _, v := range e.pb.BoolVars {
		v.Code = code
		code++
	}
	for _, v := range e.pb.IntVars {
		v.Code = code
		code += v.NbChannels()
	}
	e.nbVars = code - 1
}

func (e *Encoder) comment(s string) {
	e.w.WriteString("c ")
	e.w.WriteString(strings.ReplaceAll(s, "\n", " "))
	e.w.WriteByte('\n')
}

// writeClause writes the clause made of lits. A clause with a true literal is
// skipped and false literals are removed. An empty clause is written as a
// pair of contradictory unit clauses on a fresh variable.
func (e *Encoder) writeClause(lits []int) {
	buf := e.buf[:0]
	n := 0
	for _, lit := range lits {
		switch lit {
		case csp.TrueCode:
			return
		case csp.FalseCode:
			continue
		}
		buf = strconv.AppendInt(buf, int64(lit), 10)
		buf = append(buf, ' ')
		n++
	}
	if n == 0 {
		e.nbVars++
		fmt.Fprintf(e.w, "%d 0\n%d 0\n", e.nbVars, -e.nbVars)
		e.nbClauses += 2
		return
	}
	buf = append(buf, '0', '\n')
	e.w.Write(buf)
	e.buf = buf
	e.nbClauses++
}

// codeLE returns the SAT literal of "a*v + b <= 0".
func codeLE(v *csp.IntVar, a, b int) int {
	if a > 0 {
		return v.CodeLE(domain.FloorDiv(-b, a))
	}
	return -v.CodeLE(domain.CeilDiv(-b, a) - 1)
}

func (e *Encoder) encodeClause(cl *csp.Clause) error {
	lits := make([]int, 0, cl.Size())
	for _, l := range cl.BoolLits {
		if l.Negative {
			lits = append(lits, -l.Var.Code)
		} else {
			lits = append(lits, l.Var.Code)
		}
	}
	var big *csp.LinearLit
	for _, l := range cl.ArithLits {
		ll, ok := l.(*csp.LinearLit)
		if !ok || ll.Op != csp.LE {
			return fmt.Errorf("%w: cannot encode literal %v, clause should be reduced", csp.ErrUnsupported, l)
		}
		switch s := ll.Sum; s.Size() {
		case 0:
			if s.B <= 0 {
				return nil
			}
		case 1:
			v := s.Vars()[0]
			lits = append(lits, codeLE(v, s.Coef(v), s.B))
		default:
			if big != nil {
				return fmt.Errorf("clause %v has several complex literals", cl)
			}
			big = ll
		}
	}
	if big == nil {
		e.writeClause(lits)
		return nil
	}
	e.encodeLinear(lits, big.Sum)
	return nil
}

// A term of a linear sum being encoded.
type term struct {
	v      *csp.IntVar
	a      int
	lo, hi int // Bounds of the sum of the following terms
}

// sortedTerms returns the terms of s, smallest domains first, then greatest
// coefficients, then by name.
func sortedTerms(s *csp.LinearSum) []term {
	terms := make([]term, 0, s.Size())
	for _, v := range s.Vars() {
		terms = append(terms, term{v: v, a: s.Coef(v)})
	}
	sort.Slice(terms, func(i, j int) bool {
		ti, tj := terms[i], terms[j]
		if si, sj := ti.v.Domain().Size(), tj.v.Domain().Size(); si != sj {
			return si < sj
		}
		if ai, aj := abs(ti.a), abs(tj.a); ai != aj {
			return ai > aj
		}
		return ti.v.Name < tj.v.Name
	})
	lo, hi := 0, 0
	for i := len(terms) - 1; i >= 0; i-- {
		terms[i].lo, terms[i].hi = lo, hi
		d, a := terms[i].v.Domain(), terms[i].a
		if a > 0 {
			lo, hi = lo+a*d.Lower(), hi+a*d.Upper()
		} else {
			lo, hi = lo+a*d.Upper(), hi+a*d.Lower()
		}
	}
	return terms
}

// encodeLinear writes the clauses of "lits or s <= 0".
func (e *Encoder) encodeLinear(lits []int, s *csp.LinearSum) {
	e.encodeTerms(lits, sortedTerms(s), s.B)
}

// encodeTerms writes the clauses of "lits or sum(terms) + b <= 0". The values of
// the first term are enumerated, the others being encoded recursively; only the
// values for which the rest of the sum matters get a clause.
func (e *Encoder) encodeTerms(lits []int, terms []term, b int) {
	t := terms[0]
	v, a, d := t.v, t.a, t.v.Domain()
	n := len(lits)
	if len(terms) == 1 {
		e.writeClause(append(lits[:n:n], codeLE(v, a, b)))
		return
	}
	if a > 0 {
		// v < start: always true; v >= stop: never true.
		start := domain.FloorDiv(-b-t.hi, a) + 1
		stop := domain.FloorDiv(-b-t.lo, a) + 1
		d.Each(start, stop-1, func(c int) bool {
			// v >= c implies the rest holds for v = c
			e.encodeTerms(append(lits[:n:n], v.CodeLE(c-1)), terms[1:], b+a*c)
			return true
		})
		if stop <= d.Upper() {
			e.writeClause(append(lits[:n:n], v.CodeLE(stop-1)))
		}
		return
	}
	// v <= last: never true; v >= endTrue: always true.
	last := domain.CeilDiv(-b-t.lo, a) - 1
	endTrue := domain.CeilDiv(-b-t.hi, a)
	if last >= d.Lower() {
		e.writeClause(append(lits[:n:n], -v.CodeLE(last)))
	}
	d.Each(last+1, endTrue-1, func(c int) bool {
		// v <= c implies the rest holds for v = c
		e.encodeTerms(append(lits[:n:n], -v.CodeLE(c)), terms[1:], b+a*c)
		return true
	})
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
