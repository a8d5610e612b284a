package expr

import (
	"strconv"
	"strings"
)

// An Expr is an expression of the input language: an Int, a Symbol or a List.
type Expr interface {
	String() string
	isExpr()
}

// An Int is an integer constant.
type Int int

// A Symbol is an identifier, an operator or a keyword.
type Symbol string

// A List is a parenthesized sequence of expressions.
type List []Expr

func (Int) isExpr()    {}
func (Symbol) isExpr() {}
func (List) isExpr()   {}

func (i Int) String() string    { return strconv.Itoa(int(i)) }
func (s Symbol) String() string { return string(s) }

func (l List) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, e := range l {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Seq returns the list (head args...).
func Seq(head string, args ...Expr) List {
	return append(List{Symbol(head)}, args...)
}

// Head returns the symbol at the head of l, or "" if l does not start with a symbol.
func (l List) Head() string {
	if len(l) == 0 {
		return ""
	}
	if s, ok := l[0].(Symbol); ok {
		return string(s)
	}
	return ""
}

// Args returns all the elements of l but the first one.
func (l List) Args() []Expr {
	if len(l) == 0 {
		return nil
	}
	return l[1:]
}

// Ints returns the elements of l as integers, or false if one of them is not an Int.
func (l List) Ints() ([]int, bool) {
	res := make([]int, len(l))
	for i, e := range l {
		n, ok := e.(Int)
		if !ok {
			return nil, false
		}
		res[i] = int(n)
	}
	return res, true
}

// IsSymbol is true iff e is the symbol name.
func IsSymbol(e Expr, name string) bool {
	s, ok := e.(Symbol)
	return ok && string(s) == name
}

// Substitute returns a copy of e where every symbol found in bindings is replaced
// by its associated expression.
func Substitute(e Expr, bindings map[string]Expr) Expr {
	switch e := e.(type) {
	case Symbol:
		if b, ok := bindings[string(e)]; ok {
			return b
		}
		return e
	case List:
		res := make(List, len(e))
		for i, sub := range e {
			res[i] = Substitute(sub, bindings)
		}
		return res
	default:
		return e
	}
}
