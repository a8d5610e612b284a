package csp

import "fmt"

// A Category tells which compilation stage introduced an auxiliary variable.
type Category int

const (
	// DecompInt is for integer variables created by the decomposer.
	DecompInt Category = iota
	// DecompBool is for boolean variables created by the decomposer.
	DecompBool
	// SimplifyBool is for guards created when simplifying clauses.
	SimplifyBool
	// AdjustBool is for guards created when reducing literals before encoding.
	AdjustBool
	// EncodeBool is for variables created by the encoder.
	EncodeBool
	nbCategories
)

var prefixes = [nbCategories]string{"$I", "$B", "$S", "$A", "$E"}

// A Context holds the state shared by the stages of a compilation.
// Names generated by a context cannot clash with user names, which never start with '$'.
type Context struct {
	counters [nbCategories]int
}

// NewContext returns a fresh context.
func NewContext() *Context {
	return &Context{}
}

// NextName returns a new, unique name in the given category.
func (ctx *Context) NextName(cat Category) string {
	ctx.counters[cat]++
	return fmt.Sprintf("%s%d", prefixes[cat], ctx.counters[cat])
}

// Count returns how many names were generated in the given category.
func (ctx *Context) Count(cat Category) int {
	return ctx.counters[cat]
}
