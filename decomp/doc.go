/*
Package decomp converts parsed expressions into a CSP.

Declarations create variables, named domains, relations and predicates. Every
other expression is a constraint: it is put in negation normal form, its
comparisons are normalized into linear literals compared with 0, and its
non-linear sub-expressions (abs, min, max, if, mul, div, mod, pow) are replaced
by auxiliary variables whose definitions are converted in turn. Global
constraints (alldifferent, cumulative, element, count, ...) are first rewritten
into equivalent formulas.

A typical use is:

	es, err := expr.Parse(r)
	if err != nil {
		// ...
	}
	pb, err := decomp.Compile(csp.NewContext(), es, decomp.DefaultOptions())
*/
package decomp
