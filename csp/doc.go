/*
Package csp is the intermediate representation of constraint problems.

A CSP is made of integer variables (IntVar), boolean variables (BoolVar) and
clauses. A clause is a disjunction of literals: boolean literals (BoolLit),
linear comparisons with zero (LinearLit), and the non-linear literals ProductLit
and PowerLit produced by the decomposer.

Before encoding, the problem is usually propagated and simplified:

	pb.Propagate()
	if pb.IsUnsatisfiable() {
		// ...
	}
	pb.Simplify(ctx, false)

Propagate tightens the variable domains, and Simplify ensures each clause contains
at most one literal that cannot be translated into a single SAT literal.

Extensional constraints are described by a Relation. Its forbidden tuples are
covered by bricks (hyper-rectangles), each of them forbidden by a single clause.
*/
package csp
