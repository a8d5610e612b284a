/*
Package order translates a CSP into CNF with the order encoding, and decodes
the answer of a SAT solver back into values of the CSP variables.

An integer variable x whose domain has n values d1 < ... < dn is encoded by
n-1 SAT variables, the i-th one meaning x <= di. The clauses
(x <= di) => (x <= di+1) make the true channels a suffix, so that the value of x
is the smallest di whose channel is true, or dn if none is.

Before encoding, Reduce rewrites the clauses so that they only contain boolean
literals and linear literals of the form sum <= 0, and shifts every domain so
that its lower bound is 0. Encode then writes the CNF file and WriteMap writes
the map file that Decode needs to read the solver's answer:

	enc := order.New(ctx, pb)
	if err := enc.Encode("pb.cnf"); err != nil {
		// ...
	}
	if err := enc.WriteMap("pb.map"); err != nil {
		// ...
	}
*/
package order
