/*
Package sat runs SAT solvers on DIMACS files and reads their answers.

Solvers are hidden behind the Backend interface. Two of them run in process
(gophersat and gini), the third one runs any external solver that follows the
competition output format:

	s SATISFIABLE
	v 1 -2 3 0

ParseOutput reads that format back into a Status and a Model.
*/
package sat
