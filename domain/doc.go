// Package domain implements the integer domains used by the constraint compiler.
//
// A Domain is either a contiguous interval [lb, ub] or an explicit ascending set of values.
// Domains are immutable: every operation returns a new domain (or the receiver itself, when
// nothing changed, so that callers can detect modifications by pointer comparison).
//
// Arithmetic operations compute the exact image set when both operands are small enough to be
// enumerated (the size of their Cartesian product does not exceed MaxSetSize), and fall back
// to a sound interval otherwise. For instance:
//
//	x := domain.MustNew(0, 2)
//	y, _ := domain.NewSet([]int{1, 3})
//	fmt.Println(x.Mul(y)) // 0..3 6
//
// Division and modulo follow floor semantics: the quotient is rounded towards negative
// infinity and the remainder has the sign of the divisor.
package domain
