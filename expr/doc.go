/*
Package expr parses the constraint language.

A problem is a sequence of s-expressions. Atoms are integers and symbols;
lists are written between parentheses, and ';' starts a comment:

	; x and y are different digits
	(int x 0 9)
	(int y 0 9)
	(ne x y)

The package only deals with syntax: the meaning of the expressions is given by
package decomp.
*/
package expr
