package domain

const (
	maxInt = int(^uint(0) >> 1)
	minInt = -maxInt - 1
)

// FloorDiv returns the quotient of a by b rounded towards negative infinity.
// b must not be 0.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// CeilDiv returns the quotient of a by b rounded towards positive infinity.
// b must not be 0.
func CeilDiv(a, b int) int {
	return -FloorDiv(-a, b)
}

// FloorMod returns a - b*FloorDiv(a, b): the remainder has the sign of b.
// b must not be 0.
func FloorMod(a, b int) int {
	return a - b*FloorDiv(a, b)
}

// GCD returns the greatest common divisor of |a| and |b|.
// GCD(0, 0) is 0.
func GCD(a, b int) int {
	a, b = abs(a), abs(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Pow returns base**exp for a non-negative exponent, saturating on overflow.
func Pow(base, exp int) int {
	switch base {
	case 0, 1:
		if exp == 0 {
			return 1
		}
		return base
	case -1:
		if exp%2 == 0 {
			return 1
		}
		return -1
	}
	res := 1
	for i := 0; i < exp; i++ {
		res = satMul(res, base)
		if res == maxInt || res == minInt {
			if base > 0 || exp%2 == 0 {
				return maxInt
			}
			return minInt
		}
	}
	return res
}

func satMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	c := a * b
	if c/b != a || (a == -1 && b == minInt) || (b == -1 && a == minInt) {
		if (a < 0) != (b < 0) {
			return minInt
		}
		return maxInt
	}
	return c
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min4(a, b, c, d int) int { return min(min(a, b), min(c, d)) }
func max4(a, b, c, d int) int { return max(max(a, b), max(c, d)) }
