package utils

import "math"

// AddWithOverflow returns a+b and false, or 0 and true if the addition
// would overflow the platform int range.
func AddWithOverflow(a int, b int) (int, bool) {
	if (a > 0 && b > 0 && a > math.MaxInt-b) ||
		(a < 0 && b < 0 && a < math.MinInt-b) {
		return 0, true
	}

	return a + b, false
}
