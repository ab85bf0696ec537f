// Package intmath provides exact integer arithmetic helpers shared by the
// engine packages.
package intmath

import "math"

// Isqrt returns the integer square root of n, the largest r with r*r <= n.
// The float64 estimate is corrected afterwards, so the result is exact for
// the full uint64 range.
func Isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	r := uint64(math.Sqrt(float64(n)))
	for r > 0 && r*r > n {
		r--
	}
	for r < math.MaxUint32 && (r+1)*(r+1) <= n {
		r++
	}
	return r
}
