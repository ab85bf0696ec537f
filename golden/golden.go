// Package golden provides golden-ratio constants and Fibonacci arithmetic
// used throughout the resonance engine.
//
// All functions are pure and deterministic. Fibonacci numbers are exact
// uint64 values computed by fast doubling; the continuous extension
// FibWave uses the real form of Binet's formula.
package golden

import (
	"math"
	"math/bits"
)

// Golden ratio and derived constants.
var (
	// Sqrt5 is the square root of five.
	Sqrt5 = math.Sqrt(5)

	// Phi is the golden ratio (1 + sqrt 5) / 2.
	Phi = (1 + Sqrt5) / 2

	// Psi is the conjugate root (1 - sqrt 5) / 2, equal to -1/Phi.
	Psi = (1 - Sqrt5) / 2

	// Angle is the rotation step 2*pi*(Phi - 1) radians used by the
	// spiral candidate source and the harmonic spectrum offset.
	Angle = 2 * math.Pi * (Phi - 1)
)

// MaxFibIndex is the largest k for which Fib(k) fits in a uint64.
const MaxFibIndex = 93

// Fib returns the kth Fibonacci number with F(0) = 0 and F(1) = 1.
//
// It runs the fast doubling recurrence
//
//	F(2m)   = F(m) * (2*F(m+1) - F(m))
//	F(2m+1) = F(m)^2 + F(m+1)^2
//
// over the bits of k, so cost is O(log k). k outside [0, MaxFibIndex]
// panics; indices above MaxFibIndex overflow uint64.
func Fib(k int) uint64 {
	if k < 0 {
		panic("golden: negative Fibonacci index")
	}
	if k > MaxFibIndex {
		panic("golden: Fibonacci index overflows uint64")
	}
	var a, b uint64 = 0, 1
	for i := bits.Len(uint(k)); i > 0; i-- {
		c := a * (2*b - a)
		d := a*a + b*b
		if (k>>(i-1))&1 == 0 {
			a, b = c, d
		} else {
			a, b = d, c+d
		}
	}
	return a
}

// FibsUpTo returns all Fibonacci numbers F(2), F(3), ... that do not
// exceed limit, in ascending order. Starting at index 2 skips the
// duplicate leading 1. The result is empty when limit is 0.
func FibsUpTo(limit uint64) []uint64 {
	var fibs []uint64
	for k := 2; k <= MaxFibIndex; k++ {
		f := Fib(k)
		if f > limit {
			break
		}
		fibs = append(fibs, f)
	}
	return fibs
}

// FibWave evaluates the continuous Fibonacci extension at a real
// position x using the real form of Binet's formula:
//
//	(Phi^x - Phi^(-x) * cos(pi*x)) / sqrt 5
//
// The cosine term is the real part of Psi^x, so the wave passes through
// every integer Fibonacci value.
func FibWave(x float64) float64 {
	return (math.Pow(Phi, x) - math.Pow(Phi, -x)*math.Cos(math.Pi*x)) / Sqrt5
}

// Lucas returns the kth Lucas number with L(0) = 2 and L(1) = 1,
// computed from the identity L(k) = F(k-1) + F(k+1). k must be in
// [0, MaxFibIndex-1].
func Lucas(k int) uint64 {
	switch {
	case k < 0:
		panic("golden: negative Lucas index")
	case k == 0:
		return 2
	case k == 1:
		return 1
	}
	return Fib(k-1) + Fib(k+1)
}

// IsFibonacci reports whether n appears in the Fibonacci sequence.
// It walks the sequence directly; the classic 5n^2+-4 square test
// overflows uint64 well before the sequence itself does.
func IsFibonacci(n uint64) bool {
	if n <= 1 {
		return true
	}
	a, b := uint64(1), uint64(1)
	for b < n && b >= a { // b < a only after the uint64 wrap
		a, b = b, a+b
	}
	return b == n
}
