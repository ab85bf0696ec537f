// Package prime provides deterministic primality testing and small prime
// enumeration for the resonance engine.
//
// IsPrime runs Miller-Rabin with a fixed witness set proven sufficient
// for every 64-bit integer, so results are exact for the whole uint64
// range with no probabilistic failure mode.
package prime

import "math/bits"

// witnesses is sufficient to decide primality for all n < 2^64
// (Sinclair's seven-witness set).
var witnesses = [...]uint64{2, 325, 9375, 28178, 450775, 9780504, 1795265022}

// IsPrime reports whether n is prime. The test is deterministic for the
// full uint64 range.
func IsPrime(n uint64) bool {
	switch {
	case n < 2:
		return false
	case n < 4:
		return true
	case n%2 == 0:
		return false
	}

	// n-1 = d * 2^r with d odd
	d := n - 1
	r := uint(0)
	for d%2 == 0 {
		d /= 2
		r++
	}

witness:
	for _, a := range witnesses {
		a %= n
		if a == 0 {
			continue
		}
		x := powMod(a, d, n)
		if x == 1 || x == n-1 {
			continue
		}
		for i := uint(1); i < r; i++ {
			x = mulMod(x, x, n)
			if x == n-1 {
				continue witness
			}
		}
		return false
	}
	return true
}

// PrimesUpTo returns all primes p with p <= limit in ascending order,
// using a sieve of Eratosthenes. Memory is O(limit), so this is meant
// for the small tables the engine needs (moduli, wave frequencies), not
// for bulk enumeration.
func PrimesUpTo(limit uint64) []uint64 {
	if limit < 2 {
		return nil
	}
	composite := make([]bool, limit+1)
	var primes []uint64
	for p := uint64(2); p <= limit; p++ {
		if composite[p] {
			continue
		}
		primes = append(primes, p)
		if p > limit/p {
			continue
		}
		for m := p * p; m <= limit; m += p {
			composite[m] = true
		}
	}
	return primes
}

// mulMod returns a*b mod m without overflow. Both operands must already
// be reduced mod m, which keeps the 128-bit intermediate small enough
// for a single 128/64 division.
func mulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi, lo, m)
	return rem
}

// powMod returns base^exp mod m by binary exponentiation.
func powMod(base, exp, m uint64) uint64 {
	if m == 1 {
		return 0
	}
	result := uint64(1)
	base %= m
	for exp > 0 {
		if exp&1 == 1 {
			result = mulMod(result, base, m)
		}
		base = mulMod(base, base, m)
		exp >>= 1
	}
	return result
}
