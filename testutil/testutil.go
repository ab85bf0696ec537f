package testutil

import (
	"testing"

	"github.com/primefold/resonance/prime"
)

// Composite is a fixture number with its known smallest factor pair.
type Composite struct {
	N uint64
	P uint64
	Q uint64
}

// KnownComposites lists small fixtures with hand-checked factor pairs,
// covering squares, even numbers, smooth numbers and balanced
// semiprimes.
func KnownComposites() []Composite {
	return []Composite{
		{N: 4, P: 2, Q: 2},
		{N: 143, P: 11, Q: 13},
		{N: 1155, P: 3, Q: 385},
		{N: 2310, P: 2, Q: 1155},
		{N: 10403, P: 101, Q: 103},
		{N: 1000003 * 1000033, P: 1000003, Q: 1000033},
	}
}

// Primes lists fixture primes across magnitudes. A correct search
// exhausts on every one of them.
func Primes() []uint64 {
	return []uint64{2, 3, 97, 101, 7919, 1000003}
}

// Semiprimes pairs neighboring primes below 2^(bits/2) so every product
// lands close to the requested bit length. The table is sieve-derived,
// so identical arguments always yield identical fixtures.
func Semiprimes(tb testing.TB, bits, count int) []uint64 {
	tb.Helper()

	if bits < 10 || bits > 40 {
		tb.Fatalf("bits must be in [10, 40], got %d", bits)
	}

	limit := uint64(1) << (bits / 2)
	primes := prime.PrimesUpTo(limit)
	if len(primes) < count+1 {
		tb.Fatalf("only %d primes below %d, need %d", len(primes), limit, count+1)
	}

	tail := primes[len(primes)-count-1:]
	out := make([]uint64, 0, count)
	for i := 0; i+1 < len(tail); i++ {
		out = append(out, tail[i]*tail[i+1])
	}
	return out
}

// SmallestFactor returns the smallest prime factor of n by trial
// division, or n itself when n is prime. It is the exact ground truth
// against which heuristic search results are checked.
func SmallestFactor(n uint64) uint64 {
	if n < 2 {
		return n
	}
	if n%2 == 0 {
		return 2
	}
	for d := uint64(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return d
		}
	}
	return n
}
