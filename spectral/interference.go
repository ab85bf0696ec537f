package spectral

import (
	"math"
	"sort"

	"github.com/primefold/resonance/golden"
	"github.com/primefold/resonance/internal/intmath"
	"github.com/primefold/resonance/prime"
)

// maxInterferenceSamples bounds the spectrum length so sampling stays
// cheap when sqrt(n) is in the billions.
const maxInterferenceSamples = 4096

// interferenceStride returns the sampling stride for the factor domain
// [2, root]: unit stride while the domain fits the sample budget,
// coarser beyond that.
func interferenceStride(root uint64) uint64 {
	span := root - 1
	if span <= maxInterferenceSamples {
		return 1
	}
	return (span + maxInterferenceSamples - 1) / maxInterferenceSamples
}

// interferenceWaves returns the prime and Fibonacci frequency tables for
// n, at most ten of each.
func interferenceWaves(n uint64) (primes, fibs []uint64) {
	root := intmath.Isqrt(n)

	limit := root
	if limit > 100 {
		limit = 100
	}
	primes = prime.PrimesUpTo(limit)
	if len(primes) > 10 {
		primes = primes[:10]
	}

	fibs = golden.FibsUpTo(root)
	if len(fibs) > 10 {
		fibs = fibs[:10]
	}
	return primes, fibs
}

// Interference samples the product of a prime cosine wave and a
// phi-scaled Fibonacci cosine wave across the factor domain [2, sqrt n].
// Index i of the result holds the amplitude at position 2+i*stride,
// where the stride is 1 until the domain outgrows the sample budget.
// Factor positions tend to sit on extrema of this pattern.
func Interference(n uint64) []float64 {
	if n < 4 {
		return nil
	}
	root := intmath.Isqrt(n)
	primes, fibs := interferenceWaves(n)
	stride := interferenceStride(root)
	fn := float64(n)

	spectrum := make([]float64, 0, (root-2)/stride+1)
	for x := uint64(2); x <= root; x += stride {
		fx := float64(x)
		var primeAmp float64
		for _, p := range primes {
			primeAmp += math.Cos(2 * math.Pi * float64(p) * fx / fn)
		}
		var fibAmp float64
		for _, f := range fibs {
			fibAmp += math.Cos(2 * math.Pi * float64(f) * fx / (fn * golden.Phi))
		}
		spectrum = append(spectrum, primeAmp*fibAmp)
	}
	return spectrum
}

// InterferenceExtrema returns up to top positions where the interference
// pattern has a local extremum, strongest amplitude first. Ties resolve
// to the lower position.
func InterferenceExtrema(n uint64, top int) []uint64 {
	spectrum := Interference(n)
	if len(spectrum) < 3 || top <= 0 {
		return nil
	}
	stride := interferenceStride(intmath.Isqrt(n))

	type extremum struct {
		weight float64
		pos    uint64
	}
	var extrema []extremum
	for i := 1; i < len(spectrum)-1; i++ {
		peak := spectrum[i] > spectrum[i-1] && spectrum[i] > spectrum[i+1]
		valley := spectrum[i] < spectrum[i-1] && spectrum[i] < spectrum[i+1]
		if peak || valley {
			extrema = append(extrema, extremum{
				weight: math.Abs(spectrum[i]),
				pos:    uint64(i)*stride + 2,
			})
		}
	}

	sort.Slice(extrema, func(i, j int) bool {
		if extrema[i].weight != extrema[j].weight {
			return extrema[i].weight > extrema[j].weight
		}
		return extrema[i].pos < extrema[j].pos
	})

	if len(extrema) > top {
		extrema = extrema[:top]
	}
	out := make([]uint64, len(extrema))
	for i, e := range extrema {
		out[i] = e.pos
	}
	return out
}

// ResonanceSource identifies the prime and Fibonacci number whose waves
// reinforce most strongly at position x, explaining why x resonates for
// n. It backs the provenance fields of resonance memory records.
func ResonanceSource(x, n uint64) (p, f uint64) {
	if n == 0 {
		return 2, 2
	}
	root := intmath.Isqrt(n)

	limit := root
	if limit > 100 {
		limit = 100
	}
	var primes []uint64
	for _, q := range prime.PrimesUpTo(limit) {
		if x%q != 0 {
			primes = append(primes, q)
		}
	}
	if len(primes) == 0 {
		primes = []uint64{2}
	}

	var fibs []uint64
	for k := 2; k < 20; k++ {
		v := golden.Fib(k)
		if v > root {
			break
		}
		fibs = append(fibs, v)
	}
	if len(fibs) == 0 {
		fibs = []uint64{2}
	}

	fn := float64(n)
	fx := float64(x)
	best := -1.0
	p, f = primes[0], fibs[0]
	for _, q := range primes {
		primePart := math.Abs(math.Cos(2 * math.Pi * float64(q) * fx / fn))
		for _, g := range fibs {
			fibPart := math.Abs(math.Cos(2 * math.Pi * float64(g) * fx / (fn * golden.Phi)))
			if resonance := primePart * fibPart; resonance > best {
				best = resonance
				p, f = q, g
			}
		}
	}
	return p, f
}
