// Package spectral turns integers into fixed-length numeric fingerprints
// and measures how well two numbers combine into a third.
//
// A Vector concatenates four views of a number: its binary bit patterns,
// its residues modulo small odd primes, its decimal digit structure, and
// its phase relative to the golden ratio. Coherence compares the combined
// fingerprint of a factor pair against the fingerprint of the target, and
// FoldEnergy is the same measurement restricted to complementary pairs
// (x, n/x). Everything here is pure and deterministic.
package spectral

import (
	"math"
	"math/bits"

	"github.com/primefold/resonance/golden"
	"github.com/primefold/resonance/internal/intmath"
)

// Segment layout of a Vector.
const (
	BinaryDim   = 12
	ModularDim  = 10
	DigitalDim  = 2
	HarmonicDim = 3

	// Dim is the total component count of a Vector.
	Dim = BinaryDim + ModularDim + DigitalDim + HarmonicDim
)

// modPrimes are the moduli of the modular segment, the first ten odd
// primes. Residues are normalized by their modulus into [0, 1).
var modPrimes = [ModularDim]uint64{3, 5, 7, 11, 13, 17, 19, 23, 29, 31}

// Vector is the spectral fingerprint of a number. It is a value type;
// once computed it is never mutated.
type Vector [Dim]float64

// VectorOf computes the spectral fingerprint of n.
//
// Layout: components [0,12) binary, [12,22) modular, [22,24) digital,
// [24,27) harmonic. VectorOf(0) is the zero vector; VectorOf(1) has a
// zero harmonic segment because the golden-phase features are undefined
// below 2.
func VectorOf(n uint64) Vector {
	var v Vector
	if n == 0 {
		return v
	}
	binarySegment(n, v[0:BinaryDim])
	modularSegment(n, v[BinaryDim:BinaryDim+ModularDim])
	digitalSegment(n, v[BinaryDim+ModularDim:BinaryDim+ModularDim+DigitalDim])
	if n > 1 {
		harmonicSegment(n, v[Dim-HarmonicDim:Dim])
	}
	return v
}

// binarySegment fills dst with bit density, the lag-1 autocorrelation of
// the +-1 bit sequence, and up to ten run lengths normalized by total
// bit count.
func binarySegment(n uint64, dst []float64) {
	length := bits.Len64(n)
	fl := float64(length)

	ones := bits.OnesCount64(n)
	dst[0] = float64(ones) / fl

	// Bits MSB first as a +-1 sequence.
	seq := make([]float64, length)
	for i := 0; i < length; i++ {
		if n>>(length-1-i)&1 == 1 {
			seq[i] = 1
		} else {
			seq[i] = -1
		}
	}

	mean := (float64(ones) - float64(length-ones)) / fl
	if length > 1 {
		var num, variance float64
		for i := 0; i < length-1; i++ {
			num += (seq[i] - mean) * (seq[i+1] - mean)
		}
		for _, s := range seq {
			variance += (s - mean) * (s - mean)
		}
		variance /= fl
		if variance > 0 {
			dst[1] = num / float64(length-1) / variance
		}
	}

	// Run lengths of consecutive equal bits, MSB first.
	slot := 2
	runStart := 0
	for i := 1; i <= length; i++ {
		if i == length || seq[i] != seq[runStart] {
			if slot < BinaryDim {
				dst[slot] = float64(i-runStart) / fl
				slot++
			}
			runStart = i
		}
	}
}

func modularSegment(n uint64, dst []float64) {
	for i, p := range modPrimes {
		dst[i] = float64(n%p) / float64(p)
	}
}

func digitalSegment(n uint64, dst []float64) {
	var sum, count uint64
	for m := n; m > 0; m /= 10 {
		sum += m % 10
		count++
	}
	dst[0] = float64(sum) / (9 * float64(count))
	dst[1] = float64(DigitalRoot(n)) / 9
}

// harmonicSegment fills dst with the golden-phase features for n >= 2:
// the Fibonacci wave phase at log_phi(n), the log ratio to the nearest
// Fibonacci number, and the golden-angle offset.
func harmonicSegment(n uint64, dst []float64) {
	fn := float64(n)
	x := math.Log(fn) / math.Log(golden.Phi)

	dst[0] = math.Mod(math.Abs(golden.FibWave(x)), 1)

	k := int(math.Round(x))
	if k < 0 {
		k = 0
	}
	if nearest := golden.Fib(k); nearest > 0 {
		dst[1] = math.Log(float64(nearest)+1) / math.Log(fn+1)
	}

	dst[2] = math.Mod(fn*golden.Angle/(2*math.Pi), 1)
}

// DigitalRoot returns the iterated decimal digit sum of n, with the
// closed form 1+(n-1) mod 9 for positive n.
func DigitalRoot(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return 1 + (n-1)%9
}

// Root returns the integer square root of n, the upper bound of the
// factor search domain [2, Root(n)].
func Root(n uint64) uint64 {
	return intmath.Isqrt(n)
}
