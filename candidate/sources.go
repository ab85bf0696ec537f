package candidate

import (
	"math"

	"github.com/primefold/resonance/golden"
	"github.com/primefold/resonance/prime"
	"github.com/primefold/resonance/spectral"
)

const (
	sharpFoldSpan       = 25
	interferenceExtrema = 30
	spiralPoints        = 20
	vortexPrimeLimit    = 100
	vortexPrimeCount    = 20
	sqrtWindowMax       = 10000
)

type fibonacciSource struct{}

// Fibonacci returns the vortex source: Fibonacci numbers below sqrt(n)
// together with their golden scalings f*phi and f/phi and their prime
// modulations (f*p) mod sqrt(n).
func Fibonacci() Source { return fibonacciSource{} }

func (fibonacciSource) Name() string { return "fibonacci" }

func (fibonacciSource) Generate(n uint64) []uint64 {
	root := spectral.Root(n)
	if root < 2 {
		return nil
	}

	primes := prime.PrimesUpTo(vortexPrimeLimit)
	var out []uint64
	for k := 1; k < 30; k++ {
		f := golden.Fib(k)
		if f >= root {
			break
		}
		if f >= 2 {
			out = append(out, f)
		}
		if scaled := uint64(float64(f) * golden.Phi); scaled >= 2 && scaled <= root {
			out = append(out, scaled)
		}
		if scaled := uint64(float64(f) / golden.Phi); scaled >= 2 && scaled <= root {
			out = append(out, scaled)
		}

		used := 0
		for _, p := range primes {
			if p > f || used == vortexPrimeCount {
				break
			}
			used++
			m := (f * p) % root
			if m == 0 {
				m = p
			}
			if m >= 2 && m <= root {
				out = append(out, m)
			}
		}
	}
	return out
}

type spiralSource struct{}

// Spiral returns positions along a golden-angle spiral centered at
// sqrt(n)/2 with linearly growing radius.
func Spiral() Source { return spiralSource{} }

func (spiralSource) Name() string { return "spiral" }

func (spiralSource) Generate(n uint64) []uint64 {
	root := spectral.Root(n)
	if root < 2 {
		return nil
	}

	steps := spiralPoints
	if byTen := int(root / 10); byTen < steps {
		steps = byTen
	}

	center := int64(root / 2)
	var out []uint64
	angle := 0.0
	for i := 0; i < steps; i++ {
		r := root * uint64(i+1) / spiralPoints
		x := int64(float64(r)*math.Cos(angle)) + center
		if x >= 2 && uint64(x) <= root {
			out = append(out, uint64(x))
		}
		angle += golden.Angle
	}
	return out
}

type sqrtWindowSource struct{}

// SqrtWindow returns every integer in the window [sqrt(n)-w, sqrt(n)]
// with w = max(10, sqrt(n)/10), capped at 10000 positions. Balanced
// semiprimes place both factors near the square root, so the window is
// checked exhaustively.
func SqrtWindow() Source { return sqrtWindowSource{} }

func (sqrtWindowSource) Name() string { return "sqrtwindow" }

func (sqrtWindowSource) Generate(n uint64) []uint64 {
	root := spectral.Root(n)
	if root < 2 {
		return nil
	}

	w := root / 10
	if w < 10 {
		w = 10
	}
	if w > sqrtWindowMax {
		w = sqrtWindowMax
	}
	lo := uint64(2)
	if root > w && root-w > 2 {
		lo = root - w
	}

	out := make([]uint64, 0, root-lo+1)
	for p := lo; p <= root; p++ {
		out = append(out, p)
	}
	return out
}

type sharpFoldSource struct{}

// SharpFold returns the sharpest folds of the energy landscape around
// sqrt(n).
func SharpFold() Source { return sharpFoldSource{} }

func (sharpFoldSource) Name() string { return "sharpfold" }

func (sharpFoldSource) Generate(n uint64) []uint64 {
	return spectral.SharpFolds(n, sharpFoldSpan)
}

type interferenceSource struct{}

// Interference returns the extrema of the prime-Fibonacci interference
// pattern.
func Interference() Source { return interferenceSource{} }

func (interferenceSource) Name() string { return "interference" }

func (interferenceSource) Generate(n uint64) []uint64 {
	return spectral.InterferenceExtrema(n, interferenceExtrema)
}

type latticeSource struct{}

// Lattice returns intersections of the Fibonacci lattice: pairwise
// sums, differences and products (mod sqrt(n)) of the Fibonacci
// numbers up to sqrt(n). Not part of DefaultSources; attach it for a
// denser initial superposition.
func Lattice() Source { return latticeSource{} }

func (latticeSource) Name() string { return "lattice" }

func (latticeSource) Generate(n uint64) []uint64 {
	root := spectral.Root(n)
	if root < 2 {
		return nil
	}

	fibs := golden.FibsUpTo(root)
	var out []uint64
	for i, f1 := range fibs {
		for _, f2 := range fibs[i:] {
			if s := f1 + f2; s >= 2 && s <= root {
				out = append(out, s)
			}
			d := f2 - f1
			if f1 > f2 {
				d = f1 - f2
			}
			if d >= 2 && d <= root {
				out = append(out, d)
			}
			m := (f1 * f2) % root
			if m == 0 {
				m = f1
				if f2 < f1 {
					m = f2
				}
			}
			if m >= 2 && m <= root {
				out = append(out, m)
			}
		}
	}
	return out
}

type hintSource struct {
	positions []uint64
}

// Hint wraps caller-supplied positions. Out-of-domain hints are
// dropped during generation rather than reported as errors.
func Hint(positions ...uint64) Source {
	out := make([]uint64, len(positions))
	copy(out, positions)
	return hintSource{positions: out}
}

func (hintSource) Name() string { return "hint" }

func (h hintSource) Generate(uint64) []uint64 { return h.positions }
