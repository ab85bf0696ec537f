package spectral

import (
	"math"
	"sort"

	"github.com/primefold/resonance/internal/intmath"
)

// Misalignment returns the squared distance between the combined
// fingerprints of a candidate pair and the doubled fingerprint of the
// target: ||sa + sb - 2*sn||^2. Zero means a perfect spectral match.
func Misalignment(sa, sb, sn Vector) float64 {
	var sum float64
	for i := range sa {
		d := sa[i] + sb[i] - 2*sn[i]
		sum += d * d
	}
	return sum
}

// Coherence measures how well a and b combine into n, as
// exp(-Misalignment). The result is in (0, 1], reaching 1 exactly when
// the fingerprints align. It is symmetric in a and b.
func Coherence(a, b, n uint64) float64 {
	return math.Exp(-Misalignment(VectorOf(a), VectorOf(b), VectorOf(n)))
}

// FoldEnergy evaluates position x against its complementary factor n/x.
// Low energy marks x as a likely divisor. Positions outside (0, n]
// have infinite energy. For non-divisors the complement is floor(n/x),
// so Coherence(x, n/x, n) == exp(-FoldEnergy(n, x)) holds for every
// in-range x.
func FoldEnergy(n, x uint64) float64 {
	if x == 0 || x > n {
		return math.Inf(1)
	}
	return Misalignment(VectorOf(x), VectorOf(n/x), VectorOf(n))
}

// SharpFolds scans the window of half width span around sqrt(n) and
// returns up to ten positions ranked by the discrete curvature of the
// fold energy landscape, most negative first. Ties resolve to the lower
// position.
func SharpFolds(n, span uint64) []uint64 {
	root := intmath.Isqrt(n)

	start := uint64(2)
	if root > span && root-span > 2 {
		start = root - span
	}
	end := root + span
	if half := n / 2; end > half {
		end = half
	}
	if end < start || end-start < 2 {
		return nil
	}

	window := make([]uint64, 0, end-start+1)
	energies := make([]float64, 0, end-start+1)
	for x := start; x <= end; x++ {
		window = append(window, x)
		energies = append(energies, FoldEnergy(n, x))
	}

	type fold struct {
		curvature float64
		pos       uint64
	}
	folds := make([]fold, 0, len(window)-2)
	for i := 1; i < len(window)-1; i++ {
		c := energies[i-1] - 2*energies[i] + energies[i+1]
		folds = append(folds, fold{curvature: c, pos: window[i]})
	}

	sort.Slice(folds, func(i, j int) bool {
		if folds[i].curvature != folds[j].curvature {
			return folds[i].curvature < folds[j].curvature
		}
		return folds[i].pos < folds[j].pos
	})

	limit := 10
	if len(folds) < limit {
		limit = len(folds)
	}
	out := make([]uint64, limit)
	for i := 0; i < limit; i++ {
		out[i] = folds[i].pos
	}
	return out
}

// Provider computes fingerprints and coherence values. Direct evaluates
// the raw formulas; the cache package wraps a Provider with memoization
// that is observationally identical.
type Provider interface {
	Vector(n uint64) Vector
	Coherence(a, b, n uint64) float64
	FoldEnergy(n, x uint64) float64
}

// Direct is the Provider that computes every value from scratch.
type Direct struct{}

// Vector implements Provider.
func (Direct) Vector(n uint64) Vector { return VectorOf(n) }

// Coherence implements Provider.
func (Direct) Coherence(a, b, n uint64) float64 { return Coherence(a, b, n) }

// FoldEnergy implements Provider.
func (Direct) FoldEnergy(n, x uint64) float64 { return FoldEnergy(n, x) }
