// Package observer measures coherence fields around candidate positions
// at four nested scales.
//
// An Observer is bound to one target number. Observe blends window
// averages taken at the micro, meso, macro and omega scales, weighting
// small scales more. Gradient turns neighboring observations into a
// direction, and Field scores whole position sets, optionally in
// parallel under a resource controller. Results never depend on whether
// the parallel path was taken.
package observer

import (
	"context"
	"math"
	"sync"

	"github.com/primefold/resonance/golden"
	"github.com/primefold/resonance/internal/intmath"
	"github.com/primefold/resonance/resource"
	"github.com/primefold/resonance/spectral"
)

// Scales are the four observation radii derived from the target. They
// grow with the search domain: micro is always 1, omega follows the
// Fibonacci number of the domain's bit length.
type Scales struct {
	Micro uint64
	Meso  uint64
	Macro uint64
	Omega uint64
}

// ScalesOf derives the observation scales for n from r = isqrt(n):
// meso is log base phi of r, macro is r/phi, omega is F(log2 r). Every
// scale has a floor of 1.
func ScalesOf(n uint64) Scales {
	root := intmath.Isqrt(n)
	if root < 2 {
		return Scales{Micro: 1, Meso: 1, Macro: 1, Omega: 1}
	}
	fr := float64(root)

	meso := uint64(math.Log(fr) / math.Log(golden.Phi))
	if meso < 1 {
		meso = 1
	}

	macro := uint64(fr / golden.Phi)
	if macro < 1 {
		macro = 1
	}

	fibIndex := int(math.Log2(fr))
	if fibIndex < 1 {
		fibIndex = 1
	}
	omega := golden.Fib(fibIndex)
	if omega < 1 {
		omega = 1
	}

	return Scales{Micro: 1, Meso: meso, Macro: macro, Omega: omega}
}

// ordered returns the scales in their fixed evaluation order.
func (s Scales) ordered() [4]uint64 {
	return [4]uint64{s.Micro, s.Meso, s.Macro, s.Omega}
}

// Observer scores positions for one target number through a
// spectral.Provider. It is safe for concurrent use when the provider is.
type Observer struct {
	n        uint64
	root     uint64
	scales   Scales
	provider spectral.Provider
	rc       *resource.Controller
}

// Option configures an Observer.
type Option func(*Observer)

// WithController attaches a resource controller. Field uses its worker
// slots to score positions concurrently.
func WithController(rc *resource.Controller) Option {
	return func(o *Observer) { o.rc = rc }
}

// New creates an Observer for n backed by the given provider.
func New(n uint64, provider spectral.Provider, opts ...Option) *Observer {
	o := &Observer{
		n:        n,
		root:     intmath.Isqrt(n),
		scales:   ScalesOf(n),
		provider: provider,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// N returns the bound target.
func (o *Observer) N() uint64 { return o.n }

// Root returns the upper bound of the factor domain.
func (o *Observer) Root() uint64 { return o.root }

// Scales returns the derived observation scales.
func (o *Observer) Scales() Scales { return o.scales }

// scaleCoherence averages coherence across the window [x-scale, x+scale]
// sampled every max(1, scale/5) positions. Positions dividing n are
// scored against their true complement, others against themselves.
func (o *Observer) scaleCoherence(x, scale uint64) float64 {
	if x < 2 || x > o.root {
		return 0
	}

	step := scale / 5
	if step < 1 {
		step = 1
	}

	var sum float64
	var count int

	lo := int64(x) - int64(scale)
	hi := int64(x) + int64(scale)
	for pos := lo; pos <= hi; pos += int64(step) {
		if pos < 2 || uint64(pos) > o.root {
			continue
		}
		p := uint64(pos)
		var coh float64
		if o.n%p == 0 {
			coh = o.provider.Coherence(p, o.n/p, o.n)
		} else {
			coh = o.provider.Coherence(p, p, o.n)
		}
		sum += coh
		count++
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Observe returns the multi-scale coherence at x: the sum over all four
// scales of the window average weighted by 1/(1+ln scale). Out-of-domain
// positions observe as zero.
func (o *Observer) Observe(x uint64) float64 {
	var total float64
	for _, scale := range o.scales.ordered() {
		score := o.scaleCoherence(x, scale)
		weight := 1 / (1 + math.Log(float64(scale)))
		total += weight * score
	}
	return total
}

// Gradient estimates the slope of the observation field at x using a
// central difference of half width delta, falling back to a one-sided
// difference against the domain boundary. A zero delta is treated as 1.
func (o *Observer) Gradient(x, delta uint64) float64 {
	if delta == 0 {
		delta = 1
	}
	plusOK := x+delta <= o.root
	minusOK := x >= 2+delta

	switch {
	case plusOK && minusOK:
		return (o.Observe(x+delta) - o.Observe(x-delta)) / (2 * float64(delta))
	case plusOK:
		return (o.Observe(x+delta) - o.Observe(x)) / float64(delta)
	case minusOK:
		return (o.Observe(x) - o.Observe(x-delta)) / float64(delta)
	default:
		return 0
	}
}

// Field observes every position and returns scores aligned by index.
// With a controller granting more than one worker the positions are
// scored concurrently; output is identical to the sequential path.
func (o *Observer) Field(ctx context.Context, positions []uint64) ([]float64, error) {
	scores := make([]float64, len(positions))

	workers := 1
	if o.rc != nil {
		workers = o.rc.MaxWorkers()
	}
	if workers <= 1 || len(positions) < 2 {
		for i, pos := range positions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			scores[i] = o.Observe(pos)
		}
		return scores, nil
	}

	var wg sync.WaitGroup
	for i, pos := range positions {
		if err := o.rc.AcquireWorker(ctx); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func(i int, pos uint64) {
			defer wg.Done()
			defer o.rc.ReleaseWorker()
			scores[i] = o.Observe(pos)
		}(i, pos)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}
