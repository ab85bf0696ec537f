package cache

import (
	"math"

	"github.com/primefold/resonance/spectral"
)

// Default entry capacities for the two caches.
const (
	DefaultVectorCapacity    = 4096
	DefaultCoherenceCapacity = 4096
)

// tripleKey identifies a coherence computation. First and Second are
// stored in canonical order, so symmetric lookups share one entry.
type tripleKey struct {
	first  uint64
	second uint64
	n      uint64
}

// Provider memoizes another spectral.Provider. It is safe for
// concurrent use and observationally identical to its inner provider.
type Provider struct {
	inner     spectral.Provider
	vectors   *lru[uint64, spectral.Vector]
	coherence *lru[tripleKey, float64]
}

// Stats reports cache effectiveness counters.
type Stats struct {
	VectorHits       int64
	VectorMisses     int64
	VectorEntries    int
	CoherenceHits    int64
	CoherenceMisses  int64
	CoherenceEntries int
}

// NewProvider wraps inner with LRU memoization. Capacities below one
// fall back to the defaults.
func NewProvider(inner spectral.Provider, vectorCapacity, coherenceCapacity int) *Provider {
	if vectorCapacity < 1 {
		vectorCapacity = DefaultVectorCapacity
	}
	if coherenceCapacity < 1 {
		coherenceCapacity = DefaultCoherenceCapacity
	}
	return &Provider{
		inner:     inner,
		vectors:   newLRU[uint64, spectral.Vector](vectorCapacity),
		coherence: newLRU[tripleKey, float64](coherenceCapacity),
	}
}

// Vector returns the fingerprint of n, computing it at most once while
// the entry stays resident.
func (p *Provider) Vector(n uint64) spectral.Vector {
	if v, ok := p.vectors.get(n); ok {
		return v
	}
	v := p.inner.Vector(n)
	p.vectors.set(n, v)
	return v
}

// Coherence returns the coherence of (a, b) against n. The key is
// canonicalized so Coherence(a, b, n) and Coherence(b, a, n) share one
// entry, which also makes the symmetry structural.
func (p *Provider) Coherence(a, b, n uint64) float64 {
	if a > b {
		a, b = b, a
	}
	key := tripleKey{first: a, second: b, n: n}
	if c, ok := p.coherence.get(key); ok {
		return c
	}
	c := math.Exp(-spectral.Misalignment(p.Vector(a), p.Vector(b), p.Vector(n)))
	p.coherence.set(key, c)
	return c
}

// FoldEnergy evaluates position x against n through the vector cache.
func (p *Provider) FoldEnergy(n, x uint64) float64 {
	if x == 0 || x > n {
		return math.Inf(1)
	}
	return spectral.Misalignment(p.Vector(x), p.Vector(n/x), p.Vector(n))
}

// Invalidate drops every cached entry. Counters are preserved.
func (p *Provider) Invalidate() {
	p.vectors.purge()
	p.coherence.purge()
}

// Stats returns a snapshot of hit and miss counters and the resident
// entry counts.
func (p *Provider) Stats() Stats {
	vh, vm := p.vectors.stats()
	ch, cm := p.coherence.stats()
	return Stats{
		VectorHits:       vh,
		VectorMisses:     vm,
		VectorEntries:    p.vectors.len(),
		CoherenceHits:    ch,
		CoherenceMisses:  cm,
		CoherenceEntries: p.coherence.len(),
	}
}
