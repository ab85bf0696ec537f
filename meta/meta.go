// Package meta observes the observers. The Advisor subscribes to
// collapse traces, buckets successes by coarse number characteristics
// and keeps a per-source strength that rises on hits and decays on
// exhausted runs. It doubles as a candidate source: for a new n it
// replays the positions of past hits on similar numbers, strongest
// source first, and synthesizes midpoints between the leading replays.
// The advisor is purely advisory and fully detachable.
package meta

import (
	"fmt"
	"sort"
	"sync"

	"github.com/primefold/resonance/spectral"
	"github.com/primefold/resonance/trace"
)

// DefaultHitCapacity bounds the replay log when none is configured.
const DefaultHitCapacity = 64

// strengthDecay governs the exponential moving average of per-source
// strengths: a hit moves the source toward 1, an exhausted run moves
// every source toward 0.
const strengthDecay = 0.7

// minOverlap is the number of shared characteristics two numbers need
// before hits on one are replayed for the other.
const minOverlap = 3

type hit struct {
	n        uint64
	position uint64
	source   string
	chars    []string
}

// Advisor accumulates cross-run knowledge. It implements trace.Sink
// for ingestion and satisfies the candidate source contract (Name,
// Generate) for advice. Safe for concurrent use.
type Advisor struct {
	mu        sync.Mutex
	capacity  int
	strengths map[string]float64
	counts    map[string]map[string]int
	hits      []hit
}

// NewAdvisor returns an advisor retaining up to capacity past hits.
// Non-positive capacities fall back to DefaultHitCapacity.
func NewAdvisor(capacity int) *Advisor {
	if capacity <= 0 {
		capacity = DefaultHitCapacity
	}
	return &Advisor{
		capacity:  capacity,
		strengths: make(map[string]float64),
		counts:    make(map[string]map[string]int),
	}
}

// Record ingests a trace event. Factor hits strengthen the winning
// source and are remembered for replay; exhausted runs decay every
// source. Other event kinds are ignored.
func (a *Advisor) Record(ev trace.Event) {
	switch ev.Kind {
	case trace.KindFactorFound:
		if ev.Source == "" || ev.Position < 2 {
			return
		}
		chars := characterize(ev.N)

		a.mu.Lock()
		defer a.mu.Unlock()
		a.strengths[ev.Source] = strengthDecay*a.strengths[ev.Source] + (1 - strengthDecay)
		byChar := a.counts[ev.Source]
		if byChar == nil {
			byChar = make(map[string]int)
			a.counts[ev.Source] = byChar
		}
		for _, c := range chars {
			byChar[c]++
		}
		a.hits = append(a.hits, hit{n: ev.N, position: ev.Position, source: ev.Source, chars: chars})
		if len(a.hits) > a.capacity {
			a.hits = a.hits[len(a.hits)-a.capacity:]
		}
	case trace.KindExhausted:
		a.mu.Lock()
		defer a.mu.Unlock()
		for s := range a.strengths {
			a.strengths[s] *= strengthDecay
		}
	}
}

// Name tags advisor-suggested candidates.
func (a *Advisor) Name() string { return "meta" }

// Generate replays the positions of past hits on numbers sharing at
// least minOverlap characteristics with n, ordered by source strength
// then position, followed by the pairwise midpoints of the first four
// replays. Positions outside the caller's domain are the caller's
// problem, as with every source.
func (a *Advisor) Generate(n uint64) []uint64 {
	chars := characterize(n)

	a.mu.Lock()
	matched := make([]hit, 0, len(a.hits))
	for _, h := range a.hits {
		if overlap(h.chars, chars) >= minOverlap {
			matched = append(matched, h)
		}
	}
	strength := func(source string) float64 { return a.strengths[source] }
	sort.SliceStable(matched, func(i, j int) bool {
		si, sj := strength(matched[i].source), strength(matched[j].source)
		if si != sj {
			return si > sj
		}
		return matched[i].position < matched[j].position
	})
	a.mu.Unlock()

	var out []uint64
	seen := make(map[uint64]struct{}, len(matched))
	for _, h := range matched {
		if _, ok := seen[h.position]; ok {
			continue
		}
		seen[h.position] = struct{}{}
		out = append(out, h.position)
	}

	lead := out
	if len(lead) > 4 {
		lead = lead[:4]
	}
	for i := 0; i < len(lead); i++ {
		for j := i + 1; j < len(lead); j++ {
			out = append(out, (lead[i]+lead[j])/2)
		}
	}
	return out
}

// Strength reports the decayed success strength of a source, zero when
// unseen.
func (a *Advisor) Strength(source string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.strengths[source]
}

// BestSource suggests the source most likely to succeed on n, judged
// by strength scaled with characteristic matches. Empty when nothing
// has been learned yet.
func (a *Advisor) BestSource(n uint64) string {
	chars := characterize(n)

	a.mu.Lock()
	defer a.mu.Unlock()

	best, bestScore := "", 0.0
	names := make([]string, 0, len(a.strengths))
	for s := range a.strengths {
		names = append(names, s)
	}
	sort.Strings(names)
	for _, s := range names {
		matches := 0
		for _, c := range chars {
			matches += a.counts[s][c]
		}
		score := a.strengths[s] * float64(1+matches)
		if score > bestScore {
			best, bestScore = s, score
		}
	}
	return best
}

// characterize buckets n by the traits the profile is keyed on: size
// class, bit-length decade, residues mod 3, 5 and 7, digital root and
// bit density.
func characterize(n uint64) []string {
	chars := make([]string, 0, 7)

	switch {
	case n < 100:
		chars = append(chars, "small")
	case n < 10000:
		chars = append(chars, "medium")
	default:
		chars = append(chars, "large")
	}

	bits := 0
	for v := n; v > 0; v >>= 1 {
		bits++
	}
	chars = append(chars,
		fmt.Sprintf("bits_%d0s", bits/10),
		fmt.Sprintf("mod3_%d", n%3),
		fmt.Sprintf("mod5_%d", n%5),
		fmt.Sprintf("mod7_%d", n%7),
		fmt.Sprintf("droot_%d", spectral.DigitalRoot(n)),
	)

	if spectral.VectorOf(n)[0] > 0.5 {
		chars = append(chars, "high_density")
	} else {
		chars = append(chars, "low_density")
	}
	return chars
}

func overlap(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, c := range a {
		set[c] = struct{}{}
	}
	count := 0
	for _, c := range b {
		if _, ok := set[c]; ok {
			count++
		}
	}
	return count
}
