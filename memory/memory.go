// Package memory remembers successful factorizations and projects them
// onto new inputs. A factor found at n₀ suggests positions near
// factor·(n/n₀) and its golden-ratio variants when a related n arrives
// later; the (prime, fibonacci) provenance of past hits additionally
// feeds a pattern graph whose strengths decay by exponential moving
// average.
package memory

import (
	"container/list"
	"math"
	"sort"
	"sync"

	"github.com/primefold/resonance/golden"
	"github.com/primefold/resonance/internal/intmath"
)

// DefaultCapacity bounds the record list when none is configured.
const DefaultCapacity = 1000

// decayFactor weights the exponential moving average of pattern
// strengths: new = 0.7*old + 0.3*observed.
const decayFactor = 0.7

// Record is one remembered success. Prime and Fibonacci carry the
// resonance provenance of the hit, N the composite it was found in,
// Factor the divisor and Strength the winning candidate weight.
type Record struct {
	Prime     uint64
	Fibonacci uint64
	N         uint64
	Factor    uint64
	Strength  float64
}

// Prediction is a suggested search position with its confidence.
type Prediction struct {
	Position uint64
	Weight   float64
}

type recordKey struct {
	prime     uint64
	fibonacci uint64
	n         uint64
	factor    uint64
}

type patternKey struct {
	prime     uint64
	fibonacci uint64
}

// Memory is a bounded, concurrency-safe store of past successes.
// Records evict least-recently-recorded first; re-adding a record
// refreshes its recency and strength.
type Memory struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	byKey    map[recordKey]*list.Element
	graph    map[patternKey]float64
}

// New returns a memory holding up to capacity records. Non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{
		capacity: capacity,
		order:    list.New(),
		byKey:    make(map[recordKey]*list.Element),
		graph:    make(map[patternKey]float64),
	}
}

// Add records a success. Records whose factor does not actually divide
// N, or with N or Factor below 2, are ignored. The pattern graph is
// updated on every add, including refreshes.
func (m *Memory) Add(rec Record) {
	if rec.N < 2 || rec.Factor < 2 || rec.N%rec.Factor != 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	pk := patternKey{prime: rec.Prime, fibonacci: rec.Fibonacci}
	m.graph[pk] = decayFactor*m.graph[pk] + (1-decayFactor)*rec.Strength

	key := recordKey{prime: rec.Prime, fibonacci: rec.Fibonacci, n: rec.N, factor: rec.Factor}
	if el, ok := m.byKey[key]; ok {
		el.Value = rec
		m.order.MoveToBack(el)
		return
	}

	m.byKey[key] = m.order.PushBack(rec)
	for m.order.Len() > m.capacity {
		oldest := m.order.Front()
		old := oldest.Value.(Record)
		delete(m.byKey, recordKey{prime: old.Prime, fibonacci: old.Fibonacci, n: old.N, factor: old.Factor})
		m.order.Remove(oldest)
	}
}

// Len reports the number of retained records.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// Predict projects every remembered success onto n. Each record with
// factor f and modulus n₀ contributes f scaled by n/n₀ (exactly when
// n₀ divides n, rounded otherwise) plus the φ-scaled and φ-divided
// variants; similar patterns from the graph contribute (p·f) mod
// sqrt(n). Positions outside [2, sqrt(n)] are dropped, duplicates keep
// the highest weight, and the result is ordered by weight descending
// with position breaking ties. An empty memory predicts an empty,
// non-nil slice.
func (m *Memory) Predict(n uint64) []Prediction {
	out := make([]Prediction, 0)
	root := intmath.Isqrt(n)
	if root < 2 {
		return out
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	best := make(map[uint64]float64)
	consider := func(pos uint64, weight float64) {
		if pos < 2 || pos > root {
			return
		}
		if weight > best[pos] {
			best[pos] = weight
		}
	}

	for el := m.order.Front(); el != nil; el = el.Next() {
		rec := el.Value.(Record)
		scale := float64(n) / float64(rec.N)
		base := float64(rec.Factor) * scale

		if n%rec.N == 0 {
			consider(rec.Factor*(n/rec.N), 0.8/(1+math.Abs(math.Log(scale))))
		} else {
			consider(roundTo(base, root), 0.8/(1+math.Abs(math.Log(scale))))
		}
		consider(roundTo(base*golden.Phi, root), 0.6/(1+math.Abs(math.Log(scale*golden.Phi))))
		consider(roundTo(base/golden.Phi, root), 0.6/(1+math.Abs(math.Log(scale/golden.Phi))))
	}

	for pk, strength := range m.graph {
		for el := m.order.Front(); el != nil; el = el.Next() {
			rec := el.Value.(Record)
			if absDiff(pk.prime, rec.Prime) <= 2 && absDiff(pk.fibonacci, rec.Fibonacci) <= 1 {
				pos := ((pk.prime % root) * (pk.fibonacci % root)) % root
				if pos == 0 {
					pos = pk.prime
				}
				consider(pos, strength*0.5)
				break
			}
		}
	}

	for pos, weight := range best {
		out = append(out, Prediction{Position: pos, Weight: weight})
	}
	sortPredictions(out)
	return out
}

// PatternStrength reports the decayed strength of a (prime, fibonacci)
// pattern, zero when unseen.
func (m *Memory) PatternStrength(p, f uint64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.graph[patternKey{prime: p, fibonacci: f}]
}

// SuccessRate reports the share of patterns whose strength exceeds
// one half.
func (m *Memory) SuccessRate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.graph) == 0 {
		return 0
	}
	strong := 0
	for _, s := range m.graph {
		if s > 0.5 {
			strong++
		}
	}
	return float64(strong) / float64(len(m.graph))
}

// Export returns the retained records, oldest first.
func (m *Memory) Export() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0, m.order.Len())
	for el := m.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(Record))
	}
	return out
}

// Import replaces the memory contents with the given records, first
// record oldest. The pattern graph is rebuilt by replaying the adds.
func (m *Memory) Import(records []Record) {
	m.Clear()
	for _, rec := range records {
		m.Add(rec)
	}
}

// Clear discards all records and pattern strengths.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order.Init()
	m.byKey = make(map[recordKey]*list.Element)
	m.graph = make(map[patternKey]float64)
}

// roundTo rounds v to the nearest integer, saturating above root so
// the conversion from float is always in range.
func roundTo(v float64, root uint64) uint64 {
	if v < 0 || v > float64(root)+1 {
		return 0
	}
	return uint64(math.Round(v))
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

func sortPredictions(predictions []Prediction) {
	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].Weight != predictions[j].Weight {
			return predictions[i].Weight > predictions[j].Weight
		}
		return predictions[i].Position < predictions[j].Position
	})
}
