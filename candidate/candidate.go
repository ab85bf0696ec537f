// Package candidate assembles the initial superposition for a collapse
// run. Each source contributes positions it considers promising; the
// generator clamps them to the search domain [2, sqrt(n)], removes
// duplicates and tags every surviving position with the source that
// proposed it first.
package candidate

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/primefold/resonance/spectral"
)

// Candidate is a single search position. Weight and Gradient start at
// zero and are filled in by the collapse loop once the position has
// been observed.
type Candidate struct {
	Position uint64
	Weight   float64
	Gradient float64
	Source   string
}

// Source proposes raw positions for a given n. Implementations must be
// deterministic: the same n always yields the same positions in the
// same order. Positions outside [2, sqrt(n)] are dropped by Generate,
// so sources may emit them freely.
type Source interface {
	Name() string
	Generate(n uint64) []uint64
}

type funcSource struct {
	name string
	fn   func(n uint64) []uint64
}

func (s funcSource) Name() string { return s.name }

func (s funcSource) Generate(n uint64) []uint64 { return s.fn(n) }

// Func adapts a plain function to a Source.
func Func(name string, fn func(n uint64) []uint64) Source {
	return funcSource{name: name, fn: fn}
}

// Generate merges the sources into one candidate set. Positions are
// deduplicated with a roaring bitmap, attributed to the first source
// that proposed them, and returned in ascending position order.
func Generate(n uint64, sources ...Source) []Candidate {
	root := spectral.Root(n)
	if root < 2 {
		return nil
	}

	seen := roaring64.New()
	var out []Candidate
	for _, src := range sources {
		name := src.Name()
		for _, pos := range src.Generate(n) {
			if pos < 2 || pos > root || seen.Contains(pos) {
				continue
			}
			seen.Add(pos)
			out = append(out, Candidate{Position: pos, Source: name})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// Positions projects a candidate set onto its positions, preserving
// order.
func Positions(candidates []Candidate) []uint64 {
	out := make([]uint64, len(candidates))
	for i, c := range candidates {
		out[i] = c.Position
	}
	return out
}

// DefaultSources returns the built-in sources in their canonical order:
// fibonacci, spiral, sqrtwindow, sharpfold, interference.
func DefaultSources() []Source {
	return []Source{Fibonacci(), Spiral(), SqrtWindow(), SharpFold(), Interference()}
}
