// Package collapse implements the refine-and-prune loop that drives a
// candidate superposition toward an exact divisor. Each iteration
// divisor-checks the working set, scores it through the multi-scale
// observer, keeps the strongest candidates and moves them along the
// coherence gradient. Runs are deterministic: identical inputs take
// identical paths to identical outcomes.
package collapse

import (
	"context"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/primefold/resonance/candidate"
	"github.com/primefold/resonance/observer"
	"github.com/primefold/resonance/trace"
)

const (
	// DefaultBudget bounds the refinement iterations per run.
	DefaultBudget = 8
	// DefaultKeepTop bounds the working set kept after each ranking.
	DefaultKeepTop = 16
)

// Outcome is the terminal state of a run.
type Outcome uint8

const (
	// OutcomeExhausted means the budget was spent or the weights
	// stalled without a hit. It never implies that n is prime.
	OutcomeExhausted Outcome = iota
	// OutcomeSuccess means a candidate divided n exactly.
	OutcomeSuccess
)

func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "exhausted"
}

// Result describes how a run ended. On success P*Q == n with P <= Q,
// Position is the winning candidate (always equal to P) and Weight its
// score at the time of the hit; hits straight from the seeds carry
// weight 1. Visited counts the distinct positions divisor-checked.
type Result struct {
	Outcome    Outcome
	P          uint64
	Q          uint64
	Position   uint64
	Weight     float64
	Source     string
	Iterations int
	Visited    uint64
}

type options struct {
	budget  int
	keepTop int
	delta   uint64
	sink    trace.Sink
	session string
}

// Option configures a collapse loop.
type Option func(*options)

// WithBudget bounds the number of refinement iterations.
func WithBudget(budget int) Option {
	return func(o *options) {
		if budget > 0 {
			o.budget = budget
		}
	}
}

// WithKeepTop bounds the working set kept after each ranking phase.
func WithKeepTop(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.keepTop = k
		}
	}
}

// WithGradientDelta overrides the probe distance for gradient
// estimation. Zero keeps the default max(1, sqrt(n)/100).
func WithGradientDelta(delta uint64) Option {
	return func(o *options) {
		o.delta = delta
	}
}

// WithSink attaches an event sink receiving every phase transition.
func WithSink(s trace.Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// WithSession stamps emitted events with a session identifier.
func WithSession(id string) Option {
	return func(o *options) {
		o.session = id
	}
}

// Loop collapses superpositions against a single observer. A zero
// working set or an unproductive landscape exhausts normally; the loop
// never errors except on context cancellation.
type Loop struct {
	obs  *observer.Observer
	opts options
}

// New returns a loop bound to the observer and its n.
func New(obs *observer.Observer, optFns ...Option) *Loop {
	o := options{budget: DefaultBudget, keepTop: DefaultKeepTop}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return &Loop{obs: obs, opts: o}
}

// Run refines the seeds until one divides n, the budget is spent or
// the best weight stops improving for two consecutive iterations.
func (l *Loop) Run(ctx context.Context, seeds []candidate.Candidate) (Result, error) {
	n := l.obs.N()
	root := l.obs.Root()

	ws := make([]candidate.Candidate, 0, len(seeds))
	for _, c := range seeds {
		if c.Position >= 2 && c.Position <= root {
			ws = append(ws, c)
		}
	}

	visited := roaring64.New()
	l.emit(trace.Event{Kind: trace.KindSeeded, N: n, Candidates: len(ws)})

	delta := l.opts.delta
	if delta == 0 {
		delta = root / 100
		if delta == 0 {
			delta = 1
		}
	}

	prevBest := math.Inf(-1)
	stalled := 0
	iterations := 0

	for iter := 0; iter < l.opts.budget; iter++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if len(ws) == 0 {
			break
		}

		// Divisor check comes before any scoring: the seeds may
		// already contain a factor.
		for _, c := range ws {
			if visited.Contains(c.Position) {
				continue
			}
			visited.Add(c.Position)
			if n%c.Position == 0 {
				return l.success(n, c, iter, visited), nil
			}
		}

		scores, err := l.obs.Field(ctx, candidate.Positions(ws))
		if err != nil {
			return Result{}, err
		}
		best := math.Inf(-1)
		for i := range ws {
			g := l.obs.Gradient(ws[i].Position, delta)
			ws[i].Gradient = g
			ws[i].Weight = scores[i] * (1 + math.Abs(g))
			if ws[i].Weight > best {
				best = ws[i].Weight
			}
		}
		l.emit(trace.Event{Kind: trace.KindScored, N: n, Iteration: iter, Weight: best, Candidates: len(ws)})

		sort.SliceStable(ws, func(i, j int) bool {
			if ws[i].Weight != ws[j].Weight {
				return ws[i].Weight > ws[j].Weight
			}
			return ws[i].Position < ws[j].Position
		})
		if len(ws) > l.opts.keepTop {
			ws = ws[:l.opts.keepTop]
		}
		l.emit(trace.Event{Kind: trace.KindRanked, N: n, Iteration: iter, Weight: ws[0].Weight, Candidates: len(ws)})

		iterations = iter + 1
		if ws[0].Weight <= prevBest {
			stalled++
			if stalled >= 2 {
				break
			}
		} else {
			stalled = 0
			prevBest = ws[0].Weight
		}

		step := root / (50 * uint64(iter+1))
		if step == 0 {
			step = 1
		}
		ws = moveAndMerge(ws, step, root)
	}

	l.emit(trace.Event{Kind: trace.KindExhausted, N: n, Iteration: iterations, Candidates: len(ws)})
	return Result{
		Outcome:    OutcomeExhausted,
		Iterations: iterations,
		Visited:    visited.GetCardinality(),
	}, nil
}

// moveAndMerge advances every candidate one gradient-ascent step and
// merges position collisions, keeping the higher weight. Zero gradient
// holds position.
func moveAndMerge(ws []candidate.Candidate, step, root uint64) []candidate.Candidate {
	merged := make([]candidate.Candidate, 0, len(ws))
	index := make(map[uint64]int, len(ws))
	for _, c := range ws {
		pos := c.Position
		switch {
		case c.Gradient > 0:
			pos += step
			if pos > root {
				pos = root
			}
		case c.Gradient < 0:
			if pos >= 2+step {
				pos -= step
			} else {
				pos = 2
			}
		}
		c.Position = pos
		if j, ok := index[pos]; ok {
			if c.Weight > merged[j].Weight {
				merged[j] = c
			}
			continue
		}
		index[pos] = len(merged)
		merged = append(merged, c)
	}
	return merged
}

func (l *Loop) success(n uint64, c candidate.Candidate, iter int, visited *roaring64.Bitmap) Result {
	weight := c.Weight
	if weight == 0 {
		weight = 1
	}
	l.emit(trace.Event{
		Kind:      trace.KindFactorFound,
		N:         n,
		Iteration: iter,
		Position:  c.Position,
		Weight:    weight,
		Source:    c.Source,
	})
	return Result{
		Outcome:    OutcomeSuccess,
		P:          c.Position,
		Q:          n / c.Position,
		Position:   c.Position,
		Weight:     weight,
		Source:     c.Source,
		Iterations: iter,
		Visited:    visited.GetCardinality(),
	}
}

func (l *Loop) emit(ev trace.Event) {
	if l.opts.sink == nil {
		return
	}
	ev.Session = l.opts.session
	l.opts.sink.Record(ev)
}
