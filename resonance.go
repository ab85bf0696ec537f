package resonance

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/primefold/resonance/cache"
	"github.com/primefold/resonance/candidate"
	"github.com/primefold/resonance/codec"
	"github.com/primefold/resonance/collapse"
	"github.com/primefold/resonance/memory"
	"github.com/primefold/resonance/meta"
	"github.com/primefold/resonance/observer"
	"github.com/primefold/resonance/resource"
	"github.com/primefold/resonance/snapshot"
	"github.com/primefold/resonance/spectral"
	"github.com/primefold/resonance/trace"
)

// MemorySnapshotKey is the store key under which resonance memory is
// persisted by SaveMemory and read back by LoadMemory.
const MemorySnapshotKey = "memory.rsnp"

// Factors is the outcome of a successful search: P*Q == N with P <= Q.
type Factors struct {
	N uint64
	P uint64
	Q uint64
}

func (f Factors) String() string {
	return fmt.Sprintf("%d = %d * %d", f.N, f.P, f.Q)
}

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	// Factorizations counts every search attempt, whatever its outcome.
	Factorizations int64
	// Successes counts searches that located a divisor.
	Successes int64
	// Exhausted counts searches that spent their budget without a hit.
	Exhausted int64
	// Cache reports spectral cache hit/miss counters. Zero when the
	// cache is disabled.
	Cache cache.Stats
	// MemoryRecords is the current resonance memory size.
	MemoryRecords int
	// TraceEvents is the number of events currently retained.
	TraceEvents int
	// TraceDropped counts events evicted from the trace ring.
	TraceDropped uint64
}

// Engine searches for nontrivial divisors of composite numbers by
// scoring candidate positions against the spectral embedding of n and
// iteratively refining the most coherent ones.
//
// All methods are safe for concurrent use. Identical inputs against
// identically configured engines produce identical outcomes.
type Engine struct {
	provider      spectral.Provider
	cache         *cache.Provider
	memory        *memory.Memory
	trace         *trace.Trace
	advisor       *meta.Advisor
	sources       []candidate.Source
	controller    *resource.Controller
	store         snapshot.Store
	codec         codec.Codec
	compression   snapshot.Compression
	logger        *Logger
	metrics       MetricsCollector
	budget        int
	keepTop       int
	gradientDelta uint64

	factorizations atomic.Int64
	successes      atomic.Int64
	exhausted      atomic.Int64
	closed         atomic.Bool
}

// New creates an engine. With no options it uses the default candidate
// generators, a spectral cache, in-process resonance memory and no
// persistence.
func New(optFns ...Option) (*Engine, error) {
	opts := applyOptions(optFns)

	// The collapse layer silently falls back to defaults for bad
	// values; construction is the place to be loud about them.
	if opts.budget <= 0 {
		return nil, fmt.Errorf("resonance: budget must be positive, got %d", opts.budget)
	}
	if opts.keepTop <= 0 {
		return nil, fmt.Errorf("resonance: keep top must be positive, got %d", opts.keepTop)
	}

	c := opts.codec
	if c == nil {
		c = codec.Default
	}

	sources := opts.sources
	if sources == nil {
		sources = candidate.DefaultSources()
	}

	e := &Engine{
		memory:        memory.New(opts.memoryCapacity),
		trace:         trace.New(opts.traceCapacity),
		sources:       sources,
		controller:    opts.controller,
		store:         opts.store,
		codec:         c,
		compression:   opts.compression,
		logger:        opts.logger,
		metrics:       opts.metrics,
		budget:        opts.budget,
		keepTop:       opts.keepTop,
		gradientDelta: opts.gradientDelta,
	}

	if opts.cacheDisabled {
		e.provider = spectral.Direct{}
	} else {
		e.cache = cache.NewProvider(spectral.Direct{}, opts.vectorCapacity, opts.coherenceCapacity)
		e.provider = e.cache
	}

	for _, s := range opts.subscribers {
		e.trace.Subscribe(s)
	}
	if opts.metaAdvisor {
		e.advisor = meta.NewAdvisor(0)
		e.trace.Subscribe(e.advisor)
	}

	return e, nil
}

// FindFactor searches for a nontrivial divisor of n using the engine's
// configured budget. On success it returns Factors with P <= Q and
// P*Q == n.
//
// A prime n exhausts the budget and returns ErrNoFactorFound; so may a
// composite whose divisors the generators never reached. Inputs below 2
// return ErrInvalidN.
func (e *Engine) FindFactor(ctx context.Context, n uint64) (Factors, error) {
	return e.findFactor(ctx, n, nil, e.budget, e.keepTop)
}

func (e *Engine) findFactor(ctx context.Context, n uint64, hints []uint64, budget, keepTop int) (Factors, error) {
	start := time.Now()

	if e.closed.Load() {
		return Factors{}, ErrClosed
	}
	if budget <= 0 {
		budget = e.budget
	}
	if keepTop <= 0 {
		keepTop = e.keepTop
	}

	e.factorizations.Add(1)

	if n < 2 {
		err := translateError(&OutOfRangeError{N: n, Max: MaxN})
		e.metrics.RecordFactorization(time.Since(start), err)
		return Factors{}, err
	}

	session := uuid.NewString()
	seeds := candidate.Generate(n, e.sessionSources(hints)...)
	e.logger.LogFactorStart(ctx, session, n, len(seeds))

	obs := observer.New(n, e.provider, observer.WithController(e.controller))
	loop := collapse.New(obs,
		collapse.WithBudget(budget),
		collapse.WithKeepTop(keepTop),
		collapse.WithGradientDelta(e.gradientDelta),
		collapse.WithSink(e.trace),
		collapse.WithSession(session),
	)

	res, err := loop.Run(ctx, seeds)
	if err != nil {
		err = translateError(err)
		e.metrics.RecordFactorization(time.Since(start), err)
		e.logger.LogExhausted(ctx, session, n, res.Iterations, err)
		return Factors{}, err
	}

	duration := time.Since(start)
	e.metrics.RecordObservation(res.Visited, duration)
	if e.cache != nil {
		e.metrics.RecordCacheStats(e.cache.Stats())
	}

	if res.Outcome != collapse.OutcomeSuccess {
		e.exhausted.Add(1)
		err := fmt.Errorf("%w: n=%d after %d iterations", ErrNoFactorFound, n, res.Iterations)
		e.metrics.RecordFactorization(duration, err)
		e.logger.LogExhausted(ctx, session, n, res.Iterations, nil)
		return Factors{}, err
	}

	e.successes.Add(1)
	e.remember(n, res)
	e.metrics.RecordFactorization(duration, nil)
	e.logger.LogFactorFound(ctx, session, n, res.P, res.Q, res.Iterations, res.Source)

	return Factors{N: n, P: res.P, Q: res.Q}, nil
}

// sessionSources assembles the generator chain for one search: caller
// hints first, then remembered patterns, then the configured
// generators, then the meta advisor.
func (e *Engine) sessionSources(hints []uint64) []candidate.Source {
	sources := make([]candidate.Source, 0, len(e.sources)+3)
	if len(hints) > 0 {
		sources = append(sources, candidate.Hint(hints...))
	}
	sources = append(sources, e.memorySource())
	sources = append(sources, e.sources...)
	if e.advisor != nil {
		sources = append(sources, e.advisor)
	}
	return sources
}

// memorySource exposes resonance memory predictions as a candidate
// generator.
func (e *Engine) memorySource() candidate.Source {
	return candidate.Func("memory", func(n uint64) []uint64 {
		predictions := e.memory.Predict(n)
		if len(predictions) == 0 {
			return nil
		}
		positions := make([]uint64, len(predictions))
		for i, p := range predictions {
			positions[i] = p.Position
		}
		e.metrics.RecordMemoryPrediction(len(positions))
		return positions
	})
}

// remember records a successful hit so later searches on related
// composites can try its resonance pattern first.
func (e *Engine) remember(n uint64, res collapse.Result) {
	p, f := spectral.ResonanceSource(res.P, n)
	e.memory.Add(memory.Record{
		Prime:     p,
		Fibonacci: f,
		N:         n,
		Factor:    res.P,
		Strength:  res.Weight,
	})
}

// Spectrum returns the spectral embedding of n, served from the cache
// when one is configured.
func (e *Engine) Spectrum(n uint64) spectral.Vector {
	return e.provider.Vector(n)
}

// Coherence scores how strongly a and b look like a factor pair of n.
// The result is in (0, 1], higher is better.
func (e *Engine) Coherence(a, b, n uint64) float64 {
	return e.provider.Coherence(a, b, n)
}

// FoldEnergy measures the spectral mismatch of x against its fold
// complement n/x. Exact divisors sit in local minima.
func (e *Engine) FoldEnergy(n, x uint64) float64 {
	return e.provider.FoldEnergy(n, x)
}

// Memory returns the engine's resonance memory.
func (e *Engine) Memory() *memory.Memory {
	return e.memory
}

// Trace returns the engine's observation trace.
func (e *Engine) Trace() *trace.Trace {
	return e.trace
}

// Advisor returns the meta advisor, or nil when not enabled.
func (e *Engine) Advisor() *meta.Advisor {
	return e.advisor
}

// Stats returns a point-in-time snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		Factorizations: e.factorizations.Load(),
		Successes:      e.successes.Load(),
		Exhausted:      e.exhausted.Load(),
		MemoryRecords:  e.memory.Len(),
		TraceEvents:    e.trace.Len(),
		TraceDropped:   e.trace.Dropped(),
	}
	if e.cache != nil {
		s.Cache = e.cache.Stats()
	}
	return s
}

// SaveMemory persists the resonance memory to the snapshot store under
// a fixed key, wrapped in a checksummed envelope.
func (e *Engine) SaveMemory(ctx context.Context) error {
	start := time.Now()

	if e.closed.Load() {
		return ErrClosed
	}
	if e.store == nil {
		return ErrNoSnapshotStore
	}

	payload, err := e.codec.Marshal(e.memory.Export())
	if err != nil {
		e.metrics.RecordSnapshot("save", 0, time.Since(start), err)
		e.logger.LogSnapshotSave(ctx, MemorySnapshotKey, 0, err)
		return fmt.Errorf("encode memory: %w", err)
	}

	env, err := snapshot.Encode(payload, e.codec.Name(), e.compression)
	if err != nil {
		e.metrics.RecordSnapshot("save", 0, time.Since(start), err)
		e.logger.LogSnapshotSave(ctx, MemorySnapshotKey, 0, err)
		return err
	}

	if err := e.controller.ThrottleIO(ctx, len(env)); err != nil {
		e.metrics.RecordSnapshot("save", 0, time.Since(start), err)
		e.logger.LogSnapshotSave(ctx, MemorySnapshotKey, 0, err)
		return err
	}

	if err := e.store.Put(ctx, MemorySnapshotKey, env); err != nil {
		e.metrics.RecordSnapshot("save", 0, time.Since(start), err)
		e.logger.LogSnapshotSave(ctx, MemorySnapshotKey, 0, err)
		return err
	}

	e.metrics.RecordSnapshot("save", len(env), time.Since(start), nil)
	e.logger.LogSnapshotSave(ctx, MemorySnapshotKey, len(env), nil)
	return nil
}

// LoadMemory replaces the resonance memory with the records persisted
// by a previous SaveMemory. A snapshot written with a different codec
// is readable as long as this build provides it.
func (e *Engine) LoadMemory(ctx context.Context) error {
	start := time.Now()

	if e.closed.Load() {
		return ErrClosed
	}
	if e.store == nil {
		return ErrNoSnapshotStore
	}

	env, err := e.store.Get(ctx, MemorySnapshotKey)
	if err != nil {
		e.metrics.RecordSnapshot("load", 0, time.Since(start), err)
		e.logger.LogSnapshotLoad(ctx, MemorySnapshotKey, 0, err)
		return err
	}

	if err := e.controller.ThrottleIO(ctx, len(env)); err != nil {
		e.metrics.RecordSnapshot("load", 0, time.Since(start), err)
		e.logger.LogSnapshotLoad(ctx, MemorySnapshotKey, 0, err)
		return err
	}

	payload, codecName, err := snapshot.Decode(env)
	if err != nil {
		err = translateError(err)
		e.metrics.RecordSnapshot("load", len(env), time.Since(start), err)
		e.logger.LogSnapshotLoad(ctx, MemorySnapshotKey, 0, err)
		return err
	}

	c, ok := codec.ByName(codecName)
	if !ok {
		err := fmt.Errorf("%w: %q", codec.ErrUnknownCodec, codecName)
		e.metrics.RecordSnapshot("load", len(env), time.Since(start), err)
		e.logger.LogSnapshotLoad(ctx, MemorySnapshotKey, 0, err)
		return err
	}

	var records []memory.Record
	if err := c.Unmarshal(payload, &records); err != nil {
		err = fmt.Errorf("decode memory: %w", err)
		e.metrics.RecordSnapshot("load", len(env), time.Since(start), err)
		e.logger.LogSnapshotLoad(ctx, MemorySnapshotKey, 0, err)
		return err
	}

	e.memory.Import(records)
	e.metrics.RecordSnapshot("load", len(env), time.Since(start), nil)
	e.logger.LogSnapshotLoad(ctx, MemorySnapshotKey, len(records), nil)
	return nil
}
