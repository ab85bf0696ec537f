// Package resonance provides a deterministic, coherence-guided search
// engine for finding nontrivial divisors of composite numbers.
//
// This file implements the fluent builder API for constructing engines.
// Builders are immutable - each method returns a new builder with the
// updated configuration.
package resonance

import (
	"fmt"

	"github.com/primefold/resonance/candidate"
	"github.com/primefold/resonance/codec"
	"github.com/primefold/resonance/resource"
	"github.com/primefold/resonance/snapshot"
	"github.com/primefold/resonance/trace"
)

// EngineBuilder provides a fluent API for constructing engines.
// The zero value is ready to use; each method returns a copy.
//
// Example:
//
//	eng, err := resonance.NewEngineBuilder().
//	    Budget(12).
//	    KeepTop(32).
//	    MetaAdvisor().
//	    Build()
type EngineBuilder struct {
	logger            *Logger
	loggerSet         bool
	metrics           MetricsCollector
	metricsSet        bool
	vectorCapacity    int
	coherenceCapacity int
	cacheSet          bool
	cacheDisabled     bool
	memoryCapacity    int
	budget            int
	keepTop           int
	gradientDelta     uint64
	sources           []candidate.Source
	sourcesSet        bool
	controller        *resource.Controller
	controllerSet     bool
	store             snapshot.Store
	codec             codec.Codec
	compression       snapshot.Compression
	compressionSet    bool
	traceCapacity     int
	subscribers       []trace.Sink
	metaAdvisor       bool
}

// NewEngineBuilder creates a builder with default configuration.
func NewEngineBuilder() EngineBuilder {
	return EngineBuilder{}
}

// Logger sets the structured logger.
func (b EngineBuilder) Logger(logger *Logger) EngineBuilder {
	b.logger = logger
	b.loggerSet = true
	return b
}

// Metrics sets the metrics collector.
func (b EngineBuilder) Metrics(mc MetricsCollector) EngineBuilder {
	b.metrics = mc
	b.metricsSet = true
	return b
}

// CacheCapacity sets the spectral cache sizes in entries.
func (b EngineBuilder) CacheCapacity(vectors, coherences int) EngineBuilder {
	b.vectorCapacity = vectors
	b.coherenceCapacity = coherences
	b.cacheSet = true
	return b
}

// NoCache disables the spectral cache.
func (b EngineBuilder) NoCache() EngineBuilder {
	b.cacheDisabled = true
	return b
}

// MemoryCapacity caps the number of remembered successes.
func (b EngineBuilder) MemoryCapacity(n int) EngineBuilder {
	b.memoryCapacity = n
	return b
}

// Budget sets the collapse iteration budget per search.
func (b EngineBuilder) Budget(budget int) EngineBuilder {
	b.budget = budget
	return b
}

// KeepTop sets how many candidates survive each ranking phase.
func (b EngineBuilder) KeepTop(k int) EngineBuilder {
	b.keepTop = k
	return b
}

// GradientDelta overrides the coherence gradient probe distance.
func (b EngineBuilder) GradientDelta(delta uint64) EngineBuilder {
	b.gradientDelta = delta
	return b
}

// Sources replaces the default candidate generator chain.
func (b EngineBuilder) Sources(sources ...candidate.Source) EngineBuilder {
	b.sources = append([]candidate.Source(nil), sources...)
	b.sourcesSet = true
	return b
}

// Controller attaches worker and IO limits.
func (b EngineBuilder) Controller(rc *resource.Controller) EngineBuilder {
	b.controller = rc
	b.controllerSet = true
	return b
}

// SnapshotStore configures snapshot persistence.
func (b EngineBuilder) SnapshotStore(store snapshot.Store) EngineBuilder {
	b.store = store
	return b
}

// Codec configures the snapshot codec.
func (b EngineBuilder) Codec(c codec.Codec) EngineBuilder {
	b.codec = c
	return b
}

// Compression selects the snapshot payload compression.
func (b EngineBuilder) Compression(comp snapshot.Compression) EngineBuilder {
	b.compression = comp
	b.compressionSet = true
	return b
}

// TraceCapacity bounds the observation trace ring.
func (b EngineBuilder) TraceCapacity(n int) EngineBuilder {
	b.traceCapacity = n
	return b
}

// TraceSubscriber attaches a sink receiving every trace event.
// May be called multiple times.
func (b EngineBuilder) TraceSubscriber(s trace.Sink) EngineBuilder {
	if s != nil {
		subscribers := make([]trace.Sink, 0, len(b.subscribers)+1)
		subscribers = append(subscribers, b.subscribers...)
		subscribers = append(subscribers, s)
		b.subscribers = subscribers
	}
	return b
}

// MetaAdvisor attaches the trace-driven meta advisor.
func (b EngineBuilder) MetaAdvisor() EngineBuilder {
	b.metaAdvisor = true
	return b
}

// Build creates the engine with the accumulated configuration.
func (b EngineBuilder) Build() (*Engine, error) {
	var opts []Option

	if b.loggerSet {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metricsSet {
		opts = append(opts, WithMetricsCollector(b.metrics))
	}
	if b.cacheSet {
		opts = append(opts, WithCacheCapacity(b.vectorCapacity, b.coherenceCapacity))
	}
	if b.cacheDisabled {
		opts = append(opts, WithoutCache())
	}
	if b.memoryCapacity > 0 {
		opts = append(opts, WithMemoryCapacity(b.memoryCapacity))
	}
	// Zero means never set; explicit negatives flow through so New
	// rejects them instead of silently building with defaults.
	if b.budget != 0 {
		opts = append(opts, WithBudget(b.budget))
	}
	if b.keepTop != 0 {
		opts = append(opts, WithKeepTop(b.keepTop))
	}
	if b.gradientDelta > 0 {
		opts = append(opts, WithGradientDelta(b.gradientDelta))
	}
	if b.sourcesSet {
		opts = append(opts, WithSources(b.sources...))
	}
	if b.controllerSet {
		opts = append(opts, WithResourceController(b.controller))
	}
	if b.store != nil {
		opts = append(opts, WithSnapshotStore(b.store))
	}
	if b.codec != nil {
		opts = append(opts, WithCodec(b.codec))
	}
	if b.compressionSet {
		opts = append(opts, WithCompression(b.compression))
	}
	if b.traceCapacity > 0 {
		opts = append(opts, WithTraceCapacity(b.traceCapacity))
	}
	for _, s := range b.subscribers {
		opts = append(opts, WithTraceSubscriber(s))
	}
	if b.metaAdvisor {
		opts = append(opts, WithMetaAdvisor())
	}

	return New(opts...)
}

// MustBuild creates the engine and panics on error.
//
// Use this only in tests or when configuration is known to be valid.
func (b EngineBuilder) MustBuild() *Engine {
	eng, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("resonance: build failed: %v", err))
	}
	return eng
}
