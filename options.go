package resonance

import (
	"log/slog"

	"github.com/primefold/resonance/cache"
	"github.com/primefold/resonance/candidate"
	"github.com/primefold/resonance/codec"
	"github.com/primefold/resonance/collapse"
	"github.com/primefold/resonance/memory"
	"github.com/primefold/resonance/resource"
	"github.com/primefold/resonance/snapshot"
	"github.com/primefold/resonance/trace"
)

type options struct {
	logger            *Logger
	metrics           MetricsCollector
	vectorCapacity    int
	coherenceCapacity int
	cacheDisabled     bool
	memoryCapacity    int
	budget            int
	keepTop           int
	gradientDelta     uint64
	sources           []candidate.Source
	controller        *resource.Controller
	store             snapshot.Store
	codec             codec.Codec
	compression       snapshot.Compression
	traceCapacity     int
	subscribers       []trace.Sink
	metaAdvisor       bool
}

// Option configures engine construction.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := resonance.NewJSONLogger(slog.LevelInfo)
//	eng, _ := resonance.New(resonance.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &resonance.BasicMetricsCollector{}
//	eng, _ := resonance.New(resonance.WithMetricsCollector(metrics))
//	// ... use eng ...
//	snap := metrics.Snapshot()
//	fmt.Printf("searches: %d, avg latency: %dns\n",
//	    snap.FactorizationCount, snap.FactorizationAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metrics = mc
	}
}

// WithCacheCapacity sets the spectral cache sizes in entries: vectors
// for per-number embeddings, coherences for scored triples. Values
// below one fall back to the defaults.
func WithCacheCapacity(vectors, coherences int) Option {
	return func(o *options) {
		o.vectorCapacity = vectors
		o.coherenceCapacity = coherences
	}
}

// WithoutCache disables the spectral cache; every observation computes
// from scratch. Outcomes are identical to a cached engine, only slower.
func WithoutCache() Option {
	return func(o *options) {
		o.cacheDisabled = true
	}
}

// WithMemoryCapacity caps the number of remembered successes. Above the
// cap the least recently touched record is evicted.
func WithMemoryCapacity(n int) Option {
	return func(o *options) {
		o.memoryCapacity = n
	}
}

// WithBudget sets the collapse iteration budget per search.
func WithBudget(budget int) Option {
	return func(o *options) {
		o.budget = budget
	}
}

// WithKeepTop sets how many candidates survive each ranking phase.
func WithKeepTop(k int) Option {
	return func(o *options) {
		o.keepTop = k
	}
}

// WithGradientDelta overrides the probe distance for coherence gradient
// estimation. Zero keeps the scale-relative default.
func WithGradientDelta(delta uint64) Option {
	return func(o *options) {
		o.gradientDelta = delta
	}
}

// WithSources replaces the default candidate generator chain. Hints,
// resonance memory and the meta advisor are attached per search
// regardless of the configured generators.
func WithSources(sources ...candidate.Source) Option {
	return func(o *options) {
		o.sources = sources
	}
}

// WithResourceController attaches worker and IO limits. A nil
// controller enforces nothing.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithSnapshotStore configures where SaveMemory and LoadMemory persist
// resonance memory. The store is owned by the caller.
func WithSnapshotStore(store snapshot.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithCodec configures the codec used for memory snapshots.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression selects the snapshot payload compression.
func WithCompression(comp snapshot.Compression) Option {
	return func(o *options) {
		o.compression = comp
	}
}

// WithTraceCapacity bounds the observation trace ring. Non-positive
// values fall back to the default.
func WithTraceCapacity(n int) Option {
	return func(o *options) {
		o.traceCapacity = n
	}
}

// WithTraceSubscriber attaches a sink receiving every trace event as it
// is recorded. May be given multiple times; nil sinks are ignored.
func WithTraceSubscriber(s trace.Sink) Option {
	return func(o *options) {
		if s != nil {
			o.subscribers = append(o.subscribers, s)
		}
	}
}

// WithMetaAdvisor attaches a meta advisor that watches the trace and
// replays historically productive positions into later searches.
func WithMetaAdvisor() Option {
	return func(o *options) {
		o.metaAdvisor = true
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metrics:           NoopMetricsCollector{},
		logger:            NoopLogger(),
		vectorCapacity:    cache.DefaultVectorCapacity,
		coherenceCapacity: cache.DefaultCoherenceCapacity,
		memoryCapacity:    memory.DefaultCapacity,
		budget:            collapse.DefaultBudget,
		keepTop:           collapse.DefaultKeepTop,
		compression:       snapshot.CompressionZSTD,
		traceCapacity:     trace.DefaultCapacity,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metrics == nil {
		o.metrics = NoopMetricsCollector{}
	}
	return o
}
