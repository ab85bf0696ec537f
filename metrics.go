package resonance

import (
	"sync/atomic"
	"time"

	"github.com/primefold/resonance/cache"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    findCounter     prometheus.Counter
//	    findHistogram   prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordFactorization(duration time.Duration, err error) {
//	    p.findCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordFactorization is called after each factor search.
	// duration is the total time taken, err is nil if a factor was found.
	RecordFactorization(duration time.Duration, err error)

	// RecordObservation is called after each collapse run with the
	// number of distinct positions divisor-checked.
	RecordObservation(positions uint64, duration time.Duration)

	// RecordCacheStats is called with the spectral cache counters after
	// each factor search on a cached engine.
	RecordCacheStats(stats cache.Stats)

	// RecordMemoryPrediction is called when resonance memory seeds a
	// search, with the number of predicted positions.
	RecordMemoryPrediction(count int)

	// RecordSnapshot is called after each snapshot operation.
	// op is "save" or "load", bytes the envelope size on the wire.
	RecordSnapshot(op string, bytes int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFactorization(time.Duration, error)         {}
func (NoopMetricsCollector) RecordObservation(uint64, time.Duration)          {}
func (NoopMetricsCollector) RecordCacheStats(cache.Stats)                     {}
func (NoopMetricsCollector) RecordMemoryPrediction(int)                       {}
func (NoopMetricsCollector) RecordSnapshot(string, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FactorizationCount      atomic.Int64
	FactorizationErrors     atomic.Int64
	FactorizationTotalNanos atomic.Int64
	ObservedPositions       atomic.Int64
	ObservationTotalNanos   atomic.Int64
	PredictionCount         atomic.Int64
	PredictedPositions      atomic.Int64
	SnapshotSaves           atomic.Int64
	SnapshotLoads           atomic.Int64
	SnapshotErrors          atomic.Int64
	SnapshotBytes           atomic.Int64

	// Cache counters are gauges mirroring the engine's cache stats.
	VectorHits      atomic.Int64
	VectorMisses    atomic.Int64
	CoherenceHits   atomic.Int64
	CoherenceMisses atomic.Int64
}

// RecordFactorization implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFactorization(duration time.Duration, err error) {
	b.FactorizationCount.Add(1)
	b.FactorizationTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FactorizationErrors.Add(1)
	}
}

// RecordObservation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordObservation(positions uint64, duration time.Duration) {
	b.ObservedPositions.Add(int64(positions))
	b.ObservationTotalNanos.Add(duration.Nanoseconds())
}

// RecordCacheStats implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheStats(stats cache.Stats) {
	b.VectorHits.Store(stats.VectorHits)
	b.VectorMisses.Store(stats.VectorMisses)
	b.CoherenceHits.Store(stats.CoherenceHits)
	b.CoherenceMisses.Store(stats.CoherenceMisses)
}

// RecordMemoryPrediction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMemoryPrediction(count int) {
	b.PredictionCount.Add(1)
	b.PredictedPositions.Add(int64(count))
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(op string, bytes int, duration time.Duration, err error) {
	switch op {
	case "save":
		b.SnapshotSaves.Add(1)
	case "load":
		b.SnapshotLoads.Add(1)
	}
	b.SnapshotBytes.Add(int64(bytes))
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// Snapshot returns a point-in-time copy of the counters.
func (b *BasicMetricsCollector) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		FactorizationCount:    b.FactorizationCount.Load(),
		FactorizationErrors:   b.FactorizationErrors.Load(),
		FactorizationAvgNanos: b.avgFactorizationNanos(),
		ObservedPositions:     b.ObservedPositions.Load(),
		PredictionCount:       b.PredictionCount.Load(),
		PredictedPositions:    b.PredictedPositions.Load(),
		SnapshotSaves:         b.SnapshotSaves.Load(),
		SnapshotLoads:         b.SnapshotLoads.Load(),
		SnapshotErrors:        b.SnapshotErrors.Load(),
		SnapshotBytes:         b.SnapshotBytes.Load(),
		VectorHits:            b.VectorHits.Load(),
		VectorMisses:          b.VectorMisses.Load(),
		CoherenceHits:         b.CoherenceHits.Load(),
		CoherenceMisses:       b.CoherenceMisses.Load(),
	}
}

func (b *BasicMetricsCollector) avgFactorizationNanos() int64 {
	count := b.FactorizationCount.Load()
	if count == 0 {
		return 0
	}
	return b.FactorizationTotalNanos.Load() / count
}

// MetricsSnapshot is a snapshot of BasicMetricsCollector state.
type MetricsSnapshot struct {
	FactorizationCount    int64
	FactorizationErrors   int64
	FactorizationAvgNanos int64
	ObservedPositions     int64
	PredictionCount       int64
	PredictedPositions    int64
	SnapshotSaves         int64
	SnapshotLoads         int64
	SnapshotErrors        int64
	SnapshotBytes         int64
	VectorHits            int64
	VectorMisses          int64
	CoherenceHits         int64
	CoherenceMisses       int64
}
