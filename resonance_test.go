package resonance_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/primefold/resonance"
	"github.com/primefold/resonance/candidate"
	"github.com/primefold/resonance/codec"
	"github.com/primefold/resonance/resource"
	"github.com/primefold/resonance/snapshot"
	"github.com/primefold/resonance/spectral"
	"github.com/primefold/resonance/trace"
)

func newEngine(t *testing.T, opts ...resonance.Option) *resonance.Engine {
	t.Helper()
	eng, err := resonance.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func TestFindFactorKnownComposites(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)

	tests := []struct {
		n uint64
		p uint64
		q uint64
	}{
		{n: 4, p: 2, q: 2},
		{n: 143, p: 11, q: 13},
		{n: 1155, p: 3, q: 385},
		{n: 2310, p: 2, q: 1155},
		{n: 10403, p: 101, q: 103},
	}

	for _, tt := range tests {
		factors, err := eng.FindFactor(ctx, tt.n)
		require.NoError(t, err, "n=%d", tt.n)
		assert.Equal(t, tt.n, factors.N)
		assert.Equal(t, tt.p, factors.P, "n=%d", tt.n)
		assert.Equal(t, tt.q, factors.Q, "n=%d", tt.n)
		assert.Equal(t, tt.n, factors.P*factors.Q, "n=%d", tt.n)
		assert.LessOrEqual(t, factors.P, factors.Q, "n=%d", tt.n)
	}
}

func TestFindFactorExhausts(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)

	// Primes by construction; 2 and 3 additionally have an empty
	// search domain because sqrt(n) < 2.
	for _, n := range []uint64{2, 3, 97, 101, 7919} {
		_, err := eng.FindFactor(ctx, n)
		require.ErrorIs(t, err, resonance.ErrNoFactorFound, "n=%d", n)
	}
}

func TestFindFactorRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)

	for _, n := range []uint64{0, 1} {
		_, err := eng.FindFactor(ctx, n)
		require.ErrorIs(t, err, resonance.ErrInvalidN, "n=%d", n)

		var oor *resonance.OutOfRangeError
		require.ErrorAs(t, err, &oor, "n=%d", n)
		assert.Equal(t, n, oor.N)
	}
}

func TestFindFactorContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := newEngine(t)
	_, err := eng.FindFactor(ctx, 143)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFactorBuilderOverrides(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, resonance.WithBudget(1), resonance.WithKeepTop(2))

	t.Run("hints win immediately", func(t *testing.T) {
		factors, err := eng.Factor(10403).Hints(101).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(101), factors.P)
		assert.Equal(t, uint64(103), factors.Q)
	})

	t.Run("non-positive overrides keep engine defaults", func(t *testing.T) {
		factors, err := eng.Factor(143).Budget(0).KeepTop(-3).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(11), factors.P)
	})

	t.Run("must execute panics on prime", func(t *testing.T) {
		assert.Panics(t, func() {
			eng.Factor(97).MustExecute(ctx)
		})
	})
}

func TestDeterminism(t *testing.T) {
	ctx := context.Background()
	inputs := []uint64{143, 10403, 97, 2310}

	run := func() ([]resonance.Factors, []error, []trace.Event) {
		eng := newEngine(t)
		var factors []resonance.Factors
		var errs []error
		for _, n := range inputs {
			f, err := eng.FindFactor(ctx, n)
			factors = append(factors, f)
			errs = append(errs, err)
		}
		events := eng.Trace().Events()
		for i := range events {
			events[i].Session = ""
		}
		return factors, errs, events
	}

	factors1, errs1, events1 := run()
	factors2, errs2, events2 := run()

	require.Equal(t, factors1, factors2)
	require.Equal(t, len(errs1), len(errs2))
	for i := range errs1 {
		assert.Equal(t, errs1[i] == nil, errs2[i] == nil, "input %d", inputs[i])
	}
	require.Equal(t, events1, events2)
}

func TestCacheParityAndHits(t *testing.T) {
	ctx := context.Background()

	cached := newEngine(t)
	uncached := newEngine(t, resonance.WithoutCache())

	for _, n := range []uint64{143, 97, 10403} {
		f1, err1 := cached.FindFactor(ctx, n)
		f2, err2 := uncached.FindFactor(ctx, n)
		assert.Equal(t, f1, f2, "n=%d", n)
		assert.Equal(t, err1 == nil, err2 == nil, "n=%d", n)
	}

	// A prime search runs the full scoring loop, so repeating it must
	// be served from the spectral cache.
	first := cached.Stats().Cache
	_, err := cached.FindFactor(ctx, 97)
	require.ErrorIs(t, err, resonance.ErrNoFactorFound)
	second := cached.Stats().Cache

	assert.Greater(t,
		second.VectorHits+second.CoherenceHits,
		first.VectorHits+first.CoherenceHits)

	// Disabled cache never reports traffic.
	assert.Zero(t, uncached.Stats().Cache)
}

func TestMemoryLearning(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)

	factors, err := eng.FindFactor(ctx, 1155)
	require.NoError(t, err)
	require.Equal(t, uint64(3), factors.P)
	require.Equal(t, 1, eng.Memory().Len())

	// 10395 = 1155 * 9 shares the resonance pattern of the recorded
	// hit, so its scaled projection leads the predictions.
	predictions := eng.Memory().Predict(10395)
	require.NotEmpty(t, predictions)
	assert.Equal(t, uint64(27), predictions[0].Position)

	// The prediction feeds the next search as a candidate source.
	factors, err = eng.FindFactor(ctx, 10395)
	require.NoError(t, err)
	assert.Equal(t, uint64(10395), factors.P*factors.Q)
}

func TestCustomSources(t *testing.T) {
	ctx := context.Background()

	probe := candidate.Func("probe", func(n uint64) []uint64 {
		return []uint64{11}
	})
	eng := newEngine(t, resonance.WithSources(probe))

	factors, err := eng.FindFactor(ctx, 143)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), factors.P)

	var found bool
	for _, ev := range eng.Trace().Events() {
		if ev.Kind == trace.KindFactorFound {
			found = true
			assert.Equal(t, "probe", ev.Source)
		}
	}
	assert.True(t, found)
}

func TestMetaAdvisorLearns(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t, resonance.WithMetaAdvisor())

	require.NotNil(t, eng.Advisor())

	_, err := eng.FindFactor(ctx, 143)
	require.NoError(t, err)

	// One hit at decay 0.7 leaves the winning source at strength 0.3.
	assert.InDelta(t, 0.3, eng.Advisor().Strength("sqrtwindow"), 1e-12)
	assert.Equal(t, "sqrtwindow", eng.Advisor().BestSource(143))
}

type collectingSink struct {
	mu     sync.Mutex
	events []trace.Event
}

func (s *collectingSink) Record(ev trace.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *collectingSink) kinds() map[trace.Kind]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make(map[trace.Kind]int)
	for _, ev := range s.events {
		kinds[ev.Kind]++
	}
	return kinds
}

func TestTraceSubscriber(t *testing.T) {
	ctx := context.Background()

	sink := &collectingSink{}
	eng := newEngine(t, resonance.WithTraceSubscriber(sink))

	_, err := eng.FindFactor(ctx, 143)
	require.NoError(t, err)

	kinds := sink.kinds()
	assert.Equal(t, 1, kinds[trace.KindSeeded])
	assert.Equal(t, 1, kinds[trace.KindFactorFound])
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()

	eng1 := newEngine(t, resonance.WithSnapshotStore(store))
	_, err := eng1.FindFactor(ctx, 1155)
	require.NoError(t, err)
	require.NoError(t, eng1.SaveMemory(ctx))

	eng2 := newEngine(t, resonance.WithSnapshotStore(store))
	require.NoError(t, eng2.LoadMemory(ctx))

	assert.Equal(t, eng1.Memory().Export(), eng2.Memory().Export())

	predictions := eng2.Memory().Predict(10395)
	require.NotEmpty(t, predictions)
	assert.Equal(t, uint64(27), predictions[0].Position)
}

func TestSnapshotCodecTravels(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()

	// Saved with plain JSON, loaded by an engine configured with the
	// default codec: the envelope names the decoder.
	eng1 := newEngine(t,
		resonance.WithSnapshotStore(store),
		resonance.WithCodec(codec.JSON{}),
		resonance.WithCompression(snapshot.CompressionNone),
	)
	_, err := eng1.FindFactor(ctx, 143)
	require.NoError(t, err)
	require.NoError(t, eng1.SaveMemory(ctx))

	eng2 := newEngine(t, resonance.WithSnapshotStore(store))
	require.NoError(t, eng2.LoadMemory(ctx))
	assert.Equal(t, 1, eng2.Memory().Len())
}

func TestSnapshotErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no store configured", func(t *testing.T) {
		eng := newEngine(t)
		assert.ErrorIs(t, eng.SaveMemory(ctx), resonance.ErrNoSnapshotStore)
		assert.ErrorIs(t, eng.LoadMemory(ctx), resonance.ErrNoSnapshotStore)
	})

	t.Run("missing snapshot", func(t *testing.T) {
		eng := newEngine(t, resonance.WithSnapshotStore(snapshot.NewMemoryStore()))
		assert.ErrorIs(t, eng.LoadMemory(ctx), snapshot.ErrNotFound)
	})

	t.Run("corrupted snapshot", func(t *testing.T) {
		store := snapshot.NewMemoryStore()
		eng := newEngine(t, resonance.WithSnapshotStore(store))
		_, err := eng.FindFactor(ctx, 143)
		require.NoError(t, err)
		require.NoError(t, eng.SaveMemory(ctx))

		env, err := store.Get(ctx, "memory.rsnp")
		require.NoError(t, err)
		env[len(env)-5] ^= 0xFF
		require.NoError(t, store.Put(ctx, "memory.rsnp", env))

		loadErr := eng.LoadMemory(ctx)
		var ce *snapshot.ChecksumError
		require.ErrorAs(t, loadErr, &ce)
	})

	t.Run("unknown codec", func(t *testing.T) {
		store := snapshot.NewMemoryStore()
		env, err := snapshot.Encode([]byte(`[]`), "msgpack", snapshot.CompressionNone)
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, "memory.rsnp", env))

		eng := newEngine(t, resonance.WithSnapshotStore(store))
		assert.ErrorIs(t, eng.LoadMemory(ctx), codec.ErrUnknownCodec)
	})
}

func TestStatsCounters(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t)

	_, err := eng.FindFactor(ctx, 143)
	require.NoError(t, err)
	_, err = eng.FindFactor(ctx, 97)
	require.ErrorIs(t, err, resonance.ErrNoFactorFound)
	_, err = eng.FindFactor(ctx, 1)
	require.ErrorIs(t, err, resonance.ErrInvalidN)

	stats := eng.Stats()
	assert.Equal(t, int64(3), stats.Factorizations)
	assert.Equal(t, int64(1), stats.Successes)
	assert.Equal(t, int64(1), stats.Exhausted)
	assert.Equal(t, 1, stats.MemoryRecords)
	assert.NotZero(t, stats.TraceEvents)
}

func TestSpectralPassthrough(t *testing.T) {
	eng := newEngine(t)

	t.Run("spectrum matches direct computation", func(t *testing.T) {
		assert.Equal(t, spectral.VectorOf(143), eng.Spectrum(143))
	})

	t.Run("coherence is symmetric", func(t *testing.T) {
		assert.InDelta(t, eng.Coherence(11, 13, 143), eng.Coherence(13, 11, 143), 1e-15)
	})

	t.Run("exact divisors minimize fold energy", func(t *testing.T) {
		best := uint64(0)
		min := math.Inf(1)
		for x := uint64(2); x <= 12; x++ {
			if e := eng.FoldEnergy(143, x); e < min {
				min = e
				best = x
			}
		}
		assert.Equal(t, uint64(11), best)
	})

	t.Run("fold energy agrees with coherence", func(t *testing.T) {
		assert.InDelta(t,
			math.Exp(-eng.FoldEnergy(143, 11)),
			eng.Coherence(11, 13, 143), 1e-12)
	})
}

func TestConcurrentSearches(t *testing.T) {
	ctx := context.Background()
	eng := newEngine(t,
		resonance.WithResourceController(resource.NewController(resource.Config{MaxWorkers: 2})),
	)

	var g errgroup.Group
	results := make([]resonance.Factors, 8)
	for i := range results {
		i := i
		g.Go(func() error {
			factors, err := eng.FindFactor(ctx, 10403)
			if err != nil {
				return err
			}
			results[i] = factors
			return nil
		})
	}
	require.NoError(t, g.Wait())

	want := resonance.Factors{N: 10403, P: 101, Q: 103}
	for i, got := range results {
		assert.Equal(t, want, got, "goroutine %d", i)
	}
}
