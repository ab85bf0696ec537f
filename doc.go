// Package resonance provides a deterministic, coherence-guided search
// engine for finding nontrivial divisors of composite numbers.
//
// Instead of sieving or randomized cycle-finding, resonance embeds
// every number into a fixed spectral vector built from its residues,
// digit structure and modular phases, then scores candidate positions
// by how coherently they combine with their fold complement toward the
// spectrum of n. Candidates come from a chain of structural generators
// (fibonacci ladders, square-root windows, golden-ratio spirals, fold
// minima, interference patterns), are ranked by coherence and refined
// under a fixed iteration budget. A divisor check runs on every visited
// position, so any hit is exact even though the guidance is heuristic.
//
// The engine is a heuristic search, not a factorization guarantee:
// exhausting the budget says nothing about primality.
//
// # Quick Start
//
//	ctx := context.Background()
//	eng, err := resonance.New()
//	if err != nil {
//		panic(err)
//	}
//	defer eng.Close()
//
//	factors, err := eng.FindFactor(ctx, 10403)
//	if err != nil {
//		panic(err)
//	}
//	fmt.Println(factors) // 10403 = 101 * 103
//
// Per-search overrides use the fluent API:
//
//	factors, err := eng.Factor(n).
//	    Budget(12).
//	    KeepTop(32).
//	    Hints(101).
//	    Execute(ctx)
//
// # Learning Across Calls
//
// Every success is remembered as a resonance pattern; later searches on
// related composites try the remembered positions first. Memory can be
// persisted between processes through a snapshot store:
//
//	store, _ := snapshot.NewLocalStore("./state")
//	eng, _ := resonance.New(resonance.WithSnapshotStore(store))
//	_ = eng.LoadMemory(ctx)
//	// ... searches ...
//	_ = eng.SaveMemory(ctx)
//
// Snapshots are checksummed, self-describing envelopes: the codec name
// travels with the payload and corruption is detected on load.
//
// # Key Features
//
//   - Deterministic outcomes: identical inputs and configuration yield
//     identical factors, traces aside from session identifiers
//   - Structural candidate generators with pluggable custom sources
//   - LRU spectral cache with hit/miss statistics
//   - Resonance memory with golden-ratio scaled predictions
//   - Bounded observation trace with subscriber fan-out
//   - Optional meta advisor replaying historically productive positions
//   - Snapshot persistence with LZ4/ZSTD compression and CRC32 checksums
//   - Worker and IO throttling through a resource controller
//   - Structured logging (log/slog) and pluggable metrics collection
package resonance
