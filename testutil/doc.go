// Package testutil provides testing utilities for resonance.
//
// This package is intended for use in tests and benchmarks only.
// It provides deterministic fixture numbers and a trial-division
// ground truth for verifying search results.
//
// # Fixture Semiprimes
//
//	inputs := testutil.Semiprimes(t, 32, 64) // balanced ~32-bit products
//
// # Ground Truth
//
//	p := testutil.SmallestFactor(n) // exact, or n itself for primes
package testutil
