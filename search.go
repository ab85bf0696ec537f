// Package resonance provides a deterministic, coherence-guided search
// engine for finding nontrivial divisors of composite numbers.
//
// This file implements the fluent search API for factor queries.
package resonance

import (
	"context"
	"fmt"
)

// FactorBuilder provides a fluent API for a single factor search.
//
// Example:
//
//	factors, err := eng.Factor(10403).
//	    Budget(12).
//	    Hints(101).
//	    Execute(ctx)
type FactorBuilder struct {
	engine  *Engine
	n       uint64
	budget  int
	keepTop int
	hints   []uint64
}

// Factor starts a fluent factor search for n, seeded with the engine's
// configured budget and ranking width.
func (e *Engine) Factor(n uint64) *FactorBuilder {
	return &FactorBuilder{
		engine:  e,
		n:       n,
		budget:  e.budget,
		keepTop: e.keepTop,
	}
}

// Budget overrides the collapse iteration budget for this search.
// Non-positive values keep the engine default.
func (fb *FactorBuilder) Budget(budget int) *FactorBuilder {
	fb.budget = budget
	return fb
}

// KeepTop overrides how many candidates survive each ranking phase.
// Non-positive values keep the engine default.
func (fb *FactorBuilder) KeepTop(k int) *FactorBuilder {
	fb.keepTop = k
	return fb
}

// Hints adds caller-supplied candidate positions tried before any
// generated ones. May be called multiple times.
func (fb *FactorBuilder) Hints(positions ...uint64) *FactorBuilder {
	fb.hints = append(fb.hints, positions...)
	return fb
}

// Execute runs the search.
func (fb *FactorBuilder) Execute(ctx context.Context) (Factors, error) {
	return fb.engine.findFactor(ctx, fb.n, fb.hints, fb.budget, fb.keepTop)
}

// MustExecute runs the search and panics on error.
//
// Use this only in tests or when inputs are known to factor.
func (fb *FactorBuilder) MustExecute(ctx context.Context) Factors {
	factors, err := fb.Execute(ctx)
	if err != nil {
		panic(fmt.Sprintf("resonance: factor search failed: %v", err))
	}
	return factors
}
