package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/primefold/resonance"
	"github.com/primefold/resonance/prime"
)

type benchOptions struct {
	bits  int
	count int
}

func newBenchCmd(root *rootOptions) *cobra.Command {
	opts := &benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Factor a fixed table of balanced semiprimes",
		Long: "Bench factors products of neighboring primes near 2^(bits/2). The\n" +
			"table is derived from the prime sieve, so repeated runs measure the\n" +
			"same inputs.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.bits, "bits", 32, "approximate bit length of the semiprimes")
	f.IntVar(&opts.count, "count", 10, "number of semiprimes to factor")

	return cmd
}

func runBench(cmd *cobra.Command, root *rootOptions, opts *benchOptions) error {
	v, err := loadConfig(root)
	if err != nil {
		return err
	}
	bits := configInt(cmd, v, "bits", opts.bits)
	count := configInt(cmd, v, "count", opts.count)

	if bits < 10 || bits > 40 {
		return usagef("bits must be in [10, 40], got %d", bits)
	}
	if count < 1 {
		return usagef("count must be positive, got %d", count)
	}

	logger, err := newLogger(configString(cmd, v, "log-level", root.logLevel))
	if err != nil {
		return err
	}

	eng, err := resonance.New(resonance.WithLogger(logger))
	if err != nil {
		return err
	}
	defer eng.Close()

	semiprimes, err := benchSemiprimes(bits, count)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	start := time.Now()
	found := 0

	for _, n := range semiprimes {
		runStart := time.Now()
		factors, err := eng.FindFactor(ctx, n)
		elapsed := time.Since(runStart)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "%-22d exhausted        %v\n", n, elapsed.Round(time.Microsecond))
			continue
		}
		found++
		fmt.Fprintf(out, "%-22d %d * %d    %v\n", n, factors.P, factors.Q, elapsed.Round(time.Microsecond))
	}

	total := time.Since(start)
	stats := eng.Stats()
	fmt.Fprintf(out, "\nfactored %d/%d semiprimes (%d bits) in %v (avg %v)\n",
		found, len(semiprimes), bits, total.Round(time.Microsecond),
		(total / time.Duration(len(semiprimes))).Round(time.Microsecond))
	fmt.Fprintf(out, "cache: %d vector hits, %d coherence hits\n",
		stats.Cache.VectorHits, stats.Cache.CoherenceHits)
	return nil
}

// benchSemiprimes pairs neighboring primes below 2^(bits/2) so every
// product lands close to the requested bit length.
func benchSemiprimes(bits, count int) ([]uint64, error) {
	limit := uint64(1) << (bits / 2)
	primes := prime.PrimesUpTo(limit)
	if len(primes) < count+1 {
		return nil, usagef("only %d primes below %d; reduce count", len(primes), limit)
	}

	tail := primes[len(primes)-count-1:]
	out := make([]uint64, 0, count)
	for i := 0; i+1 < len(tail); i++ {
		out = append(out, tail[i]*tail[i+1])
	}
	return out, nil
}
