package main

import (
	"errors"
	"fmt"
	"strconv"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/primefold/resonance"
	"github.com/primefold/resonance/snapshot"
)

type factorOptions struct {
	budget    int
	keepTop   int
	hints     []string
	memoryDir string
	jsonOut   bool
}

func newFactorCmd(root *rootOptions) *cobra.Command {
	opts := &factorOptions{}

	cmd := &cobra.Command{
		Use:   "factor <n>",
		Short: "Search for a nontrivial divisor of n",
		Long: "Factor runs a coherence-guided search for a nontrivial divisor of n.\n" +
			"Exhausting the budget exits with code 1; it never implies that n is\n" +
			"prime. With --memory-dir, remembered patterns persist across runs.",
		Example: "  resonance factor 10403\n" +
			"  resonance factor 10403 --budget 12 --hints 101\n" +
			"  resonance factor 2813 --memory-dir ./state --json",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFactor(cmd, root, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.budget, "budget", 0, "collapse iteration budget (0: engine default)")
	f.IntVar(&opts.keepTop, "keep", 0, "candidates kept per ranking phase (0: engine default)")
	f.StringSliceVar(&opts.hints, "hints", nil, "candidate positions tried before generated ones")
	f.StringVar(&opts.memoryDir, "memory-dir", "", "directory for persisted resonance memory")
	f.BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")

	return cmd
}

func runFactor(cmd *cobra.Command, root *rootOptions, opts *factorOptions, arg string) error {
	n, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return usagef("invalid n %q", arg)
	}

	hints := make([]uint64, 0, len(opts.hints))
	for _, h := range opts.hints {
		pos, err := strconv.ParseUint(h, 10, 64)
		if err != nil {
			return usagef("invalid hint %q", h)
		}
		hints = append(hints, pos)
	}

	v, err := loadConfig(root)
	if err != nil {
		return err
	}
	budget := configInt(cmd, v, "budget", opts.budget)
	keepTop := configInt(cmd, v, "keep", opts.keepTop)
	memoryDir := configString(cmd, v, "memory-dir", opts.memoryDir)

	logger, err := newLogger(configString(cmd, v, "log-level", root.logLevel))
	if err != nil {
		return err
	}

	engOpts := []resonance.Option{resonance.WithLogger(logger)}
	if budget > 0 {
		engOpts = append(engOpts, resonance.WithBudget(budget))
	}
	if keepTop > 0 {
		engOpts = append(engOpts, resonance.WithKeepTop(keepTop))
	}
	if memoryDir != "" {
		store, err := snapshot.NewLocalStore(memoryDir)
		if err != nil {
			return err
		}
		engOpts = append(engOpts, resonance.WithSnapshotStore(store))
	}

	eng, err := resonance.New(engOpts...)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx := cmd.Context()
	if memoryDir != "" {
		if err := eng.LoadMemory(ctx); err != nil && !errors.Is(err, snapshot.ErrNotFound) {
			return err
		}
	}

	factors, err := eng.Factor(n).Hints(hints...).Execute(ctx)
	if err != nil {
		return err
	}

	if memoryDir != "" {
		if err := eng.SaveMemory(ctx); err != nil {
			return err
		}
	}

	if opts.jsonOut {
		out, err := gojson.Marshal(factors)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), factors)
	return nil
}
