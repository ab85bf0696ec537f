package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/primefold/resonance"
	"github.com/primefold/resonance/snapshot"
)

func newMemoryCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect or clear persisted resonance memory",
	}

	cmd.AddCommand(newMemoryStatsCmd(root))
	cmd.AddCommand(newMemoryClearCmd(root))

	return cmd
}

func newMemoryStatsCmd(root *rootOptions) *cobra.Command {
	var memoryDir string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show what the persisted memory has learned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := loadConfig(root)
			if err != nil {
				return err
			}
			dir := configString(cmd, v, "memory-dir", memoryDir)
			if dir == "" {
				return usagef("--memory-dir is required")
			}

			store, err := snapshot.NewLocalStore(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			env, err := store.Get(ctx, resonance.MemorySnapshotKey)
			if errors.Is(err, snapshot.ErrNotFound) {
				fmt.Fprintln(out, "no persisted memory")
				return nil
			}
			if err != nil {
				return err
			}

			_, codecName, err := snapshot.Decode(env)
			if err != nil {
				return err
			}

			eng, err := resonance.New(resonance.WithSnapshotStore(store))
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.LoadMemory(ctx); err != nil {
				return err
			}

			mem := eng.Memory()
			fmt.Fprintf(out, "records:      %d\n", mem.Len())
			fmt.Fprintf(out, "success rate: %.2f\n", mem.SuccessRate())
			fmt.Fprintf(out, "snapshot:     %d bytes (%s)\n", len(env), codecName)
			return nil
		},
	}

	cmd.Flags().StringVar(&memoryDir, "memory-dir", "", "directory holding the persisted memory")

	return cmd
}

func newMemoryClearCmd(root *rootOptions) *cobra.Command {
	var memoryDir string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the persisted memory snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := loadConfig(root)
			if err != nil {
				return err
			}
			dir := configString(cmd, v, "memory-dir", memoryDir)
			if dir == "" {
				return usagef("--memory-dir is required")
			}

			store, err := snapshot.NewLocalStore(dir)
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), resonance.MemorySnapshotKey); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "memory cleared")
			return nil
		},
	}

	cmd.Flags().StringVar(&memoryDir, "memory-dir", "", "directory holding the persisted memory")

	return cmd
}
