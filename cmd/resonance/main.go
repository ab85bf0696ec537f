// Command resonance is the command line front end for the
// coherence-guided factor search engine.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/primefold/resonance"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// usageError marks errors caused by bad invocation; they exit with
// code 2 instead of 1.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var uerr *usageError
		if errors.As(err, &uerr) || errors.Is(err, resonance.ErrInvalidN) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "resonance",
		Short: "Coherence-guided factor search",
		Long: "Resonance searches for nontrivial divisors of composite numbers by\n" +
			"scoring structurally generated candidates against the spectral\n" +
			"embedding of n. Successful searches are remembered and can be\n" +
			"persisted between runs.",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default: ./resonance.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	cmd.AddCommand(newFactorCmd(opts))
	cmd.AddCommand(newBenchCmd(opts))
	cmd.AddCommand(newMemoryCmd(opts))

	return cmd
}

// loadConfig layers RESONANCE_* environment variables over an optional
// YAML config file. Explicit command line flags still win; see
// configInt and configString.
func loadConfig(opts *rootOptions) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("RESONANCE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if opts.configPath != "" {
		v.SetConfigFile(opts.configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", opts.configPath, err)
		}
		return v, nil
	}

	v.SetConfigName("resonance")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// configInt returns the configured value for name unless the flag was
// set explicitly on the command line.
func configInt(cmd *cobra.Command, v *viper.Viper, name string, fallback int) int {
	if cmd.Flags().Changed(name) || !v.IsSet(name) {
		return fallback
	}
	return v.GetInt(name)
}

func configString(cmd *cobra.Command, v *viper.Viper, name string, fallback string) string {
	if cmd.Flags().Changed(name) || !v.IsSet(name) {
		return fallback
	}
	return v.GetString(name)
}

func newLogger(level string) (*resonance.Logger, error) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil, usagef("unknown log level %q", level)
	}

	return resonance.NewLogger(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      l,
		TimeFormat: "15:04:05",
	})), nil
}
