// Command factormerge merges two factor models into one.
//
// Usage:
//
//	factormerge [flags] <modelA> <modelB> <output>
//	factormerge inspect <model>
//
// Model A maps X→Y and model B maps Y→Z; the output maps X→Z. Locations are
// file paths or s3://, minio://, redis:// or file:// URLs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/factormerge"
	"github.com/hupe1980/factormerge/config"
	"github.com/hupe1980/factormerge/internal/location"
	"github.com/hupe1980/factormerge/merge"
	"github.com/hupe1980/factormerge/metrics"
	"github.com/hupe1980/factormerge/resource"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "factormerge:", err)
		stop()
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	workers    int
	minOverlap float64
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "factormerge <modelA> <modelB> <output>",
		Short: "Merge two latent-factor models into one",
		Long: `Merge model A (X→Y) and model B (Y→Z) into a model X→Z.

A's column ids must line up with B's row ids. Every merged row starts with an
empty set of known items. The output is written atomically: a failed run
leaves nothing at the output location.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, flags, args[0], args[1], args[2])
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file (default $"+config.PathEnvVar+")")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "merge workers, overrides merge.workers")
	cmd.Flags().Float64Var(&flags.minOverlap, "min-overlap", 0, "fail below this shared-id fraction, overrides merge.min_overlap")

	cmd.AddCommand(newInspectCmd(&flags))
	return cmd
}

// env bundles what every subcommand needs.
type env struct {
	cfg        *config.Config
	logger     *factormerge.Logger
	controller *resource.Controller
	resolver   *location.Resolver
}

func setup(cmd *cobra.Command, flags rootFlags) (*env, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("workers") {
		cfg.Merge.Workers = flags.workers
	}
	if cmd.Flags().Changed("min-overlap") {
		cfg.Merge.MinOverlap = flags.minOverlap
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := factormerge.NewFormatLogger(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	controller := resource.NewController(resource.Config{
		MemoryLimitBytes:   cfg.Merge.MemoryLimitBytes,
		MaxWorkers:         int64(cfg.Merge.Workers),
		IOLimitBytesPerSec: cfg.Store.IOLimitBytesPerSec,
	})

	resolver, err := location.NewResolver(cfg, controller, logger.Logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, controller: controller, resolver: resolver}, nil
}

func runMerge(cmd *cobra.Command, flags rootFlags, a, b, out string) error {
	ctx := cmd.Context()

	e, err := setup(cmd, flags)
	if err != nil {
		return err
	}
	defer e.resolver.Close()

	refs := make([]factormerge.Ref, 0, 3)
	for _, raw := range []string{a, b, out} {
		ms, name, err := e.resolver.Resolve(ctx, raw)
		if err != nil {
			return err
		}
		refs = append(refs, factormerge.Ref{Store: ms, Name: name})
	}

	prom := metrics.NewPrometheus()
	tool := factormerge.New(
		factormerge.WithLogger(e.logger),
		factormerge.WithMetricsCollector(prom),
		factormerge.WithMergeOptions(
			merge.WithWorkers(e.cfg.Merge.Workers),
			merge.WithChunkSize(e.cfg.Merge.ChunkSize),
			merge.WithMinOverlap(e.cfg.Merge.MinOverlap),
			merge.WithController(e.controller),
		),
	)

	stats, runErr := tool.Run(ctx, refs[0], refs[1], refs[2])

	if path := e.cfg.Metrics.Textfile; path != "" {
		if err := prom.WriteTextfile(path); err != nil {
			e.logger.WarnContext(ctx, "metrics textfile not written", "path", path, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "merged %d rows (dim %d) and %d columns, %d shared ids\n",
		stats.Rows, stats.OutputDim, stats.Columns, stats.SharedIDs)
	return nil
}
