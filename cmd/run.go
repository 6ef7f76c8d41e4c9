// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stagehand/internal/browser"
	"github.com/xkilldash9x/stagehand/internal/chance"
	"github.com/xkilldash9x/stagehand/internal/config"
	"github.com/xkilldash9x/stagehand/internal/network"
	"github.com/xkilldash9x/stagehand/internal/observability"
	"github.com/xkilldash9x/stagehand/internal/reporting"
	"github.com/xkilldash9x/stagehand/internal/scenario"
	"github.com/xkilldash9x/stagehand/internal/suites"
)

// runOptions holds command-line overrides for a run. Zero values mean the
// flag was not given.
type runOptions struct {
	tags         []string
	seed         string
	reportFormat string
	reportPath   string
	workers      int
	headless     bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scenario suites",
		Long: `Runs every suite, or only those carrying one of the given tags, and writes
a report. The exit code is non-zero when any suite fails.

Setting --seed (or QAT_CHANCE_SEED) replays the random data of an earlier run.`,
		Example: `  stagehand run
  stagehand run --tag @api --report-format junit --report-path report.xml
  stagehand run --seed 3f1d2c4b-5a69-4788-9abc-def012345678 --headless=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd.Flags(), cfg, opts); err != nil {
				return err
			}
			return runSuites(ctx, cfg)
		},
	}

	addRunFlags(cmd.Flags(), &opts)
	return cmd
}

func addRunFlags(fs *pflag.FlagSet, opts *runOptions) {
	fs.StringSliceVarP(&opts.tags, "tag", "t", nil, "Only run suites with this tag (repeatable, e.g. @web)")
	fs.StringVar(&opts.seed, "seed", "", "Version 4 UUID seeding every actor")
	fs.StringVar(&opts.reportFormat, "report-format", "", "Report format: text, json or junit")
	fs.StringVarP(&opts.reportPath, "report-path", "o", "", "Report destination file, or 'stdout'")
	fs.IntVarP(&opts.workers, "workers", "w", 0, "Number of suites run concurrently")
	fs.BoolVar(&opts.headless, "headless", true, "Run the browser without a window")
}

// applyRunFlags layers explicitly set flags over the loaded configuration and
// revalidates it.
func applyRunFlags(flags *pflag.FlagSet, cfg *config.Config, opts runOptions) error {
	if flags.Changed("tag") {
		cfg.SetRunnerTags(opts.tags)
	}
	if flags.Changed("seed") {
		if !chance.IsRandomUUID(opts.seed) {
			return fmt.Errorf("--seed must be a version 4 UUID (got %q)", opts.seed)
		}
		cfg.SetChanceSeed(opts.seed)
	}
	if flags.Changed("headless") {
		cfg.SetBrowserHeadless(opts.headless)
	}
	if flags.Changed("report-format") {
		cfg.RunnerCfg.ReportFormat = opts.reportFormat
	}
	if flags.Changed("report-path") {
		cfg.RunnerCfg.ReportPath = opts.reportPath
	}
	if flags.Changed("workers") {
		cfg.RunnerCfg.Workers = opts.workers
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// runSuites wires the browser manager and HTTP client into the suites, runs
// them and streams each result to the configured reporter.
func runSuites(ctx context.Context, cfg *config.Config) (err error) {
	logger := observability.GetLogger()

	manager := browser.NewManager(cfg, logger)
	defer func() {
		if shutdownErr := manager.Shutdown(browser.Detach(ctx)); shutdownErr != nil {
			logger.Warn("Browser manager did not shut down cleanly.", zap.Error(shutdownErr))
		}
	}()
	client := network.NewClient(network.NewClientConfig(cfg))

	all, err := suites.All(suites.Deps{
		Config:   cfg,
		Browsers: manager,
		HTTP:     client,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	reporter, err := reporting.New(cfg.Runner().ReportFormat, cfg.Runner().ReportPath)
	if err != nil {
		return fmt.Errorf("failed to create reporter: %w", err)
	}
	defer func() {
		if closeErr := reporter.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to finalize report: %w", closeErr))
		}
	}()

	runner := scenario.NewRunner(cfg.Runner(), logger)
	runner.OnSuiteDone(func(res *scenario.SuiteResult) {
		if writeErr := reporter.Write(res); writeErr != nil {
			logger.Error("Failed to write suite result.", zap.String("suite", res.Name), zap.Error(writeErr))
		}
	})

	report, err := runner.Run(ctx, all)
	if err != nil {
		return err
	}

	if report.Failed() {
		return ErrRunFailed
	}
	return nil
}
