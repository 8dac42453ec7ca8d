// Package main provides the CLI entry point for autoboost.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arkaen/autoboost"
	"github.com/arkaen/autoboost/internal/config"
	"github.com/arkaen/autoboost/internal/errors"
	"github.com/arkaen/autoboost/internal/reporter"
)

const (
	appName    = "autoboost"
	appVersion = "0.1.0"
)

// cliArgs holds the raw flag values before they land in the config.
type cliArgs struct {
	input      string
	stage      int
	quality    float64
	deviation  float64
	preset     uint8
	workers    int
	metrics    int
	skip       int
	policy     int
	aggressive bool
	configFile string
	verbose    bool
	noLog      bool
}

func main() {
	var args cliArgs

	cmd := &cobra.Command{
		Use:     appName,
		Short:   "Generate per-scene CRF zones for AV1 encoding",
		Long:    "Autoboost runs a fast av1an probe encode, scores it against the source\nwith SSIMULACRA2 and/or XPSNR, and writes an av1an zone file boosting the\nCRF of scenes that scored below average.",
		Version: appVersion,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Flag errors before this point print through cobra with
			// usage; errors from the run itself go through the reporter.
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true
			return run(args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&args.input, "input", "i", "", "input video file (required)")
	f.IntVarP(&args.stage, "stage", "s", 0, "pipeline stage: 0 all, 1 fast pass, 2 metrics, 3 zones")
	f.Float64VarP(&args.quality, "quality", "q", config.DefaultQuality, "base CRF")
	f.Float64VarP(&args.deviation, "deviation", "d", config.DefaultDeviation, "maximum CRF change per scene")
	f.Uint8VarP(&args.preset, "preset", "p", config.DefaultPreset, "SVT-AV1 preset for the fast pass (0-13)")
	f.IntVarP(&args.workers, "workers", "w", 0, "av1an worker count (default: physical cores)")
	f.IntVarP(&args.metrics, "metrics", "m", 1, "metrics to calculate: 1 SSIMU2, 2 XPSNR, 3 both")
	f.IntVarP(&args.skip, "skip", "S", 0, "SSIMULACRA2 sampling stride (default: backend default)")
	f.IntVarP(&args.policy, "zones", "z", 1, "zone policy: 1 ssimu2, 2 xpsnr, 3 multiplied, 4 minimum")
	f.BoolVarP(&args.aggressive, "aggressive", "a", false, "double the CRF boost factor")
	f.StringVar(&args.configFile, "config", "", "YAML config file layered under flags")
	f.BoolVarP(&args.verbose, "verbose", "v", false, "enable verbose output")
	f.BoolVar(&args.noLog, "no-log", false, "disable run log file creation")
	_ = cmd.MarkFlagRequired("input")

	if err := cmd.Execute(); err != nil {
		os.Exit(errors.ExitCode(err))
	}
}

func run(args cliArgs) error {
	cfg := config.New()

	if args.configFile != "" {
		if err := cfg.LoadFile(args.configFile); err != nil {
			return &errors.CoreError{
				Kind:       errors.KindConfig,
				Message:    fmt.Sprintf("cannot load config file %s", args.configFile),
				Underlying: err,
			}
		}
	}

	input, err := filepath.Abs(args.input)
	if err != nil {
		return &errors.CoreError{
			Kind:       errors.KindConfig,
			Message:    fmt.Sprintf("invalid input path %s", args.input),
			Underlying: err,
		}
	}

	cfg.Input = input
	cfg.Stage = config.Stage(args.stage)
	cfg.Quality = args.quality
	cfg.Deviation = args.deviation
	cfg.Preset = args.preset
	if args.workers > 0 {
		cfg.Workers = args.workers
	}
	cfg.Metric = config.MetricSelection(args.metrics)
	cfg.Skip = args.skip
	cfg.Policy = args.policy
	cfg.Aggressive = args.aggressive
	cfg.Verbose = args.verbose
	cfg.NoLog = args.noLog

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	rep := reporter.NewTerminalReporter(args.verbose)
	if err := autoboost.Run(ctx, cfg, rep); err != nil {
		rep.Error(reporter.ReporterError{
			Title:   "run failed",
			Message: err.Error(),
		})
		return err
	}
	return nil
}
