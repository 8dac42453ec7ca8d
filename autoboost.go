// Package autoboost generates per-scene CRF zones for AV1 encoding.
//
// Autoboost runs a fast av1an probe encode of the source, scores it against
// the original with SSIMULACRA2 and/or XPSNR, and converts the per-scene
// quality statistics into an av1an zone file that lowers the CRF for scenes
// that scored below the global average.
//
// Basic usage:
//
//	booster, err := autoboost.New("input.mkv",
//	    autoboost.WithQuality(27),
//	    autoboost.WithAggressive(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := booster.Run(ctx, nil); err != nil {
//	    log.Fatal(err)
//	}
package autoboost

import (
	"context"

	"github.com/arkaen/autoboost/internal/config"
	"github.com/arkaen/autoboost/internal/errors"
	"github.com/arkaen/autoboost/internal/logging"
	"github.com/arkaen/autoboost/internal/metrics"
	"github.com/arkaen/autoboost/internal/pipeline"
	"github.com/arkaen/autoboost/internal/reporter"
)

// Re-export stage and metric selectors.
type Stage = config.Stage

const (
	StageAll     = config.StageAll
	StageEncode  = config.StageEncode
	StageMetrics = config.StageMetrics
	StageZones   = config.StageZones
)

type MetricSelection = config.MetricSelection

const (
	MetricSSIMU2 = config.MetricSSIMU2
	MetricXPSNR  = config.MetricXPSNR
	MetricBoth   = config.MetricBoth
)

// Reporter is the progress reporting interface. Pass nil to Run for silent
// operation, or NewTerminalReporter for human-friendly terminal output.
type Reporter = reporter.Reporter

// NewTerminalReporter creates a reporter that writes colored progress to the
// terminal.
func NewTerminalReporter(verbose bool) Reporter {
	return reporter.NewTerminalReporter(verbose)
}

// Option configures a Booster.
type Option func(*config.Config)

// WithStage selects which pipeline stage runs.
func WithStage(s Stage) Option {
	return func(c *config.Config) { c.Stage = s }
}

// WithQuality sets the base CRF.
func WithQuality(q float64) Option {
	return func(c *config.Config) { c.Quality = q }
}

// WithDeviation bounds the per-scene CRF change in both directions.
func WithDeviation(d float64) Option {
	return func(c *config.Config) { c.Deviation = d }
}

// WithPreset sets the SVT-AV1 preset for the fast pass.
func WithPreset(p uint8) Option {
	return func(c *config.Config) { c.Preset = p }
}

// WithWorkers sets the av1an worker count.
func WithWorkers(n int) Option {
	return func(c *config.Config) { c.Workers = n }
}

// WithMetrics selects which metric tools run during the metrics stage.
func WithMetrics(m MetricSelection) Option {
	return func(c *config.Config) { c.Metric = m }
}

// WithSkip overrides the SSIMULACRA2 sampling stride.
func WithSkip(n int) Option {
	return func(c *config.Config) { c.Skip = n }
}

// WithPolicy selects the zone combination policy (1-4).
func WithPolicy(n int) Option {
	return func(c *config.Config) { c.Policy = n }
}

// WithAggressive doubles the boost factor during zone generation.
func WithAggressive() Option {
	return func(c *config.Config) { c.Aggressive = true }
}

// Booster is the main entry point for zone generation.
type Booster struct {
	config *config.Config
}

// New creates a Booster for the given input file.
func New(input string, opts ...Option) (*Booster, error) {
	cfg := config.New()
	cfg.Input = input
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.NoLog = true
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &Booster{config: cfg}, nil
}

// Run executes the configured stages. A nil reporter runs silently.
func (b *Booster) Run(ctx context.Context, rep Reporter) error {
	return Run(ctx, b.config, rep)
}

// Run validates cfg, resolves the scoring backend, sets up run logging, and
// executes the pipeline. This is the single entry point both the CLI and the
// Booster wrapper go through.
func Run(ctx context.Context, cfg *config.Config, rep Reporter) error {
	if err := validate(cfg); err != nil {
		return err
	}

	if needsSSIMU2Backend(cfg) {
		backend, err := metrics.ResolveBackend()
		if err != nil {
			return err
		}
		cfg.Backend = backend
	}

	paths := cfg.ResolvePaths()
	log, err := logging.Setup(paths.LogDir, cfg.Verbose, cfg.NoLog)
	if err != nil {
		return errors.NewIOError("cannot set up run logging", err)
	}
	defer func() {
		if log != nil {
			_ = log.Close()
		}
	}()

	return pipeline.New(cfg, log, rep).Run(ctx)
}

func validate(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return &errors.CoreError{
			Kind:       errors.KindConfig,
			Message:    "invalid configuration",
			Underlying: err,
		}
	}
	return nil
}

// needsSSIMU2Backend reports whether the run will actually score with
// SSIMULACRA2, which is the only case where backend resolution matters.
func needsSSIMU2Backend(cfg *config.Config) bool {
	if cfg.Stage == config.StageEncode || cfg.Stage == config.StageZones {
		return false
	}
	return cfg.Metric == config.MetricSSIMU2 || cfg.Metric == config.MetricBoth
}
