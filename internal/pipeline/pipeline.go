// Package pipeline orchestrates the fast pass, metric calculation, and zone
// generation stages.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/arkaen/autoboost/internal/av1an"
	"github.com/arkaen/autoboost/internal/combine"
	"github.com/arkaen/autoboost/internal/config"
	"github.com/arkaen/autoboost/internal/errors"
	"github.com/arkaen/autoboost/internal/logging"
	"github.com/arkaen/autoboost/internal/metrics"
	"github.com/arkaen/autoboost/internal/reporter"
	"github.com/arkaen/autoboost/internal/scenes"
	"github.com/arkaen/autoboost/internal/stats"
	"github.com/arkaen/autoboost/internal/util"
	"github.com/arkaen/autoboost/internal/zones"
)

// Pipeline runs the configured stages sequentially. The first fatal error
// aborts the run; intermediate files stay on disk so later invocations can
// resume from any stage.
type Pipeline struct {
	cfg   *config.Config
	paths config.Paths
	log   *logging.Logger
	rep   reporter.Reporter
}

// New creates a pipeline. A nil reporter falls back to NullReporter; the
// logger may be nil when logging is disabled.
func New(cfg *config.Config, log *logging.Logger, rep reporter.Reporter) *Pipeline {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	return &Pipeline{
		cfg:   cfg,
		paths: cfg.ResolvePaths(),
		log:   log,
		rep:   rep,
	}
}

// Run executes the stages selected by the configuration.
func (p *Pipeline) Run(ctx context.Context) error {
	if !util.FileExists(p.cfg.Input) {
		return errors.NewIOError(fmt.Sprintf("input file not found: %s", p.cfg.Input), nil)
	}

	policy, err := combine.ParsePolicy(p.cfg.Policy)
	if err != nil {
		return err
	}

	p.rep.RunStarted(reporter.RunSummary{
		Input:      p.cfg.Input,
		FastPass:   p.paths.FastPass,
		Backend:    p.cfg.Backend.String(),
		Quality:    p.cfg.Quality,
		Deviation:  p.cfg.Deviation,
		Preset:     p.cfg.Preset,
		Workers:    p.cfg.Workers,
		Stage:      stageName(p.cfg.Stage),
		Policy:     policy.Name(),
		Aggressive: p.cfg.Aggressive,
	})

	switch p.cfg.Stage {
	case config.StageEncode:
		return p.runFastPass(ctx)
	case config.StageMetrics:
		return p.runMetrics(ctx)
	case config.StageZones:
		return p.runZones(policy)
	default:
		if err := p.runFastPass(ctx); err != nil {
			return err
		}
		if err := p.runMetrics(ctx); err != nil {
			return err
		}
		return p.runZones(policy)
	}
}

func stageName(s config.Stage) string {
	switch s {
	case config.StageEncode:
		return "fast pass"
	case config.StageMetrics:
		return "metrics"
	case config.StageZones:
		return "zones"
	default:
		return "full pipeline"
	}
}

// runFastPass encodes the source with av1an at the base CRF, producing the
// fast-pass file and the scene list under temp/.
func (p *Pipeline) runFastPass(ctx context.Context) error {
	if err := av1an.EnsureAvailable(); err != nil {
		return err
	}
	if err := util.EnsureDirectory(p.paths.TempDir); err != nil {
		return errors.NewIOError(fmt.Sprintf("cannot create temp directory %s", p.paths.TempDir), err)
	}

	p.rep.StageStarted("fast pass")
	p.rep.StageProgress(fmt.Sprintf("Encoding %s at CRF %g, preset %d, %d workers",
		p.cfg.Input, p.cfg.Quality, p.cfg.Preset, p.cfg.Workers))
	p.log.Info("fast pass: av1an %s -> %s", p.cfg.Input, p.paths.FastPass)

	fast := av1an.FastPass{
		Input:   p.cfg.Input,
		Output:  p.paths.FastPass,
		TempDir: p.paths.TempDir,
		Quality: p.cfg.Quality,
		Preset:  p.cfg.Preset,
		Workers: p.cfg.Workers,
	}

	// av1an renders its own progress, so it gets the terminal directly
	// alongside the run log.
	out := io.MultiWriter(os.Stderr, p.log.Writer())
	if err := av1an.Run(ctx, fast, out); err != nil {
		p.log.Error("fast pass failed: %v", err)
		return err
	}

	p.rep.OperationComplete(fmt.Sprintf("Fast pass written to %s", p.paths.FastPass))
	return nil
}

// runMetrics scores the fast pass against the source with the selected
// metric tools and writes their logs beside the input.
func (p *Pipeline) runMetrics(ctx context.Context) error {
	if !util.FileExists(p.paths.FastPass) {
		return errors.NewIOError(fmt.Sprintf("fast pass not found: %s (run the encode stage first)", p.paths.FastPass), nil)
	}

	p.rep.StageStarted("metrics")

	if p.cfg.Metric == config.MetricSSIMU2 || p.cfg.Metric == config.MetricBoth {
		if err := p.runSSIMU2(ctx); err != nil {
			return err
		}
	}
	if p.cfg.Metric == config.MetricXPSNR || p.cfg.Metric == config.MetricBoth {
		if err := p.runXPSNR(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) runSSIMU2(ctx context.Context) error {
	skip := p.cfg.EffectiveSkip()

	if p.cfg.Backend == config.BackendTurboMetrics {
		p.rep.StageProgress(fmt.Sprintf("Scoring SSIMULACRA2 with turbo-metrics (stride %d)", skip))
		p.log.Info("ssimu2: turbo-metrics stride %d -> %s", skip, p.paths.SSIMU2Log)

		output, err := metrics.RunTurboMetrics(ctx, p.cfg.Input, p.paths.FastPass, p.paths.SSIMU2Log, skip)
		if err == nil {
			p.rep.OperationComplete(fmt.Sprintf("SSIMULACRA2 log written to %s", p.paths.SSIMU2Log))
			return nil
		}
		if errors.IsCancelled(err) {
			return err
		}

		// turbo-metrics can fail on sources its decoder does not handle.
		// Echo what it said, then fall back to the ffmpeg filter.
		for _, line := range util.SplitLines(output) {
			p.rep.Diagnostic(line)
		}
		p.rep.Warning("turbo-metrics failed, falling back to ffmpeg ssimulacra2 filter")
		p.log.Warn("ssimu2: turbo-metrics failed (%v), using ffmpeg fallback", err)

		if p.cfg.Skip == 0 {
			skip = config.DefaultSkipFallback
		}
	}

	if !metrics.IsFFmpegAvailable() {
		return errors.NewDependencyError("ffmpeg")
	}

	p.rep.StageProgress(fmt.Sprintf("Scoring SSIMULACRA2 with ffmpeg (stride %d)", skip))
	p.log.Info("ssimu2: ffmpeg stride %d -> %s", skip, p.paths.SSIMU2Log)

	p.rep.ProgressStarted(-1, "ssimulacra2")
	err := metrics.RunFFmpegSSIMU2(ctx, p.cfg.Input, p.paths.FastPass, p.paths.SSIMU2Log, skip, func(frame int64) {
		p.rep.Progress(frame)
	})
	p.rep.ProgressDone()
	if err != nil {
		p.log.Error("ssimu2 failed: %v", err)
		return err
	}

	p.rep.OperationComplete(fmt.Sprintf("SSIMULACRA2 log written to %s", p.paths.SSIMU2Log))
	return nil
}

func (p *Pipeline) runXPSNR(ctx context.Context) error {
	if !metrics.IsFFmpegAvailable() {
		return errors.NewDependencyError("ffmpeg")
	}

	p.rep.StageProgress("Scoring XPSNR with ffmpeg")
	p.log.Info("xpsnr: ffmpeg -> %s", p.paths.XPSNRLog)

	p.rep.ProgressStarted(-1, "xpsnr")
	err := metrics.RunXPSNR(ctx, p.cfg.Input, p.paths.FastPass, p.paths.XPSNRLog, func(frame int64) {
		p.rep.Progress(frame)
	})
	p.rep.ProgressDone()
	if err != nil {
		p.log.Error("xpsnr failed: %v", err)
		return err
	}

	p.rep.OperationComplete(fmt.Sprintf("XPSNR log written to %s", p.paths.XPSNRLog))
	return nil
}

// runZones turns the metric logs into an av1an zone file for the policy.
func (p *Pipeline) runZones(policy combine.Policy) error {
	p.rep.StageStarted("zones")

	boundaries, err := scenes.Load(p.paths.Scenes)
	if err != nil {
		return err
	}
	p.log.Info("zones: %d scenes from %s", scenes.Count(boundaries), p.paths.Scenes)

	in := combine.Inputs{Boundaries: boundaries, Skip: 1}
	if policy.NeedsSSIMU2() {
		in.SSIMU2, in.Skip, err = metrics.ParseSSIMU2Log(p.paths.SSIMU2Log, p.rep.Diagnostic)
		if err != nil {
			return err
		}
	}
	if policy.NeedsXPSNR() {
		in.XPSNR, err = metrics.ParseXPSNRLog(p.paths.XPSNRLog, p.rep.Diagnostic)
		if err != nil {
			return err
		}
	}

	combined, stride, err := policy.Combine(in)
	if err != nil {
		return err
	}

	windows, err := stats.Windows(boundaries, stride, combined)
	if err != nil {
		return err
	}
	perScene, global, err := stats.PerScene(windows)
	if err != nil {
		return err
	}

	p.rep.Stats(reporter.StatsBlock{
		Name: policy.Name(),
		Mean: global.Mean,
		P5:   global.P5,
		P95:  global.P95,
	})
	p.log.Info("zones: %s mean %.4f p5 %.4f p95 %.4f",
		policy.Name(), global.Mean, global.P5, global.P95)

	sceneP5 := make([]float64, len(perScene))
	for i, s := range perScene {
		sceneP5[i] = s.P5
	}

	zs, err := zones.Build(boundaries, sceneP5, global.Mean,
		p.cfg.Quality, p.cfg.Deviation, p.cfg.Aggressive)
	if err != nil {
		return err
	}
	for i, z := range zs {
		p.rep.Zone(reporter.SceneZone{Start: z.Start, End: z.End, P5: sceneP5[i], CRF: z.CRF})
	}

	path := p.paths.ZonesFile(policy.Name())
	if err := zones.Write(path, zs); err != nil {
		return err
	}

	p.log.Info("zones: wrote %d zones to %s", len(zs), path)
	p.rep.OperationComplete(fmt.Sprintf("Zone file written to %s", path))
	return nil
}
