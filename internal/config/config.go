package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arkaen/autoboost/internal/util"
)

// Default constants
const (
	// DefaultQuality is the base CRF used for the fast pass and as the zone
	// adjustment origin.
	DefaultQuality float64 = 30

	// DefaultDeviation is the maximum CRF change from the base quality.
	DefaultDeviation float64 = 10

	// DefaultPreset is the SVT-AV1 preset for the fast pass (0-13, lower is
	// slower/better).
	DefaultPreset uint8 = 9

	// DefaultSkipTurbo is the sampling stride when turbo-metrics scores the
	// fast pass (every frame).
	DefaultSkipTurbo int = 1

	// DefaultSkipFallback is the sampling stride for the ffmpeg SSIMULACRA2
	// fallback backend.
	DefaultSkipFallback int = 3

	// MaxQuality is the maximum valid CRF value.
	MaxQuality float64 = 63

	// MaxPreset is the maximum valid SVT-AV1 preset value.
	MaxPreset uint8 = 13
)

// Stage selects which part of the pipeline runs.
type Stage int

const (
	// StageAll runs fast pass, metrics, and zone generation in order.
	StageAll Stage = 0
	// StageEncode runs only the av1an fast pass.
	StageEncode Stage = 1
	// StageMetrics runs only metric calculation against an existing fast pass.
	StageMetrics Stage = 2
	// StageZones runs only zone generation from existing metric logs.
	StageZones Stage = 3
)

// MetricSelection selects which metric tools run during the metrics stage.
type MetricSelection int

const (
	MetricSSIMU2 MetricSelection = 1
	MetricXPSNR  MetricSelection = 2
	MetricBoth   MetricSelection = 3
)

// Backend identifies the SSIMULACRA2 scoring backend, resolved once at
// startup from tool availability and threaded through as configuration.
type Backend int

const (
	// BackendTurboMetrics scores with the turbo-metrics binary.
	BackendTurboMetrics Backend = iota
	// BackendFFmpeg scores with ffmpeg's ssimulacra2 filter.
	BackendFFmpeg
)

// String returns the backend's tool name.
func (b Backend) String() string {
	if b == BackendTurboMetrics {
		return "turbo-metrics"
	}
	return "ffmpeg"
}

// Config holds all configuration for one autoboost run.
type Config struct {
	// Input is the original source file the fast pass encodes and metrics
	// compare against.
	Input string `yaml:"-"`

	// Stage selects the pipeline stage (0 = all).
	Stage Stage `yaml:"-"`

	// Quality is the base CRF.
	Quality float64 `yaml:"quality"`

	// Deviation bounds the per-scene CRF change in both directions.
	Deviation float64 `yaml:"deviation"`

	// Preset is the SVT-AV1 preset for the fast pass.
	Preset uint8 `yaml:"preset"`

	// Workers is the av1an worker count.
	Workers int `yaml:"workers"`

	// Metric selects which metric tools run.
	Metric MetricSelection `yaml:"metrics"`

	// Skip is the SSIMULACRA2 sampling stride. 0 means backend default.
	Skip int `yaml:"skip"`

	// Policy is the zone combination policy selector (1-4).
	Policy int `yaml:"zones"`

	// Aggressive doubles the boost factor during zone generation.
	Aggressive bool `yaml:"aggressive"`

	// Backend is the resolved SSIMULACRA2 backend.
	Backend Backend `yaml:"-"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"-"`

	// NoLog disables run log file creation.
	NoLog bool `yaml:"-"`
}

// New returns a Config with default values. The worker default follows the
// physical core count, matching av1an's own sizing.
func New() *Config {
	return &Config{
		Stage:     StageAll,
		Quality:   DefaultQuality,
		Deviation: DefaultDeviation,
		Preset:    DefaultPreset,
		Workers:   util.PhysicalCores(),
		Metric:    MetricSSIMU2,
		Policy:    1,
	}
}

// LoadFile layers values from a YAML config file over cfg. A missing file is
// not an error so the flag can point at a default location.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

// EffectiveSkip returns the sampling stride, falling back to the resolved
// backend's default when no override was given.
func (c *Config) EffectiveSkip() int {
	if c.Skip > 0 {
		return c.Skip
	}
	if c.Backend == BackendTurboMetrics {
		return DefaultSkipTurbo
	}
	return DefaultSkipFallback
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Input == "" {
		return ErrMissingInput
	}
	if c.Stage < StageAll || c.Stage > StageZones {
		return fmt.Errorf("%w: must be 0-3, got %d", ErrInvalidStage, c.Stage)
	}
	if c.Metric < MetricSSIMU2 || c.Metric > MetricBoth {
		return fmt.Errorf("%w: must be 1-3, got %d", ErrInvalidMetric, c.Metric)
	}
	if c.Policy < 1 || c.Policy > 4 {
		return fmt.Errorf("%w: must be 1-4, got %d", ErrInvalidPolicy, c.Policy)
	}
	if c.Quality < 0 || c.Quality > MaxQuality {
		return fmt.Errorf("%w: must be 0-%.0f, got %v", ErrInvalidQuality, MaxQuality, c.Quality)
	}
	if c.Deviation < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidDeviation, c.Deviation)
	}
	if c.Preset > MaxPreset {
		return fmt.Errorf("%w: must be 0-%d, got %d", ErrInvalidPreset, MaxPreset, c.Preset)
	}
	if c.Skip < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSkip, c.Skip)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers)
	}
	return nil
}

// Paths contains every file location one run reads or writes. All of them
// derive from the input path so stage-selective re-runs find earlier output.
type Paths struct {
	OutputDir string
	TempDir   string
	FastPass  string
	Scenes    string
	SSIMU2Log string
	XPSNRLog  string
	LogDir    string
}

// ResolvePaths derives the run's file layout from the input path.
func (c *Config) ResolvePaths() Paths {
	dir := filepath.Dir(c.Input)
	stem := strings.TrimSuffix(filepath.Base(c.Input), filepath.Ext(c.Input))
	tmp := filepath.Join(dir, "temp")
	return Paths{
		OutputDir: dir,
		TempDir:   tmp,
		FastPass:  filepath.Join(dir, stem+"_fastpass.mkv"),
		Scenes:    filepath.Join(tmp, "scenes.json"),
		SSIMU2Log: filepath.Join(dir, stem+"_ssimu2.log"),
		XPSNRLog:  filepath.Join(dir, stem+"_xpsnr.log"),
		LogDir:    filepath.Join(tmp, "logs"),
	}
}

// ZonesFile returns the zone file path for a policy, named after the policy
// so different runs don't clobber each other.
func (p Paths) ZonesFile(policyName string) string {
	return filepath.Join(p.TempDir, policyName+"_zones.txt")
}
