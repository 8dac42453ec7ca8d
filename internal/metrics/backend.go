package metrics

import (
	"github.com/arkaen/autoboost/internal/config"
	"github.com/arkaen/autoboost/internal/errors"
)

// ResolveBackend picks the SSIMULACRA2 scoring backend by availability:
// turbo-metrics when present, ffmpeg's ssimulacra2 filter otherwise. An
// error is returned only when neither tool is usable.
func ResolveBackend() (config.Backend, error) {
	if IsTurboMetricsAvailable() {
		return config.BackendTurboMetrics, nil
	}
	if IsFFmpegAvailable() {
		return config.BackendFFmpeg, nil
	}
	return config.BackendFFmpeg, errors.NewDependencyError(turboMetricsBinary)
}
