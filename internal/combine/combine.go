// Package combine reduces the two metric series to one comparable score
// stream according to the configured zone policy.
package combine

import (
	"fmt"

	"github.com/arkaen/autoboost/internal/errors"
	"github.com/arkaen/autoboost/internal/stats"
)

// Policy selects how SSIMULACRA2 and XPSNR scores are combined.
type Policy int

const (
	// PolicySSIMU2 passes the SSIMULACRA2 series through unchanged.
	PolicySSIMU2 Policy = 1
	// PolicyXPSNR passes the normalized XPSNR series through unchanged.
	PolicyXPSNR Policy = 2
	// PolicyMultiply multiplies each SSIMULACRA2 sample with the averaged
	// XPSNR window it covers.
	PolicyMultiply Policy = 3
	// PolicyMinimum takes the element-wise minimum of the SSIMULACRA2 sample
	// and the XPSNR window average rescaled by the global SSIMULACRA2 mean.
	PolicyMinimum Policy = 4
)

// ParsePolicy validates a policy selector.
func ParsePolicy(n int) (Policy, error) {
	if n < 1 || n > 4 {
		return 0, errors.NewConfigError(fmt.Sprintf("zone policy must be 1-4, got %d", n))
	}
	return Policy(n), nil
}

// Name returns the policy's short name, used for zone file naming and logs.
func (p Policy) Name() string {
	switch p {
	case PolicySSIMU2:
		return "ssimu2"
	case PolicyXPSNR:
		return "xpsnr"
	case PolicyMultiply:
		return "multiplied"
	case PolicyMinimum:
		return "minimum"
	default:
		return "unknown"
	}
}

// NeedsSSIMU2 reports whether the policy consumes the SSIMULACRA2 series.
func (p Policy) NeedsSSIMU2() bool {
	return p != PolicyXPSNR
}

// NeedsXPSNR reports whether the policy consumes the XPSNR series.
func (p Policy) NeedsXPSNR() bool {
	return p != PolicySSIMU2
}

// Inputs carries the parsed metric series a policy may consume.
type Inputs struct {
	// Boundaries are the scene frame boundaries.
	Boundaries []int

	// SSIMU2 is the SSIMULACRA2 series sampled at stride Skip.
	SSIMU2 []float64

	// Skip is the SSIMULACRA2 sampling stride.
	Skip int

	// XPSNR is the mean-normalized XPSNR series at stride 1.
	XPSNR []float64
}

// Combine produces the policy's combined score series and its sampling
// stride. Single-metric policies pass their series through; the two-metric
// policies emit one combined score per SSIMULACRA2 sample.
func (p Policy) Combine(in Inputs) ([]float64, int, error) {
	switch p {
	case PolicySSIMU2:
		return in.SSIMU2, in.Skip, nil
	case PolicyXPSNR:
		return in.XPSNR, 1, nil
	case PolicyMultiply:
		return p.windowed(in, func(s, avg float64) float64 {
			return s * avg
		})
	case PolicyMinimum:
		global, err := stats.Compute(in.SSIMU2)
		if err != nil {
			return nil, 0, err
		}
		return p.windowed(in, func(s, avg float64) float64 {
			return min(s, avg*global.Mean)
		})
	default:
		return nil, 0, errors.NewConfigError(fmt.Sprintf("unknown zone policy %d", p))
	}
}

// windowed walks the SSIMULACRA2 series scene by scene with a running
// cursor and merges each sample with the average of the XPSNR frames it
// stands for: absolute frames [start + skip*f, start + skip*f + skip).
func (p Policy) windowed(in Inputs, merge func(ssimu2, xpsnrAvg float64) float64) ([]float64, int, error) {
	if in.Skip < 1 {
		return nil, 0, errors.NewStatisticsError(fmt.Sprintf("stride must be at least 1, got %d", in.Skip))
	}

	var combined []float64
	cursor := 0
	for i := 0; i < len(in.Boundaries)-1; i++ {
		start := in.Boundaries[i]
		n := (in.Boundaries[i+1] - start) / in.Skip
		for f := 0; f < n; f++ {
			if cursor >= len(in.SSIMU2) {
				return nil, 0, errors.NewStatisticsError(fmt.Sprintf(
					"ssimu2 series exhausted at scene %d sample %d", i, f))
			}
			base := start + in.Skip*f
			if base+in.Skip > len(in.XPSNR) {
				return nil, 0, errors.NewStatisticsError(fmt.Sprintf(
					"xpsnr series too short for scene %d: need frame %d, have %d",
					i, base+in.Skip, len(in.XPSNR)))
			}
			avg := 0.0
			for k := 0; k < in.Skip; k++ {
				avg += in.XPSNR[base+k]
			}
			avg /= float64(in.Skip)

			combined = append(combined, merge(in.SSIMU2[cursor], avg))
			cursor++
		}
	}
	return combined, in.Skip, nil
}
