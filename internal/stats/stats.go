// Package stats partitions flat score sequences into per-scene windows and
// computes robust statistics over them.
package stats

import (
	"fmt"
	"sort"

	"github.com/arkaen/autoboost/internal/errors"
)

// Summary holds the robust statistics for one score window.
type Summary struct {
	Mean float64
	P5   float64
	P95  float64
}

// Windows partitions a flat score sequence into per-scene slices. Window i
// holds (boundaries[i+1]-boundaries[i])/stride entries, consumed strictly in
// order from the sequence. Scores past the last window are ignored; a
// sequence too short for the boundaries is a statistics error.
func Windows(boundaries []int, stride int, scores []float64) ([][]float64, error) {
	if stride < 1 {
		return nil, errors.NewStatisticsError(fmt.Sprintf("stride must be at least 1, got %d", stride))
	}
	if len(boundaries) < 2 {
		return nil, errors.NewStatisticsError("need at least two scene boundaries")
	}

	windows := make([][]float64, 0, len(boundaries)-1)
	cursor := 0
	for i := 0; i < len(boundaries)-1; i++ {
		n := (boundaries[i+1] - boundaries[i]) / stride
		if n < 0 {
			return nil, errors.NewStatisticsError(fmt.Sprintf("scene %d has negative length", i))
		}
		if cursor+n > len(scores) {
			return nil, errors.NewStatisticsError(fmt.Sprintf(
				"score sequence exhausted at scene %d: need %d entries, have %d", i, cursor+n, len(scores)))
		}
		windows = append(windows, scores[cursor:cursor+n])
		cursor += n
	}
	return windows, nil
}

// Compute returns the arithmetic mean and nearest-rank 5th/95th percentiles
// over the valid (non-negative) subset of scores. Negative scores are the
// sentinel for unscored frames and are excluded entirely.
func Compute(scores []float64) (Summary, error) {
	filtered := make([]float64, 0, len(scores))
	sum := 0.0
	for _, s := range scores {
		if s < 0 {
			continue
		}
		filtered = append(filtered, s)
		sum += s
	}
	if len(filtered) == 0 {
		return Summary{}, errors.NewStatisticsError("no valid samples in score window")
	}

	sorted := make([]float64, len(filtered))
	copy(sorted, filtered)
	sort.Float64s(sorted)

	n := len(sorted)
	return Summary{
		Mean: sum / float64(n),
		P5:   sorted[n/20],
		P95:  sorted[n*19/20],
	}, nil
}

// PerScene computes one Summary per window plus the global Summary over the
// concatenation of all windows.
func PerScene(windows [][]float64) ([]Summary, Summary, error) {
	summaries := make([]Summary, 0, len(windows))
	var all []float64
	for i, w := range windows {
		s, err := Compute(w)
		if err != nil {
			return nil, Summary{}, errors.NewStatisticsError(fmt.Sprintf("scene %d: %v", i, err))
		}
		summaries = append(summaries, s)
		all = append(all, w...)
	}
	global, err := Compute(all)
	if err != nil {
		return nil, Summary{}, err
	}
	return summaries, global, nil
}
