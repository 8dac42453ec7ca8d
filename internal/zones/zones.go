// Package zones maps per-scene quality statistics to bounded CRF
// adjustments and writes them in av1an zone format.
package zones

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/arkaen/autoboost/internal/errors"
)

// Encoder identifier written into every zone line.
const encoderID = "svt-av1"

// Boost factors: how strongly a below-average scene pulls the CRF down.
const (
	boostFactor           = 20.0
	aggressiveBoostFactor = 40.0
)

// Zone is one per-scene CRF override for the final encode pass.
type Zone struct {
	Start int
	End   int
	CRF   float64
}

// Adjustment converts a scene-to-global quality ratio into a CRF reduction
// quantized to quarter units. A ratio below 1 means the scene scored worse
// than average and gets a boost; ratios at or above 1 yield values <= 0.
func Adjustment(ratio float64, aggressive bool) float64 {
	k := boostFactor
	if aggressive {
		k = aggressiveBoostFactor
	}
	return math.Ceil((1.0-ratio)*k*4) / 4
}

// Build derives one zone per scene from the per-scene 5th percentiles and
// the global mean. Each zone's CRF is the base quality minus the scene's
// adjustment, clamped to [base-deviation, base+deviation].
func Build(boundaries []int, sceneP5 []float64, globalMean, base, deviation float64, aggressive bool) ([]Zone, error) {
	if len(boundaries) < 2 {
		return nil, errors.NewStatisticsError("need at least two scene boundaries")
	}
	if len(sceneP5) != len(boundaries)-1 {
		return nil, errors.NewStatisticsError(fmt.Sprintf(
			"have %d scene percentiles for %d scenes", len(sceneP5), len(boundaries)-1))
	}
	if globalMean == 0 {
		return nil, errors.NewStatisticsError("global mean is zero")
	}

	zones := make([]Zone, 0, len(sceneP5))
	for i := range sceneP5 {
		crf := base - Adjustment(sceneP5[i]/globalMean, aggressive)
		if crf < base-deviation {
			crf = base - deviation
		}
		if crf > base+deviation {
			crf = base + deviation
		}
		zones = append(zones, Zone{
			Start: boundaries[i],
			End:   boundaries[i+1],
			CRF:   crf,
		})
	}
	return zones, nil
}

// Write serializes zones to path in av1an zone format, one line per scene:
// "<start> <end> svt-av1 --crf <crf>" with two-decimal formatting.
func Write(path string, zones []Zone) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIOError(fmt.Sprintf("cannot create zone file %s", path), err)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	for _, z := range zones {
		if _, err := fmt.Fprintf(w, "%d %d %s --crf %.2f\n", z.Start, z.End, encoderID, z.CRF); err != nil {
			return errors.NewIOError(fmt.Sprintf("cannot write zone file %s", path), err)
		}
	}
	if err := w.Flush(); err != nil {
		return errors.NewIOError(fmt.Sprintf("cannot write zone file %s", path), err)
	}
	return nil
}
