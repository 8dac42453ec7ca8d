package combine

import (
	"math"
	"testing"

	"github.com/arkaen/autoboost/internal/errors"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestParsePolicy(t *testing.T) {
	for n := 1; n <= 4; n++ {
		if _, err := ParsePolicy(n); err != nil {
			t.Errorf("ParsePolicy(%d) error = %v", n, err)
		}
	}
	for _, n := range []int{0, 5, -1} {
		if _, err := ParsePolicy(n); !errors.IsKind(err, errors.KindConfig) {
			t.Errorf("ParsePolicy(%d) error = %v, want KindConfig", n, err)
		}
	}
}

func TestPolicyNames(t *testing.T) {
	tests := []struct {
		policy Policy
		want   string
	}{
		{PolicySSIMU2, "ssimu2"},
		{PolicyXPSNR, "xpsnr"},
		{PolicyMultiply, "multiplied"},
		{PolicyMinimum, "minimum"},
	}
	for _, tt := range tests {
		if got := tt.policy.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}

func TestPolicyNeeds(t *testing.T) {
	if PolicySSIMU2.NeedsXPSNR() {
		t.Error("PolicySSIMU2 should not need XPSNR")
	}
	if PolicyXPSNR.NeedsSSIMU2() {
		t.Error("PolicyXPSNR should not need SSIMU2")
	}
	if !PolicyMultiply.NeedsSSIMU2() || !PolicyMultiply.NeedsXPSNR() {
		t.Error("PolicyMultiply needs both series")
	}
	if !PolicyMinimum.NeedsSSIMU2() || !PolicyMinimum.NeedsXPSNR() {
		t.Error("PolicyMinimum needs both series")
	}
}

func TestPassthroughPolicies(t *testing.T) {
	in := Inputs{
		Boundaries: []int{0, 6},
		SSIMU2:     []float64{0.5, 0.6},
		Skip:       3,
		XPSNR:      []float64{1, 1, 1, 1, 1, 1},
	}

	series, stride, err := PolicySSIMU2.Combine(in)
	if err != nil {
		t.Fatalf("PolicySSIMU2.Combine() error = %v", err)
	}
	if stride != 3 || len(series) != 2 || series[0] != 0.5 {
		t.Errorf("PolicySSIMU2 = (%v, %d), want passthrough at stride 3", series, stride)
	}

	series, stride, err = PolicyXPSNR.Combine(in)
	if err != nil {
		t.Fatalf("PolicyXPSNR.Combine() error = %v", err)
	}
	if stride != 1 || len(series) != 6 {
		t.Errorf("PolicyXPSNR = (%v, %d), want passthrough at stride 1", series, stride)
	}
}

func TestMultiplyPolicy(t *testing.T) {
	// One scene of 3 frames at stride 3: a 0.8 SSIMU2 sample combined with
	// XPSNR values [1.0, 1.1, 0.9] (mean 1.0) yields 0.8.
	in := Inputs{
		Boundaries: []int{0, 3},
		SSIMU2:     []float64{0.8},
		Skip:       3,
		XPSNR:      []float64{1.0, 1.1, 0.9},
	}

	series, stride, err := PolicyMultiply.Combine(in)
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	if stride != 3 {
		t.Errorf("stride = %d, want 3", stride)
	}
	if len(series) != 1 || !almostEqual(series[0], 0.8) {
		t.Errorf("series = %v, want [0.8]", series)
	}
}

func TestMultiplyWindowsPerScene(t *testing.T) {
	// Two scenes, stride 2. The XPSNR window for each SSIMU2 sample starts at
	// the scene's absolute frame offset, not at zero.
	in := Inputs{
		Boundaries: []int{0, 2, 6},
		SSIMU2:     []float64{1.0, 2.0, 3.0},
		Skip:       2,
		XPSNR:      []float64{1, 3, 5, 7, 2, 4},
	}

	series, _, err := PolicyMultiply.Combine(in)
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	want := []float64{1 * 2.0, 2 * 6.0, 3 * 3.0}
	if len(series) != 3 {
		t.Fatalf("series length = %d, want 3", len(series))
	}
	for i := range want {
		if !almostEqual(series[i], want[i]) {
			t.Errorf("series[%d] = %v, want %v", i, series[i], want[i])
		}
	}
}

func TestMinimumPolicy(t *testing.T) {
	// Global SSIMU2 mean is 0.5. XPSNR averages of 1.2 rescale to 0.6, above
	// each SSIMU2 sample, so the SSIMU2 side wins; an XPSNR dip below wins
	// instead.
	in := Inputs{
		Boundaries: []int{0, 2},
		SSIMU2:     []float64{0.4, 0.6},
		Skip:       1,
		XPSNR:      []float64{1.2, 0.8},
	}

	series, _, err := PolicyMinimum.Combine(in)
	if err != nil {
		t.Fatalf("Combine() error = %v", err)
	}
	want := []float64{0.4, 0.4} // min(0.4, 1.2*0.5)=0.4; min(0.6, 0.8*0.5)=0.4
	for i := range want {
		if !almostEqual(series[i], want[i]) {
			t.Errorf("series[%d] = %v, want %v", i, series[i], want[i])
		}
	}
}

func TestCombineShortXPSNR(t *testing.T) {
	in := Inputs{
		Boundaries: []int{0, 6},
		SSIMU2:     []float64{0.8, 0.9},
		Skip:       3,
		XPSNR:      []float64{1.0, 1.0}, // needs 6 frames
	}

	_, _, err := PolicyMultiply.Combine(in)
	if err == nil {
		t.Fatal("Combine() error = nil, want statistics error")
	}
	if !errors.IsKind(err, errors.KindStatistics) {
		t.Errorf("error = %v, want KindStatistics", err)
	}
}

func TestCombineShortSSIMU2(t *testing.T) {
	in := Inputs{
		Boundaries: []int{0, 6},
		SSIMU2:     []float64{0.8}, // needs 2 samples at stride 3
		Skip:       3,
		XPSNR:      []float64{1, 1, 1, 1, 1, 1},
	}

	_, _, err := PolicyMultiply.Combine(in)
	if err == nil {
		t.Fatal("Combine() error = nil, want statistics error")
	}
}
