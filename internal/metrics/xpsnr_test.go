package metrics

import (
	"math"
	"testing"

	"github.com/arkaen/autoboost/internal/errors"
)

func TestParseXPSNRLog(t *testing.T) {
	path := writeTempLog(t, "xpsnr.log",
		"n:     1  XPSNR Y: 40.0000  XPSNR U: 46.0000  XPSNR : 46.0000\n"+
			"n:     2  XPSNR Y: 38.0000  XPSNR U: 44.0000  XPSNR : 44.0000\n")

	scores, err := ParseXPSNRLog(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("got %d scores, want 2", len(scores))
	}

	// Weighted values are (4*40+46+46)/6 = 42 and (4*38+44+44)/6 = 40,
	// mean 41, so the normalized series is 42/41 and 40/41.
	want := []float64{42.0 / 41.0, 40.0 / 41.0}
	for i := range want {
		if math.Abs(scores[i]-want[i]) > 1e-9 {
			t.Errorf("scores[%d] = %v, want %v", i, scores[i], want[i])
		}
	}
}

func TestParseXPSNRLogUniformMeansOne(t *testing.T) {
	path := writeTempLog(t, "xpsnr.log",
		"n:     1  XPSNR Y: 40.0000  XPSNR U: 40.0000  XPSNR : 40.0000\n"+
			"n:     2  XPSNR Y: 40.0000  XPSNR U: 40.0000  XPSNR : 40.0000\n")

	scores, err := ParseXPSNRLog(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, s := range scores {
		if math.Abs(s-1.0) > 1e-9 {
			t.Errorf("scores[%d] = %v, want 1.0", i, s)
		}
	}
}

func TestParseXPSNRLogDiagnostics(t *testing.T) {
	path := writeTempLog(t, "xpsnr.log",
		"XPSNR average, 1 frames\n"+
			"n:     1  XPSNR Y: 40.0000  XPSNR U: 40.0000  XPSNR : 40.0000\n")

	var diag []string
	_, err := ParseXPSNRLog(path, func(line string) { diag = append(diag, line) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diag) != 1 {
		t.Errorf("diag = %v, want one non-matching line", diag)
	}
}

func TestParseXPSNRLogNoScores(t *testing.T) {
	path := writeTempLog(t, "xpsnr.log", "nothing useful here\n")

	_, err := ParseXPSNRLog(path, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.IsKind(err, errors.KindParse) {
		t.Errorf("error kind = %v, want parse error", err)
	}
}

func TestParseFrameField(t *testing.T) {
	tests := []struct {
		line  string
		frame int64
		ok    bool
	}{
		{"frame=  240 fps= 30 q=-0.0 size=N/A", 240, true},
		{"frame=1 fps=0.0", 1, true},
		{"size=N/A time=00:00:08.00", 0, false},
		{"frame= fps=30", 0, false},
	}
	for _, tt := range tests {
		frame, ok := parseFrameField(tt.line)
		if ok != tt.ok || frame != tt.frame {
			t.Errorf("parseFrameField(%q) = (%d, %v), want (%d, %v)",
				tt.line, frame, ok, tt.frame, tt.ok)
		}
	}
}
