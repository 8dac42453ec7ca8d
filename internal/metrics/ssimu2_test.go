package metrics

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/arkaen/autoboost/internal/errors"
)

func writeTempLog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestParseSSIMU2Log(t *testing.T) {
	path := writeTempLog(t, "ssimu2.log",
		"skip: 3\n1: 78.25\n2: 81.5\n3: -1\n4: 90\n")

	scores, skip, err := ParseSSIMU2Log(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skip != 3 {
		t.Errorf("skip = %d, want 3", skip)
	}
	want := []float64{78.25, 81.5, -1, 90}
	if len(scores) != len(want) {
		t.Fatalf("got %d scores, want %d", len(scores), len(want))
	}
	for i := range want {
		if scores[i] != want[i] {
			t.Errorf("scores[%d] = %v, want %v", i, scores[i], want[i])
		}
	}
}

func TestParseSSIMU2LogNormalizesZeroSkip(t *testing.T) {
	path := writeTempLog(t, "ssimu2.log", "skip: 0\n1: 50\n")

	_, skip, err := ParseSSIMU2Log(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skip != 1 {
		t.Errorf("skip = %d, want 1", skip)
	}
}

func TestParseSSIMU2LogDiagnostics(t *testing.T) {
	path := writeTempLog(t, "ssimu2.log",
		"skip: 1\n1: 70\nsome stray output\n2: 75\n")

	var diag []string
	scores, _, err := ParseSSIMU2Log(path, func(line string) { diag = append(diag, line) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 2 {
		t.Errorf("got %d scores, want 2", len(scores))
	}
	if len(diag) != 1 || diag[0] != "some stray output" {
		t.Errorf("diag = %v, want the stray line", diag)
	}
}

func TestParseSSIMU2LogErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing skip header", "1: 70\n2: 75\n"},
		{"empty file", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempLog(t, "ssimu2.log", tt.content)
			_, _, err := ParseSSIMU2Log(path, nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.IsKind(err, errors.KindParse) {
				t.Errorf("error kind = %v, want parse error", err)
			}
		})
	}
}

func TestParseSSIMU2LogMissingFile(t *testing.T) {
	_, _, err := ParseSSIMU2Log(filepath.Join(t.TempDir(), "absent.log"), nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestParseTurboCSV(t *testing.T) {
	// turbo-metrics prints scores live, then re-dumps the full list after a
	// second header line; the duplicate block is dropped.
	output := "ssimulacra2\n78.5\n81.25\n90.0\nssimulacra2\n78.5\n81.25\n90.0\n"
	scores := parseTurboCSV(output)
	want := []float64{78.5, 81.25, 90.0}
	if len(scores) != len(want) {
		t.Fatalf("got %d scores, want %d", len(scores), len(want))
	}
	for i := range want {
		if scores[i] != want[i] {
			t.Errorf("scores[%d] = %v, want %v", i, scores[i], want[i])
		}
	}
}

func TestParseTurboCSVNoHeader(t *testing.T) {
	scores := parseTurboCSV("78.5\n81.25\n")
	if len(scores) != 2 {
		t.Errorf("got %d scores, want 2", len(scores))
	}
}

func TestWriteAndParseSSIMU2LogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ssimu2.log")
	in := []float64{70.5, 82.125, -1, 95}
	if err := writeSSIMU2Log(path, 3, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, skip, err := ParseSSIMU2Log(path, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if skip != 3 {
		t.Errorf("skip = %d, want 3", skip)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d scores, want %d", len(out), len(in))
	}
	for i := range in {
		if math.Abs(out[i]-in[i]) > 1e-9 {
			t.Errorf("scores[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestParseMetadataScores(t *testing.T) {
	path := writeTempLog(t, "meta.txt",
		"frame:0    pts:0       pts_time:0\n"+
			"lavfi.ssimulacra2.score=78.511072\n"+
			"frame:1    pts:1       pts_time:0.04\n"+
			"lavfi.ssimulacra2.score=81.204455\n")

	scores, err := parseMetadataScores(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{78.511072, 81.204455}
	if len(scores) != len(want) {
		t.Fatalf("got %d scores, want %d", len(scores), len(want))
	}
	for i := range want {
		if math.Abs(scores[i]-want[i]) > 1e-9 {
			t.Errorf("scores[%d] = %v, want %v", i, scores[i], want[i])
		}
	}
}
