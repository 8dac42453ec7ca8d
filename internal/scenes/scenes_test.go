package scenes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arkaen/autoboost/internal/errors"
)

func writeSceneFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenes.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeSceneFile(t, `{"scenes":[{"end_frame":120},{"end_frame":300},{"end_frame":454}]}`)

	boundaries, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []int{0, 120, 300, 454}
	if len(boundaries) != len(want) {
		t.Fatalf("Load() returned %d boundaries, want %d", len(boundaries), len(want))
	}
	for i, b := range boundaries {
		if b != want[i] {
			t.Errorf("boundaries[%d] = %d, want %d", i, b, want[i])
		}
	}
	if Count(boundaries) != 3 {
		t.Errorf("Count() = %d, want 3", Count(boundaries))
	}
}

func TestLoadIgnoresExtraFields(t *testing.T) {
	// av1an writes zone overrides and split metadata alongside end_frame.
	path := writeSceneFile(t, `{"frames": 454, "scenes":[{"start_frame":0,"end_frame":120,"zone_overrides":null}]}`)

	boundaries, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(boundaries) != 2 || boundaries[1] != 120 {
		t.Errorf("boundaries = %v, want [0 120]", boundaries)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		content string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.json") },
		},
		{
			name: "malformed json",
			path: func(t *testing.T) string { return writeSceneFile(t, `{"scenes": [`) },
		},
		{
			name: "empty scene list",
			path: func(t *testing.T) string { return writeSceneFile(t, `{"scenes": []}`) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			if err == nil {
				t.Fatal("Load() error = nil, want parse error")
			}
			if !errors.IsKind(err, errors.KindParse) {
				t.Errorf("error kind = %v, want KindParse", err)
			}
		})
	}
}

func TestCountDegenerate(t *testing.T) {
	if Count(nil) != 0 {
		t.Error("Count(nil) != 0")
	}
	if Count([]int{0}) != 0 {
		t.Error("Count(single boundary) != 0")
	}
}
