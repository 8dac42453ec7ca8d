package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCoreErrorMessage(t *testing.T) {
	err := NewParseError("scene file malformed", nil)
	want := "Parse error: scene file malformed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := NewParseError("scene file malformed", errors.New("unexpected EOF"))
	want = "Parse error: scene file malformed: unexpected EOF"
	if wrapped.Error() != want {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), want)
	}
}

func TestIsKind(t *testing.T) {
	err := NewStatisticsError("scene 3 has no valid samples")
	if !IsKind(err, KindStatistics) {
		t.Error("IsKind(KindStatistics) = false, want true")
	}
	if IsKind(err, KindParse) {
		t.Error("IsKind(KindParse) = true, want false")
	}

	// Wrapped errors should still match on kind.
	outer := fmt.Errorf("computing zones: %w", err)
	if !IsKind(outer, KindStatistics) {
		t.Error("IsKind on wrapped error = false, want true")
	}
}

func TestCommandErrorFormatting(t *testing.T) {
	err := NewCommandFailedError("av1an", 1, "encoder panicked")
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatal("expected CommandError in chain")
	}
	if cmdErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", cmdErr.ExitCode)
	}
	want := "command av1an failed with exit code 1: encoder panicked"
	if cmdErr.Error() != want {
		t.Errorf("Error() = %q, want %q", cmdErr.Error(), want)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"config error", NewConfigError("invalid stage"), ExitConfig},
		{"command failure", NewCommandFailedError("ffmpeg", 1, ""), ExitCommand},
		{"missing dependency", NewDependencyError("av1an"), ExitCommand},
		{"parse error", NewParseError("no header", nil), ExitFatal},
		{"statistics error", NewStatisticsError("empty window"), ExitFatal},
		{"plain error", errors.New("boom"), ExitFatal},
		{"wrapped config error", fmt.Errorf("startup: %w", NewConfigError("bad policy")), ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
