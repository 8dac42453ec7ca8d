// Package av1an wraps the av1an chunked encoder for the fast pass.
package av1an

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	"github.com/arkaen/autoboost/internal/errors"
)

const binary = "av1an"

// IsAvailable checks if the av1an binary is in PATH.
func IsAvailable() bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

// EnsureAvailable returns a dependency error when av1an is not installed.
func EnsureAvailable() error {
	if !IsAvailable() {
		return errors.NewDependencyError(binary)
	}
	return nil
}

// FastPass describes one av1an fast-pass encode.
type FastPass struct {
	Input   string
	Output  string
	TempDir string
	Quality float64
	Preset  uint8
	Workers int
}

// Args builds the av1an argument list. The temp directory is kept so the
// scene file survives for the later stages, and scene detection is
// downscaled to 720p for speed. Color metadata is forced to BT.709 since
// the fast pass exists only to be scored, not watched.
func (f FastPass) Args() []string {
	video := fmt.Sprintf(
		"--preset %d --crf %s --lp 2 --scm 0 --keyint 0 --fast-decode 1 "+
			"--color-primaries 1 --transfer-characteristics 1 --matrix-coefficients 1",
		f.Preset, formatQuality(f.Quality))

	return []string{
		"-i", f.Input,
		"--temp", f.TempDir,
		"-y",
		"--verbose",
		"--keep",
		"-m", "lsmash",
		"-c", "mkvmerge",
		"--min-scene-len", "24",
		"--sc-downscale-height", "720",
		"--set-thread-affinity", "2",
		"-e", "svt-av1",
		"--force",
		"-v", video,
		"-w", strconv.Itoa(f.Workers),
		"-o", f.Output,
	}
}

// Run executes the fast pass. av1an draws its own progress output, so both
// streams pass through to the given writer unmodified.
func Run(ctx context.Context, f FastPass, output io.Writer) error {
	cmd := exec.CommandContext(ctx, binary, f.Args()...)
	cmd.Stdout = output
	cmd.Stderr = output

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return errors.NewCancelledError()
		}
		return errors.WrapExecError(binary, err, "")
	}
	return nil
}

func formatQuality(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
