package metrics

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/arkaen/autoboost/internal/errors"
)

const ffmpegBinary = "ffmpeg"

// IsFFmpegAvailable checks if ffmpeg is available in PATH.
func IsFFmpegAvailable() bool {
	_, err := exec.LookPath(ffmpegBinary)
	return err == nil
}

// runFFmpeg executes ffmpeg with the given arguments, parsing "frame=" from
// its stderr stream for progress reporting. The full stderr is retained for
// error reporting on failure.
func runFFmpeg(ctx context.Context, args []string, progress func(frame int64)) error {
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.NewCommandStartError(ffmpegBinary, err)
	}
	if err := cmd.Start(); err != nil {
		return errors.NewCommandStartError(ffmpegBinary, err)
	}

	var stderrBuilder strings.Builder
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		parseFrameProgress(stderr, &stderrBuilder, progress)
	}()
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return errors.NewCancelledError()
		}
		return errors.WrapExecError(ffmpegBinary, err, tailLines(stderrBuilder.String(), 5))
	}
	return nil
}

// parseFrameProgress reads ffmpeg stderr byte by byte. Progress lines are
// terminated by \r, everything else by \n.
func parseFrameProgress(stderr io.Reader, stderrBuilder *strings.Builder, progress func(frame int64)) {
	reader := bufio.NewReader(stderr)
	var lineBuf strings.Builder

	for {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}
		stderrBuilder.WriteByte(b)

		if b == '\r' || b == '\n' {
			line := lineBuf.String()
			lineBuf.Reset()
			if progress != nil {
				if frame, ok := parseFrameField(line); ok {
					progress(frame)
				}
			}
		} else {
			lineBuf.WriteByte(b)
		}
	}
}

// parseFrameField extracts the frame counter from an ffmpeg progress line.
func parseFrameField(line string) (int64, bool) {
	idx := strings.Index(line, "frame=")
	if idx < 0 {
		return 0, false
	}
	remaining := strings.TrimLeft(line[idx+6:], " ")
	end := strings.IndexAny(remaining, " \t")
	if end < 0 {
		end = len(remaining)
	}
	frame, err := strconv.ParseInt(remaining[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return frame, true
}

// tailLines returns the last n non-empty lines of s, for compact error context.
func tailLines(s string, n int) string {
	lines := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	var kept []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, "\n")
}
