package metrics

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/arkaen/autoboost/internal/errors"
)

const turboMetricsBinary = "turbo-metrics"

var (
	skipHeaderRegex  = regexp.MustCompile(`skip: ([0-9]+)`)
	ssimu2ScoreRegex = regexp.MustCompile(`([0-9]+): (-?[0-9]+(?:\.[0-9]+)?)`)
	metadataScoreKey = "lavfi.ssimulacra2.score="
)

// IsTurboMetricsAvailable checks if the turbo-metrics binary is in PATH.
func IsTurboMetricsAvailable() bool {
	_, err := exec.LookPath(turboMetricsBinary)
	return err == nil
}

// RunTurboMetrics scores the source/encoded pair with turbo-metrics and
// writes the scores to logPath in skip-headed format. On tool failure the
// combined output is returned alongside the error so the caller can echo it
// before falling back to the alternate backend.
func RunTurboMetrics(ctx context.Context, source, encoded, logPath string, every int) (string, error) {
	args := []string{"-m", "ssimulacra2", "--output", "csv"}
	if every > 1 {
		args = append(args, "--every", strconv.Itoa(every))
	}
	args = append(args, source, encoded)

	cmd := exec.CommandContext(ctx, turboMetricsBinary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", errors.NewCancelledError()
		}
		output := stdout.String() + stderr.String()
		return output, errors.WrapExecError(turboMetricsBinary, err, tailLines(stderr.String(), 5))
	}

	scores := parseTurboCSV(stdout.String())
	if err := writeSSIMU2Log(logPath, every, scores); err != nil {
		return "", err
	}
	return "", nil
}

// parseTurboCSV extracts scores from turbo-metrics CSV output. The tool
// prints scores live and then dumps the whole list again after a second
// "ssimulacra2" header line; everything from that second header on is a
// duplicate and is dropped.
func parseTurboCSV(output string) []float64 {
	var scores []float64
	seenHeader := false
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "ssimulacra2" {
			if seenHeader {
				break
			}
			seenHeader = true
			continue
		}
		if score, err := strconv.ParseFloat(line, 64); err == nil {
			scores = append(scores, score)
		}
	}
	return scores
}

// RunFFmpegSSIMU2 is the fallback backend: ffmpeg's ssimulacra2 filter with
// a select filter for frame sampling. Scores land in logPath in the same
// skip-headed format the turbo-metrics path writes.
func RunFFmpegSSIMU2(ctx context.Context, source, encoded, logPath string, skip int, progress func(frame int64)) error {
	if skip < 1 {
		skip = 1
	}

	metaPath := filepath.Join(filepath.Dir(logPath), ".ssimu2_meta.txt")
	defer func() { _ = os.Remove(metaPath) }()

	var filter string
	if skip > 1 {
		filter = fmt.Sprintf(
			`[0:v]select='not(mod(n,%d))'[a];[1:v]select='not(mod(n,%d))'[b];[a][b]ssimulacra2,metadata=print:key=%s:file=%s`,
			skip, skip, strings.TrimSuffix(metadataScoreKey, "="), metaPath)
	} else {
		filter = fmt.Sprintf(`[0:v][1:v]ssimulacra2,metadata=print:key=%s:file=%s`,
			strings.TrimSuffix(metadataScoreKey, "="), metaPath)
	}

	args := []string{
		"-i", source,
		"-i", encoded,
		"-lavfi", filter,
		"-f", "null", os.DevNull,
	}
	if err := runFFmpeg(ctx, args, progress); err != nil {
		return err
	}

	scores, err := parseMetadataScores(metaPath)
	if err != nil {
		return err
	}
	return writeSSIMU2Log(logPath, skip, scores)
}

// parseMetadataScores reads lavfi metadata print output and extracts the
// ssimulacra2 score values in frame order.
func parseMetadataScores(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewParseError(fmt.Sprintf("cannot read metric output %s", path), err)
	}
	defer func() { _ = f.Close() }()

	var scores []float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, metadataScoreKey) {
			continue
		}
		if score, err := strconv.ParseFloat(line[len(metadataScoreKey):], 64); err == nil {
			scores = append(scores, score)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewParseError(fmt.Sprintf("cannot read metric output %s", path), err)
	}
	return scores, nil
}

// writeSSIMU2Log writes a skip-headed SSIMULACRA2 log: the declared stride,
// then one "<frame>: <score>" line per sampled frame.
func writeSSIMU2Log(path string, skip int, scores []float64) error {
	if skip < 1 {
		skip = 1
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.NewIOError(fmt.Sprintf("cannot create SSIMU2 log %s", path), err)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "skip: %d\n", skip); err != nil {
		return errors.NewIOError(fmt.Sprintf("cannot write SSIMU2 log %s", path), err)
	}
	for i, score := range scores {
		if _, err := fmt.Fprintf(w, "%d: %v\n", i+1, score); err != nil {
			return errors.NewIOError(fmt.Sprintf("cannot write SSIMU2 log %s", path), err)
		}
	}
	if err := w.Flush(); err != nil {
		return errors.NewIOError(fmt.Sprintf("cannot write SSIMU2 log %s", path), err)
	}
	return nil
}

// ParseSSIMU2Log parses a skip-headed SSIMULACRA2 log. The first line must
// declare the stride; score lines follow. Non-matching lines go to diag and
// are skipped. A stride of 0 (turbo-metrics scoring every frame) normalizes
// to 1 so downstream windowing always sees a stride of at least 1.
func ParseSSIMU2Log(path string, diag func(line string)) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.NewParseError(fmt.Sprintf("cannot read SSIMU2 log %s", path), err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, 0, errors.NewParseError(fmt.Sprintf("SSIMU2 log %s is empty", path), scanner.Err())
	}
	header := skipHeaderRegex.FindStringSubmatch(scanner.Text())
	if header == nil {
		return nil, 0, errors.NewParseError(fmt.Sprintf("skip value not found in SSIMU2 log %s", path), nil)
	}
	skip, _ := strconv.Atoi(header[1])
	if skip < 1 {
		skip = 1
	}

	var scores []float64
	for scanner.Scan() {
		line := scanner.Text()
		m := ssimu2ScoreRegex.FindStringSubmatch(line)
		if m == nil {
			if diag != nil && strings.TrimSpace(line) != "" {
				diag(line)
			}
			continue
		}
		score, _ := strconv.ParseFloat(m[2], 64)
		scores = append(scores, score)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, errors.NewParseError(fmt.Sprintf("cannot read SSIMU2 log %s", path), err)
	}
	return scores, skip, nil
}
