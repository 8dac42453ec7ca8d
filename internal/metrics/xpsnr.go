package metrics

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/arkaen/autoboost/internal/errors"
)

// xpsnrLineRegex matches the per-frame stats lines ffmpeg's xpsnr filter
// writes: three channel scores per frame.
var xpsnrLineRegex = regexp.MustCompile(`XPSNR Y: ([0-9]+\.[0-9]+)\s+XPSNR U: ([0-9]+\.[0-9]+)\s+XPSNR : ([0-9]+\.[0-9]+)`)

// RunXPSNR invokes ffmpeg's xpsnr filter over the source/encoded pair,
// writing per-frame channel scores to logPath. The progress callback
// receives the current frame counter.
func RunXPSNR(ctx context.Context, source, encoded, logPath string, progress func(frame int64)) error {
	statsFile := logPath
	if runtime.GOOS == "windows" {
		// ffmpeg filter syntax needs drive-letter colons escaped.
		statsFile = strings.ReplaceAll(statsFile, ":", `\\:`)
	}

	args := []string{
		"-i", source,
		"-i", encoded,
		"-lavfi", fmt.Sprintf("xpsnr=stats_file=%s", statsFile),
		"-f", "null", os.DevNull,
	}
	return runFFmpeg(ctx, args, progress)
}

// ParseXPSNRLog parses an XPSNR stats log into a mean-normalized score
// series at stride 1. Each matching line contributes the luma-weighted
// combination (4*Y + U + V) / 6; non-matching lines go to diag and are
// skipped. A log with no matching lines is a parse error, since the
// normalization mean would be undefined.
func ParseXPSNRLog(path string, diag func(line string)) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewParseError(fmt.Sprintf("cannot read XPSNR log %s", path), err)
	}
	defer func() { _ = f.Close() }()

	var weighted []float64
	sum := 0.0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		m := xpsnrLineRegex.FindStringSubmatch(line)
		if m == nil {
			if diag != nil && strings.TrimSpace(line) != "" {
				diag(line)
			}
			continue
		}
		y, _ := strconv.ParseFloat(m[1], 64)
		u, _ := strconv.ParseFloat(m[2], 64)
		v, _ := strconv.ParseFloat(m[3], 64)
		w := (4*y + u + v) / 6
		weighted = append(weighted, w)
		sum += w
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewParseError(fmt.Sprintf("cannot read XPSNR log %s", path), err)
	}
	if len(weighted) == 0 {
		return nil, errors.NewParseError(fmt.Sprintf("no XPSNR scores found in %s", path), nil)
	}

	// XPSNR is an unbounded decibel-like value; dividing by the mean puts it
	// on a relative scale comparable with SSIMULACRA2.
	mean := sum / float64(len(weighted))
	for i := range weighted {
		weighted[i] /= mean
	}
	return weighted, nil
}
