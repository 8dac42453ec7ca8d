package reporter

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu        sync.Mutex
	progress  *progressbar.ProgressBar
	lastStage string
	verbose   bool
	cyan      *color.Color
	green     *color.Color
	yellow    *color.Color
	red       *color.Color
	magenta   *color.Color
	bold      *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter(verbose bool) *TerminalReporter {
	return &TerminalReporter{
		verbose: verbose,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
	}
}

// printLabel prints a bold label with fixed width padding followed by a value.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) RunStarted(summary RunSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("RUN")
	const w = 11
	r.printLabel(w, "Input:", summary.Input)
	r.printLabel(w, "Fast pass:", summary.FastPass)
	r.printLabel(w, "Stage:", summary.Stage)
	r.printLabel(w, "Quality:", fmt.Sprintf("CRF %.0f (±%.0f)", summary.Quality, summary.Deviation))
	r.printLabel(w, "Preset:", fmt.Sprintf("%d", summary.Preset))
	r.printLabel(w, "Workers:", fmt.Sprintf("%d", summary.Workers))
	r.printLabel(w, "Backend:", summary.Backend)
	policy := summary.Policy
	if summary.Aggressive {
		policy += " (aggressive)"
	}
	r.printLabel(w, "Policy:", policy)
}

func (r *TerminalReporter) StageStarted(stage string) {
	r.finishProgress()
	r.mu.Lock()
	r.lastStage = stage
	r.mu.Unlock()
	fmt.Println()
	_, _ = r.cyan.Println(strings.ToUpper(stage))
}

func (r *TerminalReporter) StageProgress(message string) {
	fmt.Printf("  %s %s\n", r.magenta.Sprint("›"), message)
}

func (r *TerminalReporter) ProgressStarted(total int64, description string) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) Progress(current int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress == nil {
		return
	}
	_ = r.progress.Set64(current)
}

func (r *TerminalReporter) ProgressDone() {
	r.finishProgress()
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
}

func (r *TerminalReporter) Diagnostic(line string) {
	fmt.Printf("  %s\n", color.New(color.Faint).Sprint(line))
}

func (r *TerminalReporter) Stats(block StatsBlock) {
	fmt.Println()
	_, _ = r.cyan.Printf("%s\n", strings.ToUpper(block.Name))
	r.printLabel(16, "Mean score:", fmt.Sprintf("%.4f", block.Mean))
	r.printLabel(16, "5th percentile:", fmt.Sprintf("%.4f", block.P5))
	r.printLabel(16, "95th percentile:", fmt.Sprintf("%.4f", block.P95))
}

func (r *TerminalReporter) Zone(zone SceneZone) {
	fmt.Printf("  %s [%d:%d]\n", r.bold.Sprint("Enc:"), zone.Start, zone.End)
	fmt.Printf("  Chunk 5th percentile: %v\n", zone.P5)
	fmt.Printf("  Adjusted CRF: %s\n\n", r.green.Sprintf("%.2f", zone.CRF))
}

func (r *TerminalReporter) Warning(message string) {
	r.finishProgress()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	r.finishProgress()
	fmt.Println()
	fmt.Printf("%s %s\n", r.green.Add(color.Bold).Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	fmt.Printf("  %s\n", color.New(color.Faint).Sprint(message))
}
