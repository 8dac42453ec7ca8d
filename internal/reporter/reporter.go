// Package reporter provides progress reporting for the autoboost pipeline.
package reporter

// RunSummary describes the run configuration shown at startup.
type RunSummary struct {
	Input      string
	FastPass   string
	Backend    string
	Quality    float64
	Deviation  float64
	Preset     uint8
	Workers    int
	Stage      string
	Policy     string
	Aggressive bool
}

// StatsBlock is a per-series statistics summary (logged after aggregation).
type StatsBlock struct {
	Name string
	Mean float64
	P5   float64
	P95  float64
}

// SceneZone describes one generated zone for operator visibility.
type SceneZone struct {
	Start int
	End   int
	P5    float64
	CRF   float64
}

// ReporterError carries a structured error report.
type ReporterError struct {
	Title   string
	Message string
	Context string
}

// Reporter defines the interface for progress reporting.
type Reporter interface {
	RunStarted(summary RunSummary)
	StageStarted(stage string)
	StageProgress(message string)
	ProgressStarted(total int64, description string)
	Progress(current int64)
	ProgressDone()
	Diagnostic(line string)
	Stats(block StatsBlock)
	Zone(zone SceneZone)
	Warning(message string)
	Error(err ReporterError)
	OperationComplete(message string)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) RunStarted(RunSummary)          {}
func (NullReporter) StageStarted(string)            {}
func (NullReporter) StageProgress(string)           {}
func (NullReporter) ProgressStarted(int64, string)  {}
func (NullReporter) Progress(int64)                 {}
func (NullReporter) ProgressDone()                  {}
func (NullReporter) Diagnostic(string)              {}
func (NullReporter) Stats(StatsBlock)               {}
func (NullReporter) Zone(SceneZone)                 {}
func (NullReporter) Warning(string)                 {}
func (NullReporter) Error(ReporterError)            {}
func (NullReporter) OperationComplete(string)       {}
func (NullReporter) Verbose(string)                 {}
