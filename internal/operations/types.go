package operations

import (
	"time"

	appconfig "museumreport/internal/config"
	"museumreport/pkg/contracts/domain"
)

// RunState is the state of a report run
type RunState string

const (
	StateIdle       RunState = "IDLE"
	StateFetching   RunState = "FETCHING"
	StateFlattening RunState = "FLATTENING"
	StateExporting  RunState = "EXPORTING"
	StateDone       RunState = "DONE"
	StateFailed     RunState = "FAILED"
)

// IsTerminal reports whether no transition leaves the state
func (s RunState) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// Default settings
const (
	DefaultObjectLimit  = appconfig.DefaultObjectLimit
	DefaultFetchWorkers = 1
	DefaultBaseName     = appconfig.DefaultBaseName
	DefaultReportDir    = appconfig.DefaultReportsDir
	DefaultSubject      = appconfig.DefaultSubject
	DefaultBody         = appconfig.DefaultBody
)

// RetryConfig defines retry behavior for collection API calls
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
}

// NewRetryConfig returns the default retry configuration
func NewRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  appconfig.DefaultMaxAttempts,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Transition records one state change of a run
type Transition struct {
	From  RunState  `json:"from"`
	To    RunState  `json:"to"`
	At    time.Time `json:"at"`
	Error string    `json:"error,omitempty"`
}

// RunResult is the outcome of one pipeline run
type RunResult struct {
	RunID       string          `json:"run_id"`
	State       RunState        `json:"state"`
	Transitions []Transition    `json:"transitions"`
	Reports     []domain.Report `json:"reports"`
	ObjectIDs   []int           `json:"object_ids"`
	RecordCount int             `json:"record_count"`
	ColumnCount int             `json:"column_count"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Error       string          `json:"error,omitempty"`
	NotifyError string          `json:"notify_error,omitempty"`
}

// Duration returns how long the run took
func (r *RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded returns the number of reports written
func (r *RunResult) Succeeded() int {
	n := 0
	for _, report := range r.Reports {
		if report.Status == domain.ReportStatusCompleted {
			n++
		}
	}
	return n
}

// Files returns the paths of the reports written, in export order
func (r *RunResult) Files() []string {
	files := make([]string, 0, len(r.Reports))
	for _, report := range r.Reports {
		if report.Status == domain.ReportStatusCompleted {
			files = append(files, report.FilePath)
		}
	}
	return files
}

// Metadata summarizes the run for logging
func (r *RunResult) Metadata() domain.ReportMetadata {
	return domain.ReportMetadata{
		RunID:       r.RunID,
		RecordCount: r.RecordCount,
		ColumnCount: r.ColumnCount,
		ObjectIDs:   r.ObjectIDs,
		Duration:    r.Duration(),
	}
}
