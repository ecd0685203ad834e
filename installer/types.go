// Package installer supervises the Edgard Home installation: it runs the
// external installer script, turns its output into structured log entries
// and step statuses, and exposes that state as snapshots.
package installer

import (
	"errors"
	"time"
)

var (
	// ErrAlreadyRunning is returned by Start while an installation is in flight.
	ErrAlreadyRunning = errors.New("installation already running")

	// ErrNotRunning is returned by TogglePause when no installation is in flight.
	ErrNotRunning = errors.New("no installation running")
)

// Severity is the classification bucket of a log line.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// StepStatus is the progress state of one installation step.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepRunning StepStatus = "running"
	StepSuccess StepStatus = "success"
	StepError   StepStatus = "error"
)

// LogEntry is one classified line of installer output.
type LogEntry struct {
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
}

// StepState is the client-visible state of one registry step.
type StepState struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Status StepStatus `json:"status"`
}

// Status is the full installation state served to polling clients.
type Status struct {
	RunID       string      `json:"runId,omitempty"`
	Running     bool        `json:"running"`
	Paused      bool        `json:"paused"`
	CurrentStep int         `json:"currentStep"`
	Steps       []StepState `json:"steps"`
	Logs        []LogEntry  `json:"logs"`
}

// clone returns a deep copy so callers never share slices with the supervisor.
func (s Status) clone() Status {
	out := s
	out.Steps = append([]StepState(nil), s.Steps...)
	out.Logs = append([]LogEntry(nil), s.Logs...)
	if out.Steps == nil {
		out.Steps = []StepState{}
	}
	if out.Logs == nil {
		out.Logs = []LogEntry{}
	}
	return out
}

// StartOptions are the operator's choices for one installation run.
type StartOptions struct {
	InstallPath    string `json:"installPath"`
	AutoUpdate     bool   `json:"autoUpdate"`
	InstallAdguard bool   `json:"installAdguard"`
}

// Outcome summarizes how a run ended.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeDegraded Outcome = "degraded"
	OutcomeCrashed  Outcome = "crashed"
)

// RunSummary is handed to the RunRecorder once a run has finished.
type RunSummary struct {
	ID         string       `json:"id"`
	Options    StartOptions `json:"options"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Outcome    Outcome      `json:"outcome"`
	ExitCode   int          `json:"exitCode"`
	LogCount   int          `json:"logCount"`
	ErrorCount int          `json:"errorCount"`
}

// RunRecorder persists finished runs. Implementations must be safe to call
// from the workflow goroutine.
type RunRecorder interface {
	RecordRun(summary RunSummary) error
}
