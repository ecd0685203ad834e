package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	rt "github.com/initializ/edgard/runtime"
)

// DefaultPausePoll bounds how long a paused consumer sleeps before
// re-checking the pause flag.
const DefaultPausePoll = 500 * time.Millisecond

// timestampLayout is the wall-clock format stamped on log entries.
const timestampLayout = "15:04:05"

// Config wires a Supervisor to the installer script and its collaborators.
type Config struct {
	// ScriptPath is the absolute path of the external installer script.
	ScriptPath string
	// Shell runs the script (e.g. "bash"). Empty executes it directly.
	Shell string
	// WorkDir is the child's working directory; defaults to the script's directory.
	WorkDir string
	// Env is merged into the child environment before INSTALL_DIR/AUTO_UPDATE.
	Env map[string]string
	// PausePoll bounds the latency of resuming after a pause.
	PausePoll time.Duration
	// AccessURLs are reported to the operator after a successful install.
	AccessURLs []string
	// Adguard describes the optional extra component install.
	Adguard ExtraComponent

	Recorder RunRecorder
	Logger   rt.Logger
}

// Supervisor owns the installation status and drives at most one run at a time.
type Supervisor struct {
	cfg    Config
	logger rt.Logger
	now    func() time.Time

	mu     sync.Mutex
	status Status
	resume chan struct{} // closed when a pause ends
	done   chan struct{} // closed when the current run has finished
}

// New creates an idle Supervisor with every registry step pending.
func New(cfg Config) *Supervisor {
	if cfg.PausePoll <= 0 {
		cfg.PausePoll = DefaultPausePoll
	}
	logger := cfg.Logger
	if logger == nil {
		logger = rt.NopLogger{}
	}
	return &Supervisor{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		status: Status{Steps: initialSteps(), Logs: []LogEntry{}},
	}
}

// Start resets the status and launches the installation workflow in the
// background. It returns ErrAlreadyRunning, without touching the status,
// while another run is in flight.
func (s *Supervisor) Start(opts StartOptions) error {
	s.mu.Lock()
	if s.status.Running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	runID := uuid.NewString()
	s.status = Status{
		RunID:   runID,
		Running: true,
		Steps:   initialSteps(),
		Logs:    []LogEntry{},
	}
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	s.logger.Info("installation started", map[string]any{
		"run_id":          runID,
		"install_path":    opts.InstallPath,
		"auto_update":     opts.AutoUpdate,
		"install_adguard": opts.InstallAdguard,
	})

	go s.run(runID, opts, done)
	return nil
}

// Snapshot returns a deep copy of the current status.
func (s *Supervisor) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.clone()
}

// TogglePause flips the paused flag of the running installation and returns
// the new value. Only the consumption of installer output is suspended; the
// child process keeps running.
func (s *Supervisor) TogglePause() (bool, error) {
	s.mu.Lock()
	if !s.status.Running {
		s.mu.Unlock()
		return false, ErrNotRunning
	}

	s.status.Paused = !s.status.Paused
	paused := s.status.Paused
	msg := "Installation resumed"
	if paused {
		s.resume = make(chan struct{})
		msg = "Installation paused"
	} else {
		close(s.resume)
	}
	s.appendLocked(SeverityInfo, msg)
	s.mu.Unlock()

	s.logger.Info("pause toggled", map[string]any{"paused": paused})
	return paused, nil
}

// Wait blocks until the current run (if any) has finished or ctx is done.
func (s *Supervisor) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Supervisor) run(runID string, opts StartOptions, done chan struct{}) {
	summary := RunSummary{
		ID:        runID,
		Options:   opts,
		StartedAt: s.now().UTC(),
		Outcome:   OutcomeFailed,
		ExitCode:  -1,
	}

	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.appendLocked(SeverityError, fmt.Sprintf("Unexpected error: %v", r))
			s.mu.Unlock()
			s.logger.Error("installation workflow panicked", map[string]any{"run_id": runID, "panic": fmt.Sprint(r)})
			summary.Outcome = OutcomeCrashed
		}
		s.finish(summary, done)
	}()

	outcome, code, err := s.workflow(opts)
	if err != nil {
		s.appendLog(SeverityError, fmt.Sprintf("Installation failed: %v", err))
		s.logger.Error("installation workflow failed", map[string]any{"run_id": runID, "error": err.Error()})
	}
	summary.Outcome = outcome
	summary.ExitCode = code
}

func (s *Supervisor) workflow(opts StartOptions) (Outcome, int, error) {
	s.appendLog(SeverityInfo, "Starting Edgard Home installation")
	s.appendLog(SeverityInfo, "Install path: "+opts.InstallPath)
	s.appendLog(SeverityInfo, "Auto-update: "+onOff(opts.AutoUpdate))
	s.appendLog(SeverityInfo, "AdGuard Home: "+onOff(opts.InstallAdguard))

	extra := StepIndex(ExtraComponentKey)
	if opts.InstallAdguard {
		s.installAdguard(extra)
	} else {
		s.setStep(extra, StepSuccess)
		s.appendLog(SeverityInfo, "AdGuard Home installation skipped")
	}

	if _, err := os.Stat(s.cfg.ScriptPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return OutcomeFailed, -1, fmt.Errorf("checking installer script: %w", err)
		}
		s.appendLog(SeverityWarning, fmt.Sprintf("Installer script not found at %s, nothing left to install", s.cfg.ScriptPath))
		s.completePending()
		return OutcomeDegraded, 0, nil
	}

	env := make(map[string]string, len(s.cfg.Env)+2)
	for k, v := range s.cfg.Env {
		env[k] = v
	}
	env["INSTALL_DIR"] = opts.InstallPath
	env["AUTO_UPDATE"] = fmt.Sprintf("%t", opts.AutoUpdate)

	s.appendLog(SeverityInfo, "Launching installer script")
	code, err := s.runProcess(s.scriptCommand(), env, true)
	if err != nil {
		return OutcomeFailed, -1, err
	}
	if code != 0 {
		s.appendLog(SeverityError, fmt.Sprintf("Installation failed with exit code %d", code))
		return OutcomeFailed, code, nil
	}

	s.appendLog(SeveritySuccess, s.completionMessage())
	return OutcomeSuccess, 0, nil
}

func (s *Supervisor) finish(summary RunSummary, done chan struct{}) {
	s.mu.Lock()
	s.status.Running = false
	if s.status.Paused {
		s.status.Paused = false
		close(s.resume)
	}
	summary.LogCount = len(s.status.Logs)
	for _, e := range s.status.Logs {
		if e.Severity == SeverityError {
			summary.ErrorCount++
		}
	}
	s.mu.Unlock()

	summary.FinishedAt = s.now().UTC()
	s.logger.Info("installation finished", map[string]any{
		"run_id":    summary.ID,
		"outcome":   string(summary.Outcome),
		"exit_code": summary.ExitCode,
		"duration":  summary.FinishedAt.Sub(summary.StartedAt).String(),
	})

	if s.cfg.Recorder != nil {
		if err := s.cfg.Recorder.RecordRun(summary); err != nil {
			s.logger.Warn("recording run history failed", map[string]any{"run_id": summary.ID, "error": err.Error()})
		}
	}
	close(done)
}

func (s *Supervisor) completionMessage() string {
	msg := "Installation completed successfully!"
	if len(s.cfg.AccessURLs) > 0 {
		msg += " Access: " + strings.Join(s.cfg.AccessURLs, ", ")
	}
	return msg
}

// completePending marks every still-pending step as done.
func (s *Supervisor) completePending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.status.Steps {
		if s.status.Steps[i].Status == StepPending {
			s.status.Steps[i].Status = StepSuccess
		}
	}
}

func (s *Supervisor) setStep(idx int, status StepStatus) {
	if idx < 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Steps[idx].Status = status
	if status == StepRunning {
		s.status.CurrentStep = idx
	}
}

func (s *Supervisor) appendLog(sev Severity, msg string) {
	s.mu.Lock()
	s.appendLocked(sev, msg)
	s.mu.Unlock()
	s.logger.Debug("installer", map[string]any{"severity": string(sev), "message": msg})
}

// appendLocked requires s.mu.
func (s *Supervisor) appendLocked(sev Severity, msg string) {
	s.status.Logs = append(s.status.Logs, LogEntry{
		Severity:  sev,
		Message:   msg,
		Timestamp: s.now().Format(timestampLayout),
	})
}

func (s *Supervisor) scriptDir() string {
	if s.cfg.WorkDir != "" {
		return s.cfg.WorkDir
	}
	return filepath.Dir(s.cfg.ScriptPath)
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
