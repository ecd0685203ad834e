package installer

import (
	"fmt"
	"os/exec"
)

// ExtraComponent describes the optional AdGuard Home installation.
type ExtraComponent struct {
	Command string
	Shell   string
}

func (e ExtraComponent) command() *exec.Cmd {
	shell := e.Shell
	if shell == "" {
		shell = "sh"
	}
	return exec.Command(shell, "-c", e.Command)
}

// installAdguard runs the extra component to completion. Its output is
// logged like installer output but never drives step inference. Failure
// marks the step as errored; the workflow carries on either way.
func (s *Supervisor) installAdguard(idx int) {
	s.setStep(idx, StepRunning)
	s.appendLog(SeverityInfo, "Installing AdGuard Home")

	if s.cfg.Adguard.Command == "" {
		s.setStep(idx, StepError)
		s.appendLog(SeverityError, "AdGuard Home installation failed: no install command configured")
		return
	}

	code, err := s.runProcess(s.cfg.Adguard.command(), nil, false)
	switch {
	case err != nil:
		s.setStep(idx, StepError)
		s.appendLog(SeverityError, fmt.Sprintf("AdGuard Home installation failed: %v", err))
	case code != 0:
		s.setStep(idx, StepError)
		s.appendLog(SeverityError, fmt.Sprintf("AdGuard Home installation failed with exit code %d", code))
	default:
		s.setStep(idx, StepSuccess)
		s.appendLog(SeveritySuccess, "AdGuard Home installed")
	}
}
