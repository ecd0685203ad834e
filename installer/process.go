package installer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	rt "github.com/initializ/edgard/runtime"
)

// maxLineSize caps a single line of installer output; the rest of a longer
// line is dropped and reported with a warning entry.
const maxLineSize = 64 * 1024

func (s *Supervisor) scriptCommand() *exec.Cmd {
	var cmd *exec.Cmd
	if s.cfg.Shell != "" {
		cmd = exec.Command(s.cfg.Shell, s.cfg.ScriptPath)
	} else {
		cmd = exec.Command(s.cfg.ScriptPath)
	}
	cmd.Dir = s.scriptDir()
	return cmd
}

// runProcess starts cmd with env merged into the current environment,
// consumes its combined stdout/stderr and returns the exit code. The output
// goes through an OS pipe so the child keeps running, buffered by the kernel,
// while consumption is paused.
func (s *Supervisor) runProcess(cmd *exec.Cmd, env map[string]string, infer bool) (int, error) {
	cmd.Env = rt.MergeEnv(os.Environ(), env)

	r, w, err := os.Pipe()
	if err != nil {
		return -1, fmt.Errorf("creating output pipe: %w", err)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return -1, fmt.Errorf("starting %s: %w", cmd.Path, err)
	}
	// The child holds its own copy; ours must go so EOF arrives on exit.
	_ = w.Close()

	s.logger.Info("process started", map[string]any{"pid": cmd.Process.Pid, "path": cmd.Path})

	if err := s.consume(r, infer); err != nil {
		s.logger.Warn("reading process output", map[string]any{"error": err.Error()})
		_, _ = io.Copy(io.Discard, r)
	}
	_ = r.Close()

	waitErr := cmd.Wait()
	code := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return -1, fmt.Errorf("waiting for %s: %w", cmd.Path, waitErr)
		}
		code = exitErr.ExitCode()
	}
	s.logger.Info("process exited", map[string]any{"pid": cmd.Process.Pid, "exit_code": code})
	return code, nil
}

// consume reads r line by line in arrival order until EOF, honoring pause
// before each line.
func (s *Supervisor) consume(r io.Reader, infer bool) error {
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		raw, truncated, err := readLine(br, maxLineSize)
		if err == nil || len(raw) > 0 {
			s.waitWhilePaused()
			if truncated {
				s.appendLog(SeverityWarning, fmt.Sprintf("Output line longer than %d bytes was truncated", maxLineSize))
			}
			if line := string(raw); strings.TrimSpace(line) != "" {
				s.processLine(line, infer)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// readLine returns the next line without its terminator, keeping at most
// limit bytes. The remainder of a longer line is consumed and discarded.
func readLine(br *bufio.Reader, limit int) ([]byte, bool, error) {
	var (
		line      []byte
		truncated bool
	)
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			return line, truncated, err
		}
		if room := limit - len(line); len(chunk) > room {
			chunk = chunk[:room]
			truncated = true
		}
		line = append(line, chunk...)
		if !isPrefix {
			return line, truncated, nil
		}
	}
}

// processLine classifies one line, appends it and applies inferred step
// transitions in a single critical section.
func (s *Supervisor) processLine(line string, infer bool) {
	sev, msg := Classify(line)

	s.mu.Lock()
	s.appendLocked(sev, msg)
	if infer {
		for _, t := range InferSteps(msg) {
			s.status.Steps[t.Index].Status = t.Status
			if t.Status == StepRunning {
				s.status.CurrentStep = t.Index
			}
		}
	}
	s.mu.Unlock()

	s.logger.Debug("installer", map[string]any{"severity": string(sev), "message": msg})
}

// waitWhilePaused blocks while the run is paused. An unpause wakes it
// immediately; the poll interval is only an upper bound.
func (s *Supervisor) waitWhilePaused() {
	for {
		s.mu.Lock()
		if !s.status.Paused {
			s.mu.Unlock()
			return
		}
		resume := s.resume
		s.mu.Unlock()

		timer := time.NewTimer(s.cfg.PausePoll)
		select {
		case <-resume:
		case <-timer.C:
		}
		timer.Stop()
	}
}
