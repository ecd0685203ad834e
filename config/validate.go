package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ValidationResult holds errors and warnings from config validation.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Validate checks a loaded Config for errors and warnings.
func Validate(cfg *Config) *ValidationResult {
	r := &ValidationResult{}

	if cfg.Listen == "" {
		r.Errors = append(r.Errors, "listen is required")
	}

	if cfg.Installer.Script == "" {
		r.Errors = append(r.Errors, "installer.script is required")
	} else if _, err := os.Stat(cfg.Installer.Script); errors.Is(err, os.ErrNotExist) {
		r.Warnings = append(r.Warnings, fmt.Sprintf("installer.script %s does not exist; runs will complete without installing", cfg.Installer.Script))
	}

	if cfg.Installer.PausePollMS < 0 {
		r.Errors = append(r.Errors, fmt.Sprintf("installer.pause_poll_ms must not be negative (got %d)", cfg.Installer.PausePollMS))
	}

	if cfg.Adguard.Command == "" {
		r.Errors = append(r.Errors, "adguard.command is required")
	}

	if cfg.Defaults.InstallPath == "" {
		r.Errors = append(r.Errors, "defaults.install_path is required")
	} else if !filepath.IsAbs(cfg.Defaults.InstallPath) {
		r.Warnings = append(r.Warnings, fmt.Sprintf("defaults.install_path %q is relative to the installer's working directory", cfg.Defaults.InstallPath))
	}

	if cfg.History.Path == "" {
		r.Warnings = append(r.Warnings, "history.path is empty; run history is disabled")
	}

	return r
}
