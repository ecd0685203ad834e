package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "install_edgard.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	cfg.Installer.Script = script
	cfg.Defaults.InstallPath = "/opt/edgard"
	cfg.History.Path = filepath.Join(dir, "history.db")
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	r := Validate(validConfig(t))
	if !r.IsValid() {
		t.Fatalf("expected valid, got errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Fatalf("expected no warnings, got: %v", r.Warnings)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen", func(c *Config) { c.Listen = "" }},
		{"empty script", func(c *Config) { c.Installer.Script = "" }},
		{"negative poll", func(c *Config) { c.Installer.PausePollMS = -1 }},
		{"empty adguard command", func(c *Config) { c.Adguard.Command = "" }},
		{"empty install path", func(c *Config) { c.Defaults.InstallPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			r := Validate(cfg)
			if r.IsValid() {
				t.Fatal("expected invalid")
			}
			if len(r.Errors) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(r.Errors), r.Errors)
			}
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing script", func(c *Config) { c.Installer.Script = filepath.Join(t.TempDir(), "nope.sh") }},
		{"history disabled", func(c *Config) { c.History.Path = "" }},
		{"relative install path", func(c *Config) { c.Defaults.InstallPath = "edgard" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			r := Validate(cfg)
			if !r.IsValid() {
				t.Fatalf("expected valid, got errors: %v", r.Errors)
			}
			if len(r.Warnings) != 1 {
				t.Fatalf("expected 1 warning, got %d: %v", len(r.Warnings), r.Warnings)
			}
		})
	}
}
