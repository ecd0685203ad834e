package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Parse(nil, dir)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Listen != ":5000" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if want := filepath.Join(dir, "install_edgard.sh"); cfg.Installer.Script != want {
		t.Errorf("script = %q, want %q", cfg.Installer.Script, want)
	}
	if !cfg.Defaults.AutoUpdate || cfg.Defaults.InstallAdguard {
		t.Errorf("defaults = %+v", cfg.Defaults)
	}
	if cfg.PausePoll() != 500*time.Millisecond {
		t.Errorf("pause poll = %v", cfg.PausePoll())
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "edgard_home"); cfg.Defaults.InstallPath != want {
		t.Errorf("install path = %q, want %q", cfg.Defaults.InstallPath, want)
	}
}

func TestParse_Overrides(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`
listen: 127.0.0.1:8080
installer:
  script: scripts/setup.sh
  shell: ""
  pause_poll_ms: 50
defaults:
  install_path: /srv/edgard
  auto_update: false
  install_adguard: true
adguard:
  command: echo adguard
access_urls:
  - http://edgard.local:3000
history:
  path: /var/lib/edgard/history.db
`)
	cfg, err := Parse(data, dir)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if want := filepath.Join(dir, "scripts", "setup.sh"); cfg.Installer.Script != want {
		t.Errorf("script = %q, want %q", cfg.Installer.Script, want)
	}
	if cfg.Installer.Shell != "" {
		t.Errorf("shell = %q, want empty", cfg.Installer.Shell)
	}
	if cfg.PausePoll() != 50*time.Millisecond {
		t.Errorf("pause poll = %v", cfg.PausePoll())
	}
	if cfg.Defaults.AutoUpdate || !cfg.Defaults.InstallAdguard || cfg.Defaults.InstallPath != "/srv/edgard" {
		t.Errorf("defaults = %+v", cfg.Defaults)
	}
	if cfg.Adguard.Command != "echo adguard" || cfg.Adguard.Shell != "sh" {
		t.Errorf("adguard = %+v", cfg.Adguard)
	}
	if len(cfg.AccessURLs) != 1 || cfg.AccessURLs[0] != "http://edgard.local:3000" {
		t.Errorf("access urls = %v", cfg.AccessURLs)
	}
	if cfg.History.Path != "/var/lib/edgard/history.db" {
		t.Errorf("history = %q", cfg.History.Path)
	}
}

func TestParse_DisableHistory(t *testing.T) {
	cfg, err := Parse([]byte("history:\n  path: \"\"\n"), t.TempDir())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.History.Path != "" {
		t.Errorf("history path = %q, want empty", cfg.History.Path)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("listen: [unclosed"), t.TempDir()); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, DefaultFileName))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(dir, "edgard-history.db"); cfg.History.Path != want {
		t.Errorf("history = %q, want %q", cfg.History.Path, want)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte("listen: :9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9000" {
		t.Errorf("listen = %q", cfg.Listen)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := map[string]string{
		"~":           home,
		"~/edgard":    filepath.Join(home, "edgard"),
		"/abs/path":   "/abs/path",
		"rel/path":    "rel/path",
		"~user/stuff": "~user/stuff",
	}
	for in, want := range tests {
		got, err := ExpandHome(in)
		if err != nil {
			t.Errorf("ExpandHome(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
