// Package config loads edgard.yaml, the control panel's configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when --config is not set.
const DefaultFileName = "edgard.yaml"

// DefaultAdguardCommand is the upstream AdGuard Home installer one-liner.
const DefaultAdguardCommand = "curl -s -S -L https://raw.githubusercontent.com/AdguardTeam/AdGuardHome/master/scripts/install.sh | sh -s -- -v"

// Config represents the top-level edgard.yaml configuration.
type Config struct {
	Listen     string       `yaml:"listen"`
	Installer  InstallerRef `yaml:"installer"`
	Defaults   DefaultsRef  `yaml:"defaults"`
	Adguard    AdguardRef   `yaml:"adguard"`
	AccessURLs []string     `yaml:"access_urls,omitempty"`
	History    HistoryRef   `yaml:"history"`
}

// InstallerRef locates the external installer script.
type InstallerRef struct {
	Script      string `yaml:"script"`
	Shell       string `yaml:"shell,omitempty"`    // empty executes the script directly
	EnvFile     string `yaml:"env_file,omitempty"` // KEY=VALUE lines merged into the script environment
	PausePollMS int    `yaml:"pause_poll_ms,omitempty"`
}

// DefaultsRef holds the values used when a start request omits a field.
type DefaultsRef struct {
	InstallPath    string `yaml:"install_path"`
	AutoUpdate     bool   `yaml:"auto_update"`
	InstallAdguard bool   `yaml:"install_adguard"`
}

// AdguardRef configures the optional AdGuard Home install.
type AdguardRef struct {
	Command string `yaml:"command"`
	Shell   string `yaml:"shell,omitempty"`
}

// HistoryRef configures the run history database. An empty path disables it.
type HistoryRef struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Listen: ":5000",
		Installer: InstallerRef{
			Script:      "install_edgard.sh",
			Shell:       "bash",
			EnvFile:     ".env",
			PausePollMS: 500,
		},
		Defaults: DefaultsRef{
			InstallPath: "~/edgard_home",
			AutoUpdate:  true,
		},
		Adguard: AdguardRef{
			Command: DefaultAdguardCommand,
			Shell:   "sh",
		},
		AccessURLs: []string{"http://localhost:3000"},
		History:    HistoryRef{Path: "edgard-history.db"},
	}
}

// Load reads the file at path. A missing file yields the defaults, resolved
// against the directory the file would have lived in.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		data = nil
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes YAML over the defaults and resolves relative paths against dir.
func Parse(data []byte, dir string) (*Config, error) {
	cfg := Default()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	var err error
	if cfg.Installer.Script, err = resolvePath(cfg.Installer.Script, dir); err != nil {
		return nil, err
	}
	if cfg.Installer.EnvFile, err = resolvePath(cfg.Installer.EnvFile, dir); err != nil {
		return nil, err
	}
	if cfg.History.Path, err = resolvePath(cfg.History.Path, dir); err != nil {
		return nil, err
	}
	if cfg.Defaults.InstallPath, err = ExpandHome(cfg.Defaults.InstallPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PausePoll returns the pause re-check interval.
func (c *Config) PausePoll() time.Duration {
	return time.Duration(c.Installer.PausePollMS) * time.Millisecond
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %q: %w", p, err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

func resolvePath(p, dir string) (string, error) {
	if p == "" {
		return "", nil
	}
	p, err := ExpandHome(p)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(p) {
		return p, nil
	}
	abs, err := filepath.Abs(filepath.Join(dir, p))
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", p, err)
	}
	return abs, nil
}
