// Package config manages the sledge project configuration. A deployment is
// described by a sledge.toml found by walking up from the current directory,
// or by an explicit path.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const ConfigFile = "sledge.toml"

var ErrConfigNotFound = errors.New("config file not found")

// Config describes one deployment target: the host, the checkout and the
// daemon manager in use there.
type Config struct {
	// Host is the ssh destination; resolved through the operator's ssh
	// config. Ignored when Local is set.
	Host string `toml:"host"`
	// User optionally overrides the ssh user.
	User string `toml:"user,omitempty"`
	// Local runs all commands on this machine instead of over ssh.
	Local bool `toml:"local,omitempty"`

	// VCS selects the adapter variant: "git" or "hg".
	VCS string `toml:"vcs"`
	// CodeDir is the checkout directory on the target host.
	CodeDir string `toml:"code_dir"`
	// RepoURL is the remote to clone from.
	RepoURL string `toml:"repo_url,omitempty"`
	// Branch is the default branch to clone.
	Branch string `toml:"branch,omitempty"`

	Service ServiceConfig `toml:"service,omitempty"`
	History HistoryConfig `toml:"history,omitempty"`

	// path is the file this config was loaded from. Not serialized.
	path string `toml:"-"`
}

// ServiceConfig selects the daemon manager on the target host.
type ServiceConfig struct {
	// Daemon is one of systemd, supervisor, upstart.
	Daemon string `toml:"daemon,omitempty"`
	// TargetDir overrides the daemon manager's default unit directory.
	TargetDir string `toml:"target_dir,omitempty"`
}

// HistoryConfig locates the local deployment journal.
type HistoryConfig struct {
	Path string `toml:"path,omitempty"`
}

// Find locates the nearest sledge.toml walking up from the current directory.
func Find() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, ConfigFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s in this or any parent directory", ErrConfigNotFound, ConfigFile)
		}
		dir = parent
	}
}

// Load reads and validates the config at path; an empty path triggers Find.
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := Find()
		if err != nil {
			return nil, err
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields every command depends on.
func (c *Config) Validate() error {
	switch c.VCS {
	case "git", "hg":
	case "":
		return fmt.Errorf("vcs must be set (git or hg)")
	default:
		return fmt.Errorf("unsupported vcs %q (supported: git, hg)", c.VCS)
	}

	if c.CodeDir == "" {
		return fmt.Errorf("code_dir must be set")
	}
	if !c.Local && c.Host == "" {
		return fmt.Errorf("host must be set unless local = true")
	}

	switch c.Service.Daemon {
	case "", "systemd", "supervisor", "upstart":
	default:
		return fmt.Errorf("unsupported service daemon %q (supported: systemd, supervisor, upstart)", c.Service.Daemon)
	}
	return nil
}

// Path returns the file this config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// HistoryPath returns the journal location, defaulting to .sledge/history.db
// next to the config file.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(filepath.Dir(c.path), ".sledge", "history.db")
}
