// Package config loads the optional wrapper configuration from
// ~/.revyl/config.yaml. Every field has a default, so a missing file is not
// an error; a malformed one is.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvVersion = "REVYL_VERSION"
	EnvRepo    = "REVYL_REPO"
	EnvKeyring = "REVYL_KEYRING"
)

// defaultKeyringName is picked up from the state directory when no keyring
// is configured explicitly.
const defaultKeyringName = "keyring.gpg"

// Config holds the wrapper's settings.
type Config struct {
	// Version pins the release to download; "latest" follows the most
	// recent release.
	Version string `yaml:"version"`

	// Repo is the GitHub "owner/name" the binary is released from.
	Repo string `yaml:"repo"`

	// Keyring is a path to a GPG keyring used to verify the checksum
	// manifest's signature. Empty disables signature verification.
	Keyring string `yaml:"keyring"`
}

// Load reads the config file from the default location (~/.revyl/config.yaml)
// and applies environment overrides.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return LoadDir(filepath.Join(home, ".revyl"))
}

// LoadDir reads config.yaml from the given state directory. A missing file
// yields defaults; an unreadable or malformed file is an error.
func LoadDir(dir string) (*Config, error) {
	cfg := &Config{
		Version: "latest",
		Repo:    "RevylAI/revyl-cli",
	}

	path := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// An unconfigured keyring falls back to the conventional location when
	// a keyring file is actually present there.
	if cfg.Keyring == "" {
		candidate := filepath.Join(dir, defaultKeyringName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			cfg.Keyring = candidate
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvVersion)); v != "" {
		c.Version = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRepo)); v != "" {
		c.Repo = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvKeyring)); v != "" {
		c.Keyring = v
	}
}

func (c *Config) validate() error {
	if c.Version == "" {
		return fmt.Errorf("config: version must not be empty")
	}
	if !strings.Contains(c.Repo, "/") {
		return fmt.Errorf("config: repo %q is not in owner/name form", c.Repo)
	}
	return nil
}
