// Package config holds runtime configuration for tatara.
//
// Configuration comes from an optional TOML file plus environment
// variables; environment variables win. Network timeouts are clamped
// to a sane range so a typo cannot disable them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// EnvHome overrides the default tatara home directory.
	EnvHome = "TATARA_HOME"

	// EnvAPITimeout configures release-API request timeout.
	EnvAPITimeout = "TATARA_API_TIMEOUT"

	// EnvProbeTimeout configures URL reachability probe timeout.
	EnvProbeTimeout = "TATARA_PROBE_TIMEOUT"

	// EnvGitHubToken is the standard GitHub token variable used for
	// authenticated release-API requests.
	EnvGitHubToken = "GITHUB_TOKEN"

	// DefaultAPITimeout is the default timeout for release-API requests.
	DefaultAPITimeout = 15 * time.Second

	// DefaultProbeTimeout is the default timeout for reachability probes.
	DefaultProbeTimeout = 10 * time.Second

	// minTimeout and maxTimeout bound any configured timeout.
	minTimeout = 1 * time.Second
	maxTimeout = 10 * time.Minute
)

// Config is the on-disk configuration, stored at
// $TATARA_HOME/config.toml (default ~/.tatara/config.toml).
type Config struct {
	// BucketDir is the directory holding catalog entry JSON files.
	BucketDir string `toml:"bucket_dir"`

	// GitHubToken authenticates release-API requests. The GITHUB_TOKEN
	// environment variable takes precedence.
	GitHubToken string `toml:"github_token"`

	// APITimeout and ProbeTimeout are duration strings ("15s", "1m").
	APITimeout   string `toml:"api_timeout"`
	ProbeTimeout string `toml:"probe_timeout"`
}

// Home returns the tatara home directory, honoring TATARA_HOME.
func Home() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".tatara"), nil
}

// Load reads the config file under the tatara home directory.
// A missing file is not an error; defaults apply.
func Load() (*Config, error) {
	home, err := Home()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(home, "config.toml"))
}

// LoadFile reads and decodes a specific config file.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		applyEnv(cfg)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPITimeout); v != "" {
		cfg.APITimeout = v
	}
	if v := os.Getenv(EnvProbeTimeout); v != "" {
		cfg.ProbeTimeout = v
	}
	if v := os.Getenv(EnvGitHubToken); v != "" {
		cfg.GitHubToken = v
	}
}

// GetAPITimeout returns the effective release-API timeout.
func (c *Config) GetAPITimeout() time.Duration {
	return parseTimeout(c.APITimeout, DefaultAPITimeout)
}

// GetProbeTimeout returns the effective reachability probe timeout.
func (c *Config) GetProbeTimeout() time.Duration {
	return parseTimeout(c.ProbeTimeout, DefaultProbeTimeout)
}

// parseTimeout parses a duration string, falling back to def on empty
// or invalid input and clamping the result to [minTimeout, maxTimeout].
func parseTimeout(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid timeout %q, using default %v\n", value, def)
		return def
	}

	if d < minTimeout {
		return minTimeout
	}
	if d > maxTimeout {
		return maxTimeout
	}
	return d
}
