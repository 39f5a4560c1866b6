// Package system reads machine-level settings: the user config file
// (~/.monoforge/config.yaml) and the process environment.
package system

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Config is the user config file. Nothing in it belongs to a workspace.
type Config struct {
	SensitiveData SensitiveDataConfig `yaml:"sensitive_data"`
	Redaction     RedactionConfig     `yaml:"redaction"`
	Publishing    PublishingConfig    `yaml:"publishing"`
}

// SensitiveDataConfig configures secret resolution and protection.
type SensitiveDataConfig struct {
	Secrets SecretsConfig `yaml:"secrets"`
}

// SecretsConfig maps credential property names (publishing.<repo>.token)
// to alternative sources.
type SecretsConfig struct {
	Local map[string]string `yaml:"local"` // name -> value, for development
	Env   map[string]string `yaml:"env"`   // name -> environment variable
	Files map[string]string `yaml:"files"` // name -> file holding the value
}

// RedactionConfig configures how sensitive data is sanitized.
type RedactionConfig struct {
	HashMode        HashModeConfig `yaml:"hash_mode"`
	Patterns        []string       `yaml:"patterns"`
	DisableGitleaks bool           `yaml:"disable_gitleaks"`
}

// HashModeConfig controls hash-based redaction.
type HashModeConfig struct {
	Salt    string `yaml:"salt"`
	Enabled bool   `yaml:"enabled"`
}

// PublishingConfig tunes the HTTP publishers.
type PublishingConfig struct {
	// HTTPTimeout bounds a single upload request ("30s").
	HTTPTimeout string `yaml:"http_timeout"`
	// Retries is the default retry count for transient publish failures.
	Retries int `yaml:"retries"`
	// MaxOutputSizeBytes limits captured publisher output per task.
	MaxOutputSizeBytes int `yaml:"max_output_size_bytes"`
}

// Timeout parses HTTPTimeout, falling back to def.
func (p PublishingConfig) Timeout(def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(p.HTTPTimeout) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(p.HTTPTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid publishing.http_timeout %q: %w", p.HTTPTimeout, err)
	}
	return d, nil
}

// ConfigLoader reads the machine-level config file.
type ConfigLoader struct{}

func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// DefaultConfigPath returns ~/.monoforge/config.yaml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".monoforge", "config.yaml")
}

// DefaultConfig is the configuration used when no file exists. Its maps
// are non-nil so callers can index them directly.
func DefaultConfig() *Config {
	return &Config{
		SensitiveData: SensitiveDataConfig{
			Secrets: SecretsConfig{
				Local: map[string]string{},
				Env:   map[string]string{},
				Files: map[string]string{},
			},
		},
	}
}

// Load reads path over DefaultConfig. An empty path or a missing file
// yields the defaults.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	//nolint:gosec // G304: path is the user's own config file
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse system config %s: %w", path, err)
	}
	if _, err := cfg.Publishing.Timeout(0); err != nil {
		return nil, fmt.Errorf("invalid system config %s: %w", path, err)
	}
	if cfg.Publishing.Retries < 0 {
		return nil, fmt.Errorf("invalid system config %s: publishing.retries must not be negative", path)
	}
	return cfg, nil
}
