package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fillfs/internal/fill"
)

// Config holds the tunables a fill run starts from. Every value can be
// overridden by a command line flag; the file only changes defaults.
type Config struct {
	Fill struct {
		BlockSize     string `yaml:"block_size"`
		FlushInterval string `yaml:"flush_interval"`
		IdlePriority  bool   `yaml:"idle_priority"`
	} `yaml:"fill"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`

	Reporting struct {
		Enabled   bool   `yaml:"enabled"`
		LocalPath string `yaml:"local_path"`
	} `yaml:"reporting"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}

	cfg.Fill.BlockSize = "32M"
	cfg.Fill.FlushInterval = "60s"
	cfg.Fill.IdlePriority = true

	cfg.Logging.Level = "INFO"
	cfg.Logging.File = ""

	cfg.Reporting.Enabled = false
	cfg.Reporting.LocalPath = "./reports"

	return cfg
}

// Load reads the configuration from path. An empty path or a missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func Validate(cfg *Config) error {
	if cfg.Fill.BlockSize != "" {
		size, err := fill.ParseSize(cfg.Fill.BlockSize)
		if err != nil {
			return fmt.Errorf("invalid block size %q: %w", cfg.Fill.BlockSize, err)
		}
		if size == 0 {
			return fmt.Errorf("invalid block size %q: %w", cfg.Fill.BlockSize, fill.ErrInvalidBlockSize)
		}
	}

	if cfg.Fill.FlushInterval != "" {
		if _, err := time.ParseDuration(cfg.Fill.FlushInterval); err != nil {
			return fmt.Errorf("invalid flush interval %q: %w", cfg.Fill.FlushInterval, err)
		}
	}

	validLevels := map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}

	return nil
}

// FlushInterval returns the parsed fill.flush_interval. Zero disables
// periodic flushing, only the terminal flush remains.
func (cfg *Config) FlushInterval() time.Duration {
	if cfg.Fill.FlushInterval == "" {
		return 0
	}

	// Validate rejected unparsable intervals at Load time; a value that
	// bypassed it disables periodic flushing rather than inventing one.
	d, err := time.ParseDuration(cfg.Fill.FlushInterval)
	if err != nil {
		return 0
	}

	return d
}
