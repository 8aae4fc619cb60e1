package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Workers         int     `toml:"workers"`
	Unit            string  `toml:"unit"`
	FailureRate     float64 `toml:"failure_rate"`
	MaxUnits        int     `toml:"max_units"`
	ControlFile     string  `toml:"control_file"`
	LogLevel        string  `toml:"log_level"`
	ShutdownTimeout string  `toml:"shutdown_timeout"`
	BackoffInitial  string  `toml:"backoff_initial"`
	BackoffMax      string  `toml:"backoff_max"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.svcctl/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".svcctl", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setInt("workers", fc.Workers, &cfg.Workers)
	s.setInt("max-units", fc.MaxUnits, &cfg.MaxUnits)
	s.setFloat("failure-rate", fc.FailureRate, &cfg.FailureRate)
	s.setString("control-file", fc.ControlFile, &cfg.ControlFile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("unit", fc.Unit, &cfg.Unit); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}
	if err := s.setDuration("backoff-initial", fc.BackoffInitial, &cfg.BackoffInitial); err != nil {
		return err
	}
	if err := s.setDuration("backoff-max", fc.BackoffMax, &cfg.BackoffMax); err != nil {
		return err
	}

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
