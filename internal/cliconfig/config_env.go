package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (SVCCTL_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("control-file", os.Getenv("SVCCTL_CONTROL_FILE"), &cfg.ControlFile)
	s.setString("log-level", os.Getenv("SVCCTL_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("workers", os.Getenv("SVCCTL_WORKERS"), &cfg.Workers); err != nil {
		return err
	}
	if err := s.setIntFromString("max-units", os.Getenv("SVCCTL_MAX_UNITS"), &cfg.MaxUnits); err != nil {
		return err
	}
	if err := s.setFloatFromString("failure-rate", os.Getenv("SVCCTL_FAILURE_RATE"), &cfg.FailureRate); err != nil {
		return err
	}

	if err := s.setDuration("unit", os.Getenv("SVCCTL_UNIT"), &cfg.Unit); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("SVCCTL_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}
	if err := s.setDuration("backoff-initial", os.Getenv("SVCCTL_BACKOFF_INITIAL"), &cfg.BackoffInitial); err != nil {
		return err
	}
	if err := s.setDuration("backoff-max", os.Getenv("SVCCTL_BACKOFF_MAX"), &cfg.BackoffMax); err != nil {
		return err
	}

	return nil
}
