package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"SVCCTL_WORKERS":          "6",
				"SVCCTL_UNIT":             "2s",
				"SVCCTL_FAILURE_RATE":     "0.5",
				"SVCCTL_MAX_UNITS":        "100",
				"SVCCTL_CONTROL_FILE":     "/env/control",
				"SVCCTL_LOG_LEVEL":        "error",
				"SVCCTL_SHUTDOWN_TIMEOUT": "1m",
				"SVCCTL_BACKOFF_INITIAL":  "1s",
				"SVCCTL_BACKOFF_MAX":      "1m",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Workers:         6,
				Unit:            2 * time.Second,
				FailureRate:     0.5,
				MaxUnits:        100,
				ControlFile:     "/env/control",
				LogLevel:        "error",
				ShutdownTimeout: time.Minute,
				BackoffInitial:  time.Second,
				BackoffMax:      time.Minute,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"SVCCTL_WORKERS":   "6",
				"SVCCTL_LOG_LEVEL": "debug",
			},
			changed: map[string]bool{"workers": true},
			initial: Config{Workers: 1},
			expected: Config{
				Workers:  1,
				LogLevel: "debug",
			},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"SVCCTL_UNIT": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"SVCCTL_WORKERS": "many"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid float",
			envVars: map[string]string{"SVCCTL_FAILURE_RATE": "half"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}
