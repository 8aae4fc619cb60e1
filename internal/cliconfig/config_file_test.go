package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Workers:         4,
				Unit:            "100ms",
				FailureRate:     0.1,
				MaxUnits:        10,
				ControlFile:     "/run/svcctl/control",
				LogLevel:        "debug",
				ShutdownTimeout: "5s",
				BackoffInitial:  "50ms",
				BackoffMax:      "2s",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Workers:         4,
				Unit:            100 * time.Millisecond,
				FailureRate:     0.1,
				MaxUnits:        10,
				ControlFile:     "/run/svcctl/control",
				LogLevel:        "debug",
				ShutdownTimeout: 5 * time.Second,
				BackoffInitial:  50 * time.Millisecond,
				BackoffMax:      2 * time.Second,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Workers:  8,
				LogLevel: "warn",
			},
			changed: map[string]bool{"workers": true},
			initial: Config{
				Workers:  1,
				LogLevel: "info",
			},
			expected: Config{
				Workers:  1, // unchanged because flag was set
				LogLevel: "warn",
			},
		},
		{
			name:       "invalid duration",
			fileConfig: FileConfig{Unit: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
workers = 3
unit = "1s"
failure_rate = 0.25
control_file = "/tmp/svcctl.control"
log_level = "debug"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Workers != 3 {
		t.Errorf("Workers = %v, want 3", fc.Workers)
	}
	if fc.Unit != "1s" {
		t.Errorf("Unit = %v, want 1s", fc.Unit)
	}
	if fc.FailureRate != 0.25 {
		t.Errorf("FailureRate = %v, want 0.25", fc.FailureRate)
	}
	if fc.ControlFile != "/tmp/svcctl.control" {
		t.Errorf("ControlFile = %v, want /tmp/svcctl.control", fc.ControlFile)
	}
	if fc.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", fc.LogLevel)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
workers = 2
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".svcctl") {
		t.Errorf("DefaultConfigPath() = %v, should contain .svcctl", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
