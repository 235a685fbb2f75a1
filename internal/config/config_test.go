package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Year != "2015" {
		t.Errorf("Year = %q, want 2015", cfg.Year)
	}
	if cfg.SummaryLevel != "150" {
		t.Errorf("SummaryLevel = %q, want 150", cfg.SummaryLevel)
	}
	if len(cfg.States) != 1 || cfg.States[0] != "Colorado" {
		t.Errorf("States = %v, want [Colorado]", cfg.States)
	}
	if cfg.SourceDir != "ACS_data_2015" {
		t.Errorf("SourceDir = %q, want ACS_data_2015", cfg.SourceDir)
	}
	if cfg.Output.Driver != "fs" {
		t.Errorf("Output.Driver = %q, want fs", cfg.Output.Driver)
	}
	if cfg.Output.Dir != filepath.Join("ACS_data_2015", "ACS_tables") {
		t.Errorf("Output.Dir = %q", cfg.Output.Dir)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
year: "2019"
summary_level: "140"
states: [Colorado, Wyoming]
tables: [B01001]
output:
  driver: memory
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Year != "2019" {
		t.Errorf("Year = %q, want 2019", cfg.Year)
	}
	if cfg.SummaryLevel != "140" {
		t.Errorf("SummaryLevel = %q, want 140", cfg.SummaryLevel)
	}
	if len(cfg.States) != 2 {
		t.Errorf("States = %v, want two entries", cfg.States)
	}
	if len(cfg.Tables) != 1 || cfg.Tables[0] != "B01001" {
		t.Errorf("Tables = %v, want [B01001]", cfg.Tables)
	}
	if cfg.Output.Driver != "memory" {
		t.Errorf("Output.Driver = %q, want memory", cfg.Output.Driver)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name:    "s3 driver requires bucket",
			content: "output:\n  driver: s3\n",
			wantErr: true,
		},
		{
			name:    "s3 driver with bucket",
			content: "output:\n  driver: s3\n  bucket: acs-tables\n",
			wantErr: false,
		},
		{
			name:    "postgres driver requires url",
			content: "output:\n  driver: postgres\n",
			wantErr: true,
		},
		{
			name:    "unknown driver",
			content: "output:\n  driver: carrier-pigeon\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			content: "year: [unclosed\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if (err != nil) != tt.wantErr {
				t.Errorf("Load error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvFallback(t *testing.T) {
	t.Setenv("ACSGEN_OUTPUT_DRIVER", "memory")
	t.Setenv("ACSGEN_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Output.Driver != "memory" {
		t.Errorf("Output.Driver = %q, want memory from env", cfg.Output.Driver)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn from env", cfg.Logging.Level)
	}
}

func TestYAMLTakesPrecedenceOverEnv(t *testing.T) {
	t.Setenv("ACSGEN_OUTPUT_DRIVER", "s3")

	cfg, err := Load(writeConfig(t, "output:\n  driver: memory\n"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Output.Driver != "memory" {
		t.Errorf("Output.Driver = %q, want memory from file", cfg.Output.Driver)
	}
}

func TestStateArchivePath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := filepath.Join("ACS_data_2015", "Colorado_Tracts_Block_Groups_Only.zip")
	if got := cfg.StateArchivePath("Colorado"); got != want {
		t.Errorf("StateArchivePath = %q, want %q", got, want)
	}
}
