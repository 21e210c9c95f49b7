package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Engine.MinScoreFloor != 30 {
		t.Errorf("expected MinScoreFloor=30, got %d", cfg.Engine.MinScoreFloor)
	}

	if cfg.Engine.RecencyWindowDays != 3 {
		t.Errorf("expected RecencyWindowDays=3, got %d", cfg.Engine.RecencyWindowDays)
	}

	if cfg.Cache.Backend != BackendFile {
		t.Errorf("expected Backend=file, got %s", cfg.Cache.Backend)
	}

	if cfg.Cache.RetentionDays != 30 {
		t.Errorf("expected RetentionDays=30, got %d", cfg.Cache.RetentionDays)
	}

	if len(cfg.Scoring.LocationRules) != 3 {
		t.Errorf("expected 3 default location rules, got %d", len(cfg.Scoring.LocationRules))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "floor out of range",
			modify: func(c *Config) {
				c.Engine.MinScoreFloor = 101
			},
			wantErr: true,
		},
		{
			name: "no workers",
			modify: func(c *Config) {
				c.Engine.MaxWorkers = 0
			},
			wantErr: true,
		},
		{
			name: "invalid title threshold",
			modify: func(c *Config) {
				c.Dedup.TitleThreshold = 1.5
			},
			wantErr: true,
		},
		{
			name: "unknown cache backend",
			modify: func(c *Config) {
				c.Cache.Backend = "memcached"
			},
			wantErr: true,
		},
		{
			name: "redis backend without url",
			modify: func(c *Config) {
				c.Cache.Backend = BackendRedis
			},
			wantErr: true,
		},
		{
			name: "location rule without keywords",
			modify: func(c *Config) {
				c.Scoring.LocationRules = append(c.Scoring.LocationRules, LocationRule{Points: 3})
			},
			wantErr: true,
		},
		{
			name: "invalid log format",
			modify: func(c *Config) {
				c.Log.Format = "xml"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input    string
		expected string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tt := range tests {
		result, err := expandPath(tt.input)
		if err != nil {
			t.Errorf("expandPath(%q) error: %v", tt.input, err)
		}
		if result != tt.expected {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestRunTimeout(t *testing.T) {
	cfg := Default()

	if got := cfg.Engine.RunTimeout(); got != 5*time.Minute {
		t.Errorf("RunTimeout() = %v, want 5m", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[engine]
min_score_floor = 40
max_workers = 2

[cache]
backend = "sqlite"
database_path = "` + filepath.Join(dir, "jobmatch.db") + `"

[[scoring.location_rules]]
keywords = ["dubai"]
points = 10
reason = "Located in Dubai"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("JOBMATCH_ENGINE_MAX_WORKERS", "8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Engine.MinScoreFloor != 40 {
		t.Errorf("expected MinScoreFloor=40, got %d", cfg.Engine.MinScoreFloor)
	}
	if cfg.Engine.MaxWorkers != 8 {
		t.Errorf("expected env override MaxWorkers=8, got %d", cfg.Engine.MaxWorkers)
	}
	if cfg.Engine.RecencyWindowDays != 3 {
		t.Errorf("expected default RecencyWindowDays=3, got %d", cfg.Engine.RecencyWindowDays)
	}
	if cfg.Cache.Backend != BackendSQLite {
		t.Errorf("expected Backend=sqlite, got %s", cfg.Cache.Backend)
	}
	if len(cfg.Scoring.LocationRules) != 1 || cfg.Scoring.LocationRules[0].Keywords[0] != "dubai" {
		t.Errorf("expected location rules to be replaced, got %+v", cfg.Scoring.LocationRules)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Engine.MinScoreFloor != 30 {
		t.Errorf("expected default floor, got %d", cfg.Engine.MinScoreFloor)
	}
	if len(cfg.Scoring.LocationRules) != 3 {
		t.Errorf("expected default location rules, got %d", len(cfg.Scoring.LocationRules))
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[cache]\nbackend = \"tape\"\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid backend")
	}
	if errors.Is(err, ErrNoUsers) {
		t.Errorf("unexpected error kind: %v", err)
	}
}
