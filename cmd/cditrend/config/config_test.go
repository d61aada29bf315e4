package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brclabs/cditrend/pkg/fetch"
	"github.com/brclabs/cditrend/pkg/series"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "environment variable set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "from-env",
			want:         "from-env",
		},
		{
			name:         "environment variable not set",
			key:          "NONEXISTENT_VAR",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		want         int
	}{
		{name: "valid integer", key: "TEST_INT", defaultValue: 10, envValue: "42", want: 42},
		{name: "invalid integer", key: "TEST_INT", defaultValue: 10, envValue: "not-a-number", want: 10},
		{name: "not set", key: "NONEXISTENT_INT", defaultValue: 99, envValue: "", want: 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue time.Duration
		envValue     string
		want         time.Duration
	}{
		{name: "valid duration", key: "TEST_DUR", defaultValue: time.Second, envValue: "250ms", want: 250 * time.Millisecond},
		{name: "invalid duration", key: "TEST_DUR", defaultValue: time.Second, envValue: "soon", want: time.Second},
		{name: "not set", key: "NONEXISTENT_DUR", defaultValue: 2 * time.Second, envValue: "", want: 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvDuration(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func defaultConfig() *Config {
	return &Config{
		SourceURL:   fetch.DefaultURL,
		HTTPTimeout: 10 * time.Second,
		Samples:     10,
		Interval:    time.Second,
		Storage:     "csv",
		CSVFile:     series.DefaultCSVPath,
		SeriesName:  "taxa-cdi",
		RedisAddr:   "localhost:6379",
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "zero samples", mutate: func(c *Config) { c.Samples = 0 }, wantErr: true},
		{name: "negative samples", mutate: func(c *Config) { c.Samples = -1 }, wantErr: true},
		{name: "negative interval", mutate: func(c *Config) { c.Interval = -time.Second }, wantErr: true},
		{name: "zero interval is allowed", mutate: func(c *Config) { c.Interval = 0 }, wantErr: false},
		{name: "empty source url", mutate: func(c *Config) { c.SourceURL = "" }, wantErr: true},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage = "postgres" }, wantErr: true},
		{name: "redis storage", mutate: func(c *Config) { c.Storage = "redis" }, wantErr: false},
		{name: "redis storage without addr", mutate: func(c *Config) { c.Storage = "redis"; c.RedisAddr = "" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.HTTPTimeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMergeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
source_url: http://localhost:9000/serie
samples: 25
interval: 100ms
storage: redis
redis:
  addr: redis.internal:6379
  db: 2
log:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg := defaultConfig()
	// "samples" was passed explicitly on the command line, so the file
	// value must not override it.
	if err := cfg.mergeFile(path, map[string]bool{"samples": true}); err != nil {
		t.Fatalf("mergeFile() error: %v", err)
	}

	if cfg.Samples != 10 {
		t.Errorf("Samples = %d, explicit flag should win over the file", cfg.Samples)
	}
	if cfg.SourceURL != "http://localhost:9000/serie" {
		t.Errorf("SourceURL = %q, want file value", cfg.SourceURL)
	}
	if cfg.Interval != 100*time.Millisecond {
		t.Errorf("Interval = %v, want 100ms", cfg.Interval)
	}
	if cfg.Storage != "redis" || cfg.RedisAddr != "redis.internal:6379" || cfg.RedisDB != 2 {
		t.Errorf("redis settings not merged: storage=%q addr=%q db=%d", cfg.Storage, cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("log settings not merged: level=%q format=%q", cfg.LogLevel, cfg.LogFormat)
	}
	// Fields absent from the file keep their defaults.
	if cfg.CSVFile != series.DefaultCSVPath {
		t.Errorf("CSVFile = %q, want default", cfg.CSVFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("merged config should validate: %v", err)
	}
}

func TestMergeFile_Errors(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.mergeFile(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("mergeFile() should fail on a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("samples: [not an int"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	if err := cfg.mergeFile(path, nil); err == nil {
		t.Error("mergeFile() should fail on malformed YAML")
	}
}
