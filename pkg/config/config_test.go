package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/pangolin/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pangolin.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
input = "svg"
version = "2.0"
versioned = true

[minify]
backend = "local"
timeout = "5s"

[serve]
port = 8080
dirs = ["site"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Input != "svg" || cfg.Version != "2.0" || !cfg.Versioned {
		t.Errorf("top-level fields = %q %q %v", cfg.Input, cfg.Version, cfg.Versioned)
	}
	if cfg.Output != "dist" {
		t.Errorf("Output = %q, want default %q", cfg.Output, "dist")
	}
	if cfg.Minify.Backend != MinifierLocal || cfg.Minify.Timeout.Duration != 5*time.Second {
		t.Errorf("Minify = %+v", cfg.Minify)
	}
	if !cfg.Minify.Enabled {
		t.Error("Minify.Enabled default should survive a partial [minify] table")
	}
	if cfg.Serve.Port != 8080 || !slices.Equal(cfg.Serve.Dirs, []string{"site"}) {
		t.Errorf("Serve = %+v", cfg.Serve)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `version = "1.0"`)
	t.Setenv("PANGOLIN_VERSION", "3.1")
	t.Setenv("PORT", "9000")
	t.Setenv("PANGOLIN_MINIFY_TIMEOUT", "2s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Version != "3.1" {
		t.Errorf("Version = %q, want env override", cfg.Version)
	}
	if cfg.Serve.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Serve.Port)
	}
	if cfg.Minify.Timeout.Duration != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", cfg.Minify.Timeout)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load(writeConfig(t, `input = [`)); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(bad toml) error = %v, want INVALID_CONFIG", err)
	}

	t.Setenv("PORT", "not-a-port")
	if _, err := Load(writeConfig(t, "")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(bad env) error = %v, want INVALID_CONFIG", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty input", func(c *Config) { c.Input = "" }},
		{"empty version", func(c *Config) { c.Version = " " }},
		{"version with slash", func(c *Config) { c.Version = "1/2" }},
		{"prefix with space", func(c *Config) { c.Prefix = "a b" }},
		{"prefix with bracket", func(c *Config) { c.Prefix = "a]" }},
		{"unknown minifier", func(c *Config) { c.Minify.Backend = "uglify" }},
		{"bad minify url", func(c *Config) { c.Minify.URL = "ftp://x" }},
		{"archive is input", func(c *Config) { c.Archive = c.Input + "/" }},
		{"port out of range", func(c *Config) { c.Serve.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}

	cfg := Default()
	cfg.Minify.Enabled = false
	cfg.Minify.Backend = "anything"
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled minifier should not be validated: %v", err)
	}
}

func TestServeAddr(t *testing.T) {
	s := ServeConfig{Host: "127.0.0.1", Port: 5000}
	if got := s.Addr(); got != "127.0.0.1:5000" {
		t.Errorf("Addr() = %q", got)
	}
}
