// Package config loads compile and serve settings.
//
// Settings are layered, later layers winning:
//
//	defaults -> pangolin.toml -> environment -> command-line flags
//
// The file is optional. Environment variables are read with caarlos0/env;
// only variables that are set override the file. Flags are applied by the
// CLI after Load returns.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/matzehuels/pangolin/pkg/errors"
	"github.com/matzehuels/pangolin/pkg/icon"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "pangolin.toml"

// Minifier backends.
const (
	MinifierRemote = "remote"
	MinifierLocal  = "local"
)

// Duration is a time.Duration that decodes from strings like "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds every setting.
type Config struct {
	Input    string `toml:"input" env:"PANGOLIN_INPUT"`
	Output   string `toml:"output" env:"PANGOLIN_OUTPUT"`
	Archive  string `toml:"archive" env:"PANGOLIN_ARCHIVE"`
	Template string `toml:"template" env:"PANGOLIN_TEMPLATE"`
	Version  string `toml:"version" env:"PANGOLIN_VERSION"`
	Library  string `toml:"library"`
	Prefix   string `toml:"prefix"`

	Versioned   bool   `toml:"versioned"`
	Manifest    bool   `toml:"manifest"`
	Bundle      string `toml:"bundle"`
	IconListURL string `toml:"icon_list_url"`

	Minify    MinifyConfig    `toml:"minify"`
	Cache     CacheConfig     `toml:"cache"`
	Serve     ServeConfig     `toml:"serve"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// MinifyConfig configures the minify step.
type MinifyConfig struct {
	Enabled bool     `toml:"enabled"`
	Backend string   `toml:"backend" env:"PANGOLIN_MINIFIER"`
	URL     string   `toml:"url" env:"PANGOLIN_MINIFY_URL"`
	Timeout Duration `toml:"timeout" env:"PANGOLIN_MINIFY_TIMEOUT"`
}

// CacheConfig configures the minify cache.
type CacheConfig struct {
	Enabled  bool     `toml:"enabled"`
	Dir      string   `toml:"dir" env:"PANGOLIN_CACHE_DIR"`
	RedisURL string   `toml:"redis_url" env:"PANGOLIN_REDIS_URL"`
	TTL      Duration `toml:"ttl"`
}

// ServeConfig configures the static server.
type ServeConfig struct {
	Host string   `toml:"host"`
	Port int      `toml:"port" env:"PORT"`
	Dirs []string `toml:"dirs"`
}

// Addr returns host:port.
func (s ServeConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TelemetryConfig configures tracing.
type TelemetryConfig struct {
	Endpoint string `toml:"endpoint" env:"PANGOLIN_OTEL_ENDPOINT"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Input:    "icons",
		Output:   "dist",
		Archive:  "dist/icons_svg",
		Version:  "0.1",
		Library:  "Pangolin",
		Prefix:   "pangolin",
		Manifest: true,
		Minify: MinifyConfig{
			Enabled: true,
			Backend: MinifierRemote,
			URL:     "https://javascript-minifier.com/raw",
			Timeout: Duration{30 * time.Second},
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     Duration{30 * 24 * time.Hour},
		},
		Serve: ServeConfig{
			Port: 5000,
			Dirs: []string{"dist", "public"},
		},
	}
}

// Load builds the configuration. An empty path uses DefaultFile when it
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	} else if explicit {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "environment")
	}
	return cfg, nil
}

// ParseEnv applies environment overrides to target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the settings after flags have been applied.
func (c *Config) Validate() error {
	for name, p := range map[string]string{"input": c.Input, "output": c.Output} {
		if err := errors.ValidatePath(p); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", name)
		}
	}
	if c.Archive != "" && filepath.Clean(c.Archive) == filepath.Clean(c.Input) {
		return errors.New(errors.ErrCodeInvalidConfig, "archive directory %q cannot be the input directory", c.Archive)
	}
	if strings.TrimSpace(c.Version) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "version cannot be empty")
	}
	if strings.ContainsAny(c.Version, `/\`) {
		return errors.New(errors.ErrCodeInvalidConfig, "version %q cannot contain path separators", c.Version)
	}
	if err := icon.ValidatePrefix(c.Prefix); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "prefix")
	}
	if c.Minify.Enabled {
		switch c.Minify.Backend {
		case MinifierLocal:
		case MinifierRemote:
			if err := errors.ValidateURL(c.Minify.URL); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "minify url")
			}
		default:
			return errors.New(errors.ErrCodeInvalidConfig, "unknown minifier %q (want %s or %s)", c.Minify.Backend, MinifierRemote, MinifierLocal)
		}
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New(errors.ErrCodeInvalidConfig, "port %d out of range", c.Serve.Port)
	}
	return nil
}
