// Package cli implements the pangolin command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pangolin/pkg/buildinfo"
	"github.com/matzehuels/pangolin/pkg/cache"
	"github.com/matzehuels/pangolin/pkg/config"
	"github.com/matzehuels/pangolin/pkg/icon"
	pio "github.com/matzehuels/pangolin/pkg/io"
	"github.com/matzehuels/pangolin/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pangolin"

	// redisPrefix namespaces keys in a shared Redis cache.
	redisPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Pangolin compiles SVG icons into a JavaScript icon library",
		Long:         `Pangolin reads a directory of SVG icons, derives ids and tags from their file names, and compiles them into a single JavaScript module with a small runtime for rendering, searching and replacing icons.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.DefaultFile+" if present)")

	root.AddCommand(c.compileCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.replaceCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file selected by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// newCache picks Redis when configured, the file cache otherwise. An
// unreachable Redis degrades to the file cache.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache || !cfg.Cache.Enabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, redisPrefix)
		if err == nil {
			return rc, nil
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "err", err)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Registry Loading
// =============================================================================

// loadRegistry reads the manifest when it exists and otherwise compiles the
// configured input directory in memory.
func (c *CLI) loadRegistry(ctx context.Context, cfg *config.Config, manifest string) (*icon.Registry, error) {
	logger := loggerFromContext(ctx)
	if manifest == "" {
		manifest = filepath.Join(cfg.Output, pio.ManifestFile)
	}
	if _, err := os.Stat(manifest); err == nil {
		m, err := pio.ImportJSON(manifest)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded manifest", "path", manifest, "icons", m.Registry.Len())
		return m.Registry, nil
	}

	prog := newProgress(logger)
	runner := pipeline.NewRunner(nil, nil, logger)
	res, err := runner.Compile(ctx, pipeline.Options{InputDir: cfg.Input, Logger: logger})
	if err != nil {
		return nil, err
	}
	prog.done("Compiled " + cfg.Input)
	return res.Registry, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pangolin/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
