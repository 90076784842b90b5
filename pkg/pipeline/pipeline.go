// Package pipeline provides the icon compilation pipeline for Pangolin.
//
// This package implements the complete discover → assemble → serialize →
// minify pipeline used by the CLI. Commands that only need a registry use
// [Runner.Compile]; the compile command runs [Runner.Execute], which also
// writes every output file.
//
// # Stages
//
//  1. Discover: read the source directory (sorted by file name)
//  2. Assemble: normalize, name and insert every icon; archive tagged sources
//     and publish legacy sources to the same directory
//  3. Serialize: render the registry into the runtime template
//  4. Minify: optional, cached, falls back to the unminified module
//
// Nothing is written until assembly and template checks have succeeded, so
// a failing run leaves the output directory untouched.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    InputDir:  "dist/icons_svg",
//	    OutputDir: "dist",
//	    Version:   "0.2",
//	    Minify:    true,
//	})
package pipeline

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pangolin/pkg/compiler"
	"github.com/matzehuels/pangolin/pkg/config"
	"github.com/matzehuels/pangolin/pkg/errors"
	"github.com/matzehuels/pangolin/pkg/icon"
	"github.com/matzehuels/pangolin/pkg/minify"
	"github.com/matzehuels/pangolin/pkg/serialize"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultVersion is stamped into the module when no version is given.
	DefaultVersion = "0.1"

	// DefaultMinifyTimeout bounds the minify stage.
	DefaultMinifyTimeout = minify.DefaultTimeout

	// DefaultMinifyTTL is how long minified output stays cached.
	DefaultMinifyTTL = 30 * 24 * time.Hour
)

// Output file names.
const (
	FileLatest   = "pangolin.latest.mjs"
	FileMinified = "pangolin.latest.min.mjs"
	FileIconList = "icons.toml"
)

// VersionedFile returns the output name of a versioned module.
func VersionedFile(version string) string {
	return "pangolin." + version + ".mjs"
}

// Minifier backends.
const (
	MinifierRemote = config.MinifierRemote
	MinifierLocal  = config.MinifierLocal
)

// ValidMinifiers is the set of supported minifier backends.
var ValidMinifiers = map[string]bool{
	MinifierRemote: true,
	MinifierLocal:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a compile run.
type Options struct {
	// Input. Sources, when set, is used instead of reading InputDir.
	// An empty Template uses the embedded default.
	InputDir string            `json:"input_dir,omitempty"`
	Sources  []compiler.Source `json:"-"`
	Template string            `json:"template,omitempty"`

	// Output. Empty ArchiveDir and Bundle disable those outputs.
	OutputDir   string `json:"output_dir"`
	ArchiveDir  string `json:"archive_dir,omitempty"`
	Version     string `json:"version,omitempty"`
	Library     string `json:"library,omitempty"`
	Prefix      string `json:"prefix,omitempty"`
	Versioned   bool   `json:"versioned,omitempty"`
	Manifest    bool   `json:"manifest,omitempty"`
	Bundle      string `json:"bundle,omitempty"`
	IconListURL string `json:"icon_list_url,omitempty"`

	// Minify
	Minify        bool          `json:"minify,omitempty"`
	Minifier      string        `json:"minifier,omitempty"`
	MinifyURL     string        `json:"minify_url,omitempty"`
	MinifyTimeout time.Duration `json:"minify_timeout,omitempty"`
	CacheTTL      time.Duration `json:"cache_ttl,omitempty"`

	// Runtime options (not serialized)
	Logger     *log.Logger  `json:"-"`
	HTTPClient *http.Client `json:"-"`

	validated bool
}

// FromConfig maps loaded settings to pipeline options.
func FromConfig(cfg *config.Config) Options {
	return Options{
		InputDir:      cfg.Input,
		Template:      cfg.Template,
		OutputDir:     cfg.Output,
		ArchiveDir:    cfg.Archive,
		Version:       cfg.Version,
		Library:       cfg.Library,
		Prefix:        cfg.Prefix,
		Versioned:     cfg.Versioned,
		Manifest:      cfg.Manifest,
		Bundle:        cfg.Bundle,
		IconListURL:   cfg.IconListURL,
		Minify:        cfg.Minify.Enabled,
		Minifier:      cfg.Minify.Backend,
		MinifyURL:     cfg.Minify.URL,
		MinifyTimeout: cfg.Minify.Timeout.Duration,
		CacheTTL:      cfg.Cache.TTL.Duration,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and traces.
	RunID string

	// Registry is the assembled icon registry.
	Registry *icon.Registry

	// Module is the serialized module; Minified is its minified form, equal
	// to Module when minification was skipped or failed.
	Module   string
	Minified string

	// Files lists every written path in write order.
	Files []string

	// ArchiveErrors holds the recovered ARCHIVAL_WRITE failures.
	ArchiveErrors []error

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	compiler.Stats

	Icons int
	// Published counts legacy sources copied into the archive directory.
	Published     int
	ModuleBytes   int
	MinifiedBytes int
	Minified      bool

	CompileTime   time.Duration
	SerializeTime time.Duration
	MinifyTime    time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	MinifyHit bool
}

// =============================================================================
// Validation
// =============================================================================

// ValidateMinifier checks that a minifier backend is supported.
func ValidateMinifier(name string) error {
	if !ValidMinifiers[name] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid minifier: %q (must be one of: remote, local)", name)
	}
	return nil
}

// ValidateForCompile checks the fields needed to build a registry.
func (o *Options) ValidateForCompile() error {
	if len(o.Sources) == 0 {
		if err := errors.ValidatePath(o.InputDir); err != nil {
			return fmt.Errorf("input: %w", err)
		}
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCompile(); err != nil {
		return err
	}
	if err := errors.ValidatePath(o.OutputDir); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if o.ArchiveDir != "" && len(o.Sources) == 0 && filepath.Clean(o.ArchiveDir) == filepath.Clean(o.InputDir) {
		// archive copies would be discovered as duplicates on the next run
		return errors.New(errors.ErrCodeInvalidInput, "archive directory %q cannot be the input directory", o.ArchiveDir)
	}
	o.SetDefaults()
	if strings.ContainsAny(o.Version, `/\`) {
		return errors.New(errors.ErrCodeInvalidInput, "version %q cannot contain path separators", o.Version)
	}
	if err := icon.ValidatePrefix(o.Prefix); err != nil {
		return err
	}
	if o.Minify {
		if err := ValidateMinifier(o.Minifier); err != nil {
			return err
		}
		if o.Minifier == MinifierRemote {
			if err := errors.ValidateURL(o.MinifyURL); err != nil {
				return fmt.Errorf("minify url: %w", err)
			}
		}
	}
	o.validated = true
	return nil
}

// SetDefaults fills empty fields.
func (o *Options) SetDefaults() {
	if o.Version == "" {
		o.Version = DefaultVersion
	}
	if o.Library == "" {
		o.Library = serialize.DefaultLibrary
	}
	if o.Prefix == "" {
		o.Prefix = icon.DefaultPrefix
	}
	if o.Minifier == "" {
		o.Minifier = MinifierRemote
	}
	if o.Minifier == MinifierRemote && o.MinifyURL == "" {
		o.MinifyURL = minify.DefaultRemoteURL
	}
	if o.MinifyTimeout == 0 {
		o.MinifyTimeout = DefaultMinifyTimeout
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultMinifyTTL
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}
