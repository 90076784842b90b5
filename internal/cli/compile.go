package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pangolin/pkg/config"
	"github.com/matzehuels/pangolin/pkg/pipeline"
)

// compileFlags holds the compile command flags. Unset flags leave the
// configured value in place.
type compileFlags struct {
	input      string
	output     string
	template   string
	version    string
	library    string
	prefix     string
	archive    string
	bundle     string
	minifier   string
	noMinify   bool
	versioned  bool
	noManifest bool
	noCache    bool
}

// compileCommand creates the compile command.
func (c *CLI) compileCommand() *cobra.Command {
	var flags compileFlags

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile SVG icons into the JavaScript library",
		Long: `Compile reads every SVG in the input directory, derives ids and tags from
the file names, and writes pangolin.latest.mjs plus the optional versioned,
minified, manifest and bundle outputs.

File names use either the legacy form {id}_s24.svg or the tagged form
{id}@{tag1,tag2}@svg.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runCompile(cmd.Context(), cfg, flags.noCache)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "directory of SVG sources")
	f.StringVarP(&flags.output, "output", "o", "", "output directory")
	f.StringVar(&flags.template, "template", "", "runtime template (default: embedded)")
	f.StringVar(&flags.version, "version", "", "version stamped into the module")
	f.StringVar(&flags.library, "library", "", "name of the runtime object in the template")
	f.StringVar(&flags.prefix, "prefix", "", "class and placeholder prefix used by the runtime")
	f.StringVar(&flags.archive, "archive", "", "directory for {id}_s24 download copies of every source")
	f.StringVar(&flags.bundle, "bundle", "", "write a zip bundle of all sources to this path")
	f.StringVar(&flags.minifier, "minifier", "", "minifier backend: remote, local")
	f.BoolVar(&flags.noMinify, "no-minify", false, "skip minification")
	f.BoolVar(&flags.versioned, "versioned", false, "also write pangolin.{version}.mjs")
	f.BoolVar(&flags.noManifest, "no-manifest", false, "skip the icons.json manifest")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable the minify cache")

	return cmd
}

// apply copies the flags the user set onto cfg.
func (f *compileFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	set := func(name string, dst *string, v string) {
		if changed(name) {
			*dst = v
		}
	}
	set("input", &cfg.Input, f.input)
	set("output", &cfg.Output, f.output)
	set("template", &cfg.Template, f.template)
	set("version", &cfg.Version, f.version)
	set("library", &cfg.Library, f.library)
	set("prefix", &cfg.Prefix, f.prefix)
	set("archive", &cfg.Archive, f.archive)
	set("bundle", &cfg.Bundle, f.bundle)
	set("minifier", &cfg.Minify.Backend, f.minifier)
	if f.noMinify {
		cfg.Minify.Enabled = false
	}
	if f.versioned {
		cfg.Versioned = true
	}
	if f.noManifest {
		cfg.Manifest = false
	}
}

func (c *CLI) runCompile(ctx context.Context, cfg *config.Config, noCache bool) error {
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := pipeline.FromConfig(cfg)
	opts.Logger = loggerFromContext(ctx)

	spinner := newSpinner(ctx, fmt.Sprintf("Compiling %s...", cfg.Input))
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		printError("Compile failed")
		return err
	}

	printSuccess("Compiled %s", StyleHighlight.Render(filepath.Join(cfg.Output, pipeline.FileLatest)))
	printStats(result.Stats.Icons, result.Stats.Tagged, result.Stats.Legacy, result.CacheInfo.MinifyHit)
	for _, path := range result.Files {
		printFile(path)
	}
	if n := len(result.ArchiveErrors); n > 0 {
		printWarning("%d archive copies could not be written", n)
	}
	if cfg.Minify.Enabled && !result.Stats.Minified {
		printWarning("Minification failed; %s contains the unminified module", pipeline.FileMinified)
	}

	printNewline()
	printNextStep("Preview the gallery", "pangolin serve")
	return nil
}

func printNewline() {
	fmt.Println()
}
