package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/pangolin/pkg/archive"
	"github.com/matzehuels/pangolin/pkg/cache"
	"github.com/matzehuels/pangolin/pkg/compiler"
	"github.com/matzehuels/pangolin/pkg/errors"
	pio "github.com/matzehuels/pangolin/pkg/io"
	"github.com/matzehuels/pangolin/pkg/minify"
	"github.com/matzehuels/pangolin/pkg/naming"
	"github.com/matzehuels/pangolin/pkg/observability"
	"github.com/matzehuels/pangolin/pkg/serialize"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete pipeline and writes all outputs.
func (r *Runner) Execute(ctx context.Context, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	runID := uuid.NewString()
	ctx, span := startSpan(ctx, "pangolin.execute",
		attribute.String("pangolin.run_id", runID),
		attribute.String("pangolin.version", opts.Version))
	defer func() { endSpan(span, err) }()

	logger := opts.Logger.With("run", runID[:8])
	result = &Result{RunID: runID}

	// The template is checked before assembly: assembly archives files and a
	// broken template must not leave partial output behind.
	tmpl, err := loadTemplate(opts.Template)
	if err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}
	if _, _, err := serialize.Split(tmpl, opts.Version); err != nil {
		return nil, fmt.Errorf("template: %w", err)
	}

	// Stage 1+2: Discover and assemble
	compileStart := time.Now()
	sources, compiled, err := r.compile(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	result.Registry = compiled.Registry
	result.ArchiveErrors = compiled.ArchiveErrors
	result.Stats.Stats = compiled.Stats
	result.Stats.Icons = compiled.Registry.Len()
	result.Stats.CompileTime = time.Since(compileStart)

	logger.Info("assembled icons",
		"icons", result.Stats.Icons,
		"tagged", compiled.Stats.Tagged,
		"legacy", compiled.Stats.Legacy,
		"duration", result.Stats.CompileTime)

	published := r.publish(ctx, result, sources, opts)

	// Stage 3: Serialize
	serializeStart := time.Now()
	module, err := r.serialize(ctx, compiled, tmpl, opts)
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	result.Module = module
	result.Stats.ModuleBytes = len(module)
	result.Stats.SerializeTime = time.Since(serializeStart)

	if err := r.writeOutputs(ctx, result, sources, published, opts); err != nil {
		return nil, err
	}

	// Stage 4: Minify
	result.Minified = module
	if opts.Minify {
		minifyStart := time.Now()
		result.Minified, result.Stats.Minified, result.CacheInfo.MinifyHit = r.minify(ctx, module, opts)
		result.Stats.MinifyTime = time.Since(minifyStart)
		result.Stats.MinifiedBytes = len(result.Minified)

		path := filepath.Join(opts.OutputDir, FileMinified)
		if err := writeFile(path, []byte(result.Minified)); err != nil {
			return nil, fmt.Errorf("write: %w", err)
		}
		result.Files = append(result.Files, path)

		logger.Info("minified module",
			"bytes", result.Stats.MinifiedBytes,
			"cached", result.CacheInfo.MinifyHit,
			"duration", result.Stats.MinifyTime)
	}

	return result, nil
}

// Compile discovers and assembles the sources without writing outputs or
// archive copies. It is used by commands that only read the registry.
func (r *Runner) Compile(ctx context.Context, opts Options) (*compiler.Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForCompile(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	opts.ArchiveDir = ""
	_, res, err := r.compile(ctx, opts)
	return res, err
}

func (r *Runner) compile(ctx context.Context, opts Options) (sources []compiler.Source, res *compiler.Result, err error) {
	ctx, span := startSpan(ctx, "pangolin.compile")
	defer func() { endSpan(span, err) }()

	sources = opts.Sources
	if len(sources) == 0 {
		if sources, err = compiler.Discover(ctx, opts.InputDir); err != nil {
			return nil, nil, err
		}
	}
	span.SetAttributes(attribute.Int("pangolin.sources", len(sources)))
	opts.Logger.Debug("discovered sources", "count", len(sources), "dir", opts.InputDir)

	var archiver compiler.Archiver
	if opts.ArchiveDir != "" {
		archiver = compiler.DirArchiver{Dir: opts.ArchiveDir}
	}
	res, err = compiler.NewAssembler(compiler.Options{
		Archiver: archiver,
		Logger:   opts.Logger,
	}).Assemble(ctx, sources)
	if err != nil {
		return nil, nil, err
	}
	return sources, res, nil
}

func (r *Runner) serialize(ctx context.Context, compiled *compiler.Result, tmpl string, opts Options) (module string, err error) {
	ctx, span := startSpan(ctx, "pangolin.serialize")
	start := time.Now()
	defer func() {
		observability.Compile().OnSerializeComplete(ctx, len(module), time.Since(start), err)
		endSpan(span, err)
	}()
	return serialize.Serialize(compiled.Registry, tmpl, opts.Version, serialize.WithLibrary(opts.Library), serialize.WithPrefix(opts.Prefix))
}

// publish copies legacy sources into the archive directory under their
// canonical names, next to the tagged copies written during assembly.
// Failures are recovered as ARCHIVAL_WRITE. It returns the archived file
// name of every icon that is present in the archive directory.
func (r *Runner) publish(ctx context.Context, result *Result, sources []compiler.Source, opts Options) map[string]string {
	published := make(map[string]string, len(sources))
	if opts.ArchiveDir == "" {
		return published
	}
	archiver := compiler.DirArchiver{Dir: opts.ArchiveDir}
	for _, src := range sources {
		name, err := naming.Extract(src.Name)
		if err != nil {
			continue
		}
		target := name.ArchiveName()
		if name.Convention == naming.Legacy {
			if err := archiver.Archive(ctx, target, []byte(src.Content)); err != nil {
				werr := errors.Wrap(errors.ErrCodeArchivalWrite, err, "publish %s as %s", src.Name, target)
				opts.Logger.Warn("publish copy failed", "file", src.Name, "target", target, "err", err)
				result.ArchiveErrors = append(result.ArchiveErrors, werr)
				result.Stats.ArchiveFailures++
				continue
			}
			result.Stats.Published++
		}
		if _, err := os.Stat(filepath.Join(opts.ArchiveDir, target)); err == nil {
			published[name.ID] = target
		}
	}
	return published
}

func (r *Runner) writeOutputs(ctx context.Context, result *Result, sources []compiler.Source, published map[string]string, opts Options) (err error) {
	ctx, span := startSpan(ctx, "pangolin.write")
	defer func() { endSpan(span, err) }()

	write := func(name string, data []byte) error {
		path := filepath.Join(opts.OutputDir, name)
		if err := writeFile(path, data); err != nil {
			return fmt.Errorf("write: %w", err)
		}
		result.Files = append(result.Files, path)
		return nil
	}

	if err := write(FileLatest, []byte(result.Module)); err != nil {
		return err
	}
	if opts.Versioned {
		if err := write(VersionedFile(opts.Version), []byte(result.Module)); err != nil {
			return err
		}
	}
	if opts.Manifest {
		path := filepath.Join(opts.OutputDir, pio.ManifestFile)
		if err := pio.ExportJSON(path, result.Registry, opts.Library, opts.Version); err != nil {
			return fmt.Errorf("manifest: %w", err)
		}
		result.Files = append(result.Files, path)
	}
	if opts.IconListURL != "" {
		path := filepath.Join(opts.OutputDir, FileIconList)
		if len(published) < result.Registry.Len() {
			opts.Logger.Warn("icon list omits icons without an archive copy",
				"listed", len(published), "icons", result.Registry.Len())
		}
		if err := pio.ExportIconList(path, result.Registry, opts.IconListURL, published); err != nil {
			return fmt.Errorf("icon list: %w", err)
		}
		result.Files = append(result.Files, path)
	}
	if opts.Bundle != "" {
		entries, err := bundleEntries(sources)
		if err != nil {
			return fmt.Errorf("bundle: %w", err)
		}
		if err := archive.WriteFile(ctx, opts.Bundle, entries); err != nil {
			return fmt.Errorf("bundle: %w", err)
		}
		result.Files = append(result.Files, opts.Bundle)
	}
	return nil
}

// Minifier returns the configured backend wrapped with the runner cache.
func (r *Runner) Minifier(opts Options) *minify.Cached {
	var backend minify.Minifier
	switch opts.Minifier {
	case MinifierLocal:
		backend = minify.NewLocal()
	default:
		backend = minify.NewRemote(opts.MinifyURL, opts.HTTPClient)
	}
	return &minify.Cached{
		Inner:  backend,
		Cache:  r.Cache,
		Keyer:  r.Keyer,
		TTL:    opts.CacheTTL,
		Logger: opts.Logger,
	}
}

func (r *Runner) minify(ctx context.Context, module string, opts Options) (out string, ok, hit bool) {
	ctx, span := startSpan(ctx, "pangolin.minify", attribute.String("pangolin.minifier", opts.Minifier))
	defer span.End()

	m := r.Minifier(opts)
	if cached, found := m.Lookup(ctx, module); found {
		span.SetAttributes(attribute.Bool("pangolin.cache_hit", true))
		return cached, true, true
	}
	out, ok = minify.Run(ctx, m.Inner, module, opts.MinifyTimeout, opts.Logger)
	if ok {
		m.Store(ctx, module, out)
	}
	return out, ok, false
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func loadTemplate(path string) (string, error) {
	if path == "" {
		return serialize.DefaultTemplate(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "template %s", path)
		}
		return "", err
	}
	return string(data), nil
}

func bundleEntries(sources []compiler.Source) ([]archive.Entry, error) {
	entries := make([]archive.Entry, 0, len(sources))
	for _, src := range sources {
		name, err := naming.Extract(src.Name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, archive.Entry{Name: name.ArchiveName(), Content: []byte(src.Content)})
	}
	return entries, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return observability.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
