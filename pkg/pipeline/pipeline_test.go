package pipeline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pangolin/pkg/archive"
	"github.com/matzehuels/pangolin/pkg/cache"
	"github.com/matzehuels/pangolin/pkg/compiler"
	"github.com/matzehuels/pangolin/pkg/config"
	"github.com/matzehuels/pangolin/pkg/errors"
	pio "github.com/matzehuels/pangolin/pkg/io"
)

func svgDoc(body string) string {
	return `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><defs><style>.a{fill:none;}</style></defs>` + body + `</svg>`
}

func twoSources() []compiler.Source {
	return []compiler.Source{
		{Name: "airplay_s24.svg", Content: svgDoc(`<path class="a" d="M5 17H4"/>`)},
		{Name: "user@person,avatar@svg", Content: svgDoc(`<circle class="a" cx="12" cy="7" r="4"/>`)},
	}
}

func writeSources(t *testing.T, sources []compiler.Source) string {
	t.Helper()
	dir := t.TempDir()
	for _, src := range sources {
		if err := os.WriteFile(filepath.Join(dir, src.Name), []byte(src.Content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestValidateMinifier(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"remote", false},
		{"local", false},
		{"Local", true},
		{"uglify", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateMinifier(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateMinifier(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{InputDir: "icons", OutputDir: "dist", Minify: true}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}

	if opts.Version != DefaultVersion {
		t.Errorf("Version = %q, want %q", opts.Version, DefaultVersion)
	}
	if opts.Library != "Pangolin" {
		t.Errorf("Library = %q, want Pangolin", opts.Library)
	}
	if opts.Prefix != "pangolin" {
		t.Errorf("Prefix = %q, want pangolin", opts.Prefix)
	}
	if opts.Minifier != MinifierRemote {
		t.Errorf("Minifier = %q, want %q", opts.Minifier, MinifierRemote)
	}
	if opts.MinifyURL == "" {
		t.Error("MinifyURL should default to the hosted minifier")
	}
	if opts.MinifyTimeout != DefaultMinifyTimeout {
		t.Errorf("MinifyTimeout = %v, want %v", opts.MinifyTimeout, DefaultMinifyTimeout)
	}
	if opts.CacheTTL != DefaultMinifyTTL {
		t.Errorf("CacheTTL = %v, want %v", opts.CacheTTL, DefaultMinifyTTL)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing input", Options{OutputDir: "dist"}, errors.ErrCodeInvalidPath},
		{"missing output", Options{InputDir: "icons"}, errors.ErrCodeInvalidPath},
		{"version with slash", Options{InputDir: "icons", OutputDir: "dist", Version: "../1"}, errors.ErrCodeInvalidInput},
		{"archive is input", Options{InputDir: "icons", OutputDir: "dist", ArchiveDir: "./icons"}, errors.ErrCodeInvalidInput},
		{"bad prefix", Options{InputDir: "icons", OutputDir: "dist", Prefix: "a b"}, errors.ErrCodeInvalidInput},
		{"bad minifier", Options{InputDir: "icons", OutputDir: "dist", Minify: true, Minifier: "uglify"}, errors.ErrCodeInvalidInput},
		{"bad minify url", Options{InputDir: "icons", OutputDir: "dist", Minify: true, MinifyURL: "ftp://x"}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsSourcesReplaceInputDir(t *testing.T) {
	opts := Options{Sources: twoSources(), OutputDir: "dist"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("ValidateAndSetDefaults() error: %v", err)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{InputDir: "icons", OutputDir: "dist"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	opts.Version = "2.0"
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Version != "2.0" {
		t.Errorf("Version = %q, second call should not reset it", opts.Version)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Version = "1.2"
	cfg.Minify.Backend = config.MinifierLocal

	opts := FromConfig(cfg)
	if opts.InputDir != cfg.Input || opts.OutputDir != cfg.Output || opts.ArchiveDir != cfg.Archive {
		t.Errorf("FromConfig() paths = %+v", opts)
	}
	if opts.Version != "1.2" || opts.Minifier != MinifierLocal || !opts.Minify {
		t.Errorf("FromConfig() = %+v", opts)
	}
	if opts.CacheTTL != cfg.Cache.TTL.Duration {
		t.Errorf("CacheTTL = %v, want %v", opts.CacheTTL, cfg.Cache.TTL.Duration)
	}
}

func TestExecuteWritesOutputs(t *testing.T) {
	out := t.TempDir()
	archiveDir := filepath.Join(out, "icons_svg")
	bundle := filepath.Join(out, "icons.zip")

	runner := NewRunner(nil, nil, nil)
	res, err := runner.Execute(context.Background(), Options{
		InputDir:    writeSources(t, twoSources()),
		OutputDir:   out,
		ArchiveDir:  archiveDir,
		Version:     "0.2",
		Versioned:   true,
		Manifest:    true,
		Bundle:      bundle,
		IconListURL: "https://icons.example.com",
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.RunID == "" {
		t.Error("RunID should be set")
	}
	if got, want := res.Registry.IDs(), []string{"airplay", "user"}; !slices.Equal(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	if res.Stats.Icons != 2 || res.Stats.Tagged != 1 || res.Stats.Legacy != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if res.Minified != res.Module {
		t.Error("Minified should equal Module when minification is off")
	}

	latest, err := os.ReadFile(filepath.Join(out, FileLatest))
	if err != nil {
		t.Fatalf("latest module missing: %v", err)
	}
	if string(latest) != res.Module {
		t.Error("latest module differs from result")
	}
	if !strings.Contains(res.Module, "@version 0.2") {
		t.Error("module should carry the version")
	}
	if strings.Contains(res.Module, "//@icons") {
		t.Error("icons marker should be replaced")
	}
	if !strings.Contains(res.Module, `"user": {`) {
		t.Error("module should contain the user icon")
	}

	if _, err := os.Stat(filepath.Join(out, VersionedFile("0.2"))); err != nil {
		t.Errorf("versioned module missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, FileMinified)); !os.IsNotExist(err) {
		t.Error("minified module should not be written when minification is off")
	}

	manifest, err := pio.ImportJSON(filepath.Join(out, pio.ManifestFile))
	if err != nil {
		t.Fatalf("ImportJSON() error: %v", err)
	}
	if manifest.Version != "0.2" || manifest.Registry.Len() != 2 {
		t.Errorf("manifest = %+v", manifest)
	}

	if _, err := os.Stat(filepath.Join(out, FileIconList)); err != nil {
		t.Errorf("icon list missing: %v", err)
	}

	entries, err := archive.ReadFile(bundle)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	slices.Sort(names)
	if want := []string{"airplay_s24.svg", "user_s24.svg"}; !slices.Equal(names, want) {
		t.Errorf("bundle entries = %v, want %v", names, want)
	}

	for _, name := range []string{"user_s24.svg", "airplay_s24.svg"} {
		if _, err := os.Stat(filepath.Join(archiveDir, name)); err != nil {
			t.Errorf("archive copy missing: %v", err)
		}
	}
	if len(res.Files) != 6 {
		t.Errorf("Files = %v, want 6 entries", res.Files)
	}
}

func TestExecuteIconListURLsExist(t *testing.T) {
	const root = "https://icons.example.com"
	out := t.TempDir()
	archiveDir := filepath.Join(out, "icons_svg")
	sources := append(twoSources(),
		compiler.Source{Name: "logo@brand@png", Content: svgDoc(`<rect class="a" width="4" height="4"/>`)})

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Sources:     sources,
		OutputDir:   out,
		ArchiveDir:  archiveDir,
		IconListURL: root,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Stats.Published != 1 {
		t.Errorf("Published = %d, want 1", res.Stats.Published)
	}

	var list struct {
		Icons []struct {
			Description string `toml:"description"`
			URL         string `toml:"url"`
		} `toml:"icons"`
	}
	if _, err := toml.DecodeFile(filepath.Join(out, FileIconList), &list); err != nil {
		t.Fatalf("decode icon list: %v", err)
	}
	if len(list.Icons) != 3 {
		t.Fatalf("icon list has %d entries, want 3", len(list.Icons))
	}

	var urls []string
	for _, entry := range list.Icons {
		urls = append(urls, entry.URL)
		name, ok := strings.CutPrefix(entry.URL, root+"/")
		if !ok {
			t.Errorf("URL %q outside %s", entry.URL, root)
			continue
		}
		if _, err := os.Stat(filepath.Join(archiveDir, name)); err != nil {
			t.Errorf("%s is listed but not archived: %v", entry.URL, err)
		}
	}
	if !slices.Contains(urls, root+"/logo_s24.png") {
		t.Errorf("URLs = %v, want the png extension kept", urls)
	}
}

func TestExecuteIconListWithoutArchive(t *testing.T) {
	out := t.TempDir()
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Sources:     twoSources(),
		OutputDir:   out,
		IconListURL: "https://icons.example.com",
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Stats.Published != 0 {
		t.Errorf("Published = %d, want 0", res.Stats.Published)
	}
	data, err := os.ReadFile(filepath.Join(out, FileIconList))
	if err != nil {
		t.Fatalf("icon list missing: %v", err)
	}
	if strings.Contains(string(data), "https://") {
		t.Errorf("icon list should not advertise unarchived icons:\n%s", data)
	}
}

func TestExecutePrefix(t *testing.T) {
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Sources:   twoSources(),
		OutputDir: t.TempDir(),
		Prefix:    "ico",
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(res.Module, "_prefix: 'ico',") {
		t.Error("module should carry the configured prefix")
	}
}

func TestExecuteTemplateErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "broken.mjs")
	if err := os.WriteFile(tmpl, []byte("export default {};\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")

	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Sources:    twoSources(),
		Template:   tmpl,
		OutputDir:  out,
		ArchiveDir: filepath.Join(out, "icons_svg"),
	})
	if !errors.Is(err, errors.ErrCodeTemplate) {
		t.Fatalf("Execute() error = %v, want TEMPLATE", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output directory should not be created on template error")
	}
}

func TestExecuteMissingTemplate(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Sources:   twoSources(),
		Template:  filepath.Join(t.TempDir(), "missing.mjs"),
		OutputDir: t.TempDir(),
	})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Execute() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecuteDuplicateWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Sources: []compiler.Source{
			{Name: "user@person@svg", Content: svgDoc(`<path d="M1"/>`)},
			{Name: "user_s24.svg", Content: svgDoc(`<path d="M2"/>`)},
		},
		OutputDir:  out,
		ArchiveDir: filepath.Join(out, "icons_svg"),
	})
	if !errors.Is(err, errors.ErrCodeDuplicateIcon) {
		t.Fatalf("Execute() error = %v, want DUPLICATE_ICON", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output directory should not be created on a failed run")
	}
}

func minifyServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if err := r.ParseForm(); err != nil || r.PostForm.Get("input") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		io.WriteString(w, "minified();")
	}))
	t.Cleanup(srv.Close)
	return srv
}

// countingCache records how often the runner reads and writes the cache.
type countingCache struct {
	cache.Cache
	gets, sets atomic.Int32
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets.Add(1)
	return c.Cache.Get(ctx, key)
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.sets.Add(1)
	return c.Cache.Set(ctx, key, data, ttl)
}

func TestExecuteMinifyCached(t *testing.T) {
	var hits atomic.Int32
	srv := minifyServer(t, &hits)

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := &countingCache{Cache: fc}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{
		Sources:    twoSources(),
		OutputDir:  t.TempDir(),
		Minify:     true,
		MinifyURL:  srv.URL,
		HTTPClient: srv.Client(),
	}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.Minified != "minified();" || first.CacheInfo.MinifyHit || !first.Stats.Minified {
		t.Errorf("first run: minified=%q hit=%v", first.Minified, first.CacheInfo.MinifyHit)
	}
	if gets, sets := c.gets.Load(), c.sets.Load(); gets != 1 || sets != 1 {
		t.Errorf("first run: %d cache reads, %d writes, want 1 and 1", gets, sets)
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !second.CacheInfo.MinifyHit || second.Minified != "minified();" {
		t.Errorf("second run: minified=%q hit=%v", second.Minified, second.CacheInfo.MinifyHit)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("minifier called %d times, want 1", n)
	}
	if gets, sets := c.gets.Load(), c.sets.Load(); gets != 2 || sets != 1 {
		t.Errorf("after second run: %d cache reads, %d writes, want 2 and 1", gets, sets)
	}

	data, err := os.ReadFile(filepath.Join(opts.OutputDir, FileMinified))
	if err != nil || string(data) != "minified();" {
		t.Errorf("minified file = %q, %v", data, err)
	}
}

func TestExecuteMinifyFailurePassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{
		Sources:    twoSources(),
		OutputDir:  t.TempDir(),
		Minify:     true,
		MinifyURL:  srv.URL,
		HTTPClient: srv.Client(),
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Minified != res.Module || res.Stats.Minified {
		t.Error("failed minification should fall back to the unminified module")
	}
}

func TestCompileSkipsArchive(t *testing.T) {
	archiveDir := t.TempDir()
	res, err := NewRunner(nil, nil, nil).Compile(context.Background(), Options{
		InputDir:   writeSources(t, twoSources()),
		ArchiveDir: archiveDir,
	})
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if res.Registry.Len() != 2 {
		t.Errorf("Len() = %d, want 2", res.Registry.Len())
	}
	entries, _ := os.ReadDir(archiveDir)
	if len(entries) != 0 {
		t.Errorf("Compile() archived %d files, want 0", len(entries))
	}
}
