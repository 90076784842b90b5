package minify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pangolin/pkg/cache"
	perrors "github.com/matzehuels/pangolin/pkg/errors"
)

func TestRemote(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		if got := r.FormValue("input"); got != "const a = 1 + 2;" {
			t.Errorf("input = %q", got)
		}
		_, _ = w.Write([]byte("const a=3;"))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, srv.Client())
	out, err := r.Minify(context.Background(), "const a = 1 + 2;")
	if err != nil {
		t.Fatalf("Minify() error: %v", err)
	}
	if out != "const a=3;" {
		t.Errorf("Minify() = %q", out)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestRemoteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	r := &Remote{URL: srv.URL, Client: srv.Client(), Attempts: 3, Delay: time.Millisecond}
	out, err := r.Minify(context.Background(), "x")
	if err != nil || out != "ok" {
		t.Fatalf("Minify() = %q, %v; want ok", out, err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestRemoteClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	r := &Remote{URL: srv.URL, Client: srv.Client(), Attempts: 3, Delay: time.Millisecond}
	_, err := r.Minify(context.Background(), "x")
	if !perrors.Is(err, perrors.ErrCodeMinifyFailed) {
		t.Errorf("Minify() error = %v, want MINIFY_FAILED", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestRemoteInvalidURL(t *testing.T) {
	r := NewRemote("ftp://example.com", nil)
	if _, err := r.Minify(context.Background(), "x"); !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("Minify() error = %v, want INVALID_INPUT", err)
	}
}

func TestLocal(t *testing.T) {
	src := "const answer = 40 + 2;\n\nfunction double( x ) {\n\treturn x * 2;\n}\nexport default double;\n"
	out, err := NewLocal().Minify(context.Background(), src)
	if err != nil {
		t.Fatalf("Minify() error: %v", err)
	}
	if len(out) >= len(src) {
		t.Errorf("Minify() output not smaller: %q", out)
	}
	if !strings.Contains(out, "export default") {
		t.Errorf("Minify() dropped the export: %q", out)
	}
}

type stubMinifier struct {
	calls int
	out   string
	err   error
}

func (s *stubMinifier) Name() string { return "stub" }
func (s *stubMinifier) Minify(context.Context, string) (string, error) {
	s.calls++
	return s.out, s.err
}

func TestRunPassThrough(t *testing.T) {
	logger := log.New(&strings.Builder{})

	out, ok := Run(context.Background(), &stubMinifier{err: errors.New("boom")}, "source", time.Second, logger)
	if ok || out != "source" {
		t.Errorf("Run() = %q, %v; want pass-through", out, ok)
	}

	out, ok = Run(context.Background(), &stubMinifier{out: "min"}, "source", 0, nil)
	if !ok || out != "min" {
		t.Errorf("Run() = %q, %v; want min, true", out, ok)
	}
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	inner := &stubMinifier{out: "min"}
	c := &Cached{Inner: inner, Cache: fc}

	for range 3 {
		out, err := c.Minify(ctx, "source")
		if err != nil || out != "min" {
			t.Fatalf("Minify() = %q, %v", out, err)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}

	if _, err := c.Minify(ctx, "other source"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 after new input", inner.calls)
	}
}

func TestCachedDoesNotStoreFailures(t *testing.T) {
	inner := &stubMinifier{err: errors.New("down")}
	c := &Cached{Inner: inner, Cache: cache.NewNullCache()}
	if _, err := c.Minify(context.Background(), "x"); err == nil {
		t.Error("Minify() should return the inner error")
	}
}

func TestCachedLookup(t *testing.T) {
	ctx := context.Background()
	fc, _ := cache.NewFileCache(t.TempDir())
	c := &Cached{Inner: &stubMinifier{out: "min"}, Cache: fc}

	if _, ok := c.Lookup(ctx, "src"); ok {
		t.Error("Lookup() before Minify should miss")
	}
	if _, err := c.Minify(ctx, "src"); err != nil {
		t.Fatal(err)
	}
	if out, ok := c.Lookup(ctx, "src"); !ok || out != "min" {
		t.Errorf("Lookup() = %q, %v; want min, true", out, ok)
	}
}
