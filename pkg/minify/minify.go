// Package minify compresses the compiled JavaScript module.
//
// Two backends implement [Minifier]: [Remote] posts the source to an HTTP
// minification service (form field "input", minified text in the body) and
// [Local] minifies in-process. [Cached] stores results keyed by content
// hash so unchanged builds skip the work.
//
// Minification is optional. [Run] never fails: on error or timeout it logs
// a warning and returns the input unchanged, which is always a valid
// module.
package minify

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pangolin/pkg/observability"
)

// Minifier compresses JavaScript source.
type Minifier interface {
	// Name identifies the backend in cache keys and logs.
	Name() string
	Minify(ctx context.Context, src string) (string, error)
}

// DefaultTimeout bounds a single Run.
const DefaultTimeout = 30 * time.Second

// Run minifies src with m under timeout. When m fails the error is logged
// at warn level and src is returned with ok set to false.
func Run(ctx context.Context, m Minifier, src string, timeout time.Duration, logger *log.Logger) (out string, ok bool) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	out, err := m.Minify(ctx, src)
	observability.Compile().OnMinifyComplete(ctx, m.Name(), time.Since(start), err)
	if err != nil {
		logger.Warn("minify failed, keeping unminified output", "backend", m.Name(), "err", err)
		return src, false
	}
	logger.Debug("minified", "backend", m.Name(), "in", len(src), "out", len(out))
	return out, true
}
