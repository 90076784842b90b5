package minify

import (
	"context"

	tdminify "github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"

	"github.com/matzehuels/pangolin/pkg/errors"
)

const mediaTypeJS = "text/javascript"

// Local minifies in-process with tdewolff/minify.
type Local struct {
	m *tdminify.M
}

// NewLocal creates a Local minifier.
func NewLocal() *Local {
	m := tdminify.New()
	m.AddFunc(mediaTypeJS, js.Minify)
	return &Local{m: m}
}

// Name implements Minifier.
func (*Local) Name() string { return "local" }

// Minify implements Minifier.
func (l *Local) Minify(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := l.m.String(mediaTypeJS, src)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMinifyFailed, err, "minify javascript")
	}
	return out, nil
}
