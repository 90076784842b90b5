package compiler

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pangolin/pkg/errors"
	"github.com/matzehuels/pangolin/pkg/observability"
)

// Source is one raw icon file.
type Source struct {
	Name    string // file name, e.g. "user@person,avatar@svg"
	Content string // raw SVG text
}

// Discover reads every regular, non-hidden file in dir. The result is
// sorted by file name so repeated runs over the same directory produce the
// same registry order.
func Discover(ctx context.Context, dir string) (sources []Source, err error) {
	start := time.Now()
	defer func() {
		observability.Compile().OnDiscover(ctx, dir, len(sources), time.Since(start), err)
	}()

	if err := errors.ValidatePath(dir); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "icon directory %s", dir)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read icon directory %s", dir)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}

	out := make([]Source, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0) * 2)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", name)
			}
			out[i] = Source{Name: name, Content: string(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
