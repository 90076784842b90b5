package compiler

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/pangolin/pkg/errors"
)

// Archiver stores a copy of a source under its canonical name.
type Archiver interface {
	Archive(ctx context.Context, name string, content []byte) error
}

// DirArchiver writes archive copies into a directory, creating it on first
// use. Existing files are overwritten.
type DirArchiver struct {
	Dir string
}

// Archive implements Archiver.
func (a DirArchiver) Archive(ctx context.Context, name string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := errors.ValidateFileName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(a.Dir, name), content, 0o644)
}

// NullArchiver discards everything.
type NullArchiver struct{}

// Archive implements Archiver.
func (NullArchiver) Archive(context.Context, string, []byte) error { return nil }
