// Package archive bundles icon sources into a zip file.
//
// Bundles are reproducible: entries keep the order they are given in and
// every entry carries the same fixed modification time, so the same sources
// always produce the same bytes.
package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/pangolin/pkg/errors"
)

// Entry is one file in a bundle.
type Entry struct {
	Name    string
	Content []byte
}

// modTime is stamped on every entry.
var modTime = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Write writes entries as a zip archive to w. Entry names must be plain
// file names; duplicates are rejected.
func Write(ctx context.Context, w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := errors.ValidateFileName(e.Name); err != nil {
			return err
		}
		if seen[e.Name] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate bundle entry %q", e.Name)
		}
		seen[e.Name] = true

		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: modTime,
		})
		if err != nil {
			return err
		}
		if _, err := f.Write(e.Content); err != nil {
			return err
		}
	}
	return zw.Close()
}

// WriteFile writes the bundle to path. The file is written next to its
// destination and renamed into place.
func WriteFile(ctx context.Context, path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".bundle-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Write(ctx, tmp, entries); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile returns the entries of the bundle at path in archive order.
func ReadFile(path string) ([]Entry, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: f.Name, Content: data})
	}
	return entries, nil
}
