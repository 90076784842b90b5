package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/pangolin/pkg/errors"
	"github.com/matzehuels/pangolin/pkg/icon"
)

// ReadJSON decodes a manifest from r.
//
// Records are inserted in file order. ReadJSON fails when the JSON is
// malformed, an icon has an empty id, two icons share an id, or a record
// carries a diagnostic (search placeholders are never valid icons).
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Manifest, error) {
	var data manifest
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode manifest")
	}

	b := icon.NewBuilder()
	for i, rec := range data.Icons {
		if rec.IsDiagnostic() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "icon %d: unexpected diagnostic record", i)
		}
		if err := b.Add(rec); err != nil {
			return nil, fmt.Errorf("icon %d: %w", i, err)
		}
	}
	return &Manifest{
		Library:  data.Library,
		Version:  data.Version,
		Registry: b.Build(),
	}, nil
}

// ImportJSON reads the manifest at path.
func ImportJSON(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
