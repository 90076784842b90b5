package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pangolin/pkg/icon"
)

// ManifestFile is the conventional manifest name in the output directory.
const ManifestFile = "icons.json"

// Manifest is a decoded manifest.
type Manifest struct {
	Library  string
	Version  string
	Registry *icon.Registry
}

type manifest struct {
	Library string        `json:"library,omitempty"`
	Version string        `json:"version,omitempty"`
	Icons   []icon.Record `json:"icons"`
}

// WriteJSON encodes reg as a manifest and writes it to w.
func WriteJSON(w io.Writer, reg *icon.Registry, library, version string) error {
	out := manifest{
		Library: library,
		Version: version,
		Icons:   reg.Records(),
	}
	if out.Icons == nil {
		out.Icons = []icon.Record{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes the manifest of reg to path.
func ExportJSON(path string, reg *icon.Registry, library, version string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, reg, library, version); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type iconListEntry struct {
	Description string `toml:"description"`
	URL         string `toml:"url"`
}

type iconList struct {
	Icons []iconListEntry `toml:"icons"`
}

// WriteIconList writes a TOML list of reg's icons. files maps an icon id to
// its archived file name, e.g. "user" to "user_s24.svg", and each URL is
// that name below urlRoot. Icons without an entry in files are skipped.
func WriteIconList(w io.Writer, reg *icon.Registry, urlRoot string, files map[string]string) error {
	root := strings.TrimRight(urlRoot, "/")
	list := iconList{Icons: make([]iconListEntry, 0, len(files))}
	for _, rec := range reg.Records() {
		name, ok := files[rec.ID]
		if !ok {
			continue
		}
		list.Icons = append(list.Icons, iconListEntry{
			Description: rec.DisplayName,
			URL:         root + "/" + name,
		})
	}
	if err := toml.NewEncoder(w).Encode(list); err != nil {
		return fmt.Errorf("encode icon list: %w", err)
	}
	return nil
}

// ExportIconList writes the icon list of reg to path.
func ExportIconList(path string, reg *icon.Registry, urlRoot string, files map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteIconList(f, reg, urlRoot, files); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
