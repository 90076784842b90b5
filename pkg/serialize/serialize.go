// Package serialize renders an icon registry into the distributable
// JavaScript module.
//
// A template is runtime code with these markers:
//
//	@version   replaced by "@version {version}" (first occurrence only)
//	@prefix    replaced by the class and placeholder prefix
//	//@icons   replaced by one object entry per icon
//
// The default runtime template is embedded in the binary and returned by
// [DefaultTemplate]. Output is byte-for-byte deterministic for the same
// registry, template and version.
package serialize

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/matzehuels/pangolin/pkg/errors"
	"github.com/matzehuels/pangolin/pkg/icon"
)

const (
	// VersionMarker is substituted with the build version.
	VersionMarker = "@version"

	// IconsMarker is where the icon entries are inserted. It must occur
	// exactly once.
	IconsMarker = "//@icons"

	// PrefixMarker is substituted with the class and placeholder prefix.
	PrefixMarker = "@prefix"

	// DefaultLibrary is the runtime object the entries bind to.
	DefaultLibrary = "Pangolin"
)

//go:embed template.mjs
var defaultTemplate string

// DefaultTemplate returns the embedded runtime template.
func DefaultTemplate() string {
	return defaultTemplate
}

type config struct {
	library string
	prefix  string
}

// Option configures Serialize.
type Option func(*config)

// WithLibrary sets the runtime object name that the generated toSvg and
// toString bindings call into. It must match the object declared by the
// template.
func WithLibrary(name string) Option {
	return func(c *config) {
		if name != "" {
			c.library = name
		}
	}
}

// WithPrefix sets the prefix the runtime uses for derived classes and the
// placeholder attribute (default [icon.DefaultPrefix]).
func WithPrefix(prefix string) Option {
	return func(c *config) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// Serialize renders reg into template.
//
// Fails with TEMPLATE when the icons marker is missing or occurs more than
// once. A template without a version marker is accepted unchanged.
func Serialize(reg *icon.Registry, template, version string, opts ...Option) (string, error) {
	cfg := config{library: DefaultLibrary, prefix: icon.DefaultPrefix}
	for _, o := range opts {
		o(&cfg)
	}
	if err := icon.ValidatePrefix(cfg.prefix); err != nil {
		return "", err
	}

	head, tail, err := Split(strings.ReplaceAll(template, PrefixMarker, cfg.prefix), version)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString(head)
	for i, rec := range reg.Records() {
		if i > 0 {
			buf.WriteString("\n\t\t")
		}
		if err := writeEntry(&buf, rec, cfg.library); err != nil {
			return "", err
		}
	}
	buf.WriteString(tail)
	return buf.String(), nil
}

// Split splits template at the icons marker and substitutes the version.
// The version is applied after the split, so its text is never mistaken
// for a marker.
func Split(template, version string) (head, tail string, err error) {
	switch n := strings.Count(template, IconsMarker); n {
	case 1:
	case 0:
		return "", "", errors.New(errors.ErrCodeTemplate, "template has no %s placeholder", IconsMarker)
	default:
		return "", "", errors.New(errors.ErrCodeTemplate, "template has %d %s placeholders, want 1", n, IconsMarker)
	}

	head, tail, _ = strings.Cut(template, IconsMarker)
	stamp := VersionMarker + " " + version
	if strings.Contains(head, VersionMarker) {
		head = strings.Replace(head, VersionMarker, stamp, 1)
	} else {
		tail = strings.Replace(tail, VersionMarker, stamp, 1)
	}
	return head, tail, nil
}

func writeEntry(buf *bytes.Buffer, rec icon.Record, library string) error {
	id, err := quote(rec.ID)
	if err != nil {
		return err
	}
	name, err := quote(rec.DisplayName)
	if err != nil {
		return err
	}
	tags, err := quote(rec.Tags)
	if err != nil {
		return err
	}
	path, err := quote(rec.PathData)
	if err != nil {
		return err
	}

	buf.WriteString(id + ": {\n")
	buf.WriteString("\t\t\tname: " + name + ",\n")
	buf.WriteString("\t\t\ttags: " + tags + ",\n")
	buf.WriteString("\t\t\tpath: " + path + ",\n")
	buf.WriteString("\t\t\ttoSvg(options = {}) { return " + library + "._toSvg(this, options); },\n")
	buf.WriteString("\t\t\ttoString(options = {}) { return " + library + "._toString(this, options); },\n")
	buf.WriteString("\t\t},")
	return nil
}

// quote JSON-encodes v without HTML escaping so path markup stays readable.
func quote(v any) (string, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode entry")
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}
