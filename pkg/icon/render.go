package icon

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	perrors "github.com/matzehuels/pangolin/pkg/errors"
)

// DefaultPrefix is the library prefix used for derived classes and as the
// placeholder attribute name.
const DefaultPrefix = "pangolin"

var prefixPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ValidatePrefix checks that prefix can be used as an attribute name, a
// class name and a CSS attribute selector without quoting.
func ValidatePrefix(prefix string) error {
	if !prefixPattern.MatchString(prefix) {
		return perrors.New(perrors.ErrCodeInvalidInput, "prefix %q must start with a letter or underscore and contain only letters, digits, '-' and '_'", prefix)
	}
	return nil
}

type renderConfig struct {
	prefix string
}

// RenderOption configures rendering.
type RenderOption func(*renderConfig)

// WithPrefix sets the library prefix (default [DefaultPrefix]).
func WithPrefix(prefix string) RenderOption {
	return func(c *renderConfig) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

func newRenderConfig(options []RenderOption) renderConfig {
	cfg := renderConfig{prefix: DefaultPrefix}
	for _, o := range options {
		o(&cfg)
	}
	return cfg
}

// ResolveAttributes returns the final attribute list for rec: defaults,
// then the derived class, then opts.
func ResolveAttributes(rec Record, opts Attributes, options ...RenderOption) Attributes {
	cfg := newRenderConfig(options)
	return Merge(DefaultAttributes(), Attributes{ClassFor(cfg.prefix, rec.ID)}, opts)
}

// Render creates a detached <svg> element for rec. The path data is parsed
// as SVG content; it is not validated.
func Render(rec Record, opts Attributes, options ...RenderOption) *html.Node {
	svg := &html.Node{
		Type:      html.ElementNode,
		DataAtom:  atom.Svg,
		Data:      "svg",
		Namespace: "svg",
	}
	for _, attr := range ResolveAttributes(rec, opts, options...) {
		svg.Attr = append(svg.Attr, html.Attribute{Key: attr.Key, Val: attr.Value})
	}

	children, err := html.ParseFragment(strings.NewReader(rec.PathData), svg)
	if err != nil {
		// ParseFragment only fails on reader errors; keep the raw text.
		svg.AppendChild(&html.Node{Type: html.RawNode, Data: rec.PathData})
		return svg
	}
	for _, c := range children {
		svg.AppendChild(c)
	}
	return svg
}

// RenderToText renders rec as markup. Attribute values are escaped, the
// path data is emitted verbatim.
func RenderToText(rec Record, opts Attributes, options ...RenderOption) string {
	var b strings.Builder
	b.WriteString("<svg")
	for _, attr := range ResolveAttributes(rec, opts, options...) {
		b.WriteByte(' ')
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attr.Value))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	b.WriteString(rec.PathData)
	b.WriteString("</svg>")
	return b.String()
}

// Markup serializes a node tree, e.g. the result of [Render].
func Markup(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}
