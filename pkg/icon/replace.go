package icon

import (
	"errors"

	"golang.org/x/net/html"

	perrors "github.com/matzehuels/pangolin/pkg/errors"
)

// PlaceholderTag is the element name the browser runtime and [Registry.ReplaceAll]
// look for.
const PlaceholderTag = "i"

// Replace renders the icon named by placeholder's prefix attribute, inserts
// it right before placeholder and removes placeholder from the tree. All
// placeholder attributes are forwarded as render options.
//
// On failure the tree is left untouched: a missing attribute or a detached
// placeholder is INVALID_INPUT, an unknown id is ICON_NOT_FOUND.
func (r *Registry) Replace(placeholder *html.Node, options ...RenderOption) (*html.Node, error) {
	cfg := newRenderConfig(options)

	if placeholder == nil || placeholder.Type != html.ElementNode {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "placeholder must be an element")
	}

	opts := make(Attributes, 0, len(placeholder.Attr))
	for _, a := range placeholder.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + key
		}
		opts = append(opts, Attribute{Key: key, Value: a.Val})
	}

	id, ok := opts.Get(cfg.prefix)
	if !ok {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "placeholder <%s> has no %q attribute", placeholder.Data, cfg.prefix)
	}
	rec, ok := r.Get(id)
	if !ok {
		return nil, perrors.New(perrors.ErrCodeIconNotFound, "icon %q not found", id)
	}
	if placeholder.Parent == nil {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "placeholder for %q is not attached to a document", id)
	}

	svg := Render(rec, opts, options...)
	placeholder.Parent.InsertBefore(svg, placeholder)
	placeholder.Parent.RemoveChild(placeholder)
	return svg, nil
}

// ReplaceAll replaces every <i> placeholder carrying the prefix attribute
// in doc. Placeholders that fail are left in place; their errors are
// joined and returned together with the number of replaced elements.
func (r *Registry) ReplaceAll(doc *html.Node, options ...RenderOption) (int, error) {
	cfg := newRenderConfig(options)

	var placeholders []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == PlaceholderTag && hasAttr(n, cfg.prefix) {
			placeholders = append(placeholders, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var errs []error
	replaced := 0
	for _, p := range placeholders {
		if _, err := r.Replace(p, options...); err != nil {
			errs = append(errs, err)
			continue
		}
		replaced++
	}
	return replaced, errors.Join(errs...)
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key && a.Namespace == "" {
			return true
		}
	}
	return false
}
