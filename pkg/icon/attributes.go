package icon

import (
	"slices"
	"strings"
)

// Attribute is a single SVG attribute.
type Attribute struct {
	Key   string
	Value string
}

// Attributes is an ordered attribute list. Keys are case-sensitive.
type Attributes []Attribute

// Get returns the value for key.
func (a Attributes) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Options builds render options from a map. Keys are sorted so the result
// is deterministic.
func Options(m map[string]string) Attributes {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make(Attributes, 0, len(keys))
	for _, k := range keys {
		out = append(out, Attribute{Key: k, Value: m[k]})
	}
	return out
}

// ParseOptions parses "key=value" pairs into render options, keeping
// their order. Pairs without "=" get an empty value.
func ParseOptions(pairs []string) Attributes {
	out := make(Attributes, 0, len(pairs))
	for _, p := range pairs {
		k, v, _ := strings.Cut(p, "=")
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, Attribute{Key: k, Value: v})
		}
	}
	return out
}

// Merge combines attribute layers. Later layers win: a key that appears
// again overwrites the earlier value but keeps its first position, new keys
// are appended in layer order.
func Merge(layers ...Attributes) Attributes {
	var out Attributes
	index := make(map[string]int)
	for _, layer := range layers {
		for _, attr := range layer {
			if i, ok := index[attr.Key]; ok {
				out[i].Value = attr.Value
				continue
			}
			index[attr.Key] = len(out)
			out = append(out, attr)
		}
	}
	return out
}

// DefaultAttributes returns the attributes every rendered icon starts from.
func DefaultAttributes() Attributes {
	return Attributes{
		{"xmlns", "http://www.w3.org/2000/svg"},
		{"width", "24"},
		{"height", "24"},
		{"viewBox", "0 0 24 24"},
		{"stroke", "currentColor"},
		{"fill", "none"},
		{"stroke-linecap", "round"},
		{"stroke-width", "2"},
		{"stroke-linejoin", "round"},
	}
}

// ClassFor returns the class attribute derived from an icon id:
// "{prefix} {prefix}-{id}".
func ClassFor(prefix, id string) Attribute {
	return Attribute{Key: "class", Value: prefix + " " + prefix + "-" + id}
}
