package cache

// Keyer derives cache keys.
type Keyer interface {
	// MinifyKey keys minified output by the hash of its input and the
	// minifier backend that produced it.
	MinifyKey(contentHash, backend string) string

	// HTTPKey keys a raw HTTP response body.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MinifyKey implements Keyer.
func (DefaultKeyer) MinifyKey(contentHash, backend string) string {
	return hashKey("minify", contentHash, backend)
}

// HTTPKey implements Keyer.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ScopedKeyer wraps a Keyer with a prefix, e.g. to keep the caches of
// several icon sets apart in one shared Redis database.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// MinifyKey implements Keyer.
func (k *ScopedKeyer) MinifyKey(contentHash, backend string) string {
	return k.prefix + k.inner.MinifyKey(contentHash, backend)
}

// HTTPKey implements Keyer.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}
