package cache

// ScopedKeyer wraps a Keyer with a prefix for isolation between deployments
// that share one backend.
//
// Example usage:
//
//	// Staging and production share a Redis database
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// RelationKey generates a prefixed key for relation lookups.
func (k *ScopedKeyer) RelationKey(ids []string, detail string) string {
	return k.prefix + k.inner.RelationKey(ids, detail)
}

// SearchKey generates a prefixed key for place searches.
func (k *ScopedKeyer) SearchKey(query string) string {
	return k.prefix + k.inner.SearchKey(query)
}
