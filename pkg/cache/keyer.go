package cache

import (
	"slices"
	"strings"
)

// DefaultKeyer builds unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default [Keyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:" + namespace + ":" + key.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// RelationKey hashes the sorted ids together with the detail level.
func (DefaultKeyer) RelationKey(ids []string, detail string) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return hashKey("relation", sorted, detail)
}

// SearchKey hashes the case-folded, trimmed query.
func (DefaultKeyer) SearchKey(query string) string {
	return hashKey("search", strings.ToLower(strings.TrimSpace(query)))
}

var _ Keyer = DefaultKeyer{}
