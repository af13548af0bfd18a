// Package cache provides the byte cache behind the Nominatim and Overpass
// clients.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under the XDG cache directory,
//     used by the CLI
//   - [RedisCache]: a shared Redis instance, used by `osmtree serve` when
//     several processes hit the same upstream services
//   - [NullCache]: stores nothing, used for --no-cache and in tests
//
// # Keys
//
// Keys are built by a [Keyer] so the layout stays identical across backends:
//
//	k := cache.NewDefaultKeyer()
//	k.HTTPKey("overpass:", "rel:62422:geom")  // "http:overpass::rel:62422:geom"
//	k.RelationKey([]string{"2", "1"}, "tags") // "relation:<sha256>"
//
// [NewScopedKeyer] prefixes every key, which keeps deployments that share a
// Redis database apart.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached upstream responses.
const (
	// TTLRelation applies to Overpass relation data. Boundaries change rarely.
	TTLRelation = 24 * time.Hour

	// TTLSearch applies to Nominatim search results.
	TTLSearch = 6 * time.Hour
)

// Cache stores opaque byte payloads under string keys.
//
// Get reports a miss with ok == false and a nil error. Implementations must
// be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// HTTPKey returns the key for a raw upstream response.
	HTTPKey(namespace, key string) string

	// RelationKey returns the key for a relation lookup. The order of ids
	// does not matter.
	RelationKey(ids []string, detail string) string

	// SearchKey returns the key for a place search.
	SearchKey(query string) string
}
