// Package integrations provides HTTP clients for the OpenStreetMap services
// osmtree talks to.
//
// # Overview
//
// Each service has its own subpackage:
//
//   - [nominatim]: place search (free text to OSM relations)
//   - [overpass]: relation data with tags, bounds and member geometry
//
// # Client Pattern
//
// Service clients embed the shared [Client] and follow one pattern:
//
//	c := overpass.NewClient(backend, overpass.Options{})
//	resp, err := c.FetchRelations(ctx, []string{"62422"}, overpass.DetailTags, false)
//
// The shared client handles:
//   - Default headers (the User-Agent OSM services require)
//   - Response caching through [cache.Cache] with namespaced keys
//   - Retry with backoff for transport errors, 5xx and 429 responses
//   - Request events for [observability.HTTPHooks]
//
// # Errors
//
// Failures are reported through sentinels that callers test with errors.Is:
//
//   - [ErrNetwork]: the request failed or returned a non-2xx status. When a
//     response arrived, errors.As recovers a [*StatusError].
//   - [ErrNotFound]: the service answered 404
//   - [ErrEmptyResult]: the query succeeded but matched nothing
//
// [nominatim]: github.com/osmtree/osmtree/pkg/integrations/nominatim
// [overpass]: github.com/osmtree/osmtree/pkg/integrations/overpass
// [cache.Cache]: github.com/osmtree/osmtree/pkg/cache.Cache
// [observability.HTTPHooks]: github.com/osmtree/osmtree/pkg/observability.HTTPHooks
package integrations
