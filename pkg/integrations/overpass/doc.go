// Package overpass provides an HTTP client for the Overpass API.
//
// # Overview
//
// This package fetches OSM relations by id from an Overpass interpreter
// endpoint (https://overpass-api.de/api/interpreter by default). The query is
// sent as a form-encoded POST body:
//
//	[out:json][timeout:90];
//	rel(id:62422,62782);
//	out geom;
//
// # Usage
//
//	client := overpass.NewClient(backend, overpass.Options{})
//	resp, err := client.FetchRelations(ctx, []string{"62422"}, overpass.DetailTags, false)
//	if err != nil {
//	    return err
//	}
//	byID := overpass.Index(resp)
//	fmt.Println(byID["62422"].Tags["name"])
//
// # Detail Levels
//
//   - [DetailTags]: tags and bounds only (out tags plus bb)
//   - [DetailBody]: tags and members without geometry (out body)
//   - [DetailGeometry]: members with full coordinates (out geom)
//
// # Errors
//
// Ids are validated before any request is made. A transport failure or a
// non-2xx response yields [integrations.ErrNetwork]; a response with no
// elements yields [integrations.ErrEmptyResult]. Neither is cached.
package overpass
