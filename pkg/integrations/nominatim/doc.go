// Package nominatim provides an HTTP client for the Nominatim search API.
//
// # Overview
//
// Nominatim (https://nominatim.openstreetmap.org) turns free text into OSM
// objects. osmtree only works with relations, so results are usually passed
// through [Relations]:
//
//	client := nominatim.NewClient(backend, nominatim.Options{})
//	places, err := client.Search(ctx, "Berlin", false)
//	for _, p := range nominatim.Relations(places) {
//	    fmt.Println(p.Label())  // Berlin, Deutschland (city-relation:62422)
//	}
//
// # Usage Policy
//
// The public instance requires an identifying User-Agent and allows at most
// one request per second. Results are cached (6 hours by default) to keep
// repeated searches off the server.
package nominatim
