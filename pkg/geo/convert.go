package geo

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/osmtree/osmtree/pkg/integrations/overpass"
)

// FeaturePrefix is prepended to relation ids to form feature ids.
const FeaturePrefix = "relation/"

// Convert builds a feature collection with one feature per relation element
// that has member geometry. Non-relation elements are ignored.
func Convert(elements []overpass.Element) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, e := range elements {
		if e.Type != "relation" {
			continue
		}
		g := Geometry(e)
		if g == nil {
			continue
		}
		f := geojson.NewFeature(g)
		f.ID = FeaturePrefix + e.IDString()
		f.Properties = properties(e)
		fc.Append(f)
	}
	return fc
}

// Geometry returns the geometry of a relation element, or nil if none of its
// way members carries coordinates.
func Geometry(e overpass.Element) orb.Geometry {
	var outer, inner, all []orb.LineString
	for _, m := range e.Members {
		if m.Type != "way" || len(m.Geometry) < 2 {
			continue
		}
		line := lineString(m.Geometry)
		all = append(all, line)
		if m.Role == "inner" {
			inner = append(inner, line)
		} else {
			outer = append(outer, line)
		}
	}
	if len(all) == 0 {
		return nil
	}

	if isArea(e) {
		outerRings, openOuter := joinRings(outer)
		innerRings, _ := joinRings(inner)
		if len(outerRings) > 0 && len(openOuter) == 0 {
			polys := assemble(outerRings, innerRings)
			if len(polys) == 1 {
				return polys[0]
			}
			return orb.MultiPolygon(polys)
		}
	}
	return orb.MultiLineString(all)
}

// Index maps relation ids, without the feature prefix, to their features.
// Features whose id is not a relation id are skipped.
func Index(fc *geojson.FeatureCollection) map[string]*geojson.Feature {
	idx := make(map[string]*geojson.Feature)
	if fc == nil {
		return idx
	}
	for _, f := range fc.Features {
		id, ok := f.ID.(string)
		if !ok || !strings.HasPrefix(id, FeaturePrefix) {
			continue
		}
		idx[strings.TrimPrefix(id, FeaturePrefix)] = f
	}
	return idx
}

func isArea(e overpass.Element) bool {
	switch e.Tags["type"] {
	case "multipolygon", "boundary":
		return true
	}
	return false
}

func lineString(pts []overpass.LatLon) orb.LineString {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = orb.Point{p.Lon, p.Lat}
	}
	return ls
}

func properties(e overpass.Element) geojson.Properties {
	tags := make(map[string]string, len(e.Tags))
	for k, v := range e.Tags {
		tags[k] = v
	}
	props := geojson.Properties{
		"type": "relation",
		"id":   FeaturePrefix + e.IDString(),
		"tags": tags,
	}
	if name := e.Name(); name != "" {
		props["name"] = name
	}
	return props
}
