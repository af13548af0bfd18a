package overpass

import "strconv"

// Detail selects the Overpass output verbosity.
type Detail string

const (
	// DetailTags returns tags and bounding boxes.
	DetailTags Detail = "tags"

	// DetailBody returns tags and member lists.
	DetailBody Detail = "body"

	// DetailGeometry returns tags, bounds and members with coordinates.
	DetailGeometry Detail = "geom"
)

// Valid reports whether d is a known detail level.
func (d Detail) Valid() bool {
	switch d {
	case DetailTags, DetailBody, DetailGeometry:
		return true
	}
	return false
}

// out returns the Overpass output statement for d.
func (d Detail) out() string {
	if d == DetailTags {
		// Bounding boxes are only emitted for tags when asked for.
		return "out tags bb;"
	}
	return "out " + string(d) + ";"
}

// Response is the decoded JSON answer of the interpreter.
type Response struct {
	Version   float64   `json:"version,omitempty"`
	Generator string    `json:"generator,omitempty"`
	Remark    string    `json:"remark,omitempty"`
	Elements  []Element `json:"elements"`
}

// Element is an OSM element as returned by Overpass. Only relations carry
// Members; Bounds is set for relations with output detail tags or geom.
type Element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat,omitempty"`
	Lon      float64           `json:"lon,omitempty"`
	Bounds   *Bounds           `json:"bounds,omitempty"`
	Members  []Member          `json:"members,omitempty"`
	Geometry []LatLon          `json:"geometry,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// IDString returns the element id in decimal.
func (e Element) IDString() string {
	return strconv.FormatInt(e.ID, 10)
}

// Name returns the name tag, or an empty string.
func (e Element) Name() string {
	return e.Tags["name"]
}

// Bounds is a bounding box in WGS84 degrees.
type Bounds struct {
	MinLat float64 `json:"minlat"`
	MinLon float64 `json:"minlon"`
	MaxLat float64 `json:"maxlat"`
	MaxLon float64 `json:"maxlon"`
}

// Member is one entry of a relation's member list. Way members carry
// Geometry and node members Lat/Lon when fetched with [DetailGeometry].
type Member struct {
	Type     string   `json:"type"`
	Ref      int64    `json:"ref"`
	Role     string   `json:"role"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	Geometry []LatLon `json:"geometry,omitempty"`
}

// LatLon is a single coordinate. Overpass emits null entries for nodes
// outside the query bbox; those decode as the zero value.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Index maps the decimal id of every relation in resp to its element.
// Later duplicates win.
func Index(resp *Response) map[string]*Element {
	if resp == nil {
		return map[string]*Element{}
	}
	idx := make(map[string]*Element, len(resp.Elements))
	for i := range resp.Elements {
		e := &resp.Elements[i]
		if e.Type != "relation" {
			continue
		}
		idx[e.IDString()] = e
	}
	return idx
}

// Relations returns the relation elements of resp in order.
func Relations(resp *Response) []Element {
	if resp == nil {
		return nil
	}
	var out []Element
	for _, e := range resp.Elements {
		if e.Type == "relation" {
			out = append(out, e)
		}
	}
	return out
}
