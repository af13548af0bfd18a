// Package geo converts Overpass relation data into GeoJSON.
//
// # Overview
//
// [Convert] takes relation elements fetched with full geometry and builds one
// GeoJSON feature per relation. Feature ids are "relation/<id>"; [Index]
// strips that prefix so features can be joined to exported records.
//
// # Geometry
//
// Relations of type multipolygon and boundary become areas. Way members are
// joined end to end into closed rings, inner rings are placed in the outer
// ring that contains them, and ring orientation follows RFC 7946 (outer
// counter-clockwise, inner clockwise). A single polygon is emitted as a
// Polygon, several as a MultiPolygon. Other relations, and areas whose rings
// do not close, become a MultiLineString of their way members.
//
// Relations without member geometry are skipped. Node members (admin_centre,
// label) never contribute to the geometry.
//
// Convert never modifies its input.
package geo
