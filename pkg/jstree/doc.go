// Package jstree reads and writes the JSON produced by the jsTree widget's
// get_json() call.
//
// The widget emits nodes of the form
//
//	{"id": "osm-rel-62422", "text": "Berlin", "state": {"selected": true},
//	 "children": [ ... ]}
//
// where children are either nested node objects or, for nodes the widget has
// not rendered yet, bare id strings. [Child] resolves both shapes when
// decoding so the rest of the program only sees [tree.Node] values.
//
// [Decode] accepts a top-level array or a single node object. [ToTree] and
// [FromTree] convert between widget nodes and [tree.Node].
//
// [tree.Node]: github.com/osmtree/osmtree/pkg/tree.Node
package jstree
