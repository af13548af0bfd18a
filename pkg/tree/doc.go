// Package tree provides the hierarchy transforms behind selection exports.
//
// # Overview
//
// A selection starts life as a nested tree of administrative relations held by
// the tree widget. Exporting it means reducing the tree to the selected nodes,
// flattening the result into parent-linked records and, optionally, nesting
// those records again. This package implements those three transforms as pure
// functions over immutable inputs:
//
//   - [FilterSelected]: keep only selected nodes, promoting selected
//     descendants of unselected nodes to the nearest selected ancestor
//   - [Flatten]: pre-order flattening into [Flat] records with explicit parents
//   - [Build]: the inverse of Flatten, grouping records under their parents
//
// # Identifiers
//
// Widget ids carry a namespace prefix ([DefaultPrefix], "osm-rel-") that keeps
// them unique in the page. [Normalizer] strips it from every id, parent and
// child reference emitted by [FilterSelected]. The parent of a top-level record
// is the [Root] sentinel "#".
//
// # Round Trip
//
// For any tree t without cycles:
//
//	flat := tree.Flatten(t, tree.Root)
//	back := tree.Build(flat, tree.FlatID[*tree.Node], tree.FlatParent[*tree.Node], tree.Root)
//
// yields a tree with the same ids in the same child order at every level.
//
// # Recursion Depth
//
// All transforms recurse once per tree level. Administrative hierarchies are
// rarely deeper than ten levels, so recursion depth is bounded by the input
// rather than by the number of nodes. [Build] indexes records by parent once,
// so its cost is linear in the number of records.
//
// # Concurrency
//
// None of the functions mutate their inputs or share state, so they may be
// called concurrently on the same tree. Helpers that change selection state
// ([Select], [Deselect]) return modified copies.
package tree
