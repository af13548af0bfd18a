// Package export turns a tree-widget selection into a downloadable file.
//
// This package implements the filter → flatten → enrich → assemble →
// serialize pipeline shared by the CLI and the HTTP API, so both produce
// byte-identical output for the same input.
//
// # Pipeline
//
//  1. Filter: keep selected widget nodes ([tree.Normalizer.FilterSelected])
//  2. Flatten: one [Record] per selected node with its flat parent in `_parent`
//  3. Enrich: for Include tags or geometry, fetch all records' relations in a
//     single Overpass request and merge tags, bounds, members and geometry
//  4. Assemble: Structure tree nests records on `_parent` ([Branch]); nodes
//     keeps the flat order and strips `_parent`
//  5. Serialize: JSON with a 2-space indent or XML with a 4-space indent
//
// # Usage
//
//	runner := export.NewRunner(overpassClient, logger)
//	result, err := runner.Execute(ctx, nodes, export.Options{
//	    Structure: export.StructureTree,
//	    Format:    export.FormatJSON,
//	    Include:   export.IncludeTags,
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(result.FileName, result.Data, 0o644)
//
// # Errors
//
// Every error returned by [Runner.Execute] carries a [apperrors.Code]:
// INVALID_* for bad options or identifiers, NETWORK_ERROR and EMPTY_RESULT for
// failed enrichment, and STRUCTURAL_ERROR for orphaned records in strict mode.
// The cause chain is preserved, so errors.Is(err, integrations.ErrEmptyResult)
// also holds. A failed run never returns partial data.
//
// [apperrors.Code]: github.com/osmtree/osmtree/pkg/errors.Code
package export
