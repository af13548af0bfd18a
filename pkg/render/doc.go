// Package render draws an exported selection as a node-link diagram.
//
// # Overview
//
// [ToDOT] converts assembled [export.Branch] hierarchies into Graphviz DOT
// source, one box per relation with arrows from parent to child. [RenderSVG]
// lays the graph out with the embedded Graphviz (go-graphviz, no system
// install needed).
//
//	dot := render.ToDOT(result.Branches, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert the SVG using the external rsvg-convert tool
// (from librsvg).
//
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [export.Branch]: github.com/osmtree/osmtree/pkg/export.Branch
package render
