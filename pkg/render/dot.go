package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/osmtree/osmtree/pkg/export"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the relation id, admin level and child counts to node
	// labels. When false, only the name is shown.
	Detailed bool
}

// ToDOT converts branches to Graphviz DOT source.
//
// Relations that were enriched with tags and carry an admin_level are
// filled by level, so sibling levels line up visually.
func ToDOT(branches []*export.Branch, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges [][2]string
	seen := make(map[string]bool)
	for _, root := range branches {
		root.Walk(func(b *export.Branch) {
			if !seen[b.ID] {
				seen[b.ID] = true
				fmt.Fprintf(&buf, "  %q [%s];\n", b.ID, strings.Join(fmtAttrs(b, fmtLabel(b, opts.Detailed)), ", "))
			}
			for _, c := range b.Children {
				edges = append(edges, [2]string{b.ID, c.ID})
			}
		})
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(b *export.Branch, detailed bool) string {
	name := b.Name
	if name == "" {
		name = b.ID
	}
	if !detailed {
		return name
	}

	parts := []string{"relation " + b.ID}
	if lvl := b.Tags["admin_level"]; lvl != "" {
		parts = append(parts, "admin_level: "+lvl)
	}
	parts = append(parts, fmt.Sprintf("selected: %d/%d", len(b.AllSelected), len(b.Children)))
	return name + "\n" + strings.Join(parts, "\n")
}

// levelColors fills nodes by admin_level (2 = country ... 10 = quarter).
var levelColors = map[string]string{
	"2":  "#dbe9f6",
	"4":  "#e3f1dc",
	"5":  "#eef5d6",
	"6":  "#fbf0d4",
	"7":  "#fbe4d4",
	"8":  "#f6dbe0",
	"9":  "#ecdcf2",
	"10": "#e4e4e4",
}

func fmtAttrs(b *export.Branch, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if c, ok := levelColors[b.Tags["admin_level"]]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [ToPDF] or [ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one that
// scales: origin at zero and pixel width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(header))
}
