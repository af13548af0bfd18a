package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	ltree "github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/osmtree/osmtree/pkg/export"
	"github.com/osmtree/osmtree/pkg/jstree"
	"github.com/osmtree/osmtree/pkg/render"
	"github.com/osmtree/osmtree/pkg/tree"
)

// Supported diagram formats.
const (
	formatSVG = "svg"
	formatPNG = "png"
	formatPDF = "pdf"
	formatDOT = "dot"
)

// treeCommand creates the tree command group.
func (c *CLI) treeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Build, browse and render relation hierarchies",
	}

	cmd.AddCommand(c.treeBuildCommand())
	cmd.AddCommand(c.treeShowCommand())
	cmd.AddCommand(c.treeRenderCommand())

	return cmd
}

// =============================================================================
// tree build
// =============================================================================

// treeBuildFlags holds flags for the tree build command.
type treeBuildFlags struct {
	depth   int
	output  string
	refresh bool
}

func (c *CLI) treeBuildCommand() *cobra.Command {
	var flags treeBuildFlags

	cmd := &cobra.Command{
		Use:   "build <id>...",
		Short: "Build a tree widget payload from boundary subareas",
		Long: `Expand the given relations through their subarea members and print the
hierarchy as tree widget JSON, ready to be loaded, selected and exported.`,
		Example: `  osmtree tree build 62422 --depth 2 -o berlin.json`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTreeBuild(cmd, c.normalizer().IDs(args), flags)
		},
	}

	cmd.Flags().IntVarP(&flags.depth, "depth", "d", 1, "subarea levels to expand below the roots")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "-", "output file (- for stdout)")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "bypass the cache")

	return cmd
}

func (c *CLI) runTreeBuild(cmd *cobra.Command, ids []string, flags treeBuildFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	backend := c.openCache(ctx)
	defer backend.Close()

	b := c.newBuilder(backend)
	b.Refresh = flags.refresh

	prog := newProgress(logger)
	nodes, err := spin(ctx, "Expanding sub-areas...", func() ([]*tree.Node, error) {
		return b.Build(ctx, ids, flags.depth)
	})
	if err != nil {
		return err
	}
	total, _ := tree.Count(nodes)
	prog.done(fmt.Sprintf("Built %d relations, %d levels deep", total, tree.Depth(nodes)))

	var buf bytes.Buffer
	if err := jstree.Encode(&buf, jstree.FromTree(nodes)); err != nil {
		return err
	}
	return writeOutput(flags.output, buf.Bytes(), cmd.OutOrStdout())
}

// =============================================================================
// tree show
// =============================================================================

// treeShowFlags holds flags for the tree show command.
type treeShowFlags struct {
	search   string
	selected bool
}

func (c *CLI) treeShowCommand() *cobra.Command {
	var flags treeShowFlags

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print a tree widget payload as an indented tree",
		Long: `Print the hierarchy of a tree widget payload. Selected nodes are marked.
Use "-" to read from stdin.`,
		Example: `  osmtree tree show berlin.json --search mitte`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := readTree(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if flags.search != "" {
				nodes = tree.Search(nodes, flags.search)
			}
			if flags.selected {
				nodes = onlySelected(nodes)
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.showTree(nodes))

			total, selected := tree.Count(nodes)
			printDetail("%d relations, %d selected", total, selected)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.search, "search", "s", "", "keep only names matching this fuzzy query")
	cmd.Flags().BoolVar(&flags.selected, "selected", false, "keep only selected nodes and their ancestors")

	return cmd
}

// showTree renders nodes with lipgloss.
func (c *CLI) showTree(nodes []*tree.Node) string {
	z := c.normalizer()
	root := ltree.Root(StyleTitle.Render(fmt.Sprintf("%d roots", len(nodes)))).
		Enumerator(ltree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
	for _, n := range nodes {
		root.Child(showNode(z, n))
	}
	return root.String()
}

func showNode(z tree.Normalizer, n *tree.Node) any {
	label := z.Name(n.Name) + " " + StyleDim.Render(z.ID(n.ID))
	if n.Selected {
		label = styleSelected.Render(iconSelected+" "+z.Name(n.Name)) + " " + StyleDim.Render(z.ID(n.ID))
	}
	if len(n.Children) == 0 {
		return label
	}
	t := ltree.Root(label).
		Enumerator(ltree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
	for _, child := range n.Children {
		t.Child(showNode(z, child))
	}
	return t
}

// onlySelected prunes nodes to selected nodes and their ancestors.
func onlySelected(nodes []*tree.Node) []*tree.Node {
	out := []*tree.Node{}
	for _, n := range nodes {
		kids := onlySelected(n.Children)
		if !n.Selected && len(kids) == 0 {
			continue
		}
		cp := *n
		cp.Children = kids
		out = append(out, &cp)
	}
	return out
}

// readTree decodes a tree widget payload from path, or from stdin for "-".
func readTree(path string, stdin io.Reader) ([]*tree.Node, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	nodes, err := jstree.Decode(r)
	if err != nil {
		return nil, err
	}
	return jstree.ToTree(nodes), nil
}

// =============================================================================
// tree render
// =============================================================================

// treeRenderFlags holds flags for the tree render command.
type treeRenderFlags struct {
	format   string
	output   string
	detailed bool
	all      bool
	refresh  bool
}

func (c *CLI) treeRenderCommand() *cobra.Command {
	var flags treeRenderFlags

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render the selected hierarchy as a diagram",
		Long: `Render the selected relations of a tree widget payload as a Graphviz
diagram. --detailed fetches tags so nodes show and are colored by admin level.
PNG and PDF output require rsvg-convert.`,
		Example: `  osmtree tree render berlin.json -f png -o berlin.png --detailed`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTreeRender(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", formatSVG, "svg, png, pdf or dot")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: <input>.<format>, - for stdout)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "label and color nodes using relation tags")
	cmd.Flags().BoolVar(&flags.all, "all", false, "render every node, not only the selection")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "bypass the cache")

	return cmd
}

func (c *CLI) runTreeRender(cmd *cobra.Command, path string, flags treeRenderFlags) error {
	switch flags.format {
	case formatSVG, formatPNG, formatPDF, formatDOT:
	default:
		return fmt.Errorf("unknown diagram format %q (want svg, png, pdf or dot)", flags.format)
	}

	ctx := cmd.Context()
	nodes, err := readTree(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if flags.all {
		tree.Walk(nodes, func(n *tree.Node, _ string) bool {
			n.Selected = true
			return true
		})
	}

	backend := c.openCache(ctx)
	defer backend.Close()

	opts := export.Options{
		Structure: export.StructureTree,
		Include:   export.IncludeSimple,
		Refresh:   flags.refresh,
	}
	if flags.detailed {
		opts.Include = export.IncludeTags
	}
	res, err := c.newRunner(backend).Execute(ctx, nodes, opts)
	if err != nil {
		return err
	}

	dot := render.ToDOT(res.Branches, render.Options{Detailed: flags.detailed})
	data, err := c.renderDiagram(cmd, dot, flags.format)
	if err != nil {
		return err
	}

	out := flags.output
	if out == "" {
		out = diagramName(path, flags.format)
	}
	return writeOutput(out, data, cmd.OutOrStdout())
}

func (c *CLI) renderDiagram(cmd *cobra.Command, dot, format string) ([]byte, error) {
	if format == formatDOT {
		return []byte(dot), nil
	}
	svg, err := render.RenderSVG(cmd.Context(), dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case formatPNG:
		return render.ToPNG(svg, 2)
	case formatPDF:
		return render.ToPDF(svg)
	}
	return svg, nil
}

// diagramName derives the output name from the input file.
func diagramName(input, format string) string {
	if input == "-" {
		return "tree." + format
	}
	base := strings.TrimSuffix(input, ".json")
	return base + "." + format
}
