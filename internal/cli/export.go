package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/osmtree/osmtree/pkg/export"
	"github.com/osmtree/osmtree/pkg/tree"
)

// exportFlags holds flags for the export command.
type exportFlags struct {
	export.Options

	output      string
	records     bool
	deselect    bool
	nodes       []string
	children    []string
	descendants []string
}

// selections returns the selection flags keyed by mode, in application order.
func (f exportFlags) selections() []selection {
	return []selection{
		{tree.SelectNode, f.nodes},
		{tree.SelectChildren, f.children},
		{tree.SelectDescendants, f.descendants},
	}
}

type selection struct {
	mode tree.SelectMode
	ids  []string
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the selected relations of a tree widget payload",
		Long: `Export reads the tree widget state (the JSON the widget returns from
get_json), keeps the selected relations and writes them as a nested tree or a
flat node list, in JSON or XML.

Include levels:
  simple    ids, names and hierarchy only (no network access)
  tags      adds OSM tags and bounding boxes from Overpass
  geometry  adds members and a GeoJSON geometry per relation

Use "-" as file to read from stdin. The selection in the file can be changed
with --select, --select-children and --select-descendants. With --records the
input is a flat record list as written by --structure nodes.`,
		Example: `  osmtree export state.json
  osmtree export state.json --structure nodes --format xml -o -
  osmtree tree build 62422 | osmtree export - --select-children 62422 --include tags`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, args[0], flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.Structure, "structure", export.DefaultStructure, "output structure: tree or nodes")
	f.StringVar(&flags.Format, "format", export.DefaultFormat, "output format: json or xml")
	f.StringVar(&flags.Include, "include", export.DefaultInclude, "enrichment: simple, tags or geometry")
	f.BoolVar(&flags.Strict, "strict", false, "fail when records cannot be placed in the tree")
	f.BoolVar(&flags.Refresh, "refresh", false, "bypass the cache")
	f.StringVarP(&flags.output, "output", "o", "", "output file (default: add_selection.<format>, - for stdout)")
	f.BoolVar(&flags.records, "records", false, "read a flat record list instead of a widget payload")
	f.BoolVar(&flags.deselect, "deselect", false, "clear the selection stored in the payload first")
	f.StringSliceVar(&flags.nodes, "select", nil, "select these relations")
	f.StringSliceVar(&flags.children, "select-children", nil, "select the children of these relations")
	f.StringSliceVar(&flags.descendants, "select-descendants", nil, "select all descendants of these relations")

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, path string, flags exportFlags) error {
	opts := flags.Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	opts.Logger = logger

	backend := c.openCache(ctx)
	defer backend.Close()
	runner := c.newRunner(backend)

	var (
		res *export.Result
		err error
	)
	if flags.records {
		records, rerr := readRecords(path, cmd.InOrStdin())
		if rerr != nil {
			return rerr
		}
		res, err = spin(ctx, "Exporting records...", func() (*export.Result, error) {
			return runner.ExecuteRecords(ctx, records, opts)
		})
	} else {
		nodes, rerr := readTree(path, cmd.InOrStdin())
		if rerr != nil {
			return rerr
		}
		nodes = c.applySelection(nodes, flags)
		res, err = spin(ctx, "Exporting selection...", func() (*export.Result, error) {
			return runner.Execute(ctx, nodes, opts)
		})
	}
	if err != nil {
		return err
	}

	if res.Stats.Selected == 0 {
		printWarning("Nothing is selected")
	}

	out := flags.output
	if out == "" {
		out = res.FileName
	}
	if err := writeOutput(out, res.Data, cmd.OutOrStdout()); err != nil {
		return err
	}
	if out != "-" {
		printExportStats(res.Stats)
	}
	return nil
}

// applySelection applies the selection flags to nodes.
func (c *CLI) applySelection(nodes []*tree.Node, flags exportFlags) []*tree.Node {
	if flags.deselect {
		nodes = tree.Deselect(nodes)
	}
	z := c.normalizer()
	for _, s := range flags.selections() {
		if len(s.ids) > 0 {
			nodes = z.Select(nodes, s.mode, s.ids...)
		}
	}
	return nodes
}

// readRecords decodes a flat record list from path, or from stdin for "-".
func readRecords(path string, stdin io.Reader) ([]export.Record, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open records: %w", err)
		}
		defer f.Close()
		r = f
	}
	return export.DecodeRecords(r)
}
