package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/geo"
	"github.com/osmtree/osmtree/pkg/integrations/overpass"
)

// relationFlags holds flags for the relation command.
type relationFlags struct {
	geojson bool
	output  string
	refresh bool
}

// relationCommand creates the relation command.
func (c *CLI) relationCommand() *cobra.Command {
	var flags relationFlags

	cmd := &cobra.Command{
		Use:   "relation <id>",
		Short: "Show the tags or geometry of a relation",
		Long: `Fetch a single relation from Overpass. The id may carry the tree widget
prefix (osm-rel-). By default the tags are printed as a table; --geojson fetches
the member geometry and prints a GeoJSON feature collection instead.`,
		Example: `  osmtree relation 62422
  osmtree relation osm-rel-62422 --geojson -o berlin.geojson`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRelation(cmd, c.normalizer().ID(args[0]), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.geojson, "geojson", false, "print member geometry as GeoJSON")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "bypass the cache")

	return cmd
}

func (c *CLI) runRelation(cmd *cobra.Command, id string, flags relationFlags) error {
	if err := apperrors.ValidateRelationID(id); err != nil {
		return err
	}

	ctx := cmd.Context()
	backend := c.openCache(ctx)
	defer backend.Close()

	detail := overpass.DetailTags
	if flags.geojson {
		detail = overpass.DetailGeometry
	}

	e, err := spin(ctx, "Fetching relation "+id+"...", func() (*overpass.Element, error) {
		return c.newOverpass(backend).FetchRelation(ctx, id, detail, flags.refresh)
	})
	if err != nil {
		return err
	}

	var data []byte
	if flags.geojson {
		if data, err = geo.Convert([]overpass.Element{*e}).MarshalJSON(); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode geojson")
		}
		data = append(data, '\n')
	} else {
		data = []byte(tagTable(e.Tags) + "\n")
	}

	if flags.output == "" {
		if !flags.geojson {
			printInfo("%s %s", StyleTitle.Render(e.Name()), StyleDim.Render("relation "+id))
		}
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return writeOutput(flags.output, data, cmd.OutOrStdout())
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Wrote %d bytes", len(data))
	printFile(path)
	return nil
}
