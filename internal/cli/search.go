package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/integrations/nominatim"
)

// searchFlags holds flags for the search command.
type searchFlags struct {
	all     bool
	pick    bool
	json    bool
	refresh bool
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search boundary relations by name",
		Long: `Search OpenStreetMap through Nominatim. Only relations are listed unless
--all is given. With --pick the results are shown in an interactive list and the
chosen relation ids are printed, one per line.`,
		Example: `  osmtree search "Île-de-France"
  osmtree tree build $(osmtree search Bavaria --pick) --depth 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd, strings.Join(args, " "), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.all, "all", false, "include nodes and ways")
	cmd.Flags().BoolVar(&flags.pick, "pick", false, "choose results interactively")
	cmd.Flags().BoolVar(&flags.json, "json", false, "print raw results as JSON")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "bypass the cache")

	return cmd
}

func (c *CLI) runSearch(cmd *cobra.Command, query string, flags searchFlags) error {
	if err := apperrors.ValidateQuery(query); err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	backend := c.openCache(ctx)
	defer backend.Close()

	prog := newProgress(logger)
	places, err := spin(ctx, "Searching "+query+"...", func() ([]nominatim.Place, error) {
		return c.newNominatim(backend).Search(ctx, query, flags.refresh)
	})
	if err != nil {
		return err
	}
	if !flags.all {
		places = nominatim.Relations(places)
	}
	prog.done(fmt.Sprintf("Found %d results for %q", len(places), query))

	out := cmd.OutOrStdout()
	switch {
	case flags.json:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(places)
	case len(places) == 0:
		printWarning("No results")
		return nil
	case flags.pick:
		chosen, err := pickPlaces(places)
		if err != nil {
			return err
		}
		for _, p := range chosen {
			fmt.Fprintln(out, p.ID())
		}
		return nil
	}

	fmt.Fprintln(out, placeTable(places))
	printNextStep("Build a hierarchy", "osmtree tree build "+places[0].ID())
	return nil
}
