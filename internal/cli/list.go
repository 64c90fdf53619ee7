package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	var search, season string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog items",
		Long: `List reloads the catalog and prints the items matching the filters.

Search matches name, taste or color, ignoring case. Season is one of
Spring, Summer, Fall, Winter, Year-round or all.

An empty store is seeded with the default fruits first.

Example:
  orchard list
  orchard list --search straw --season summer`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seasonFilter, err := types.ParseSeasonFilter(season)
			if err != nil {
				return userError("%w", err)
			}

			h, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()

			ctrl := a.newController(cmd.Context(), h)
			ctrl.SetSearchText(search)
			if err := ctrl.SetSeasonFilter(seasonFilter); err != nil {
				return userError("%w", err)
			}

			visible := ctrl.Visible()
			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return printJSON(out, visible)
			}
			if len(visible) == 0 {
				fmt.Fprintln(out, "No fruits match your filters.")
				return nil
			}
			printItems(out, visible)
			fmt.Fprintf(out, "\n%d of %d fruits\n", len(visible), len(ctrl.Items()))
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "text to match against name, taste or color")
	cmd.Flags().StringVar(&season, "season", "all", "season filter")
	return cmd
}
