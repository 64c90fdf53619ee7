package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

func newAddCmd(a *app) *cobra.Command {
	var f types.Fields
	var season string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a fruit to the catalog",
		Long: `Add creates a fruit and reloads the catalog.

Name, color and taste are required. Suggested tastes: Sweet, Sour, Tart,
Sweet-Tart, Sweet-Citrus, Bitter.

Example:
  orchard add --name Mango --color Orange --taste Sweet --season Summer --emoji 🥭`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if season != "" {
				s, err := types.ParseSeasonFilter(season)
				if err != nil || s == types.SeasonAll {
					return userError("%w: %q", types.ErrInvalidSeason, season)
				}
				f.Season = s
			}

			h, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()

			ctrl := a.newController(cmd.Context(), h)
			n := ctrl.Create(cmd.Context(), f)
			return notificationResult(cmd.OutOrStdout(), a.flags.jsonMode, n)
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "fruit name (required)")
	cmd.Flags().StringVar(&f.Color, "color", "", "color (required)")
	cmd.Flags().StringVar(&f.Taste, "taste", "", "taste (required)")
	cmd.Flags().StringVar(&season, "season", "", "season: Spring, Summer, Fall, Winter or Year-round")
	cmd.Flags().StringVar(&f.Description, "description", "", "description")
	cmd.Flags().StringVar(&f.NutritionFacts, "nutrition", "", "nutrition facts")
	cmd.Flags().StringVar(&f.Emoji, "emoji", "", "emoji shown next to the name")
	return cmd
}
