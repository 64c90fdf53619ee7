package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

func newFavoriteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Toggle the favorite flag of a fruit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer h.Close()

			ctrl := a.newController(cmd.Context(), h)
			item, err := ctrl.Find(args[0])
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					return userError("fruit %q not found", args[0])
				}
				return userError("%w", err)
			}
			n := ctrl.ToggleFavorite(cmd.Context(), item)
			return notificationResult(cmd.OutOrStdout(), a.flags.jsonMode, n)
		},
	}
}
