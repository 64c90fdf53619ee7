package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display a fruit with full details",
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
			ctrl.SelectForDetail(item)
			selected, _ := ctrl.Selected()

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), selected)
			}
			printDetail(cmd.OutOrStdout(), selected)
			return nil
		},
	}
}
