package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the orchard release, overridden at build time with
// -ldflags "-X github.com/mesh-intelligence/orchard/internal/cli.Version=...".
var Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/orchard"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the orchard version",
		Args:  cobra.NoArgs,
		// version needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "orchard v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
