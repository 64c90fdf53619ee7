package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize orchard configuration and storage",
		Long:  "Create the configuration directory and a default config.yaml, then open\nand close the configured backend so its storage exists.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a)
		},
	}
}

func runInit(cmd *cobra.Command, a *app) error {
	if err := os.MkdirAll(a.configDir, 0o755); err != nil {
		return sysError("create config directory: %w", err)
	}

	configPath := filepath.Join(a.configDir, configFileExt)
	written, err := writeConfigIfMissing(configPath, a.flags.dataDir)
	if err != nil {
		return sysError("write config: %w", err)
	}
	if written {
		// Re-read so the new file's values apply to this run.
		if err := a.setup(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}

	cfg, err := a.storeConfig()
	if err != nil {
		return userError("%w", err)
	}
	h, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	if err := h.Close(); err != nil {
		return sysError("finalize storage: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Orchard initialized successfully")
	fmt.Fprintln(out, "  config: ", configPath)
	fmt.Fprintln(out, "  backend:", cfg.Backend)
	if cfg.DataDir != "" {
		fmt.Fprintln(out, "  data:   ", cfg.DataDir)
	}
	return nil
}
