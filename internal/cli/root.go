// Package cli implements the orchard command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/orchard/internal/catalog"
	"github.com/mesh-intelligence/orchard/internal/paths"
	"github.com/mesh-intelligence/orchard/internal/storage"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the process exit code for an error returned by a
// subcommand.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// exitCode maps an error returned by Execute to a process exit code.
// Errors without an explicit code are usage errors from cobra.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	jsonMode  bool
}

// app is the per-invocation state shared by subcommands. It is filled in by
// the root command's PersistentPreRunE.
type app struct {
	flags     rootFlags
	configDir string
	cfg       *viper.Viper
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "orchard" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "orchard",
		Short: "Manage a catalog of fruits",
		Long: "Orchard keeps a catalog of fruits with their color, taste, season and\n" +
			"nutrition facts. It seeds a default set on first use, supports search and\n" +
			"season filters, favorites, and serves the catalog over HTTP.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().StringVar(&a.flags.backend, "backend", "", "storage backend: sqlite, postgres, memory or remote")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newFavoriteCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newServeCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "orchard:", err)
	}
	os.Exit(exitCode(err))
}

// setup resolves the config directory, loads configuration and builds the
// logger.
func (a *app) setup(logOut io.Writer) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError("load config: %w", err)
	}
	logger, err := newLogger(logOut, cfg.GetString(cfgKeyLogLevel))
	if err != nil {
		return userError("%w", err)
	}
	a.configDir = configDir
	a.cfg = cfg
	a.logger = logger
	return nil
}

// storeConfig builds the storage configuration following flag > config >
// env > default precedence.
func (a *app) storeConfig() (types.Config, error) {
	backend := a.flags.backend
	if backend == "" {
		backend = a.cfg.GetString(cfgKeyBackend)
	}
	cfg := types.Config{
		Backend:     backend,
		PostgresDSN: a.cfg.GetString(cfgKeyPostgresDSN),
		RemoteURL:   a.cfg.GetString(cfgKeyRemoteURL),
	}
	if backend == types.BackendSQLite {
		dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir))
		if err != nil {
			return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// openStore opens the configured backend. The caller must Close the handle.
func (a *app) openStore(ctx context.Context) (*storage.Handle, error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return nil, userError("%w", err)
	}
	h, err := storage.Open(ctx, cfg, a.logger)
	if err != nil {
		return nil, sysError("open %s store: %w", cfg.Backend, err)
	}
	return h, nil
}

// newController builds a controller over the handle's store and reloads it.
func (a *app) newController(ctx context.Context, h *storage.Handle, opts ...catalog.Option) *catalog.Controller {
	opts = append([]catalog.Option{catalog.WithLogger(a.logger)}, opts...)
	ctrl := catalog.New(h.Store, opts...)
	outcome := ctrl.Reload(ctx)
	a.logger.Debug("catalog loaded", "outcome", outcome, "items", len(ctrl.Items()))
	return ctrl
}
