package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/orchard/internal/catalog"
	"github.com/mesh-intelligence/orchard/internal/server"
	"github.com/mesh-intelligence/orchard/internal/storage"
	"github.com/mesh-intelligence/orchard/internal/watch"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Long: `Serve exposes the entity store under /api/items, the catalog under
/api/catalog and Prometheus metrics under /metrics.

With the sqlite backend, changes to items.jsonl made by other processes are
picked up automatically.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.GetString(cfgKeyListenAddr)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from listen_addr, :8080)")
	return cmd
}

func runServe(ctx context.Context, a *app, addr string) error {
	h, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ctrl := a.newController(ctx, h, catalog.WithMetrics(catalog.NewMetrics(reg)))

	srv := server.New(h.Store, ctrl, server.WithLogger(a.logger), server.WithGatherer(reg))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, addr) })

	if w, ok := newDataWatcher(h, ctrl, a); ok {
		g.Go(func() error { return w.Run(ctx) })
	}

	if err := g.Wait(); err != nil {
		return sysError("serve: %w", err)
	}
	return nil
}

// newDataWatcher returns a watcher that refreshes the backend and reloads
// the controller when the backend's files change. It reports false for
// backends without local files.
func newDataWatcher(h *storage.Handle, ctrl *catalog.Controller, a *app) (*watch.Watcher, bool) {
	paths := h.WatchPaths()
	if len(paths) == 0 {
		return nil, false
	}
	w, err := watch.New(paths, func(ctx context.Context) {
		if err := h.Refresh(); err != nil {
			a.logger.Error("refresh after file change failed", "error", err)
			return
		}
		outcome := ctrl.Reload(ctx)
		a.logger.Info("catalog reloaded after file change", "outcome", outcome, "items", len(ctrl.Items()))
	}, watch.WithLogger(a.logger))
	if err != nil {
		a.logger.Warn("data watcher disabled", "error", err)
		return nil, false
	}
	return w, true
}
