// Package storage opens the types.Store selected by a types.Config.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/orchard/internal/memory"
	"github.com/mesh-intelligence/orchard/internal/postgres"
	"github.com/mesh-intelligence/orchard/internal/remote"
	"github.com/mesh-intelligence/orchard/internal/sqlite"
	"github.com/mesh-intelligence/orchard/pkg/types"
)

// refresher is implemented by backends that can pick up changes made by
// other processes.
type refresher interface {
	Refresh() error
}

// fileBacked is implemented by backends persisted to local files.
type fileBacked interface {
	JSONLFiles() []string
}

// Handle is an open store together with its lifecycle.
type Handle struct {
	Store   types.Store
	Backend string
	closeFn func() error
}

// Close releases the backend's resources. It is safe to call more than once.
func (h *Handle) Close() error {
	if h.closeFn == nil {
		return nil
	}
	fn := h.closeFn
	h.closeFn = nil
	return fn()
}

// Refresh reloads external changes for backends that support it and is a
// no-op otherwise.
func (h *Handle) Refresh() error {
	if r, ok := h.Store.(refresher); ok {
		return r.Refresh()
	}
	return nil
}

// WatchPaths returns the files whose modification should trigger Refresh.
// It is empty for backends not persisted to local files.
func (h *Handle) WatchPaths() []string {
	if f, ok := h.Store.(fileBacked); ok {
		return f.JSONLFiles()
	}
	return nil
}

// Open validates cfg and opens the matching backend.
func Open(ctx context.Context, cfg types.Config, logger *slog.Logger) (*Handle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("backend", cfg.Backend)

	switch cfg.Backend {
	case types.BackendSQLite:
		b := sqlite.NewBackend(sqlite.WithLogger(logger))
		if err := b.Attach(cfg); err != nil {
			return nil, fmt.Errorf("attach sqlite backend: %w", err)
		}
		return &Handle{Store: b, Backend: cfg.Backend, closeFn: b.Detach}, nil

	case types.BackendPostgres:
		s, err := postgres.Open(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		return &Handle{Store: s, Backend: cfg.Backend, closeFn: s.Close}, nil

	case types.BackendMemory:
		return &Handle{Store: memory.NewStore(), Backend: cfg.Backend}, nil

	case types.BackendRemote:
		c, err := remote.New(cfg.RemoteURL, remote.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return &Handle{Store: c, Backend: cfg.Backend}, nil
	}
	return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
}
