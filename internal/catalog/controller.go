// Package catalog implements the item-collection controller: it owns the
// authoritative in-memory item list, reconciles it with the default seed
// set, derives the filtered view, and mediates create and favorite-toggle
// operations against a types.Store.
//
// The controller only ever replaces its item list through Reload. Writes go
// to the store first and are followed by a Reload, so the list is always
// what the store last reported, or the compiled-in defaults when the store
// cannot be read at all.
package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// ReloadOutcome describes how Reload obtained the current item list.
type ReloadOutcome string

// Reload outcomes.
const (
	// OutcomeLoaded means the first List call returned items.
	OutcomeLoaded ReloadOutcome = "loaded"
	// OutcomeSeeded means the store was empty or unreachable, seeding ran
	// and the retried List returned items.
	OutcomeSeeded ReloadOutcome = "seeded"
	// OutcomeFallback means the retried List still failed or was empty and
	// the defaults are held in memory without being persisted.
	OutcomeFallback ReloadOutcome = "fallback"
)

// Controller holds the catalog state. Create one with New and share the
// pointer with every consumer; it is safe for concurrent use. The mutex is
// never held across a store call, so overlapping reloads resolve as
// last-write-wins.
type Controller struct {
	store    types.Store
	defaults []types.Fields
	logger   *slog.Logger
	notifier Notifier
	metrics  *Metrics

	mu       sync.RWMutex
	items    []types.Item
	search   string
	season   types.Season
	visible  []types.Item
	selected *types.Item
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithNotifier sets where notifications are delivered in addition to being
// returned. The default logs them.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithMetrics records controller activity in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithDefaults replaces the seed set.
func WithDefaults(defaults []types.Fields) Option {
	return func(c *Controller) { c.defaults = defaults }
}

// New returns a controller over store with an empty item list, no search
// text and the season filter set to types.SeasonAll. Call Reload to
// populate it.
func New(store types.Store, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		defaults: DefaultFields(),
		season:   types.SeasonAll,
		items:    []types.Item{},
		visible:  []types.Item{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.notifier == nil {
		c.notifier = LogNotifier{Logger: c.logger}
	}
	return c
}

// Reload lists the store and replaces the item list. An empty or failed
// listing triggers seeding and a single retry; if the retry does not yield
// items either, the defaults are held in memory. Reload never fails.
func (c *Controller) Reload(ctx context.Context) ReloadOutcome {
	items, err := c.store.List(ctx)
	if err == nil && len(items) > 0 {
		c.replaceItems(items)
		c.metrics.observeReload(OutcomeLoaded, len(items))
		return OutcomeLoaded
	}
	if err != nil {
		c.logger.Warn("loading items failed, seeding defaults", "error", err)
	} else {
		c.logger.Info("store is empty, seeding defaults")
	}

	report := Seed(ctx, c.store, c.defaults, c.logger)
	c.metrics.observeSeed(report)

	items, err = c.store.List(ctx)
	if err == nil && len(items) > 0 {
		c.replaceItems(items)
		c.metrics.observeReload(OutcomeSeeded, len(items))
		return OutcomeSeeded
	}
	if err != nil {
		c.logger.Error("loading items after seeding failed, using in-memory defaults", "error", err)
	} else {
		c.logger.Error("store still empty after seeding, using in-memory defaults")
	}
	fallback := make([]types.Item, len(c.defaults))
	for i, f := range c.defaults {
		fallback[i] = f.Item()
	}
	c.replaceItems(fallback)
	c.metrics.observeReload(OutcomeFallback, len(fallback))
	return OutcomeFallback
}

// Create validates fields, writes them to the store and reloads. The item
// list is not touched when validation or the write fails.
func (c *Controller) Create(ctx context.Context, fields types.Fields) Notification {
	var n Notification
	if err := fields.Validate(); err != nil {
		n = failure(MsgAddFailed, err)
	} else if _, err := c.store.Create(ctx, fields); err != nil {
		n = failure(MsgAddFailed, err)
	} else {
		c.Reload(ctx)
		n = success(MsgItemAdded)
	}
	c.metrics.observeWrite("create", n)
	c.notifier.Notify(n)
	return n
}

// ToggleFavorite writes item back with IsFavorite negated and reloads. The
// success message is phrased from the value item had before the toggle.
// Fallback defaults carry no ID, so toggling one always fails.
func (c *Controller) ToggleFavorite(ctx context.Context, item types.Item) Notification {
	var n Notification
	if item.ID == "" {
		n = failure(MsgFavoriteFailed, types.ErrInvalidID)
	} else {
		updated := item
		updated.IsFavorite = !item.IsFavorite
		if _, err := c.store.Update(ctx, item.ID, updated); err != nil {
			n = failure(MsgFavoriteFailed, err)
		} else {
			c.Reload(ctx)
			if item.IsFavorite {
				n = success(MsgFavoriteRemoved)
			} else {
				n = success(MsgFavoriteAdded)
			}
		}
	}
	c.metrics.observeWrite("toggle_favorite", n)
	c.notifier.Notify(n)
	return n
}

// SelectForDetail shows item in the detail view.
func (c *Controller) SelectForDetail(item types.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sel := item
	c.selected = &sel
}

// ClearDetailSelection closes the detail view.
func (c *Controller) ClearDetailSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

// Selected returns the item shown in the detail view, if any.
func (c *Controller) Selected() (types.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected == nil {
		return types.Item{}, false
	}
	return *c.selected, true
}

// SetSearchText sets the search text and recomputes the visible view.
func (c *Controller) SetSearchText(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = s
	c.recomputeLocked()
}

// SearchText returns the current search text.
func (c *Controller) SearchText() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.search
}

// SetSeasonFilter sets the season filter and recomputes the visible view.
// types.SeasonAll disables season filtering.
func (c *Controller) SetSeasonFilter(s types.Season) error {
	if s != types.SeasonAll && !s.Valid() {
		return types.ErrInvalidSeason
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.season = s
	c.recomputeLocked()
	return nil
}

// SeasonFilter returns the current season filter.
func (c *Controller) SeasonFilter() types.Season {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.season
}

// Items returns a copy of the full item list.
func (c *Controller) Items() []types.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneItems(c.items)
}

// Visible returns a copy of the filtered view.
func (c *Controller) Visible() []types.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneItems(c.visible)
}

// Find returns the item with the given ID from the current list.
func (c *Controller) Find(id string) (types.Item, error) {
	if id == "" {
		return types.Item{}, types.ErrInvalidID
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.ID == id {
			return it, nil
		}
	}
	return types.Item{}, types.ErrNotFound
}

func (c *Controller) replaceItems(items []types.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = cloneItems(items)
	c.recomputeLocked()
}

// recomputeLocked derives the visible view. The caller must hold c.mu.
func (c *Controller) recomputeLocked() {
	c.visible = Filter(c.items, c.search, c.season)
}

func cloneItems(items []types.Item) []types.Item {
	out := make([]types.Item, len(items))
	copy(out, items)
	return out
}

// IsWriteFailure reports whether n describes a failed write, as opposed to a
// rejected submission.
func IsWriteFailure(n Notification) bool {
	if n.OK() || n.Err == nil {
		return false
	}
	return !types.IsValidation(n.Err)
}
