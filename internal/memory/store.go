// Package memory provides a process-local types.Store. Items live only as
// long as the Store value; it backs the "memory" backend and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// Compile-time interface check.
var _ types.Store = (*Store)(nil)

// Store keeps items in insertion order behind a mutex.
type Store struct {
	mu    sync.RWMutex
	order []string
	items map[string]types.Item
	now   func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		items: make(map[string]types.Item),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// List returns all items in creation order.
func (s *Store) List(ctx context.Context) ([]types.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out, nil
}

// Create stores a new item under a fresh UUID v7.
func (s *Store) Create(ctx context.Context, fields types.Fields) (types.Item, error) {
	if err := ctx.Err(); err != nil {
		return types.Item{}, err
	}
	if err := fields.Validate(); err != nil {
		return types.Item{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return types.Item{}, fmt.Errorf("generating UUID v7: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	item := fields.Item()
	item.ID = id.String()
	item.CreatedAt = now
	item.UpdatedAt = now
	s.items[item.ID] = item
	s.order = append(s.order, item.ID)
	return item, nil
}

// Update replaces the item with the given ID. CreatedAt is kept from the
// stored record.
func (s *Store) Update(ctx context.Context, id string, item types.Item) (types.Item, error) {
	if err := ctx.Err(); err != nil {
		return types.Item{}, err
	}
	if id == "" {
		return types.Item{}, types.ErrInvalidID
	}
	if err := item.Validate(); err != nil {
		return types.Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[id]
	if !ok {
		return types.Item{}, types.ErrNotFound
	}
	item.ID = id
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = s.now()
	s.items[id] = item
	return item, nil
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
