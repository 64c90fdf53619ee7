package types

import (
	"context"
	"errors"
)

// Store is the entity store contract consumed by the catalog controller.
// Implementations live in internal/sqlite, internal/postgres, internal/memory
// and internal/remote.
type Store interface {
	// List returns every item in creation order. An empty store returns an
	// empty slice and a nil error.
	List(ctx context.Context) ([]Item, error)

	// Create persists a new item and returns it with its store-assigned ID.
	// Returns ErrInvalidName, ErrInvalidColor or ErrInvalidTaste when a
	// required field is missing.
	Create(ctx context.Context, fields Fields) (Item, error)

	// Update replaces the item with the given ID by item and returns the
	// stored result. Returns ErrNotFound if no item has that ID.
	Update(ctx context.Context, id string, item Item) (Item, error)
}

// Store operation errors.
var (
	ErrNotFound  = errors.New("item not found")
	ErrInvalidID = errors.New("invalid item ID")

	// ErrUnsuccessful is returned by adapters whose backend answered without
	// a transport error but reported the operation as not successful.
	ErrUnsuccessful = errors.New("store reported operation unsuccessful")
)

// Item validation errors.
var (
	ErrInvalidName   = errors.New("name must not be empty")
	ErrInvalidColor  = errors.New("color must not be empty")
	ErrInvalidTaste  = errors.New("taste must not be empty")
	ErrInvalidSeason = errors.New("invalid season")
)

// Lifecycle errors for adapters that hold resources.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// IsValidation reports whether err is one of the item validation errors.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidColor) ||
		errors.Is(err, ErrInvalidTaste) ||
		errors.Is(err, ErrInvalidSeason)
}
