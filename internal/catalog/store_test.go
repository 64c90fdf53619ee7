package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

var errUnreachable = errors.New("store unreachable")

// fakeStore is an in-process types.Store with switchable failures.
type fakeStore struct {
	mu     sync.Mutex
	items  []types.Item
	nextID int

	listErr     error
	listErrs    []error // consumed one per List call before listErr applies
	createErr   error
	failCreates map[string]bool // by item name
	updateErr   error
	dropCreates bool // accept creates without storing them

	listCalls   int
	createCalls int
	updateCalls int
}

var _ types.Store = (*fakeStore)(nil)

func (s *fakeStore) List(ctx context.Context) ([]types.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if len(s.listErrs) > 0 {
		err := s.listErrs[0]
		s.listErrs = s.listErrs[1:]
		if err != nil {
			return nil, err
		}
	} else if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]types.Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *fakeStore) Create(ctx context.Context, f types.Fields) (types.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.createErr != nil {
		return types.Item{}, s.createErr
	}
	if s.failCreates[f.Name] {
		return types.Item{}, fmt.Errorf("create %s: %w", f.Name, types.ErrUnsuccessful)
	}
	if err := f.Validate(); err != nil {
		return types.Item{}, err
	}
	s.nextID++
	it := f.Item()
	it.ID = fmt.Sprintf("id-%d", s.nextID)
	if !s.dropCreates {
		s.items = append(s.items, it)
	}
	return it, nil
}

func (s *fakeStore) Update(ctx context.Context, id string, item types.Item) (types.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	if s.updateErr != nil {
		return types.Item{}, s.updateErr
	}
	for i := range s.items {
		if s.items[i].ID == id {
			item.ID = id
			s.items[i] = item
			return item, nil
		}
	}
	return types.Item{}, types.ErrNotFound
}

func (s *fakeStore) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.items))
	for i, it := range s.items {
		out[i] = it.Name
	}
	return out
}

func itemNames(items []types.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}
