package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// openTestStore connects to the database named by ORCHARD_TEST_POSTGRES_DSN
// and truncates the items table. The test is skipped when the variable is
// unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("ORCHARD_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ORCHARD_TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn, nil)
	require.NoError(t, err)
	_, err = s.DB().ExecContext(ctx, "TRUNCATE items")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), "", nil)
	assert.ErrorIs(t, err, types.ErrPostgresDSNEmpty)
}

func TestOpenPropagatesDriverError(t *testing.T) {
	errDriver := errors.New("driver unavailable")
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, errDriver })
	defer restore()

	_, err := Open(context.Background(), "postgres://example/orchard", nil)
	assert.ErrorIs(t, err, errDriver)
}

func TestOpenFailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := Open(ctx, "postgres://orchard@127.0.0.1:1/orchard?sslmode=disable&connect_timeout=1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping postgres")
}

func TestStoreLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	created, err := s.Create(ctx, types.Fields{Name: "Mango", Color: "Orange", Taste: "Sweet", Season: types.SeasonSummer})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = s.Create(ctx, types.Fields{Name: "Kiwi", Color: "Green", Taste: "Tart"})
	require.NoError(t, err)

	updated := created
	updated.IsFavorite = true
	got, err := s.Update(ctx, created.ID, updated)
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	items, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Mango", items[0].Name)
	assert.True(t, items[0].IsFavorite)
	assert.Equal(t, "Kiwi", items[1].Name)
	assert.Empty(t, items[1].Season)
}

func TestStoreErrors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, types.Fields{Name: "Mango"})
	assert.ErrorIs(t, err, types.ErrInvalidColor)

	_, err = s.Update(ctx, "", types.Item{Name: "a", Color: "b", Taste: "c"})
	assert.ErrorIs(t, err, types.ErrInvalidID)

	_, err = s.Update(ctx, "missing", types.Item{Name: "a", Color: "b", Taste: "c"})
	assert.ErrorIs(t, err, types.ErrNotFound)
}
