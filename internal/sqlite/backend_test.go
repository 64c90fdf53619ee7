// Unit tests for the SQLite backend lifecycle and types.Store operations.
package sqlite

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/orchard/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupBackend attaches a Backend to a fresh temp directory and detaches it
// when the test ends.
func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}
	require.NoError(t, b.Attach(config))
	t.Cleanup(func() { b.Detach() })
	return b
}

func mango() types.Fields {
	return types.Fields{Name: "Mango", Color: "Orange", Taste: "Sweet", Season: types.SeasonSummer, Emoji: "🥭"}
}

func TestAttachDetach(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{
			name: "attach creates data dir and items.jsonl",
			check: func(t *testing.T) {
				dir := filepath.Join(t.TempDir(), "nested", "data")
				b := NewBackend()
				require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
				defer b.Detach()

				_, err := os.Stat(filepath.Join(dir, itemsJSONL))
				assert.NoError(t, err)
				assert.Equal(t, dir, b.DataDir())
				assert.Equal(t, []string{filepath.Join(dir, itemsJSONL)}, b.JSONLFiles())
			},
		},
		{
			name: "second attach returns ErrAlreadyAttached",
			check: func(t *testing.T) {
				b := setupBackend(t)
				err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
				assert.ErrorIs(t, err, types.ErrAlreadyAttached)
			},
		},
		{
			name: "invalid config is rejected",
			check: func(t *testing.T) {
				b := NewBackend()
				assert.ErrorIs(t, b.Attach(types.Config{}), types.ErrBackendEmpty)
			},
		},
		{
			name: "non-sqlite backend is rejected",
			check: func(t *testing.T) {
				b := NewBackend()
				err := b.Attach(types.Config{Backend: types.BackendMemory})
				assert.ErrorIs(t, err, types.ErrBackendUnknown)
			},
		},
		{
			name: "detach is idempotent and operations fail afterwards",
			check: func(t *testing.T) {
				b := setupBackend(t)
				require.NoError(t, b.Detach())
				require.NoError(t, b.Detach())

				_, err := b.List(context.Background())
				assert.ErrorIs(t, err, types.ErrStoreDetached)
				_, err = b.Create(context.Background(), mango())
				assert.ErrorIs(t, err, types.ErrStoreDetached)
				_, err = b.Update(context.Background(), "x", mango().Item())
				assert.ErrorIs(t, err, types.ErrStoreDetached)
				assert.ErrorIs(t, b.Refresh(), types.ErrStoreDetached)
				assert.Equal(t, "", b.DataDir())
				assert.Nil(t, b.JSONLFiles())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.check)
	}
}

func TestListEmpty(t *testing.T) {
	b := setupBackend(t)
	items, err := b.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	b := setupBackend(t)

	created, err := b.Create(ctx, mango())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, "Mango", created.Name)

	items, err := b.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, mango(), got.Fields())
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		fields  types.Fields
		wantErr error
	}{
		{name: "missing name", fields: types.Fields{Color: "Red", Taste: "Sweet"}, wantErr: types.ErrInvalidName},
		{name: "missing color", fields: types.Fields{Name: "Apple", Taste: "Sweet"}, wantErr: types.ErrInvalidColor},
		{name: "missing taste", fields: types.Fields{Name: "Apple", Color: "Red"}, wantErr: types.ErrInvalidTaste},
		{name: "bad season", fields: types.Fields{Name: "Apple", Color: "Red", Taste: "Sweet", Season: "Monsoon"}, wantErr: types.ErrInvalidSeason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			_, err := b.Create(context.Background(), tt.fields)
			assert.ErrorIs(t, err, tt.wantErr)

			items, err := b.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestListKeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	b := setupBackend(t)

	names := []string{"Apple", "Banana", "Orange", "Strawberry", "Kiwi", "Fig"}
	for _, n := range names {
		_, err := b.Create(ctx, types.Fields{Name: n, Color: "c", Taste: "t"})
		require.NoError(t, err)
	}

	items, err := b.List(ctx)
	require.NoError(t, err)
	got := make([]string, len(items))
	for i, it := range items {
		got[i] = it.Name
	}
	assert.Equal(t, names, got)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend, created types.Item)
	}{
		{
			name: "toggling favorite replaces the record",
			check: func(t *testing.T, b *Backend, created types.Item) {
				updated := created
				updated.IsFavorite = true
				got, err := b.Update(ctx, created.ID, updated)
				require.NoError(t, err)
				assert.True(t, got.IsFavorite)
				assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

				items, err := b.List(ctx)
				require.NoError(t, err)
				require.Len(t, items, 1)
				assert.True(t, items[0].IsFavorite)
				assert.Equal(t, "Mango", items[0].Name)
			},
		},
		{
			name: "optional fields can be cleared",
			check: func(t *testing.T, b *Backend, created types.Item) {
				updated := created
				updated.Emoji = ""
				updated.Season = ""
				_, err := b.Update(ctx, created.ID, updated)
				require.NoError(t, err)

				items, err := b.List(ctx)
				require.NoError(t, err)
				assert.Empty(t, items[0].Emoji)
				assert.Empty(t, items[0].Season)
			},
		},
		{
			name: "unknown id returns ErrNotFound",
			check: func(t *testing.T, b *Backend, created types.Item) {
				_, err := b.Update(ctx, "does-not-exist", created)
				assert.ErrorIs(t, err, types.ErrNotFound)
			},
		},
		{
			name: "empty id returns ErrInvalidID",
			check: func(t *testing.T, b *Backend, created types.Item) {
				_, err := b.Update(ctx, "", created)
				assert.ErrorIs(t, err, types.ErrInvalidID)
			},
		},
		{
			name: "invalid record is rejected without change",
			check: func(t *testing.T, b *Backend, created types.Item) {
				bad := created
				bad.Name = ""
				_, err := b.Update(ctx, created.ID, bad)
				assert.ErrorIs(t, err, types.ErrInvalidName)

				items, err := b.List(ctx)
				require.NoError(t, err)
				assert.Equal(t, "Mango", items[0].Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			created, err := b.Create(ctx, mango())
			require.NoError(t, err)
			tt.check(t, b, created)
		})
	}
}

// blockJSONL replaces items.jsonl with a directory so the atomic rename in
// writeJSONL fails.
func blockJSONL(t *testing.T, b *Backend) {
	t.Helper()
	path := filepath.Join(b.DataDir(), itemsJSONL)
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))
}

func TestFailedPersistLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend, created types.Item)
	}{
		{
			name: "failed create inserts no row",
			check: func(t *testing.T, b *Backend, created types.Item) {
				_, err := b.Create(ctx, types.Fields{Name: "Kiwi", Color: "Green", Taste: "Tart"})
				require.Error(t, err)

				items, err := b.List(ctx)
				require.NoError(t, err)
				require.Len(t, items, 1)
				assert.Equal(t, created.ID, items[0].ID)
			},
		},
		{
			name: "failed update keeps the previous record",
			check: func(t *testing.T, b *Backend, created types.Item) {
				updated := created
				updated.IsFavorite = true
				_, err := b.Update(ctx, created.ID, updated)
				require.Error(t, err)

				items, err := b.List(ctx)
				require.NoError(t, err)
				require.Len(t, items, 1)
				assert.False(t, items[0].IsFavorite)
			},
		},
		{
			name: "writes succeed again once the file is writable",
			check: func(t *testing.T, b *Backend, created types.Item) {
				_, err := b.Create(ctx, types.Fields{Name: "Kiwi", Color: "Green", Taste: "Tart"})
				require.Error(t, err)

				require.NoError(t, os.Remove(filepath.Join(b.DataDir(), itemsJSONL)))
				_, err = b.Create(ctx, types.Fields{Name: "Fig", Color: "Purple", Taste: "Sweet"})
				require.NoError(t, err)

				records, err := readJSONL(filepath.Join(b.DataDir(), itemsJSONL))
				require.NoError(t, err)
				assert.Len(t, records, 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			created, err := b.Create(ctx, mango())
			require.NoError(t, err)
			blockJSONL(t, b)
			tt.check(t, b, created)
		})
	}
}

func TestPersistenceAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(cfg))
	created, err := b.Create(ctx, mango())
	require.NoError(t, err)
	updated := created
	updated.IsFavorite = true
	_, err = b.Update(ctx, created.ID, updated)
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(cfg))
	defer b2.Detach()

	items, err := b2.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
	assert.True(t, items[0].IsFavorite)
	assert.Equal(t, "🥭", items[0].Emoji)
}

func TestRefreshPicksUpExternalChanges(t *testing.T) {
	ctx := context.Background()
	b := setupBackend(t)
	_, err := b.Create(ctx, mango())
	require.NoError(t, err)

	rec, err := json.Marshal(itemJSONLRecord{
		ItemID:    "external-1",
		Name:      "Kiwi",
		Color:     "Green",
		Taste:     "Tart",
		CreatedAt: "2999-01-01T00:00:00.000000000Z",
		UpdatedAt: "2999-01-01T00:00:00.000000000Z",
	})
	require.NoError(t, err)
	path := filepath.Join(b.DataDir(), itemsJSONL)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write(append(rec, '\n'))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	items, err := b.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1, "external change is invisible before Refresh")

	require.NoError(t, b.Refresh())

	items, err = b.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Mango", items[0].Name)
	assert.Equal(t, "Kiwi", items[1].Name)
}
