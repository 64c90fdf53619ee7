// This file implements the items accessor for the SQLite backend: the
// types.Store operations, row hydration and JSONL persistence.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// timeLayout is fixed width so that created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var selectItems = "SELECT " + strings.Join(itemColumns, ", ") + " FROM items"

// List returns every item ordered by creation time.
func (b *Backend) List(ctx context.Context) ([]types.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.QueryContext(ctx, selectItems+" ORDER BY created_at ASC, item_id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []types.Item{}
	for rows.Next() {
		it, err := hydrateItem(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

// Create inserts a new item under a fresh UUID v7 and persists items.jsonl.
func (b *Backend) Create(ctx context.Context, fields types.Fields) (types.Item, error) {
	if err := fields.Validate(); err != nil {
		return types.Item{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.Item{}, types.ErrStoreDetached
	}

	id, err := uuid.NewV7()
	if err != nil {
		return types.Item{}, fmt.Errorf("generating UUID v7: %w", err)
	}
	now := time.Now().UTC()
	item := fields.Item()
	item.ID = id.String()
	item.CreatedAt = now
	item.UpdatedAt = now

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Item{}, fmt.Errorf("beginning create transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(itemColumns)), ", ")
	_, err = tx.ExecContext(ctx,
		"INSERT INTO items ("+strings.Join(itemColumns, ", ")+") VALUES ("+placeholders+")",
		itemArgs(item)...,
	)
	if err != nil {
		return types.Item{}, fmt.Errorf("inserting item: %w", err)
	}

	if err := b.persistItemsJSONL(ctx, tx); err != nil {
		return types.Item{}, fmt.Errorf("persisting %s: %w", itemsJSONL, err)
	}
	if err := tx.Commit(); err != nil {
		return types.Item{}, fmt.Errorf("committing create: %w", err)
	}
	return item, nil
}

// Update replaces every field of the item with the given ID except its ID
// and creation time, then persists items.jsonl.
func (b *Backend) Update(ctx context.Context, id string, item types.Item) (types.Item, error) {
	if id == "" {
		return types.Item{}, types.ErrInvalidID
	}
	if err := item.Validate(); err != nil {
		return types.Item{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.Item{}, types.ErrStoreDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Item{}, fmt.Errorf("beginning update transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, selectItems+" WHERE item_id = ?", id)
	existing, err := hydrateItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Item{}, types.ErrNotFound
		}
		return types.Item{}, fmt.Errorf("getting item %s: %w", id, err)
	}

	item.ID = id
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET name = ?, color = ?, taste = ?, season = ?, description = ?,
    nutrition_facts = ?, is_favorite = ?, emoji = ?, updated_at = ? WHERE item_id = ?`,
		item.Name, item.Color, item.Taste, nullString(string(item.Season)), nullString(item.Description),
		nullString(item.NutritionFacts), boolInt(item.IsFavorite), nullString(item.Emoji),
		item.UpdatedAt.Format(timeLayout), id,
	)
	if err != nil {
		return types.Item{}, fmt.Errorf("updating item %s: %w", id, err)
	}

	if err := b.persistItemsJSONL(ctx, tx); err != nil {
		return types.Item{}, fmt.Errorf("persisting %s: %w", itemsJSONL, err)
	}
	if err := tx.Commit(); err != nil {
		return types.Item{}, fmt.Errorf("committing update %s: %w", id, err)
	}
	return item, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// hydrateItem converts a row in itemColumns order into a types.Item. A NULL
// is_favorite hydrates as false.
func hydrateItem(row scanner) (types.Item, error) {
	var it types.Item
	var season, desc, nutrition, emoji sql.NullString
	var favorite sql.NullInt64
	var createdAt, updatedAt string
	if err := row.Scan(&it.ID, &it.Name, &it.Color, &it.Taste, &season, &desc,
		&nutrition, &favorite, &emoji, &createdAt, &updatedAt); err != nil {
		return types.Item{}, err
	}
	it.Season = types.Season(season.String)
	it.Description = desc.String
	it.NutritionFacts = nutrition.String
	it.IsFavorite = favorite.Valid && favorite.Int64 != 0
	it.Emoji = emoji.String

	var err error
	it.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return types.Item{}, fmt.Errorf("parsing created_at: %w", err)
	}
	it.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return types.Item{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return it, nil
}

// itemArgs returns the insert arguments in itemColumns order.
func itemArgs(it types.Item) []any {
	return []any{
		it.ID, it.Name, it.Color, it.Taste,
		nullString(string(it.Season)), nullString(it.Description), nullString(it.NutritionFacts),
		boolInt(it.IsFavorite), nullString(it.Emoji),
		it.CreatedAt.Format(timeLayout), it.UpdatedAt.Format(timeLayout),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// itemJSONLRecord is the on-disk format of one line of items.jsonl.
type itemJSONLRecord struct {
	ItemID         string `json:"item_id"`
	Name           string `json:"name"`
	Color          string `json:"color"`
	Taste          string `json:"taste"`
	Season         string `json:"season,omitempty"`
	Description    string `json:"description,omitempty"`
	NutritionFacts string `json:"nutrition_facts,omitempty"`
	IsFavorite     bool   `json:"is_favorite"`
	Emoji          string `json:"emoji,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// persistItemsJSONL reads all items through tx and writes them to
// items.jsonl using the atomic write pattern. The caller must hold b.mu and
// commit tx only after a nil return.
func (b *Backend) persistItemsJSONL(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, selectItems+" ORDER BY created_at ASC, item_id ASC")
	if err != nil {
		return fmt.Errorf("querying items for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		it, err := hydrateItem(rows)
		if err != nil {
			return fmt.Errorf("scanning item for JSONL: %w", err)
		}
		data, err := json.Marshal(itemJSONLRecord{
			ItemID:         it.ID,
			Name:           it.Name,
			Color:          it.Color,
			Taste:          it.Taste,
			Season:         string(it.Season),
			Description:    it.Description,
			NutritionFacts: it.NutritionFacts,
			IsFavorite:     it.IsFavorite,
			Emoji:          it.Emoji,
			CreatedAt:      it.CreatedAt.UTC().Format(timeLayout),
			UpdatedAt:      it.UpdatedAt.UTC().Format(timeLayout),
		})
		if err != nil {
			return fmt.Errorf("marshaling item for JSONL: %w", err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating items for JSONL: %w", err)
	}
	return writeJSONL(filepath.Join(b.dataDir, itemsJSONL), records)
}
