// Package postgres provides a Postgres-backed types.Store for the orchard
// catalog. The items table is created on open when it does not exist.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// Compile-time interface check.
var _ types.Store = (*Store)(nil)

const driverName = "pgx"

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

const createItems = `CREATE TABLE IF NOT EXISTS items (
	item_id TEXT PRIMARY KEY,
	name TEXT NOT NULL CHECK (name <> ''),
	color TEXT NOT NULL CHECK (color <> ''),
	taste TEXT NOT NULL CHECK (taste <> ''),
	season TEXT,
	description TEXT,
	nutrition_facts TEXT,
	is_favorite BOOLEAN,
	emoji TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

const createItemsIndex = `CREATE INDEX IF NOT EXISTS idx_items_created ON items (created_at, item_id)`

var itemColumns = []string{
	"item_id", "name", "color", "taste", "season", "description",
	"nutrition_facts", "is_favorite", "emoji", "created_at", "updated_at",
}

var selectItems = "SELECT " + strings.Join(itemColumns, ", ") + " FROM items"

// Store persists catalog items to a Postgres table.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to Postgres using dsn, verifies the connection and ensures
// the items table exists.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, types.ErrPostgresDSNEmpty
	}
	if logger == nil {
		logger = slog.Default()
	}
	openMu.Lock()
	db, err := sqlOpen(driverName, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	for _, ddl := range []string{createItems, createItemsIndex} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure items table: %w", err)
		}
	}
	logger.Debug("postgres store opened")
	return &Store{db: db, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying sql.DB for integration tests.
func (s *Store) DB() *sql.DB { return s.db }

// List returns every item ordered by creation time.
func (s *Store) List(ctx context.Context) ([]types.Item, error) {
	rows, err := s.db.QueryContext(ctx, selectItems+" ORDER BY created_at ASC, item_id ASC")
	if err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []types.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Create inserts a new item under a fresh UUID v7.
func (s *Store) Create(ctx context.Context, fields types.Fields) (types.Item, error) {
	if err := fields.Validate(); err != nil {
		return types.Item{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return types.Item{}, fmt.Errorf("generate id: %w", err)
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	item := fields.Item()
	item.ID = id.String()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO items (`+strings.Join(itemColumns, ", ")+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		item.ID, item.Name, item.Color, item.Taste, nullString(string(item.Season)),
		nullString(item.Description), nullString(item.NutritionFacts), item.IsFavorite,
		nullString(item.Emoji), item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return types.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

// Update replaces every field of the item with the given ID except its ID
// and creation time.
func (s *Store) Update(ctx context.Context, id string, item types.Item) (types.Item, error) {
	if id == "" {
		return types.Item{}, types.ErrInvalidID
	}
	if err := item.Validate(); err != nil {
		return types.Item{}, err
	}
	item.ID = id
	item.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	row := s.db.QueryRowContext(ctx,
		`UPDATE items SET name = $1, color = $2, taste = $3, season = $4, description = $5,
		nutrition_facts = $6, is_favorite = $7, emoji = $8, updated_at = $9
		WHERE item_id = $10 RETURNING created_at`,
		item.Name, item.Color, item.Taste, nullString(string(item.Season)), nullString(item.Description),
		nullString(item.NutritionFacts), item.IsFavorite, nullString(item.Emoji), item.UpdatedAt, id,
	)
	if err := row.Scan(&item.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Item{}, types.ErrNotFound
		}
		return types.Item{}, fmt.Errorf("update item %s: %w", id, err)
	}
	item.CreatedAt = item.CreatedAt.UTC()
	return item, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (types.Item, error) {
	var it types.Item
	var season, desc, nutrition, emoji sql.NullString
	var favorite sql.NullBool
	if err := row.Scan(&it.ID, &it.Name, &it.Color, &it.Taste, &season, &desc,
		&nutrition, &favorite, &emoji, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return types.Item{}, err
	}
	it.Season = types.Season(season.String)
	it.Description = desc.String
	it.NutritionFacts = nutrition.String
	it.IsFavorite = favorite.Valid && favorite.Bool
	it.Emoji = emoji.String
	it.CreatedAt = it.CreatedAt.UTC()
	it.UpdatedAt = it.UpdatedAt.UTC()
	return it, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
