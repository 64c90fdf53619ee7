// This file holds the schema DDL for the items table.
package sqlite

// File names inside DataDir.
const (
	itemsJSONL = "items.jsonl"
	databaseDB = "orchard.db"
)

// jsonlFiles lists every JSONL file the backend owns.
var jsonlFiles = []string{itemsJSONL}

// Schema DDL.
const (
	createItems = `CREATE TABLE items (
    item_id TEXT PRIMARY KEY,
    name TEXT NOT NULL CHECK (name <> ''),
    color TEXT NOT NULL CHECK (color <> ''),
    taste TEXT NOT NULL CHECK (taste <> ''),
    season TEXT,
    description TEXT,
    nutrition_facts TEXT,
    is_favorite INTEGER,
    emoji TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxItemsCreated = `CREATE INDEX idx_items_created ON items(created_at, item_id);`
	idxItemsSeason  = `CREATE INDEX idx_items_season ON items(season);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createItems,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxItemsCreated,
	idxItemsSeason,
}

// itemColumns is the column order used by SELECT, INSERT and the JSONL
// loader.
var itemColumns = []string{
	"item_id", "name", "color", "taste", "season", "description",
	"nutrition_facts", "is_favorite", "emoji", "created_at", "updated_at",
}
