// This file implements JSONL loading into SQLite on attach and refresh.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables and column
// lists. normalize, when set, rewrites a decoded record in place and reports
// whether it is loadable.
var jsonlTableMapping = []struct {
	file      string
	table     string
	columns   []string
	normalize func(obj map[string]any) bool
}{
	{itemsJSONL, "items", itemColumns, normalizeItemRecord},
}

// normalizeItemRecord rewrites created_at and updated_at in timeLayout so
// they sort lexically and hydrate cleanly. Records with a missing or
// unparseable timestamp are rejected.
func normalizeItemRecord(obj map[string]any) bool {
	for _, col := range []string{"created_at", "updated_at"} {
		s, ok := obj[col].(string)
		if !ok {
			return false
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return false
		}
		obj[col] = ts.UTC().Format(timeLayout)
	}
	return true
}

// loadAllJSONL replaces the contents of every mapped table with the records
// of its JSONL file. Loading is transactional: all tables load or none
// change. Malformed lines and records violating table constraints are
// skipped; unknown fields are ignored.
func loadAllJSONL(db *sql.DB, dataDir string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	loaded := 0
	for _, mapping := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dataDir, mapping.file))
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		if _, err := tx.Exec("DELETE FROM " + mapping.table); err != nil {
			return 0, fmt.Errorf("clearing %s: %w", mapping.table, err)
		}
		if len(records) == 0 {
			continue
		}
		n, err := insertRecords(tx, mapping.table, mapping.columns, mapping.normalize, records)
		if err != nil {
			return 0, fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
		loaded += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return loaded, nil
}

// insertRecords inserts parsed JSONL records into a SQLite table and returns
// how many rows were inserted. Only columns listed in the mapping are
// extracted; extra fields do not cause errors. Booleans are stored as 0/1.
// Records rejected by normalize are skipped.
func insertRecords(tx *sql.Tx, table string, columns []string, normalize func(map[string]any) bool, records []json.RawMessage) (int, error) {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}
		if normalize != nil && !normalize(obj) {
			continue
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			val, ok := obj[col]
			if !ok {
				args[i] = nil
				continue
			}
			switch v := val.(type) {
			case bool:
				if v {
					args[i] = 1
				} else {
					args[i] = 0
				}
			case map[string]any, []any:
				b, err := json.Marshal(v)
				if err != nil {
					args[i] = nil
					continue
				}
				args[i] = string(b)
			default:
				args[i] = val
			}
		}

		res, err := stmt.Exec(args...)
		if err != nil {
			// Constraint violations (missing required fields) are skipped.
			continue
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	return inserted, nil
}
