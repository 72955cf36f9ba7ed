package index

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/cnbyhn/vantiel/internal/storage"
)

// Insert records one journal entry in the index. Re-inserting an existing
// id is a no-op, so rebuilds and incremental inserts can overlap safely.
func Insert(db *sql.DB, e *storage.Entry) error {
	var tagsJSON sql.NullString
	if len(e.SceneTags) > 0 {
		data, err := json.Marshal(e.SceneTags)
		if err != nil {
			return err
		}
		tagsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT OR IGNORE INTO journal_entries (
			id, turn, timestamp, scene_ref, location, tags_json,
			entry_json, indexed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		e.ID, e.Turn, e.Timestamp, toNullString(e.SceneRef), toNullString(e.Location),
		tagsJSON, string(e.Raw), time.Now().Unix(),
	)
	return err
}

// Rebuild repopulates the index from the journal, replacing all rows.
// Returns the number of indexed entries.
func Rebuild(db *sql.DB, jst *storage.JournalStore) (int, error) {
	entries, err := jst.ReadAll()
	if err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM journal_entries"); err != nil {
		return 0, err
	}
	for i := range entries {
		e := &entries[i]
		var tagsJSON sql.NullString
		if len(e.SceneTags) > 0 {
			data, err := json.Marshal(e.SceneTags)
			if err != nil {
				return 0, err
			}
			tagsJSON = sql.NullString{String: string(data), Valid: true}
		}
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO journal_entries (
				id, turn, timestamp, scene_ref, location, tags_json,
				entry_json, indexed_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Turn, e.Timestamp, toNullString(e.SceneRef), toNullString(e.Location),
			tagsJSON, string(e.Raw), time.Now().Unix(),
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// ListOptions filters and bounds an index query.
type ListOptions struct {
	// Turn filters to one turn when >= 0. Use -1 for no filter.
	Turn int
	// Tag filters to entries carrying the scene tag, when non-empty.
	Tag string
	// Limit bounds the result set when > 0.
	Limit int
}

// List returns indexed entries in turn order, newest last.
func List(db *sql.DB, opts ListOptions) ([]storage.Entry, error) {
	query := "SELECT entry_json FROM journal_entries"
	var conds []string
	var args []any
	if opts.Turn >= 0 {
		conds = append(conds, "turn = ?")
		args = append(args, opts.Turn)
	}
	if opts.Tag != "" {
		// tags_json is a JSON array; match the quoted element.
		conds = append(conds, "tags_json LIKE ?")
		args = append(args, `%"`+opts.Tag+`"%`)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY turn ASC, timestamp ASC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []storage.Entry
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var e storage.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			continue
		}
		e.Raw = json.RawMessage(raw)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetByID retrieves one indexed entry by its ULID. Returns sql.ErrNoRows
// when the id is not indexed.
func GetByID(db *sql.DB, id string) (*storage.Entry, error) {
	var raw string
	err := db.QueryRow("SELECT entry_json FROM journal_entries WHERE id = ?", id).Scan(&raw)
	if err != nil {
		return nil, err
	}
	var e storage.Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, err
	}
	e.Raw = json.RawMessage(raw)
	return &e, nil
}

// Count returns the number of indexed entries.
func Count(db *sql.DB) (int, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM journal_entries").Scan(&n)
	return n, err
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
