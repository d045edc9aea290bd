package demo

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Index is the local catalog of recordings: a small sqlite database next to
// the demo files so tools can list sessions without decompressing them.
type Index struct {
	db *sql.DB
}

// IndexEntry is one cataloged recording.
type IndexEntry struct {
	Name       string
	Path       string
	Map        string
	Protocol   int
	RecordedAt time.Time
	Frames     int
	Duration   time.Duration
}

func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("demo index: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS demos (
	name        TEXT PRIMARY KEY,
	path        TEXT NOT NULL,
	map         TEXT NOT NULL,
	protocol    INTEGER NOT NULL,
	recorded_at INTEGER NOT NULL,
	frames      INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("demo index: schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Add registers or replaces a recording entry.
func (ix *Index) Add(e IndexEntry) error {
	_, err := ix.db.Exec(
		`INSERT OR REPLACE INTO demos (name, path, map, protocol, recorded_at, frames, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Name, e.Path, e.Map, e.Protocol, e.RecordedAt.Unix(), e.Frames, e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("demo index: add %s: %w", e.Name, err)
	}
	return nil
}

// List returns every entry, newest first.
func (ix *Index) List() ([]IndexEntry, error) {
	rows, err := ix.db.Query(
		`SELECT name, path, map, protocol, recorded_at, frames, duration_ms
		 FROM demos ORDER BY recorded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("demo index: list: %w", err)
	}
	defer rows.Close()

	var out []IndexEntry
	for rows.Next() {
		var e IndexEntry
		var recordedAt int64
		var durationMs int64
		if err := rows.Scan(&e.Name, &e.Path, &e.Map, &e.Protocol, &recordedAt, &e.Frames, &durationMs); err != nil {
			return nil, err
		}
		e.RecordedAt = time.Unix(recordedAt, 0).UTC()
		e.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

// Remove deletes an entry by name. The demo file itself is left alone.
func (ix *Index) Remove(name string) error {
	_, err := ix.db.Exec(`DELETE FROM demos WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("demo index: remove %s: %w", name, err)
	}
	return nil
}

func (ix *Index) Close() error { return ix.db.Close() }
