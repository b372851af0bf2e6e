// Package cache persists compiled (quadruple listing, assembly)
// artifacts in a pure-Go SQLite file, keyed by a content hash of the
// source, so `compiscript build` can skip recompilation of unchanged
// source (`run` always recompiles). Connection handling follows a pool-and-prepared-
// statement shape, trimmed to the single backend this pipeline actually
// needs.
package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/compiscript/compiscript/internal/irpb"
)

// Cache wraps a single SQLite-backed build-artifact table.
type Cache struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	hash       TEXT PRIMARY KEY,
	build_id   TEXT NOT NULL,
	payload    BLOB NOT NULL,
	created_at DATETIME NOT NULL
);
`

// Open creates (if needed) and opens the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite file backend: one writer at a time.
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: migrate: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Put stores an artifact under its source content hash, overwriting any
// prior entry for the same hash.
func (c *Cache) Put(hash string, a irpb.Artifact) error {
	payload := irpb.Encode(a)
	_, err := c.db.Exec(
		`INSERT INTO artifacts (hash, build_id, payload, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET build_id=excluded.build_id, payload=excluded.payload, created_at=excluded.created_at`,
		hash, a.BuildID, payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}

// Get looks up a cached artifact by source content hash.
func (c *Cache) Get(hash string) (irpb.Artifact, bool, error) {
	row := c.db.QueryRow(`SELECT payload FROM artifacts WHERE hash = ?`, hash)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return irpb.Artifact{}, false, nil
		}
		return irpb.Artifact{}, false, fmt.Errorf("cache: get: %w", err)
	}
	a, err := irpb.Decode(payload)
	if err != nil {
		return irpb.Artifact{}, false, fmt.Errorf("cache: decode: %w", err)
	}
	return a, true, nil
}

// Entry summarizes one cache row for the `compiscript cache` subcommand.
type Entry struct {
	Hash      string
	BuildID   string
	CreatedAt time.Time
}

// List returns every cached entry, most recent first.
func (c *Cache) List() ([]Entry, error) {
	rows, err := c.db.Query(`SELECT hash, build_id, created_at FROM artifacts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("cache: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Hash, &e.BuildID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("cache: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear removes every cached artifact.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM artifacts`); err != nil {
		return fmt.Errorf("cache: clear: %w", err)
	}
	return nil
}
