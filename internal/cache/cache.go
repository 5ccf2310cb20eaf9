// Package cache keeps assembled documents in SQLite so repeat submissions of
// the same posting skip the parse.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dgallion1/jobparse/internal/doctree"
)

const schema = `
CREATE TABLE IF NOT EXISTS parsed_documents (
	cache_key  TEXT PRIMARY KEY,
	document   BLOB NOT NULL,
	stored_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_parsed_documents_stored_at ON parsed_documents(stored_at);
`

type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens or creates the cache database at path. A ttl of zero keeps
// entries until Purge is called with a positive age.
func Open(path string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// A single connection serializes writers; sqlite would otherwise
	// return SQLITE_BUSY under concurrent Put.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Key identifies a (source, text) pair.
func Key(source, text string) string {
	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached document for (source, text). Expired entries are
// reported as misses.
func (c *Cache) Get(ctx context.Context, source, text string) (*doctree.Document, bool, error) {
	var (
		blob     []byte
		storedAt int64
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT document, stored_at FROM parsed_documents WHERE cache_key = ?",
		Key(source, text)).Scan(&blob, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	if c.ttl > 0 && c.now().Sub(time.Unix(0, storedAt)) > c.ttl {
		return nil, false, nil
	}
	var doc doctree.Document
	if err := json.Unmarshal(blob, &doc); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return &doc, true, nil
}

// Put stores doc under (source, text), replacing any older entry.
func (c *Cache) Put(ctx context.Context, source, text string, doc *doctree.Document) error {
	blob, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO parsed_documents (cache_key, document, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET document = excluded.document, stored_at = excluded.stored_at`,
		Key(source, text), blob, c.now().UnixNano())
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Purge deletes entries older than the cache TTL and returns how many went.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	cutoff := c.now().Add(-c.ttl).UnixNano()
	res, err := c.db.ExecContext(ctx, "DELETE FROM parsed_documents WHERE stored_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	return res.RowsAffected()
}

func (c *Cache) Close() error {
	return c.db.Close()
}
