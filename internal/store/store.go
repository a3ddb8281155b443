// Package store implements the opaque byte-keyed persistent map the rest of
// the engine treats as an external collaborator: get/put/delete/exists and
// an ordered cursor scan. It is realized on top of modernc.org/sqlite, the
// pure-Go SQLite driver, the same library and database/sql access pattern
// the teacher's database/sqlite3 package uses — here pressed into service as
// a single key/value table rather than a relational schema store.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is the persistent key/value map backing the Catalog and Record
// Store layers above it. Keys and values are arbitrary byte strings.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the store file at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key BLOB PRIMARY KEY, value BLOB NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key and whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Exists reports whether key is present in the store.
func (s *Store) Exists(key string) (bool, error) {
	_, ok, err := s.Get(key)
	return ok, err
}

// Put writes key to value, overwriting any existing value.
func (s *Store) Put(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Delete removes key from the store. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Scan returns every (key, value) pair whose key begins with prefix, in
// ascending key order. The cursor used internally is always closed before
// Scan returns, including on error.
func (s *Store) Scan(prefix string) ([]KV, error) {
	upper := prefixUpperBound(prefix)

	var rows *sql.Rows
	var err error
	if upper == "" {
		rows, err = s.db.Query(`SELECT key, value FROM kv WHERE key >= ? ORDER BY key`, prefix)
	} else {
		rows, err = s.db.Query(`SELECT key, value FROM kv WHERE key >= ? AND key < ? ORDER BY key`, prefix, upper)
	}
	if err != nil {
		return nil, fmt.Errorf("scan %q: %w", prefix, err)
	}
	defer rows.Close()

	var result []KV
	for rows.Next() {
		var kv KV
		if err := rows.Scan(&kv.Key, &kv.Value); err != nil {
			return nil, fmt.Errorf("scan %q: %w", prefix, err)
		}
		result = append(result, kv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan %q: %w", prefix, err)
	}
	return result, nil
}

// KV is one key/value pair returned by Scan.
type KV struct {
	Key   string
	Value string
}

// prefixUpperBound returns the lexicographically smallest string that is
// greater than every string with the given prefix, by incrementing the last
// byte. Returns "" if the prefix is all 0xFF bytes (no finite upper bound
// needed in practice, since our keys are ASCII).
func prefixUpperBound(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0xFF {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}
