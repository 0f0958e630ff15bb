// Package storage persists entity payload snapshots in an embedded SQLite
// database so caches can be rebuilt across restarts. It uses
// modernc.org/sqlite for CGO-less builds.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the snapshot database. Call Init before using it.
type Store struct {
	dbPath string
	db     *sql.DB
}

// SnapshotRecord is one persisted entity payload.
type SnapshotRecord struct {
	Kind     string
	Key      string
	Payload  []byte
	StoredAt time.Time
}

// NewStore creates a Store pointing to dbPath.
func NewStore(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

// Init opens the SQLite database, configures pragmas, and ensures the schema
// exists. Calling it on an initialized store is a no-op.
func (s *Store) Init() error {
	if s.db != nil {
		return nil
	}
	if s.dbPath == "" {
		return fmt.Errorf("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}

	// Pragmas for durability and concurrency
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return fmt.Errorf("set WAL: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000;`); err != nil {
		_ = db.Close()
		return fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.Exec(`PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return fmt.Errorf("set synchronous: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UpsertSnapshot inserts or replaces one snapshot row.
func (s *Store) UpsertSnapshot(kind, key string, payload []byte) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	if kind == "" || key == "" {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT INTO snapshots (kind, key, payload, stored_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(kind, key) DO UPDATE SET
           payload=excluded.payload,
           stored_at=excluded.stored_at`,
		kind, key, string(payload), time.Now().UTC(),
	)
	return err
}

// ReplaceKind atomically replaces every snapshot of one kind with rows.
// Record kinds other than kind are ignored.
func (s *Store) ReplaceKind(kind string, rows []SnapshotRecord) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	if kind == "" {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM snapshots WHERE kind=?`, kind); err != nil {
		return err
	}
	storedAt := time.Now().UTC()
	for _, rec := range rows {
		if rec.Key == "" || (rec.Kind != "" && rec.Kind != kind) {
			continue
		}
		if _, err := tx.Exec(
			`INSERT INTO snapshots (kind, key, payload, stored_at) VALUES (?, ?, ?, ?)`,
			kind, rec.Key, string(rec.Payload), storedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SnapshotsByKind returns every snapshot of one kind, oldest stored first.
func (s *Store) SnapshotsByKind(kind string) ([]SnapshotRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	rows, err := s.db.Query(
		`SELECT kind, key, payload, stored_at FROM snapshots WHERE kind=? ORDER BY stored_at, key`,
		kind,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SnapshotRecord
	for rows.Next() {
		var rec SnapshotRecord
		var payload string
		if err := rows.Scan(&rec.Kind, &rec.Key, &payload, &rec.StoredAt); err != nil {
			return nil, err
		}
		rec.Payload = []byte(payload)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteSnapshot removes one snapshot row (no error if absent).
func (s *Store) DeleteSnapshot(kind, key string) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	_, err := s.db.Exec(`DELETE FROM snapshots WHERE kind=? AND key=?`, kind, key)
	return err
}

// DeleteSnapshotsByKeyPrefix removes every snapshot of one kind whose key
// starts with prefix. Keys are snowflake ids and composite ids joined with
// ":", so the prefix never contains LIKE metacharacters.
func (s *Store) DeleteSnapshotsByKeyPrefix(kind, prefix string) error {
	if s.db == nil {
		return fmt.Errorf("store not initialized")
	}
	if prefix == "" {
		return nil
	}
	_, err := s.db.Exec(`DELETE FROM snapshots WHERE kind=? AND key LIKE ?`, kind, prefix+"%")
	return err
}

// SnapshotCounts returns how many snapshots are stored per kind.
func (s *Store) SnapshotCounts() (map[string]int, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	rows, err := s.db.Query(`SELECT kind, COUNT(*) FROM snapshots GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, err
		}
		counts[kind] = count
	}
	return counts, rows.Err()
}

// ensureSchema creates required tables and indexes if they don't exist.
func ensureSchema(db *sql.DB) error {
	const createSnapshots = `
CREATE TABLE IF NOT EXISTS snapshots (
  kind      TEXT NOT NULL,
  key       TEXT NOT NULL,
  payload   TEXT NOT NULL,
  stored_at TIMESTAMP NOT NULL,
  PRIMARY KEY (kind, key)
);
CREATE INDEX IF NOT EXISTS idx_snapshots_kind ON snapshots(kind);`

	if _, err := db.Exec(createSnapshots); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
