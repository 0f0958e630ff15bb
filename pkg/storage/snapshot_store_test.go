package storage

import (
	"path/filepath"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTempStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSchemaInitialized(t *testing.T) {
	store := newTempStore(t)
	rows, err := store.db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name='snapshots'`)
	if err != nil {
		t.Fatalf("query schema: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatalf("expected snapshots table to exist")
	}
}

func TestUpsertSnapshotReplaces(t *testing.T) {
	store := newTempStore(t)

	if err := store.UpsertSnapshot("channel", "c1", []byte(`{"id":"c1","name":"old"}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.UpsertSnapshot("channel", "c1", []byte(`{"id":"c1","name":"new"}`)); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	records, err := store.SnapshotsByKind("channel")
	if err != nil {
		t.Fatalf("snapshots by kind: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if string(records[0].Payload) != `{"id":"c1","name":"new"}` {
		t.Fatalf("expected replaced payload, got %s", records[0].Payload)
	}
}

func TestReplaceKindSwapsRows(t *testing.T) {
	store := newTempStore(t)

	if err := store.UpsertSnapshot("guild", "g1", []byte(`{"id":"g1"}`)); err != nil {
		t.Fatalf("seed guild: %v", err)
	}
	if err := store.UpsertSnapshot("channel", "c1", []byte(`{"id":"c1"}`)); err != nil {
		t.Fatalf("seed channel: %v", err)
	}

	err := store.ReplaceKind("guild", []SnapshotRecord{
		{Key: "g2", Payload: []byte(`{"id":"g2"}`)},
		{Key: "g3", Payload: []byte(`{"id":"g3"}`)},
	})
	if err != nil {
		t.Fatalf("replace kind: %v", err)
	}

	guilds, err := store.SnapshotsByKind("guild")
	if err != nil {
		t.Fatalf("snapshots by kind: %v", err)
	}
	if len(guilds) != 2 {
		t.Fatalf("expected 2 guild records, got %d", len(guilds))
	}
	for _, rec := range guilds {
		if rec.Key == "g1" {
			t.Fatalf("expected g1 to be replaced")
		}
	}

	channels, err := store.SnapshotsByKind("channel")
	if err != nil {
		t.Fatalf("snapshots by kind: %v", err)
	}
	if len(channels) != 1 {
		t.Fatalf("expected channel rows untouched, got %d", len(channels))
	}
}

func TestDeleteSnapshotsByKeyPrefix(t *testing.T) {
	store := newTempStore(t)

	for _, key := range []string{"g1:u1", "g1:u2", "g2:u1"} {
		if err := store.UpsertSnapshot("member", key, []byte(`{}`)); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}

	if err := store.DeleteSnapshotsByKeyPrefix("member", "g1:"); err != nil {
		t.Fatalf("delete by prefix: %v", err)
	}

	records, err := store.SnapshotsByKind("member")
	if err != nil {
		t.Fatalf("snapshots by kind: %v", err)
	}
	if len(records) != 1 || records[0].Key != "g2:u1" {
		t.Fatalf("expected only g2:u1 to remain, got %+v", records)
	}
}

func TestSnapshotCounts(t *testing.T) {
	store := newTempStore(t)

	if err := store.UpsertSnapshot("guild", "g1", []byte(`{}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.UpsertSnapshot("user", "u1", []byte(`{}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.UpsertSnapshot("user", "u2", []byte(`{}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	counts, err := store.SnapshotCounts()
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts["guild"] != 1 || counts["user"] != 2 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestUninitializedStoreErrors(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never-opened.db"))
	if err := store.UpsertSnapshot("guild", "g1", []byte(`{}`)); err == nil {
		t.Fatalf("expected error before Init")
	}
	if _, err := store.SnapshotsByKind("guild"); err == nil {
		t.Fatalf("expected error before Init")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close of uninitialized store should be a no-op: %v", err)
	}
}
