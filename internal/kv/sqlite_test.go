package kv

import (
	"context"
	"testing"
)

// setupSQLite creates a SQLite store in a temp directory.
func setupSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreSetGetDelete(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	if err := s.Set(ctx, "request_queue", `[{"request_id":"1"}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok, err := s.Get(ctx, "request_queue")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected key to exist")
	}
	if v != `[{"request_id":"1"}]` {
		t.Errorf("Unexpected value: %s", v)
	}

	if err := s.Delete(ctx, "request_queue"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, ok, _ = s.Get(ctx, "request_queue")
	if ok {
		t.Error("Expected key to be deleted")
	}
}

func TestSQLiteStoreUpsertKeepsInsertionOrder(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	s.Set(ctx, "summary:a", "1")
	s.Set(ctx, "summary:b", "2")
	s.Set(ctx, "summary:a", "3") // overwrite must not move the key

	keys, err := s.ListKeys(ctx, "summary:")
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "summary:a" || keys[1] != "summary:b" {
		t.Errorf("Expected [summary:a summary:b], got %v", keys)
	}
}

func TestSQLiteStoreListKeysPrefix(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	s.Set(ctx, "summary:1", "a")
	s.Set(ctx, "sync_log", "b")
	s.Set(ctx, "summary:2", "c")

	keys, err := s.ListKeys(ctx, "summary:")
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("Expected 2 keys, got %d: %v", len(keys), keys)
	}
}

func TestSQLiteStoreLikeEscaping(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	// An underscore in the prefix must match literally, not as a wildcard.
	s.Set(ctx, "sync_log", "a")
	s.Set(ctx, "syncXlog", "b")

	keys, err := s.ListKeys(ctx, "sync_")
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "sync_log" {
		t.Errorf("Expected [sync_log], got %v", keys)
	}
}

func TestSQLiteStoreDeleteMany(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	s.Set(ctx, "a", "1")
	s.Set(ctx, "b", "2")
	s.Set(ctx, "c", "3")

	if err := s.DeleteMany(ctx, []string{"a", "c", "missing"}); err != nil {
		t.Fatalf("DeleteMany failed: %v", err)
	}

	keys, _ := s.ListKeys(ctx, "")
	if len(keys) != 1 || keys[0] != "b" {
		t.Errorf("Expected [b], got %v", keys)
	}

	if err := s.DeleteMany(ctx, nil); err != nil {
		t.Fatalf("DeleteMany with no keys failed: %v", err)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenSQLite(dir)
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	s.Set(ctx, "summary:1", "persisted")
	s.Close()

	s2, err := OpenSQLite(dir)
	if err != nil {
		t.Fatalf("Failed to reopen sqlite store: %v", err)
	}
	defer s2.Close()

	v, ok, _ := s2.Get(ctx, "summary:1")
	if !ok || v != "persisted" {
		t.Errorf("Expected persisted value after reopen, got %q (ok=%v)", v, ok)
	}
}
