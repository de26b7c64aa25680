package kv

import (
	"context"
	"testing"
)

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Set(ctx, "a", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected key to exist")
	}
	if v != "1" {
		t.Errorf("Expected value 1, got %s", v)
	}

	_, ok, _ = s.Get(ctx, "missing")
	if ok {
		t.Error("Expected missing key to not exist")
	}
}

func TestMemoryStoreListKeysInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, k := range []string{"summary:c", "summary:a", "other:x", "summary:b"} {
		if err := s.Set(ctx, k, "v"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	keys, err := s.ListKeys(ctx, "summary:")
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}

	want := []string{"summary:c", "summary:a", "summary:b"}
	if len(keys) != len(want) {
		t.Fatalf("Expected %d keys, got %d", len(want), len(keys))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("Expected key %s at position %d, got %s", k, i, keys[i])
		}
	}
}

func TestMemoryStoreOverwriteKeepsOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "a", "1")
	s.Set(ctx, "b", "2")
	s.Set(ctx, "a", "3")

	keys, _ := s.ListKeys(ctx, "")
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Expected [a b], got %v", keys)
	}

	v, _, _ := s.Get(ctx, "a")
	if v != "3" {
		t.Errorf("Expected overwritten value 3, got %s", v)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "a", "1")
	s.Set(ctx, "b", "2")
	s.Set(ctx, "c", "3")

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	// Deleting a missing key is not an error
	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete of missing key failed: %v", err)
	}

	if err := s.DeleteMany(ctx, []string{"a", "c"}); err != nil {
		t.Fatalf("DeleteMany failed: %v", err)
	}

	keys, _ := s.ListKeys(ctx, "")
	if len(keys) != 0 {
		t.Errorf("Expected empty store, got %v", keys)
	}
}
