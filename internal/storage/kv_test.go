package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, found, err := kv.Get(ctx, TransactionsKey); err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}

	if err := kv.Set(ctx, TransactionsKey, []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, TransactionsKey, []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := kv.Set(ctx, SettlementsKey, []byte(`[{"id":"s"}]`)); err != nil {
		t.Fatalf("set settlements: %v", err)
	}

	got, found, err := kv.Get(ctx, TransactionsKey)
	if err != nil || !found || string(got) != `[]` {
		t.Fatalf("get = %q found=%v err=%v", got, found, err)
	}
	got, _, _ = kv.Get(ctx, SettlementsKey)
	if string(got) != `[{"id":"s"}]` {
		t.Fatalf("keys must be independent, got %q", got)
	}
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestMemoryKVCopiesValues(t *testing.T) {
	kv := NewMemoryKV()
	buf := []byte("abc")
	_ = kv.Set(context.Background(), "k", buf)
	buf[0] = 'x'
	got, _, _ := kv.Get(context.Background(), "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller buffer: %q", got)
	}
}

func TestFileKV(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	exerciseKV(t, kv)

	if _, err := os.Stat(filepath.Join(dir, TransactionsKey+".json")); err != nil {
		t.Fatalf("expected blob file: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}

	if err := kv.Set(context.Background(), "../escape", []byte("x")); err == nil {
		t.Fatalf("expected invalid key error")
	}
}

func TestSQLiteRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer repo.Close()

	exerciseKV(t, repo)

	// Reopening runs migrations again without error and keeps data.
	repo2, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo2.Close()
	got, found, err := repo2.Get(context.Background(), SettlementsKey)
	if err != nil || !found || string(got) != `[{"id":"s"}]` {
		t.Fatalf("reopened get = %q found=%v err=%v", got, found, err)
	}
}
