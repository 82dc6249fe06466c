package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openStores(t *testing.T) map[string]BlobStore {
	t.Helper()
	dir := t.TempDir()

	fileStore, err := NewFileStore(filepath.Join(dir, "files"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	repo, err := NewSQLiteRepository(filepath.Join(dir, "db", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return map[string]BlobStore{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"sqlite": repo,
	}
}

func TestBlobStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, DefaultKey); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			if err := store.Set(ctx, DefaultKey, []byte(`{"cards":[]}`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := store.Set(ctx, DefaultKey, []byte(`{"cards":[1]}`)); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, err := store.Get(ctx, DefaultKey)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `{"cards":[1]}` {
				t.Fatalf("got %q", got)
			}

			if _, err := store.Get(ctx, "other"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("keys must be independent, got %v", err)
			}
			for _, bad := range []string{"", "../escape", `a\b`} {
				if err := store.Set(ctx, bad, nil); !errors.Is(err, ErrInvalidKey) {
					t.Fatalf("key %q: expected ErrInvalidKey, got %v", bad, err)
				}
			}
		})
	}
}

func TestMemoryStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	data := []byte("abc")
	if err := m.Set(ctx, "k", data); err != nil {
		t.Fatal(err)
	}
	data[0] = 'x'
	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored blob aliased caller slice: %q", got)
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Set(context.Background(), "snap", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "snap.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("unexpected directory contents %v", names)
	}
}

func TestSQLiteRepositoryPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cctracker.db")

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Set(ctx, DefaultKey, []byte("v1")); err != nil {
		t.Fatal(err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	got, err := repo.Get(ctx, DefaultKey)
	if err != nil || string(got) != "v1" {
		t.Fatalf("got %q, %v", got, err)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
