package docstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestFileStoreLoadAbsent(t *testing.T) {
	store := newTestStore(t)

	data, err := store.Load(context.Background(), CollectionUsers)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil for absent collection, got %q", data)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := []byte(`{"assignments":[]}`)
	if err := store.Save(ctx, CollectionAssignments, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, CollectionAssignments)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != string(doc) {
		t.Fatalf("Load = %q, want %q", got, doc)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, CollectionResults, []byte(`[]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, CollectionResults, []byte(`[{"role":"Resident Assistant"}]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, CollectionResults)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `[{"role":"Resident Assistant"}]` {
		t.Fatalf("Load = %q after overwrite", got)
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := store.Save(context.Background(), CollectionConfig, []byte(`{}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}
