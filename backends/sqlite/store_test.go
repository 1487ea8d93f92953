package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/botirk38/softcosine/types"
)

func newTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := NewStore(types.BackendConfig{ConnectionString: path})
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return store
}

func TestStoreBasicOperations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, filepath.Join(t.TempDir(), "index.db"))
	defer func() { _ = store.Close() }()

	docs := []types.StoredDocument{
		{Vector: types.SparseVector{{Term: 0, Value: 1}, {Term: 3, Value: 0.25}}, Norm: 1.0307764064044151},
		{Vector: nil, Norm: 0},
		{Vector: types.SparseVector{{Term: 2, Value: 1.0 / 3}}, Norm: 1.0 / 3},
	}
	for i, d := range docs {
		pos, err := store.Append(ctx, d)
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if pos != i {
			t.Errorf("Expected position %d, got %d", i, pos)
		}
	}

	n, err := store.Len(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Expected 3 documents, got %d (err %v)", n, err)
	}

	got, found, err := store.Get(ctx, 2)
	if err != nil || !found {
		t.Fatalf("Expected document 2, got found=%v err=%v", found, err)
	}
	if got.Norm != docs[2].Norm || got.Vector[0].Value != docs[2].Vector[0].Value {
		t.Errorf("Values did not round-trip: %+v", got)
	}

	if _, found, _ := store.Get(ctx, 10); found {
		t.Error("Expected position 10 to be absent")
	}

	var visited []int
	err = store.Range(ctx, func(pos int, d types.StoredDocument) error {
		visited = append(visited, pos)
		return nil
	})
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if len(visited) != 3 || visited[0] != 0 || visited[2] != 2 {
		t.Errorf("Expected positions [0 1 2], got %v", visited)
	}

	if err := store.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if n, _ := store.Len(ctx); n != 0 {
		t.Errorf("Expected empty store, got %d", n)
	}
}

func TestStorePersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "index.db")

	store := newTestStore(t, path)
	doc := types.StoredDocument{Vector: types.SparseVector{{Term: 5, Value: 2}}, Norm: 2}
	if _, err := store.Append(ctx, doc); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := newTestStore(t, path)
	defer func() { _ = reopened.Close() }()

	got, found, err := reopened.Get(ctx, 0)
	if err != nil || !found {
		t.Fatalf("Expected persisted document, got found=%v err=%v", found, err)
	}
	if got.Norm != 2 || got.Vector[0].Term != 5 {
		t.Errorf("Unexpected document after reopen: %+v", got)
	}

	pos, err := reopened.Append(ctx, doc)
	if err != nil || pos != 1 {
		t.Errorf("Expected next position 1, got %d (err %v)", pos, err)
	}
}

func TestNewStoreRequiresPath(t *testing.T) {
	if _, err := NewStore(types.BackendConfig{}); !errors.Is(err, types.ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}
