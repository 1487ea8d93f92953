// Package inmemory provides an append-only in-process index backend.
package inmemory

import (
	"context"
	"sync"

	"github.com/botirk38/softcosine/types"
)

// Store implements IndexBackend with a slice guarded by a RWMutex.
type Store struct {
	mu   sync.RWMutex
	docs []types.StoredDocument
}

// NewStore creates a new in-memory store. config.Options["capacity"] preallocates room.
func NewStore(config types.BackendConfig) (*Store, error) {
	capacity := 0
	if c, ok := config.Options["capacity"].(int); ok && c > 0 {
		capacity = c
	}
	return &Store{docs: make([]types.StoredDocument, 0, capacity)}, nil
}

// Append stores doc at the end of the sequence
func (s *Store) Append(ctx context.Context, doc types.StoredDocument) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = append(s.docs, doc)
	return len(s.docs) - 1, nil
}

// Get retrieves the document at pos
func (s *Store) Get(ctx context.Context, pos int) (types.StoredDocument, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if pos < 0 || pos >= len(s.docs) {
		return types.StoredDocument{}, false, nil
	}
	return s.docs[pos], true, nil
}

// Len returns the number of stored documents
func (s *Store) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.docs), nil
}

// Range iterates over a snapshot of the documents in insertion order.
// Stored documents never change, so the snapshot is taken without copying.
func (s *Store) Range(ctx context.Context, fn func(pos int, doc types.StoredDocument) error) error {
	s.mu.RLock()
	docs := s.docs
	s.mu.RUnlock()

	for pos, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(pos, doc); err != nil {
			return err
		}
	}
	return nil
}

// Flush removes all documents
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = nil
	return nil
}

// Close is a no-op for the in-memory store
func (s *Store) Close() error {
	return nil
}
