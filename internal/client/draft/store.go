// Package draft keeps one durable, unsaved content string per document.
package draft

import (
	"context"
	"fmt"

	"prompthub/internal/client/localstore"
)

// Store persists drafts keyed by document id. Read of a missing draft returns "".
type Store interface {
	Read(ctx context.Context, docID string) (string, error)
	Write(ctx context.Context, docID, content string) error
	Clear(ctx context.Context, docID string) error
}

// KeyPrefix namespaces draft entries in the local store.
const KeyPrefix = "draft:"

// BadgerStore keeps drafts in the client's local badger store.
type BadgerStore struct {
	local *localstore.Store
}

// NewBadgerStore creates a draft store over local.
func NewBadgerStore(local *localstore.Store) *BadgerStore {
	return &BadgerStore{local: local}
}

func (s *BadgerStore) key(docID string) string {
	return KeyPrefix + docID
}

// Read returns the stored draft for docID, or "" when there is none.
func (s *BadgerStore) Read(_ context.Context, docID string) (string, error) {
	v, ok, err := s.local.Get(s.key(docID))
	if err != nil {
		return "", fmt.Errorf("read draft: %w", err)
	}
	if !ok {
		return "", nil
	}
	return string(v), nil
}

// Write replaces the draft for docID.
func (s *BadgerStore) Write(_ context.Context, docID, content string) error {
	if err := s.local.Set(s.key(docID), []byte(content)); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

// Clear removes the draft for docID.
func (s *BadgerStore) Clear(_ context.Context, docID string) error {
	if err := s.local.Delete(s.key(docID)); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// ClearAll removes every draft. Used on logout.
func (s *BadgerStore) ClearAll(_ context.Context) error {
	if _, err := s.local.DeletePrefix(KeyPrefix); err != nil {
		return fmt.Errorf("clear drafts: %w", err)
	}
	return nil
}
