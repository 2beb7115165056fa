// Package memory provides the in-memory CredentialStore adapter. The service
// is single-process and single-credential, so the store is a mutex-guarded
// record with no persistence.
package memory

import (
	"sync"

	"github.com/inflectionhq/inflection-mcp/internal/domain/model"
	"github.com/inflectionhq/inflection-mcp/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore holds exactly one CredentialRecord behind a RWMutex so
// concurrent operations never observe a torn record.
type CredentialStore struct {
	mu     sync.RWMutex
	record model.CredentialRecord
}

// NewCredentialStore creates an empty store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// Get returns a copy of the current record.
func (s *CredentialStore) Get() model.CredentialRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record
}

// Set replaces the current record. The record is replaced whole, never merged.
func (s *CredentialStore) Set(record model.CredentialRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = record
}

// Clear resets the store to empty. Safe to call when already empty.
func (s *CredentialStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = model.CredentialRecord{}
}
