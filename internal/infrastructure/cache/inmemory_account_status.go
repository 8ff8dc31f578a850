package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/vendaflow/backend/internal/domain/marketplace"
)

// InMemoryAccountStatusStore is the single-instance fallback for
// deployments without Redis. State is lost on restart, which is acceptable:
// the next failed refresh recreates the mark.
type InMemoryAccountStatusStore struct {
	mu    sync.RWMutex
	marks map[string]string
}

// NewInMemoryAccountStatusStore creates an empty store
func NewInMemoryAccountStatusStore() *InMemoryAccountStatusStore {
	return &InMemoryAccountStatusStore{marks: make(map[string]string)}
}

func memKey(accountID uuid.UUID, platform marketplace.PlatformCode) string {
	return fmt.Sprintf("%s:%s", platform, accountID)
}

// MarkInvalid sets the invalid mark
func (s *InMemoryAccountStatusStore) MarkInvalid(_ context.Context, accountID uuid.UUID, platform marketplace.PlatformCode, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks[memKey(accountID, platform)] = reason
	return nil
}

// ClearInvalid removes the invalid mark
func (s *InMemoryAccountStatusStore) ClearInvalid(_ context.Context, accountID uuid.UUID, platform marketplace.PlatformCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.marks, memKey(accountID, platform))
	return nil
}

// IsInvalid reports whether the account is marked invalid
func (s *InMemoryAccountStatusStore) IsInvalid(_ context.Context, accountID uuid.UUID, platform marketplace.PlatformCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.marks[memKey(accountID, platform)]
	return ok, nil
}

var _ marketplace.AccountStatusStore = (*InMemoryAccountStatusStore)(nil)
