package cart

import (
	"context"
	"sync"

	"shop-svc/models"
)

// MemoryStore is a process-local cart store used in tests and when the
// service runs without Redis.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]models.CartItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]models.CartItem)}
}

func (s *MemoryStore) Add(ctx context.Context, sessionID string, item models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = mergeAdd(s.carts[sessionID], item)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, sessionID string, key models.CartKey, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = setQuantity(s.carts[sessionID], key, quantity)
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, sessionID string, key models.CartKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = removeItem(s.carts[sessionID], key)
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

func (s *MemoryStore) Items(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]models.CartItem, len(s.carts[sessionID]))
	copy(items, s.carts[sessionID])
	return items, nil
}

func (s *MemoryStore) Count(ctx context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalQuantity(s.carts[sessionID]), nil
}
