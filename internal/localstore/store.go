package localstore

import (
	"errors"
	"sync"
)

// Well-known keys inside the local blob store.
const (
	KeyCarts       = "carts"
	KeyActiveTable = "current_table"
	KeyPendingOps  = "pending_operations"
)

var ErrKeyNotFound = errors.New("key not found")

// Store is the durable local key-value blob the cart engine and the pending
// queue write through. Synchronous, process-wide, survives restarts.
type Store interface {
	Save(key string, blob []byte) error
	Load(key string) ([]byte, error)
	Delete(key string) error
	Close() error
}

// MemoryStore is a thread-safe map store used in tests and as a fallback when
// no data directory is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Save(key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(blob))
	copy(cp, blob)
	s.data[key] = cp
	return nil
}

func (s *MemoryStore) Load(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)
	return cp, nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
