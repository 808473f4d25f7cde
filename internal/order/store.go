package order

import (
	"context"
	"sync"
)

// Counter keys persisted by every store
const (
	KeyOrderDate    = "orderDate"
	KeyOrderCounter = "orderCounter"
)

// KV is the key/value view a store exposes inside one atomic update
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// CounterStore persists the daily order counter. Update runs fn so that no
// other Update observes its reads and writes half-applied.
type CounterStore interface {
	Update(ctx context.Context, fn func(kv KV) error) error
}

// MemoryStore is a process-local CounterStore
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Update implements CounterStore. Writes are discarded if fn fails.
func (s *MemoryStore) Update(ctx context.Context, fn func(kv KV) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{base: s.values, writes: make(map[string]string)}
	if err := fn(tx); err != nil {
		return err
	}
	for k, v := range tx.writes {
		s.values[k] = v
	}
	return nil
}

// Values returns a copy of the stored keys
func (s *MemoryStore) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

type memoryTx struct {
	base   map[string]string
	writes map[string]string
}

func (t *memoryTx) Get(_ context.Context, key string) (string, bool, error) {
	if v, ok := t.writes[key]; ok {
		return v, true, nil
	}
	v, ok := t.base[key]
	return v, ok, nil
}

func (t *memoryTx) Set(_ context.Context, key, value string) error {
	t.writes[key] = value
	return nil
}
