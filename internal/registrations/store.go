package registrations

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Store is the local key-value store of registrations. Writes replace the
// whole record.
type Store interface {
	GetAll(ctx context.Context) ([]Registration, error)
	Find(ctx context.Context, id string) (*Registration, error)
	Upsert(ctx context.Context, reg *Registration) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type memoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns a Store held in process memory. Records are kept
// encoded so callers never share slices with the store.
func NewMemoryStore() Store {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) GetAll(_ context.Context) ([]Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	regs := make([]Registration, 0, len(ids))
	for _, id := range ids {
		reg, err := decode(m.data[id])
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, nil
}

func (m *memoryStore) Find(_ context.Context, id string) (*Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	return decode(data)
}

func (m *memoryStore) Upsert(_ context.Context, reg *Registration) error {
	if reg.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRegistration)
	}
	data, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}

	m.mu.Lock()
	m.data[reg.ID] = data
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[id]; !ok {
		return ErrNotFound
	}
	delete(m.data, id)
	return nil
}

func (m *memoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data), nil
}

func decode(data []byte) (*Registration, error) {
	var reg Registration
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registration: %w", err)
	}
	return &reg, nil
}
