package settings

import (
	"context"
	"sync"
)

// Memory keeps values in process, it is used by tests and by one-shot commands
// running without persistent backend.
type Memory struct {
	mu     sync.Mutex
	values map[string]any
	saves  int
}

func NewMemory(values map[string]any) *Memory {
	m := &Memory{values: make(map[string]any)}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *Memory) Load(_ context.Context, _ Schema) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c = make(map[string]any, len(m.values))
	for k, v := range m.values {
		c[k] = v
	}
	return c, nil
}

func (m *Memory) Save(_ context.Context, key string, value any, _ map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.saves++
	return nil
}

// Put changes a value behind the store back, like another process would.
func (m *Memory) Put(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Saves returns number of writes made through the store.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
