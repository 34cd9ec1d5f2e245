package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryData struct {
	mu     sync.RWMutex
	values map[string]string
}

// Memory keeps keys in process memory. Handles created with Fork share the
// same keys and change bus, like two tabs of one origin.
type Memory struct {
	data   *memoryData
	bus    *bus
	origin string
}

// NewMemory returns an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{
		data:   &memoryData{values: make(map[string]string)},
		bus:    newBus(),
		origin: uuid.NewString(),
	}
}

// Fork returns another handle over the same data with its own origin.
func (m *Memory) Fork() *Memory {
	return &Memory{data: m.data, bus: m.bus, origin: uuid.NewString()}
}

// Origin identifies writes made through this handle.
func (m *Memory) Origin() string {
	return m.origin
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}
	m.data.mu.RLock()
	defer m.data.mu.RUnlock()
	v, ok := m.data.values[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.data.mu.Lock()
	m.data.values[key] = value
	m.data.mu.Unlock()

	m.bus.publish(Event{Key: key, Value: value, Origin: m.origin})
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.data.mu.Lock()
	_, existed := m.data.values[key]
	delete(m.data.values, key)
	m.data.mu.Unlock()

	if existed {
		m.bus.publish(Event{Key: key, Removed: true, Origin: m.origin})
	}
	return nil
}

func (m *Memory) Subscribe(fn func(Event)) func() {
	return m.bus.subscribe(fn)
}

func (m *Memory) Close() error {
	return nil
}
