// Package directorystore contains directory router store implementations:
// an in-memory map for development and tests and a Badger-backed store for
// persistent key to shard mappings.
package directorystore

import "sync"

// Memory is an in-memory directory store. Safe for concurrent use.
type Memory struct {
	mutex    sync.RWMutex
	mappings map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{mappings: make(map[string]string)}
}

// Get returns the shard mapped to the key.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	id, ok := m.mappings[key]
	return id, ok, nil
}

// Set maps a key to a shard.
func (m *Memory) Set(key, shardID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.mappings[key] = shardID
	return nil
}

// Delete removes a mapping.
func (m *Memory) Delete(key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.mappings, key)
	return nil
}

// Keys lists the mapped keys.
func (m *Memory) Keys() ([]string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	ret := make([]string, 0, len(m.mappings))
	for k := range m.mappings {
		ret = append(ret, k)
	}
	return ret, nil
}
