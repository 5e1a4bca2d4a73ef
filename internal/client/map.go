package client

import (
	"fmt"
	"sync"

	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/eguisync/eguisync/internal/wire"
)

// Map is the client-side mirror of registry.Map: push-only from the
// server's perspective, keyed by the raw serialized key bytes.
type Map struct {
	id uint64

	mu    sync.RWMutex
	items map[string][]byte
}

// NewMap constructs a Map slot directly; most callers should use
// RegisterMap instead.
func NewMap(id uint64) *Map { return &Map{id: id, items: make(map[string][]byte)} }

// RegisterMap hashes path, constructs a Map, and wires it into r's
// map/type-hash dispatch maps.
func RegisterMap(r *Registry, path string, key, value *typeinfo.Descriptor) (*Map, error) {
	id, err := r.reserve(path)
	if err != nil {
		return nil, err
	}
	m := NewMap(id)
	r.maps[id] = m
	r.typeHash[id] = typeinfo.MapOf(key, value).Hash()
	r.slots[id] = m
	return m, nil
}

// ID returns the slot's stable id.
func (m *Map) ID() uint64 { return m.id }

// Get returns a copy of the current key/value pairs.
func (m *Map) Get() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte, len(m.items))
	for k, v := range m.items {
		out[k] = v
	}
	return out
}

// Len returns the current number of entries.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// GetItem returns the value stored under key.
func (m *Map) GetItem(key []byte) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[string(key)]
	return v, ok
}

// ApplyMap applies a decoded Map record.
func (m *Map) ApplyMap(update bool, header wire.MapHeader, payload []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch header.Op {
	case wire.MapAll:
		entries, err := wire.DecodeMapAll(payload)
		if err != nil {
			return false, fmt.Errorf("map %d: decoding All: %w", m.id, err)
		}
		items := make(map[string][]byte, len(entries))
		for _, e := range entries {
			items[string(e.Key)] = e.Value
		}
		m.items = items
	case wire.MapSet:
		key, value, err := wire.DecodeMapEntry(payload)
		if err != nil {
			return false, fmt.Errorf("map %d: decoding Set: %w", m.id, err)
		}
		m.items[string(key)] = value
	case wire.MapRemove:
		delete(m.items, string(payload))
	default:
		return false, fmt.Errorf("map %d: unknown map op %d", m.id, header.Op)
	}
	return update, nil
}
