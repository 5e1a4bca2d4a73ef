package registry

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/eguisync/eguisync/internal/wire"
)

// Map is a server-authoritative, push-only key/value store of opaque
// pre-serialized entries (spec §4.C's "Map" kind), keyed by the raw
// serialized key bytes. Like List, the client never writes to one.
type Map struct {
	id    uint64
	mu    sync.RWMutex
	items map[string][]byte

	sender    *transport.Sender
	connected *atomic.Bool
	enabled   atomic.Bool
}

// NewMap constructs a Map slot directly; most callers should use
// RegisterMap instead.
func NewMap(id uint64, sender *transport.Sender, connected *atomic.Bool) *Map {
	return &Map{id: id, items: make(map[string][]byte), sender: sender, connected: connected}
}

// RegisterMap hashes path, constructs a Map, and wires it into r's
// enable/type-hash dispatch maps. Map is deliberately absent from the
// sync list: the reference implementation this is ported from leaves
// ValueMap::sync() empty, so a Map slot's contents are never resent on
// reconnect, only on an explicit Set/SetItem after the client is back.
func RegisterMap(r *Registry, path string, key, value *typeinfo.Descriptor, sender *transport.Sender, connected *atomic.Bool) (*Map, error) {
	id, err := r.reserve(path)
	if err != nil {
		return nil, err
	}
	m := NewMap(id, sender, connected)
	r.enable[id] = m
	r.typeHash[id] = typeinfo.MapOf(key, value).Hash()
	r.kind[id] = KindMap
	r.slots[id] = m
	return m, nil
}

// ID returns the slot's stable id.
func (m *Map) ID() uint64 { return m.id }

// serializeMapAll encodes every entry as a length-prefixed key
// followed by a length-prefixed value, since both are opaque blobs of
// no fixed width and a receiver must be able to split the concatenated
// payload back into entries (see wire.DecodeMapAll).
func serializeMapAll(items map[string][]byte) []byte {
	out := make([]byte, 0, 8+len(items)*24)
	out = binary.LittleEndian.AppendUint64(out, uint64(len(items)))
	for k, v := range items {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(k)))
		out = append(out, k...)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(v)))
		out = append(out, v...)
	}
	return out
}

// serializeMapEntry encodes a single length-prefixed key followed by
// the value running to the end of the payload (the record's MapLen
// already bounds the whole thing, so the value needs no length of its
// own here).
func serializeMapEntry(key, value []byte) []byte {
	out := make([]byte, 0, 4+len(key)+len(value))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(key)))
	out = append(out, key...)
	out = append(out, value...)
	return out
}

// Set replaces the whole map.
func (m *Map) Set(items map[string][]byte, update bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
	if m.connected.Load() && m.enabled.Load() {
		header := wire.ServerHeader{Tag: wire.SMap, ID: m.id, Update: update, Map: wire.MapHeader{Op: wire.MapAll}}
		m.sender.Send(wire.EncodeServerRecord(header, serializeMapAll(items)))
	}
}

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

// SetItem inserts or overwrites the entry at key.
func (m *Map) SetItem(key, value []byte, update bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[string(key)] = value
	if m.connected.Load() && m.enabled.Load() {
		header := wire.ServerHeader{Tag: wire.SMap, ID: m.id, Update: update, Map: wire.MapHeader{Op: wire.MapSet}}
		m.sender.Send(wire.EncodeServerRecord(header, serializeMapEntry(key, value)))
	}
}

// RemoveItem deletes the entry at key, reporting whether it existed.
func (m *Map) RemoveItem(key []byte, update bool) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.items[string(key)]
	if !ok {
		return nil, false
	}
	delete(m.items, string(key))
	if m.connected.Load() && m.enabled.Load() {
		header := wire.ServerHeader{Tag: wire.SMap, ID: m.id, Update: update, Map: wire.MapHeader{Op: wire.MapRemove}}
		m.sender.Send(wire.EncodeServerRecord(header, key))
	}
	return old, true
}

// Enable toggles whether this slot currently participates in the wire
// protocol for the active connection.
func (m *Map) Enable(enabled bool) { m.enabled.Store(enabled) }

// Sync is a deliberate no-op; see RegisterMap's doc comment.
func (m *Map) Sync() {}
