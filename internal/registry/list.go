package registry

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/eguisync/eguisync/internal/wire"
)

// List is a server-authoritative, push-only ordered sequence of opaque
// pre-serialized elements (spec §4.C's "List" kind): the client never
// sends a List record of its own, it only ever receives one.
type List struct {
	id    uint64
	mu    sync.RWMutex
	items [][]byte

	sender    *transport.Sender
	connected *atomic.Bool
	enabled   atomic.Bool
}

// NewList constructs a List slot directly; most callers should use
// RegisterList instead.
func NewList(id uint64, sender *transport.Sender, connected *atomic.Bool) *List {
	return &List{id: id, sender: sender, connected: connected}
}

// RegisterList hashes path, constructs a List, and wires it into r's
// enable/sync/type-hash dispatch maps. List slots never appear in the
// value, signal, or ack maps: the client never writes to one.
func RegisterList(r *Registry, path string, elem *typeinfo.Descriptor, sender *transport.Sender, connected *atomic.Bool) (*List, error) {
	id, err := r.reserve(path)
	if err != nil {
		return nil, err
	}
	l := NewList(id, sender, connected)
	r.enable[id] = l
	r.sync = append(r.sync, l)
	r.typeHash[id] = typeinfo.SliceOf(elem).Hash()
	r.kind[id] = KindList
	r.slots[id] = l
	return l, nil
}

// ID returns the slot's stable id.
func (l *List) ID() uint64 { return l.id }

// serializeAll encodes the whole list as a count followed by each item
// prefixed with its own length, since list elements are opaque blobs
// with no fixed width and a receiver must be able to split them back
// apart (see wire.DecodeListAll, the inverse of this encoding).
func serializeAll(count int, items [][]byte) []byte {
	out := make([]byte, 0, 8+len(items)*4)
	out = binary.LittleEndian.AppendUint64(out, uint64(count))
	for _, it := range items {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(it)))
		out = append(out, it...)
	}
	return out
}

// Set replaces the whole list.
func (l *List) Set(items [][]byte, update bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = items
	if l.connected.Load() && l.enabled.Load() {
		header := wire.ServerHeader{Tag: wire.SList, ID: l.id, Update: update, List: wire.ListHeader{Op: wire.ListAll}}
		l.sender.Send(wire.EncodeServerRecord(header, serializeAll(len(items), items)))
	}
}

// Get returns a copy of the current items.
func (l *List) Get() [][]byte {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([][]byte, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the current number of items.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// GetItem returns a single item by index.
func (l *List) GetItem(idx int) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if idx < 0 || idx >= len(l.items) {
		return nil, fmt.Errorf("list %d: index %d out of bounds (len %d)", l.id, idx, len(l.items))
	}
	return l.items[idx], nil
}

// SetItem overwrites a single existing index.
func (l *List) SetItem(idx int, value []byte, update bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx < 0 || idx >= len(l.items) {
		return fmt.Errorf("list %d: index %d out of bounds (len %d)", l.id, idx, len(l.items))
	}
	l.items[idx] = value
	if l.connected.Load() && l.enabled.Load() {
		header := wire.ServerHeader{Tag: wire.SList, ID: l.id, Update: update, List: wire.ListHeader{Op: wire.ListSet, Index: uint64(idx)}}
		l.sender.Send(wire.EncodeServerRecord(header, value))
	}
	return nil
}

// AppendItem adds value to the end of the list.
func (l *List) AppendItem(value []byte, update bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, value)
	if l.connected.Load() && l.enabled.Load() {
		header := wire.ServerHeader{Tag: wire.SList, ID: l.id, Update: update, List: wire.ListHeader{Op: wire.ListAdd}}
		l.sender.Send(wire.EncodeServerRecord(header, value))
	}
}

// RemoveItem removes and returns the item at idx.
func (l *List) RemoveItem(idx int, update bool) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx < 0 || idx >= len(l.items) {
		return nil, fmt.Errorf("list %d: index %d out of bounds (len %d)", l.id, idx, len(l.items))
	}
	value := l.items[idx]
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	if l.connected.Load() && l.enabled.Load() {
		header := wire.ServerHeader{Tag: wire.SList, ID: l.id, Update: update, List: wire.ListHeader{Op: wire.ListRemove, Index: uint64(idx)}}
		l.sender.Send(wire.EncodeServerRecord(header, nil))
	}
	return value, nil
}

// Enable toggles whether this slot currently participates in the wire
// protocol for the active connection.
func (l *List) Enable(enabled bool) { l.enabled.Store(enabled) }

// Sync resends the whole list.
func (l *List) Sync() {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.enabled.Load() {
		return
	}
	header := wire.ServerHeader{Tag: wire.SList, ID: l.id, Update: false, List: wire.ListHeader{Op: wire.ListAll}}
	l.sender.Send(wire.EncodeServerRecord(header, serializeAll(len(l.items), l.items)))
}
