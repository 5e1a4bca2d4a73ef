package client

import (
	"fmt"
	"sync"

	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/eguisync/eguisync/internal/wire"
)

// List is the client-side mirror of registry.List: push-only from the
// server's perspective, applied locally with the same tolerant
// out-of-bounds handling as list.rs's ValueList::update_value (a
// Set/Remove naming an index past the end is silently dropped rather
// than erroring, since it can arrive racing a List.All the server sent
// just after).
type List struct {
	id uint64

	mu    sync.RWMutex
	items [][]byte
}

// NewList constructs a List slot directly; most callers should use
// RegisterList instead.
func NewList(id uint64) *List { return &List{id: id} }

// RegisterList hashes path, constructs a List, and wires it into r's
// list/type-hash dispatch maps.
func RegisterList(r *Registry, path string, elem *typeinfo.Descriptor) (*List, error) {
	id, err := r.reserve(path)
	if err != nil {
		return nil, err
	}
	l := NewList(id)
	r.lists[id] = l
	r.typeHash[id] = typeinfo.SliceOf(elem).Hash()
	r.slots[id] = l
	return l, nil
}

// ID returns the slot's stable id.
func (l *List) ID() uint64 { return l.id }

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

// ApplyList applies a decoded List record.
func (l *List) ApplyList(update bool, header wire.ListHeader, payload []byte) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch header.Op {
	case wire.ListAll:
		items, err := wire.DecodeListAll(payload)
		if err != nil {
			return false, fmt.Errorf("list %d: decoding All: %w", l.id, err)
		}
		l.items = items
	case wire.ListSet:
		idx := int(header.Index)
		if idx >= 0 && idx < len(l.items) {
			l.items[idx] = append([]byte(nil), payload...)
		}
	case wire.ListAdd:
		l.items = append(l.items, append([]byte(nil), payload...))
	case wire.ListRemove:
		idx := int(header.Index)
		if idx >= 0 && idx < len(l.items) {
			l.items = append(l.items[:idx], l.items[idx+1:]...)
		}
	default:
		return false, fmt.Errorf("list %d: unknown list op %d", l.id, header.Op)
	}
	return update, nil
}
