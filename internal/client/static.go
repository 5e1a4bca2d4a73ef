package client

import (
	"sync"

	"github.com/eguisync/eguisync/internal/typeinfo"
)

// Static is the client-side mirror of registry.Static: read-only from
// the client's perspective (spec §3's "the client-side is read-only"),
// overwritten unconditionally by every server update with no Ack.
type Static[T any] struct {
	id        uint64
	unmarshal func([]byte) (T, error)

	mu      sync.RWMutex
	current []byte
}

// NewStatic constructs a Static slot directly; most callers should use
// RegisterStatic instead.
func NewStatic[T any](id uint64, initial T, marshal func(T) []byte, unmarshal func([]byte) (T, error)) *Static[T] {
	return &Static[T]{id: id, unmarshal: unmarshal, current: marshal(initial)}
}

// RegisterStatic hashes path, constructs a Static[T], and wires it
// into r's static/type-hash dispatch maps.
func RegisterStatic[T any](r *Registry, path string, initial T, marshal func(T) []byte, unmarshal func([]byte) (T, error), typ *typeinfo.Descriptor) (*Static[T], error) {
	id, err := r.reserve(path)
	if err != nil {
		return nil, err
	}
	s := NewStatic(id, initial, marshal, unmarshal)
	r.statics[id] = s
	r.typeHash[id] = typ.Hash()
	r.slots[id] = s
	return s, nil
}

// ID returns the slot's stable id.
func (s *Static[T]) ID() uint64 { return s.id }

// Get returns the locally-held current value.
func (s *Static[T]) Get() (T, error) {
	s.mu.RLock()
	data := s.current
	s.mu.RUnlock()
	return s.unmarshal(data)
}

// ApplyStatic unconditionally overwrites the current value.
func (s *Static[T]) ApplyStatic(update bool, payload []byte) (bool, error) {
	if _, err := s.unmarshal(payload); err != nil {
		return false, err
	}
	s.mu.Lock()
	s.current = payload
	s.mu.Unlock()
	return update, nil
}
