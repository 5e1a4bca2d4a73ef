package registry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/eguisync/eguisync/internal/wire"
)

// Static is a server-authoritative cell with no acknowledgement
// discipline: every write, local or remote, unconditionally overwrites
// the current value (spec §4.C's "Static" kind).
type Static[T any] struct {
	id        uint64
	marshal   func(T) []byte
	unmarshal func([]byte) (T, error)

	mu      sync.Mutex
	current []byte

	sender    *transport.Sender
	connected *atomic.Bool
	enabled   atomic.Bool
}

// NewStatic constructs a Static slot directly; most callers should use
// RegisterStatic instead.
func NewStatic[T any](id uint64, initial T, marshal func(T) []byte, unmarshal func([]byte) (T, error), sender *transport.Sender, connected *atomic.Bool) *Static[T] {
	return &Static[T]{
		id:        id,
		marshal:   marshal,
		unmarshal: unmarshal,
		current:   marshal(initial),
		sender:    sender,
		connected: connected,
	}
}

// RegisterStatic hashes path, constructs a Static[T], and wires it
// into r's value/enable/sync/type-hash dispatch maps. Static slots
// never appear in the ack map: they have no pending-writes counter.
func RegisterStatic[T any](r *Registry, path string, initial T, marshal func(T) []byte, unmarshal func([]byte) (T, error), typ *typeinfo.Descriptor, sender *transport.Sender, connected *atomic.Bool) (*Static[T], error) {
	id, err := r.reserve(path)
	if err != nil {
		return nil, err
	}
	s := NewStatic(id, initial, marshal, unmarshal, sender, connected)
	r.valueUpdaters[id] = s
	r.enable[id] = s
	r.sync = append(r.sync, s)
	r.typeHash[id] = typ.Hash()
	r.kind[id] = KindStatic
	r.slots[id] = s
	return s, nil
}

// ID returns the slot's stable id.
func (s *Static[T]) ID() uint64 { return s.id }

// Get returns the locally-held current value.
func (s *Static[T]) Get() (T, error) {
	s.mu.Lock()
	data := s.current
	s.mu.Unlock()
	return s.unmarshal(data)
}

// Set overwrites the current value, sending it to the client when the
// connection is active and the slot enabled.
func (s *Static[T]) Set(value T, update bool) {
	payload := s.marshal(value)
	s.mu.Lock()
	if s.connected.Load() && s.enabled.Load() {
		header := wire.ServerHeader{Tag: wire.SStatic, ID: s.id, Update: update}
		s.sender.Send(wire.EncodeServerRecord(header, payload))
	}
	s.current = payload
	s.mu.Unlock()
}

// UpdateValue applies a value received from the client unconditionally.
func (s *Static[T]) UpdateValue(_ bool, payload []byte) error {
	s.mu.Lock()
	s.current = payload
	s.mu.Unlock()
	return nil
}

// UpdateSignal never applies to a Static slot.
func (s *Static[T]) UpdateSignal([]byte) error {
	return fmt.Errorf("static %d: does not accept signal records", s.id)
}

// Enable toggles whether this slot currently participates in the wire
// protocol for the active connection.
func (s *Static[T]) Enable(enabled bool) { s.enabled.Store(enabled) }

// Sync resends the current value in full.
func (s *Static[T]) Sync() {
	if !s.enabled.Load() {
		return
	}
	s.mu.Lock()
	payload := s.current
	s.mu.Unlock()
	header := wire.ServerHeader{Tag: wire.SStatic, ID: s.id, Update: false}
	s.sender.Send(wire.EncodeServerRecord(header, payload))
}
