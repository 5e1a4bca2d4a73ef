package registry

import (
	"fmt"
	"sync/atomic"

	"github.com/eguisync/eguisync/internal/dispatch"
	"github.com/eguisync/eguisync/internal/typeinfo"
)

// Signal is stateless: it holds nothing locally and exists only to
// route a client->server signal record onto the dispatcher under its
// own id, and to let server-side code queue a signal of its own on the
// same dispatcher (spec §4.D). Nothing a Signal slot does is sent to
// the client.
type Signal struct {
	id      uint64
	enabled atomic.Bool
	signals *dispatch.Dispatcher
}

// NewSignal constructs a Signal slot directly; most callers should use
// RegisterSignal instead.
func NewSignal(id uint64, signals *dispatch.Dispatcher) *Signal {
	return &Signal{id: id, signals: signals}
}

// RegisterSignal hashes path, constructs a Signal, and wires it into
// r's signal/enable/type-hash dispatch maps. Signal slots never appear
// in the ack or sync maps: they hold no state to acknowledge or resend.
func RegisterSignal(r *Registry, path string, typ *typeinfo.Descriptor, signals *dispatch.Dispatcher) (*Signal, error) {
	id, err := r.reserve(path)
	if err != nil {
		return nil, err
	}
	sig := NewSignal(id, signals)
	r.signalUpdaters[id] = sig
	r.enable[id] = sig
	r.typeHash[id] = typ.Hash()
	r.kind[id] = KindSignal
	r.slots[id] = sig
	return sig, nil
}

// ID returns the slot's stable id.
func (s *Signal) ID() uint64 { return s.id }

// Set queues a server-originated signal on the dispatcher under this
// slot's id, for host code waiting on it; nothing is sent to the client.
func (s *Signal) Set(payload []byte) {
	s.signals.Set(s.id, payload)
}

// UpdateSignal routes a client-originated signal record onto the
// dispatcher, for host application code waiting on it.
func (s *Signal) UpdateSignal(payload []byte) error {
	if !s.enabled.Load() {
		return fmt.Errorf("signal %d: not enabled", s.id)
	}
	s.signals.Set(s.id, payload)
	return nil
}

// UpdateValue never applies to a Signal slot.
func (s *Signal) UpdateValue(bool, []byte) error {
	return fmt.Errorf("signal %d: does not accept value records", s.id)
}

// Enable toggles whether this slot currently participates in the wire
// protocol for the active connection.
func (s *Signal) Enable(enabled bool) { s.enabled.Store(enabled) }
