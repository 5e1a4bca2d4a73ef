package client

import (
	"sync/atomic"

	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/eguisync/eguisync/internal/wire"
)

// Signal is the client-side mirror of registry.Signal: it holds no
// state and exists only to push a client-originated signal upstream
// (spec §3: "no storage; only a transport channel"). There is no
// server->client Signal record (see wire.ServerTag), so Signal never
// appears in Registry's apply-side maps.
type Signal struct {
	id        uint64
	sender    *transport.Sender
	connected *atomic.Bool
}

// NewSignal constructs a Signal slot directly; most callers should use
// RegisterSignal instead.
func NewSignal(id uint64, sender *transport.Sender, connected *atomic.Bool) *Signal {
	return &Signal{id: id, sender: sender, connected: connected}
}

// RegisterSignal hashes path, constructs a Signal, and wires it into
// r's type-hash map so it participates in handshake negotiation.
func RegisterSignal(r *Registry, path string, typ *typeinfo.Descriptor, sender *transport.Sender, connected *atomic.Bool) (*Signal, error) {
	id, err := r.reserve(path)
	if err != nil {
		return nil, err
	}
	sig := NewSignal(id, sender, connected)
	r.typeHash[id] = typ.Hash()
	r.slots[id] = sig
	return sig, nil
}

// ID returns the slot's stable id.
func (s *Signal) ID() uint64 { return s.id }

// Set pushes a client-originated signal to the server.
func (s *Signal) Set(payload []byte) {
	if !s.connected.Load() {
		return
	}
	s.sender.Send(wire.EncodeClientRecord(wire.ClientHeader{Tag: wire.CSignal, ID: s.id}, payload))
}
