package client

import (
	"sync"
	"sync/atomic"

	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/eguisync/eguisync/internal/wire"
)

// Value is the client-side mirror of registry.Value: a local cell that
// can be written (sending a Value record upstream, optionally flagged
// as a signal) and that auto-acknowledges every server-applied update,
// matching values.rs's Value::update_value sending ControlMessage::ack
// as part of applying the new payload.
type Value[T any] struct {
	id        uint64
	marshal   func(T) []byte
	unmarshal func([]byte) (T, error)

	mu      sync.RWMutex
	current []byte

	sender    *transport.Sender
	connected *atomic.Bool
}

// NewValue constructs a Value slot directly; most callers should use
// RegisterValue instead.
func NewValue[T any](id uint64, initial T, marshal func(T) []byte, unmarshal func([]byte) (T, error), sender *transport.Sender, connected *atomic.Bool) *Value[T] {
	return &Value[T]{id: id, marshal: marshal, unmarshal: unmarshal, current: marshal(initial), sender: sender, connected: connected}
}

// RegisterValue hashes path, constructs a Value[T], and wires it into
// r's value/type-hash dispatch maps.
func RegisterValue[T any](r *Registry, path string, initial T, marshal func(T) []byte, unmarshal func([]byte) (T, error), typ *typeinfo.Descriptor, sender *transport.Sender, connected *atomic.Bool) (*Value[T], error) {
	id, err := r.reserve(path)
	if err != nil {
		return nil, err
	}
	v := NewValue(id, initial, marshal, unmarshal, sender, connected)
	r.values[id] = v
	r.typeHash[id] = typ.Hash()
	r.slots[id] = v
	return v, nil
}

// ID returns the slot's stable id.
func (v *Value[T]) ID() uint64 { return v.id }

// Get returns the locally-held current value.
func (v *Value[T]) Get() (T, error) {
	v.mu.RLock()
	data := v.current
	v.mu.RUnlock()
	return v.unmarshal(data)
}

// Set writes a new value, sending it to the server as a Value record
// when the connection is active; setSignal requests the server-side
// slot also enqueue the payload on its signal dispatcher, matching
// spec §8 scenario 3's "client independently sends Value(id,
// signal=true, ...)".
func (v *Value[T]) Set(value T, setSignal bool) {
	payload := v.marshal(value)
	v.mu.Lock()
	v.current = payload
	v.mu.Unlock()
	if v.connected.Load() {
		header := wire.ClientHeader{Tag: wire.CValue, ID: v.id, Signal: setSignal}
		v.sender.Send(wire.EncodeClientRecord(header, payload))
	}
}

// ApplyValue adopts a value received from the server and sends an Ack
// in reply, returning the record's update flag.
func (v *Value[T]) ApplyValue(update bool, payload []byte) (bool, error) {
	if _, err := v.unmarshal(payload); err != nil {
		return false, err
	}
	v.mu.Lock()
	v.current = payload
	v.mu.Unlock()
	v.sender.Send(wire.EncodeClientRecord(wire.ClientHeader{Tag: wire.CAck, ID: v.id}, nil))
	return update, nil
}
