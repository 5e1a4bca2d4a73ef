package registry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/eguisync/eguisync/internal/dispatch"
	"github.com/eguisync/eguisync/internal/metrics"
	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/eguisync/eguisync/internal/wire"
)

// Value is a server-authoritative cell with the pending-writes
// acknowledgement discipline of spec §4.C: a local Set is echoed to
// the client and counted as outstanding; a remote update is adopted
// only once every outstanding write has been acknowledged, so a stale
// echo of an older value can never clobber a fresher local write.
type Value[T any] struct {
	id        uint64
	marshal   func(T) []byte
	unmarshal func([]byte) (T, error)

	mu            sync.Mutex
	current       []byte
	pendingWrites uint32

	sender    *transport.Sender
	connected *atomic.Bool
	enabled   atomic.Bool
	signals   *dispatch.Dispatcher
	metrics   *metrics.Metrics
}

// SetMetrics wires the slot to report its pending_writes counter on m
// as it changes. Called by Registry.SetMetrics; safe to call with a
// nil m to disable reporting again.
func (v *Value[T]) SetMetrics(m *metrics.Metrics) {
	v.mu.Lock()
	v.metrics = m
	v.mu.Unlock()
}

// NewValue constructs a Value slot directly; most callers should use
// RegisterValue instead so the slot is wired into a Registry.
func NewValue[T any](id uint64, initial T, marshal func(T) []byte, unmarshal func([]byte) (T, error), sender *transport.Sender, connected *atomic.Bool, signals *dispatch.Dispatcher) *Value[T] {
	return &Value[T]{
		id:        id,
		marshal:   marshal,
		unmarshal: unmarshal,
		current:   marshal(initial),
		sender:    sender,
		connected: connected,
		signals:   signals,
	}
}

// RegisterValue hashes path, constructs a Value[T], and wires it into
// r's value/ack/enable/sync/type-hash dispatch maps.
func RegisterValue[T any](r *Registry, path string, initial T, marshal func(T) []byte, unmarshal func([]byte) (T, error), typ *typeinfo.Descriptor, sender *transport.Sender, connected *atomic.Bool, signals *dispatch.Dispatcher) (*Value[T], error) {
	id, err := r.reserve(path)
	if err != nil {
		return nil, err
	}
	v := NewValue(id, initial, marshal, unmarshal, sender, connected, signals)
	r.valueUpdaters[id] = v
	r.ack[id] = v
	r.enable[id] = v
	r.sync = append(r.sync, v)
	r.typeHash[id] = typ.Hash()
	r.kind[id] = KindValue
	r.metricsAware = append(r.metricsAware, v)
	r.slots[id] = v
	return v, nil
}

// ID returns the slot's stable id.
func (v *Value[T]) ID() uint64 { return v.id }

// Get returns the locally-held current value.
func (v *Value[T]) Get() (T, error) {
	v.mu.Lock()
	data := v.current
	v.mu.Unlock()
	return v.unmarshal(data)
}

// Set applies a server-side write. When the connection is active and
// the slot enabled, the new value is sent to the client and one write
// becomes outstanding; otherwise only the local copy changes. If
// setSignal is true the same payload is also queued on the signal
// dispatcher for this id, regardless of connection state, matching
// values.rs's unconditional signals.set call.
func (v *Value[T]) Set(value T, setSignal, update bool) {
	payload := v.marshal(value)
	v.mu.Lock()
	if v.connected.Load() && v.enabled.Load() {
		header := wire.ServerHeader{Tag: wire.SValue, ID: v.id, Update: update}
		v.sender.Send(wire.EncodeServerRecord(header, payload))
		v.pendingWrites++
		if v.metrics != nil {
			v.metrics.AddPendingWrites(1)
		}
	}
	v.current = payload
	v.mu.Unlock()
	if setSignal && v.signals != nil {
		v.signals.Set(v.id, payload)
	}
}

// UpdateValue applies a value received from the client. The payload is
// adopted only if no local write is still outstanding, so a remote
// echo of a value the server has since overwritten is discarded.
func (v *Value[T]) UpdateValue(signal bool, payload []byte) error {
	if !v.enabled.Load() {
		return fmt.Errorf("value %d: not enabled", v.id)
	}
	v.mu.Lock()
	if v.pendingWrites == 0 {
		v.current = payload
	}
	v.mu.Unlock()
	if signal && v.signals != nil {
		v.signals.Set(v.id, payload)
	}
	return nil
}

// UpdateSignal never applies to a Value slot: the client->server wire
// protocol sends Value and Signal as distinct record kinds dispatched
// through separate registry maps, and the reader task only calls
// UpdateSignal on ids found in the signal map.
func (v *Value[T]) UpdateSignal([]byte) error {
	return fmt.Errorf("value %d: does not accept signal records", v.id)
}

// Acknowledge clears one outstanding local write.
func (v *Value[T]) Acknowledge() {
	v.mu.Lock()
	if v.pendingWrites > 0 {
		v.pendingWrites--
		if v.metrics != nil {
			v.metrics.AddPendingWrites(-1)
		}
	}
	v.mu.Unlock()
}

// Enable toggles whether this slot currently participates in the wire
// protocol for the active connection.
func (v *Value[T]) Enable(enabled bool) { v.enabled.Store(enabled) }

// Sync resends the current value in full and marks one write
// outstanding, matching the full-state resend every slot performs
// right after a connection is established.
func (v *Value[T]) Sync() {
	if !v.enabled.Load() {
		return
	}
	v.mu.Lock()
	delta := int(1) - int(v.pendingWrites)
	v.pendingWrites = 1
	payload := v.current
	if delta != 0 && v.metrics != nil {
		v.metrics.AddPendingWrites(delta)
	}
	v.mu.Unlock()
	header := wire.ServerHeader{Tag: wire.SValue, ID: v.id, Update: false}
	v.sender.Send(wire.EncodeServerRecord(header, payload))
}
