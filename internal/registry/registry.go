// Package registry holds every slot a server instance exposes, keyed
// by the stable 64-bit id derived from its dotted path (spec §3/§4.B).
// Slots are created with Register* during startup and the resulting
// Registry is Sealed before the first connection is accepted; every
// lookup afterward is a read-only map access shared across goroutines.
package registry

import (
	"fmt"

	"github.com/eguisync/eguisync/internal/metrics"
	"github.com/eguisync/eguisync/internal/typeinfo"
)

// Kind labels identify a slot's container type for the enabled-slots
// gauge (internal/metrics); they mirror spec §3's kind names.
const (
	KindValue  = "value"
	KindStatic = "static"
	KindSignal = "signal"
	KindList   = "list"
	KindMap    = "map"
	KindImage  = "image"
	KindGraph  = "graph"
)

// Kinds lists every slot kind label, for callers that need to report a
// gauge per kind regardless of which ones are actually in use (so a
// kind that drops to zero enabled slots on reconnect still gets its
// gauge reset rather than left stale).
var Kinds = []string{KindValue, KindStatic, KindSignal, KindList, KindMap, KindImage, KindGraph}

// metricsAware is implemented by slot kinds that report their own
// activity to internal/metrics once wired up (currently only Value,
// for the pending-writes gauge).
type metricsAware interface {
	SetMetrics(m *metrics.Metrics)
}

// ValueUpdater is implemented by slot kinds that accept a client->server
// Value record (Value and Static; List/Map/Image/Graph never do).
type ValueUpdater interface {
	UpdateValue(signal bool, payload []byte) error
}

// SignalUpdater is implemented by slot kinds that accept a client->server
// Signal record. Only Signal slots are registered for it; Value and
// Static implement the method only to reject the record.
type SignalUpdater interface {
	UpdateSignal(payload []byte) error
}

// Acknowledger is implemented by slot kinds that track outstanding
// local writes and need the client's Ack record to clear them (Value
// and Image; Static/Signal/List/Map/Graph never appear in the ack map).
type Acknowledger interface {
	Acknowledge()
}

// Enabler is implemented by every slot kind: enabling/disabling a slot
// for the active connection is universal.
type Enabler interface {
	Enable(enabled bool)
}

// Syncer is called, in registration order, once per newly established
// connection (spec §4.E step 7) for every Value, Static, List and
// Image slot. Map and Graph implement Sync as a no-op and are not
// added to the sync list (see DESIGN.md); Signal has no Sync method.
type Syncer interface {
	Sync()
}

// Registry is the sealed collection of every slot a server exposes.
type Registry struct {
	ids map[string]uint64

	valueUpdaters  map[uint64]ValueUpdater
	signalUpdaters map[uint64]SignalUpdater
	ack            map[uint64]Acknowledger
	enable         map[uint64]Enabler
	sync           []Syncer
	typeHash       map[uint64]uint64
	kind           map[uint64]string
	metricsAware   []metricsAware

	slots  map[uint64]any
	sealed bool
}

// New creates an empty, unsealed registry.
func New() *Registry {
	return &Registry{
		ids:            make(map[string]uint64),
		valueUpdaters:  make(map[uint64]ValueUpdater),
		signalUpdaters: make(map[uint64]SignalUpdater),
		ack:            make(map[uint64]Acknowledger),
		enable:         make(map[uint64]Enabler),
		typeHash:       make(map[uint64]uint64),
		kind:           make(map[uint64]string),
		slots:          make(map[uint64]any),
	}
}

// Seal freezes the registry. No further Register* call is accepted
// afterward.
func (r *Registry) Seal() {
	r.sealed = true
}

// reserve computes path's id, rejecting a duplicate path or a call
// after Seal.
func (r *Registry) reserve(path string) (uint64, error) {
	if r.sealed {
		return 0, fmt.Errorf("registry: cannot register %q: already sealed", path)
	}
	if _, exists := r.ids[path]; exists {
		return 0, fmt.Errorf("registry: path %q already registered", path)
	}
	id := typeinfo.HashPath(path)
	if _, collide := r.slots[id]; collide {
		return 0, fmt.Errorf("registry: path %q collides with an existing slot id", path)
	}
	r.ids[path] = id
	return id, nil
}

// ValueUpdaterFor looks up the Value-record handler for id, used by
// the reader task when a client Value record arrives.
func (r *Registry) ValueUpdaterFor(id uint64) (ValueUpdater, bool) {
	v, ok := r.valueUpdaters[id]
	return v, ok
}

// SignalUpdaterFor looks up the Signal-record handler for id, used by
// the reader task when a client Signal record arrives.
func (r *Registry) SignalUpdaterFor(id uint64) (SignalUpdater, bool) {
	v, ok := r.signalUpdaters[id]
	return v, ok
}

// AcknowledgerFor looks up the Ack-record handler for id.
func (r *Registry) AcknowledgerFor(id uint64) (Acknowledger, bool) {
	v, ok := r.ack[id]
	return v, ok
}

// AcknowledgeAll force-acknowledges every acknowledgeable slot. Called
// when a reader task exits so no slot is left waiting on a permit or
// pending-write counter that will never be cleared by the now-dead
// connection (spec §4.E step 9 / image.rs's shutdown path).
func (r *Registry) AcknowledgeAll() {
	for _, a := range r.ack {
		a.Acknowledge()
	}
}

// TypeHashFor returns the registered type hash for id, used to
// validate an incoming handshake's per-id type negotiation.
func (r *Registry) TypeHashFor(id uint64) (uint64, bool) {
	h, ok := r.typeHash[id]
	return h, ok
}

// EnableMatching enables every slot whose registered type hash matches
// the hash the client declared for that id in its handshake, and
// disables every other slot (spec §4.E step 6). It returns the number
// of slots left enabled, by kind, for the caller to feed into
// internal/metrics.Metrics.SetEnabledSlots.
func (r *Registry) EnableMatching(clientHashes map[uint64]uint64) map[string]int {
	counts := make(map[string]int, len(r.enable))
	for id, enabler := range r.enable {
		want, ok := r.typeHash[id]
		got, present := clientHashes[id]
		enabled := ok && present && want == got
		enabler.Enable(enabled)
		if enabled {
			counts[r.kind[id]]++
		}
	}
	return counts
}

// DisableAll disables every registered slot, used when a connection is
// displaced by a new handshake before the old one finishes tearing
// down (spec §4.E step 3).
func (r *Registry) DisableAll() {
	for _, enabler := range r.enable {
		enabler.Enable(false)
	}
}

// SyncAll calls Sync on every slot in registration order, used right
// after a connection is established (spec §4.E step 7).
func (r *Registry) SyncAll() {
	for _, s := range r.sync {
		s.Sync()
	}
}

// SetMetrics gives every metrics-aware slot (currently Value) a
// reference to m so it can report its own activity as it happens,
// rather than the gauge only ever being updated by an external poller.
// Call once after every slot is registered; safe to call with a nil m
// to leave metrics disabled.
func (r *Registry) SetMetrics(m *metrics.Metrics) {
	for _, a := range r.metricsAware {
		a.SetMetrics(m)
	}
}

// Slot returns the typed slot object registered at path, for host
// application code that wants direct Get/Set access rather than going
// through the wire-dispatch interfaces. The caller type-asserts the
// result to the concrete *Value[T]/*Static[T]/*Signal/*List/*Map/
// *Image/*Graph it registered.
func (r *Registry) Slot(path string) (any, bool) {
	id, ok := r.ids[path]
	if !ok {
		return nil, false
	}
	v, ok := r.slots[id]
	return v, ok
}
