// Package client implements the client-side mirror of spec §4.F: slot
// containers that apply server->client records to local state, auto-ack
// Value/Image updates, and a connection lifecycle (dial, handshake,
// reader/writer tasks) that is the reverse-roles counterpart of
// internal/server. It registers slots the same way internal/registry
// does (one-shot, before Seal), against the same wire.ServerHeader/
// ClientHeader families and typeinfo.Descriptor machinery.
package client

import (
	"fmt"

	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/eguisync/eguisync/internal/wire"
)

// ValueApplier applies a decoded Value record to a slot, returning the
// update flag carried by the record.
type ValueApplier interface {
	ApplyValue(update bool, payload []byte) (bool, error)
}

// StaticApplier applies a decoded Static record to a slot.
type StaticApplier interface {
	ApplyStatic(update bool, payload []byte) (bool, error)
}

// ListApplier applies a decoded List record to a slot.
type ListApplier interface {
	ApplyList(update bool, header wire.ListHeader, payload []byte) (bool, error)
}

// MapApplier applies a decoded Map record to a slot.
type MapApplier interface {
	ApplyMap(update bool, header wire.MapHeader, payload []byte) (bool, error)
}

// ImageApplier applies a decoded Image record to a slot.
type ImageApplier interface {
	ApplyImage(update bool, header wire.ImageHeader, payload []byte) (bool, error)
}

// GraphApplier applies a decoded Graph record to a slot.
type GraphApplier interface {
	ApplyGraph(update bool, header wire.GraphHeader, payload []byte) (bool, error)
}

// Registry is the sealed collection of every slot a client exposes,
// the mirror-side of registry.Registry. Slots are added with Register*
// during construction and the registry is Sealed before Client.Run is
// called.
type Registry struct {
	ids      map[string]uint64
	typeHash map[uint64]uint64
	order    []uint64

	values  map[uint64]ValueApplier
	statics map[uint64]StaticApplier
	lists   map[uint64]ListApplier
	maps    map[uint64]MapApplier
	images  map[uint64]ImageApplier
	graphs  map[uint64]GraphApplier

	slots  map[uint64]any
	sealed bool
}

// NewRegistry creates an empty, unsealed client registry.
func NewRegistry() *Registry {
	return &Registry{
		ids:      make(map[string]uint64),
		typeHash: make(map[uint64]uint64),
		values:   make(map[uint64]ValueApplier),
		statics:  make(map[uint64]StaticApplier),
		lists:    make(map[uint64]ListApplier),
		maps:     make(map[uint64]MapApplier),
		images:   make(map[uint64]ImageApplier),
		graphs:   make(map[uint64]GraphApplier),
		slots:    make(map[uint64]any),
	}
}

// Seal freezes the registry. No further Register* call is accepted
// afterward.
func (r *Registry) Seal() { r.sealed = true }

func (r *Registry) reserve(path string) (uint64, error) {
	if r.sealed {
		return 0, fmt.Errorf("client: cannot register %q: already sealed", path)
	}
	if _, exists := r.ids[path]; exists {
		return 0, fmt.Errorf("client: path %q already registered", path)
	}
	id := typeinfo.HashPath(path)
	if _, collide := r.slots[id]; collide {
		return 0, fmt.Errorf("client: path %q collides with an existing slot id", path)
	}
	r.ids[path] = id
	r.order = append(r.order, id)
	return id, nil
}

// Slot returns the typed slot object registered at path.
func (r *Registry) Slot(path string) (any, bool) {
	id, ok := r.ids[path]
	if !ok {
		return nil, false
	}
	v, ok := r.slots[id]
	return v, ok
}

// TypeHashes returns the (id, type hash) pairs for every registered
// slot, in registration order, for use in the Handshake record's
// id_to_type_hash map (spec §4.E's client session).
func (r *Registry) TypeHashes() []wire.IDHash {
	out := make([]wire.IDHash, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, wire.IDHash{ID: id, Hash: r.typeHash[id]})
	}
	return out
}

// applyValue routes a decoded Value record. update reports whether the
// record requested a repaint; ok reports whether id was found.
func (r *Registry) applyValue(id uint64, update bool, payload []byte) (flag bool, ok bool, err error) {
	v, ok := r.values[id]
	if !ok {
		return false, false, nil
	}
	flag, err = v.ApplyValue(update, payload)
	return flag, true, err
}

func (r *Registry) applyStatic(id uint64, update bool, payload []byte) (flag bool, ok bool, err error) {
	s, ok := r.statics[id]
	if !ok {
		return false, false, nil
	}
	flag, err = s.ApplyStatic(update, payload)
	return flag, true, err
}

func (r *Registry) applyList(id uint64, update bool, header wire.ListHeader, payload []byte) (flag bool, ok bool, err error) {
	l, ok := r.lists[id]
	if !ok {
		return false, false, nil
	}
	flag, err = l.ApplyList(update, header, payload)
	return flag, true, err
}

func (r *Registry) applyMap(id uint64, update bool, header wire.MapHeader, payload []byte) (flag bool, ok bool, err error) {
	m, ok := r.maps[id]
	if !ok {
		return false, false, nil
	}
	flag, err = m.ApplyMap(update, header, payload)
	return flag, true, err
}

func (r *Registry) applyImage(id uint64, update bool, header wire.ImageHeader, payload []byte) (flag bool, ok bool, err error) {
	i, ok := r.images[id]
	if !ok {
		return false, false, nil
	}
	flag, err = i.ApplyImage(update, header, payload)
	return flag, true, err
}

func (r *Registry) applyGraph(id uint64, update bool, header wire.GraphHeader, payload []byte) (flag bool, ok bool, err error) {
	g, ok := r.graphs[id]
	if !ok {
		return false, false, nil
	}
	flag, err = g.ApplyGraph(update, header, payload)
	return flag, true, err
}

// Apply routes one decoded server record to its slot handler, the
// client-side mirror of dispatchClientRecord in internal/server. It
// returns whether the record requested a repaint and whether the
// record's id was recognized locally (spec §7 item 4: an unknown id is
// logged, not fatal).
func (r *Registry) Apply(rec wire.ServerRecord) (update bool, known bool, err error) {
	switch rec.Header.Tag {
	case wire.SValue:
		return applyResult(r.applyValue(rec.Header.ID, rec.Header.Update, rec.Payload))
	case wire.SStatic:
		return applyResult(r.applyStatic(rec.Header.ID, rec.Header.Update, rec.Payload))
	case wire.SList:
		return applyResult(r.applyList(rec.Header.ID, rec.Header.Update, rec.Header.List, rec.Payload))
	case wire.SMap:
		return applyResult(r.applyMap(rec.Header.ID, rec.Header.Update, rec.Header.Map, rec.Payload))
	case wire.SImage:
		return applyResult(r.applyImage(rec.Header.ID, rec.Header.Update, rec.Header.Image, rec.Payload))
	case wire.SGraph:
		return applyResult(r.applyGraph(rec.Header.ID, rec.Header.Update, rec.Header.Graph, rec.Payload))
	case wire.SUpdate:
		return true, true, nil
	default:
		return false, false, fmt.Errorf("client: unhandled server record tag %d", rec.Header.Tag)
	}
}

func applyResult(flag bool, ok bool, err error) (bool, bool, error) { return flag, ok, err }
