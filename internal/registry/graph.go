package registry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/eguisync/eguisync/internal/wire"
)

type graphSeries struct {
	y        []byte
	x        []byte // nil means this series has no explicit x axis (linear)
	elemType wire.GraphElemType
}

// Graph is a server-authoritative container of independently addressed
// point series (spec §4.C's "Graph" kind), each identified by a small
// integer index. A series accumulates via AddPoints or is replaced
// wholesale via Set; Remove drops one series and Reset drops all of
// them.
type Graph struct {
	id     uint64
	mu     sync.Mutex
	series map[uint16]*graphSeries

	sender    *transport.Sender
	connected *atomic.Bool
	enabled   atomic.Bool
}

// NewGraph constructs a Graph slot directly; most callers should use
// RegisterGraph instead.
func NewGraph(id uint64, sender *transport.Sender, connected *atomic.Bool) *Graph {
	return &Graph{id: id, series: make(map[uint16]*graphSeries), sender: sender, connected: connected}
}

// RegisterGraph hashes path, constructs a Graph, and wires it into r's
// enable/type-hash dispatch maps. Graph is absent from the sync list
// for the same reason Map is (see RegisterMap): the reference
// implementation never resends historical point data on reconnect, and
// an accumulated series is treated as an append-only event stream, not
// a resynchronizable snapshot.
func RegisterGraph(r *Registry, path string, sender *transport.Sender, connected *atomic.Bool) (*Graph, error) {
	id, err := r.reserve(path)
	if err != nil {
		return nil, err
	}
	g := NewGraph(id, sender, connected)
	r.enable[id] = g
	// A graph's wire shape doesn't depend on a single element type the
	// way Value/Static/List/Map do (each series declares its own in
	// GraphDataInfo), so its handshake type hash is keyed on the slot's
	// structural shape alone.
	r.typeHash[id] = typeinfo.Struct("Graph").Hash()
	r.kind[id] = KindGraph
	r.slots[id] = g
	return g, nil
}

// ID returns the slot's stable id.
func (g *Graph) ID() uint64 { return g.id }

func (g *Graph) emit(series uint16, s *graphSeries, op wire.GraphOp, points int, update bool) {
	header := wire.ServerHeader{
		Tag: wire.SGraph, ID: g.id, Update: update,
		Graph: wire.GraphHeader{
			Op: op, Series: series,
			Info: wire.GraphDataInfo{ElemType: s.elemType, IsLinear: s.x == nil, Points: uint64(points)},
		},
	}
	elemSize := s.elemType.BytesSize()
	offset := len(s.y) - points*elemSize
	var payload []byte
	if s.x != nil {
		payload = append(payload, s.x[offset:offset+points*elemSize]...)
	}
	payload = append(payload, s.y[offset:offset+points*elemSize]...)
	g.sender.Send(wire.EncodeServerRecord(header, payload))
}

// Set replaces series wholesale with the given y values (and, if x is
// non-nil, paired x values).
func (g *Graph) Set(series uint16, y, x []byte, elemType wire.GraphElemType, update bool) {
	s := &graphSeries{y: append([]byte(nil), y...), elemType: elemType}
	if x != nil {
		s.x = append([]byte(nil), x...)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.series[series] = s
	if g.connected.Load() && g.enabled.Load() {
		g.emit(series, s, wire.GraphSet, len(y)/elemType.BytesSize(), update)
	}
}

// AddPoints appends y (and, if x is non-nil, paired x) to an existing
// series. It is an error if the series doesn't exist, its element type
// doesn't match, or its linearity (presence of x values) doesn't
// match — the same existence and shape checks the client-side Graph
// applies before accepting an AddPoints record.
func (g *Graph) AddPoints(series uint16, y, x []byte, elemType wire.GraphElemType, update bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.series[series]
	if !ok {
		return fmt.Errorf("graph %d: series %d does not exist", g.id, series)
	}
	if s.elemType != elemType {
		return fmt.Errorf("graph %d: series %d element type mismatch", g.id, series)
	}
	if (s.x != nil) != (x != nil) {
		return fmt.Errorf("graph %d: series %d linearity mismatch", g.id, series)
	}
	s.y = append(s.y, y...)
	if x != nil {
		s.x = append(s.x, x...)
	}
	if g.connected.Load() && g.enabled.Load() {
		g.emit(series, s, wire.GraphAddPoints, len(y)/elemType.BytesSize(), update)
	}
	return nil
}

// Remove drops one series.
func (g *Graph) Remove(series uint16, update bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.series, series)
	if g.connected.Load() && g.enabled.Load() {
		header := wire.ServerHeader{Tag: wire.SGraph, ID: g.id, Update: update, Graph: wire.GraphHeader{Op: wire.GraphRemove, Series: series}}
		g.sender.Send(wire.EncodeServerRecord(header, nil))
	}
}

// Reset drops every series.
func (g *Graph) Reset(update bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.series = make(map[uint16]*graphSeries)
	if g.connected.Load() && g.enabled.Load() {
		header := wire.ServerHeader{Tag: wire.SGraph, ID: g.id, Update: update, Graph: wire.GraphHeader{Op: wire.GraphReset}}
		g.sender.Send(wire.EncodeServerRecord(header, nil))
	}
}

// SeriesLen returns the number of points currently held for series, or
// false if it doesn't exist.
func (g *Graph) SeriesLen(series uint16) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.series[series]
	if !ok {
		return 0, false
	}
	return len(s.y) / s.elemType.BytesSize(), true
}

// Enable toggles whether this slot currently participates in the wire
// protocol for the active connection.
func (g *Graph) Enable(enabled bool) { g.enabled.Store(enabled) }

// Sync is a deliberate no-op; see RegisterGraph's doc comment.
func (g *Graph) Sync() {}
