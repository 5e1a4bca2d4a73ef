package registry

import (
	"testing"

	"github.com/eguisync/eguisync/internal/wire"
)

func TestGraphSetThenAddPoints(t *testing.T) {
	g := NewGraph(1, newTestSender(), connectedFlag(true))
	g.Set(0, marshalU32(1), nil, wire.GraphF32, false)

	if n, ok := g.SeriesLen(0); !ok || n != 1 {
		t.Fatalf("got n=%d ok=%v, want 1", n, ok)
	}

	if err := g.AddPoints(0, marshalU32(2), nil, wire.GraphF32, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := g.SeriesLen(0); n != 2 {
		t.Fatalf("got n=%d, want 2", n)
	}
}

func TestGraphAddPointsToMissingSeriesErrors(t *testing.T) {
	g := NewGraph(1, newTestSender(), connectedFlag(true))
	if err := g.AddPoints(0, marshalU32(1), nil, wire.GraphF32, false); err == nil {
		t.Fatal("expected an error: series 0 was never Set")
	}
}

func TestGraphAddPointsElementTypeMismatch(t *testing.T) {
	g := NewGraph(1, newTestSender(), connectedFlag(true))
	g.Set(0, []byte{0, 0, 0, 0, 0, 0, 0, 0}, nil, wire.GraphF64, false)
	if err := g.AddPoints(0, marshalU32(1), nil, wire.GraphF32, false); err == nil {
		t.Fatal("expected an element-type mismatch error")
	}
}

func TestGraphAddPointsLinearityMismatch(t *testing.T) {
	g := NewGraph(1, newTestSender(), connectedFlag(true))
	g.Set(0, marshalU32(1), nil, wire.GraphF32, false) // no x -> linear
	if err := g.AddPoints(0, marshalU32(2), marshalU32(2), wire.GraphF32, false); err == nil {
		t.Fatal("expected a linearity mismatch error (series has no x, call supplies one)")
	}
}

func TestGraphRemoveAndReset(t *testing.T) {
	g := NewGraph(1, newTestSender(), connectedFlag(true))
	g.Set(0, marshalU32(1), nil, wire.GraphF32, false)
	g.Set(1, marshalU32(1), nil, wire.GraphF32, false)

	g.Remove(0, false)
	if _, ok := g.SeriesLen(0); ok {
		t.Fatal("expected series 0 to be gone after Remove")
	}
	if _, ok := g.SeriesLen(1); !ok {
		t.Fatal("expected series 1 to survive Remove(0)")
	}

	g.Reset(false)
	if _, ok := g.SeriesLen(1); ok {
		t.Fatal("expected every series to be gone after Reset")
	}
}

func TestGraphSyncIsANoOp(t *testing.T) {
	sender := newTestSender()
	g := NewGraph(1, sender, connectedFlag(true))
	g.Set(0, marshalU32(1), nil, wire.GraphF32, false)
	g.Enable(true)

	g.Sync()

	if !sender.Empty() {
		t.Fatal("Graph.Sync must never resend series data")
	}
}
