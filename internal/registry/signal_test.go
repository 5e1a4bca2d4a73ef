package registry

import (
	"context"
	"testing"
)

func TestSignalSetRoutesThroughDispatcher(t *testing.T) {
	d := newTestDispatcher()
	sig := NewSignal(1, d)
	d.SetRegistered(sig.ID(), true)

	sig.Set([]byte("hello"))

	id, payload, ok := d.Wait(context.Background(), 0, false)
	if !ok || id != sig.ID() || string(payload) != "hello" {
		t.Fatalf("got id=%d payload=%q ok=%v", id, payload, ok)
	}
}

func TestSignalUpdateSignalRejectedWhenDisabled(t *testing.T) {
	sig := NewSignal(1, newTestDispatcher())
	if err := sig.UpdateSignal([]byte("x")); err == nil {
		t.Fatal("expected an error updating a disabled signal")
	}
}

func TestSignalUpdateValueAlwaysErrors(t *testing.T) {
	sig := NewSignal(1, newTestDispatcher())
	if err := sig.UpdateValue(false, nil); err == nil {
		t.Fatal("expected an error: a Signal slot never accepts value records")
	}
}
