package registry

import "testing"

func TestMapSetItemAndGetItem(t *testing.T) {
	m := NewMap(1, newTestSender(), connectedFlag(true))
	m.SetItem([]byte("k"), []byte("v"), false)

	got, ok := m.GetItem([]byte("k"))
	if !ok || string(got) != "v" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
}

func TestMapRemoveItem(t *testing.T) {
	m := NewMap(1, newTestSender(), connectedFlag(true))
	m.SetItem([]byte("k"), []byte("v"), false)

	removed, ok := m.RemoveItem([]byte("k"), false)
	if !ok || string(removed) != "v" {
		t.Fatalf("got %q ok=%v", removed, ok)
	}
	if _, ok := m.GetItem([]byte("k")); ok {
		t.Fatal("expected key to be gone")
	}

	if _, ok := m.RemoveItem([]byte("missing"), false); ok {
		t.Fatal("expected false removing a missing key")
	}
}

func TestMapSendsOnlyWhenConnectedAndEnabled(t *testing.T) {
	sender := newTestSender()
	m := NewMap(1, sender, connectedFlag(true))
	m.SetItem([]byte("k"), []byte("v"), false)
	if !sender.Empty() {
		t.Fatal("expected no wire record while disabled")
	}

	m.Enable(true)
	m.SetItem([]byte("k2"), []byte("v2"), false)
	if sender.Empty() {
		t.Fatal("expected a wire record once enabled")
	}
}

func TestMapSyncIsANoOp(t *testing.T) {
	sender := newTestSender()
	m := NewMap(1, sender, connectedFlag(true))
	m.SetItem([]byte("k"), []byte("v"), false)
	m.Enable(true)

	m.Sync()

	if !sender.Empty() {
		t.Fatal("Map.Sync must never resend the map's contents")
	}
}
