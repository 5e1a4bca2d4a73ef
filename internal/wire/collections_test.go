package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func encodeListAllForTest(items [][]byte) []byte {
	out := make([]byte, 0, 8)
	out = binary.LittleEndian.AppendUint64(out, uint64(len(items)))
	for _, it := range items {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(it)))
		out = append(out, it...)
	}
	return out
}

func TestDecodeListAllRoundTrip(t *testing.T) {
	items := [][]byte{[]byte("a"), []byte("bcd"), []byte("")}
	payload := encodeListAllForTest(items)

	got, err := DecodeListAll(payload)
	if err != nil {
		t.Fatalf("DecodeListAll: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("got %d items, want %d", len(got), len(items))
	}
	for i := range items {
		if !bytes.Equal(got[i], items[i]) {
			t.Errorf("item %d: got %q, want %q", i, got[i], items[i])
		}
	}
}

func TestDecodeListAllTruncated(t *testing.T) {
	payload := encodeListAllForTest([][]byte{[]byte("abcdef")})
	if _, err := DecodeListAll(payload[:len(payload)-2]); err != ErrIncomplete {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}

func encodeMapAllForTest(entries []MapEntry) []byte {
	out := make([]byte, 0, 8)
	out = binary.LittleEndian.AppendUint64(out, uint64(len(entries)))
	for _, e := range entries {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(e.Key)))
		out = append(out, e.Key...)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(e.Value)))
		out = append(out, e.Value...)
	}
	return out
}

func TestDecodeMapAllRoundTrip(t *testing.T) {
	entries := []MapEntry{
		{Key: []byte("k1"), Value: []byte("v1")},
		{Key: []byte("k2"), Value: []byte("longer-value")},
	}
	payload := encodeMapAllForTest(entries)

	got, err := DecodeMapAll(payload)
	if err != nil {
		t.Fatalf("DecodeMapAll: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if !bytes.Equal(got[i].Key, entries[i].Key) || !bytes.Equal(got[i].Value, entries[i].Value) {
			t.Errorf("entry %d: got %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestDecodeMapEntryRoundTrip(t *testing.T) {
	key := []byte("the-key")
	value := []byte("the-value, with trailing bytes")

	payload := make([]byte, 0)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(key)))
	payload = append(payload, key...)
	payload = append(payload, value...)

	gotKey, gotValue, err := DecodeMapEntry(payload)
	if err != nil {
		t.Fatalf("DecodeMapEntry: %v", err)
	}
	if !bytes.Equal(gotKey, key) || !bytes.Equal(gotValue, value) {
		t.Fatalf("got key=%q value=%q, want key=%q value=%q", gotKey, gotValue, key, value)
	}
}
