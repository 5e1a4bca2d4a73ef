package imaging

import (
	"bytes"
	"testing"

	"github.com/eguisync/eguisync/internal/wire"
)

func TestExpandContiguousGray(t *testing.T) {
	src := []byte{10, 20, 30, 40} // 2x2 gray
	got := ExpandContiguous(src, [2]uint32{2, 2}, wire.FormatGray)
	want := []byte{
		10, 10, 10, 255,
		20, 20, 20, 255,
		30, 30, 30, 255,
		40, 40, 40, 255,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExpandContiguousColorAlphaIsCopy(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	got := ExpandContiguous(src, [2]uint32{1, 2}, wire.FormatColorAlpha)
	if !bytes.Equal(got, src) {
		t.Fatalf("got %v, want %v", got, src)
	}
}

func TestExpandStridedMatchesContiguousWhenNoPadding(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6} // 1x2 Color (3 bytes/pixel)
	contiguous := ExpandContiguous(src, [2]uint32{1, 2}, wire.FormatColor)
	strided := ExpandStrided(src, 6, [2]uint32{1, 2}, wire.FormatColor)
	if !bytes.Equal(contiguous, strided) {
		t.Fatalf("got %v, want %v", strided, contiguous)
	}
}

func TestExpandStridedSkipsPadding(t *testing.T) {
	// 2 rows of 1 gray pixel each, stride 3 (2 padding bytes per row)
	src := []byte{10, 0xAA, 0xAA, 20, 0xAA, 0xAA}
	got := ExpandStrided(src, 3, [2]uint32{2, 1}, wire.FormatGray)
	want := []byte{10, 10, 10, 255, 20, 20, 20, 255}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWriteRectangleSplicesIntoExisting(t *testing.T) {
	// 2x2 existing image, all zero.
	existing := make([]byte, 2*2*4)
	// New 1x1 RGBA pixel to place at (row=1, col=1).
	newRGBA := []byte{9, 8, 7, 6}
	WriteRectangle(existing, 2, [2]uint32{1, 1}, [2]uint32{1, 1}, newRGBA)

	want := make([]byte, 2*2*4)
	copy(want[(1*2+1)*4:], newRGBA)
	if !bytes.Equal(existing, want) {
		t.Fatalf("got %v, want %v", existing, want)
	}
}
