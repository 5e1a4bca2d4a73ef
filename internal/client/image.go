package client

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/eguisync/eguisync/internal/imaging"
	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/eguisync/eguisync/internal/wire"
)

// Image is the client-side mirror of registry.Image: an always-RGBA8
// local render buffer kept in sync with the server's authoritative
// pixel data. Every received Image record is acknowledged, whether or
// not it was applied, so the server's per-image send permit (spec
// §4.G) always reopens.
type Image struct {
	id uint64

	mu   sync.RWMutex
	rgba []byte
	size [2]uint32

	sender    *transport.Sender
	connected *atomic.Bool
}

// NewImage constructs an Image slot directly; most callers should use
// RegisterImage instead.
func NewImage(id uint64, sender *transport.Sender, connected *atomic.Bool) *Image {
	return &Image{id: id, sender: sender, connected: connected}
}

// RegisterImage hashes path, constructs an Image, and wires it into
// r's image/type-hash dispatch maps.
func RegisterImage(r *Registry, path string, sender *transport.Sender, connected *atomic.Bool) (*Image, error) {
	id, err := r.reserve(path)
	if err != nil {
		return nil, err
	}
	img := NewImage(id, sender, connected)
	r.images[id] = img
	r.typeHash[id] = typeinfo.Struct("Image").Hash()
	r.slots[id] = img
	return img, nil
}

// ID returns the slot's stable id.
func (img *Image) ID() uint64 { return img.id }

// RGBA returns a copy of the current locally-held RGBA mirror and its
// [rows, cols] size.
func (img *Image) RGBA() ([]byte, [2]uint32) {
	img.mu.Lock()
	defer img.mu.Unlock()
	out := make([]byte, len(img.rgba))
	copy(out, img.rgba)
	return out, img.size
}

// ApplyImage applies a decoded Image record: a sub-rectangle is
// rejected unless the local image already matches the record's
// declared full size (spec §4.F: "when a rect is present and the
// local image is not yet sized to match, the update is rejected"). The
// Ack is sent either way so the server's send permit reopens.
func (img *Image) ApplyImage(update bool, header wire.ImageHeader, payload []byte) (bool, error) {
	defer img.ack()

	img.mu.Lock()
	defer img.mu.Unlock()

	if header.HasRect {
		if img.size[0] != header.Size[0] || img.size[1] != header.Size[1] {
			return false, fmt.Errorf("image %d: rectangle update but local size %v does not match declared size %v", img.id, img.size, header.Size)
		}
		rectSize := [2]uint32{header.Rect[2], header.Rect[3]}
		rgba := imaging.ExpandContiguous(payload, rectSize, header.Format)
		origin := [2]uint32{header.Rect[0], header.Rect[1]}
		imaging.WriteRectangle(img.rgba, int(img.size[1]), origin, rectSize, rgba)
		return update, nil
	}

	img.rgba = imaging.ExpandContiguous(payload, header.Size, header.Format)
	img.size = header.Size
	return update, nil
}

func (img *Image) ack() {
	img.sender.Send(wire.EncodeClientRecord(wire.ClientHeader{Tag: wire.CAck, ID: img.id}, nil))
}
