package registry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/eguisync/eguisync/internal/imaging"
	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/typeinfo"
	"github.com/eguisync/eguisync/internal/wire"
)

// Image holds the server's authoritative mirror of a pixel buffer,
// always stored locally as RGBA (4 bytes/pixel) regardless of the
// format declared on the wire (spec §4.G, see DESIGN.md's Open
// Question decision). Full-image sends are backpressured by a one-slot
// permit: SetImage blocks until the client's previous Image record has
// been acknowledged before sending the next one, so a slow client
// can't be handed an unbounded backlog of image frames.
type Image struct {
	id uint64

	mu   sync.Mutex
	rgba []byte
	size [2]uint32

	sender    *transport.Sender
	connected *atomic.Bool
	enabled   atomic.Bool

	// permit holds one token when the slot is free to send; SetImage
	// and Sync both consume it before sending and Acknowledge restores
	// it once the client confirms receipt.
	permit chan struct{}
}

// NewImage constructs an Image slot directly; most callers should use
// RegisterImage instead.
func NewImage(id uint64, sender *transport.Sender, connected *atomic.Bool) *Image {
	img := &Image{id: id, sender: sender, connected: connected, permit: make(chan struct{}, 1)}
	img.permit <- struct{}{}
	return img
}

// RegisterImage hashes path, constructs an Image, and wires it into
// r's ack/enable/sync/type-hash dispatch maps. Sync consumes the send
// permit itself rather than needing special handling from the caller,
// so it goes through Registry.SyncAll in registration order exactly
// like every other kind.
func RegisterImage(r *Registry, path string, sender *transport.Sender, connected *atomic.Bool) (*Image, error) {
	id, err := r.reserve(path)
	if err != nil {
		return nil, err
	}
	img := NewImage(id, sender, connected)
	r.ack[id] = img
	r.enable[id] = img
	r.sync = append(r.sync, img)
	r.typeHash[id] = typeinfo.Struct("Image").Hash()
	r.kind[id] = KindImage
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

func compactRows(data []byte, stride int, size [2]uint32, format wire.ImageFormat) []byte {
	rows, cols := int(size[0]), int(size[1])
	lineSize := cols * format.BytesPerPixel()
	if stride <= 0 || stride == lineSize {
		out := make([]byte, rows*lineSize)
		copy(out, data[:rows*lineSize])
		return out
	}
	out := make([]byte, rows*lineSize)
	for i := 0; i < rows; i++ {
		copy(out[i*lineSize:(i+1)*lineSize], data[i*stride:i*stride+lineSize])
	}
	return out
}

func expand(data []byte, stride int, size [2]uint32, format wire.ImageFormat) []byte {
	if stride > 0 {
		return imaging.ExpandStrided(data, stride, size, format)
	}
	return imaging.ExpandContiguous(data, size, format)
}

// SetImage applies a new full image (origin == nil) or a sub-rectangle
// update (origin naming the top-left [row, col] the new size x size
// pixels land at) in the format declared by format, with stride giving
// the source row pitch in bytes (0 meaning tightly packed).
//
// A sub-rectangle must fit within the image's current size: there is
// no implicit resize-on-rect, matching write_rectangle's assumption
// that the destination buffer already exists at its final size.
func (img *Image) SetImage(data []byte, stride int, size [2]uint32, format wire.ImageFormat, origin *[2]uint32, update bool) error {
	img.mu.Lock()
	if origin != nil {
		if int(origin[0])+int(size[0]) > int(img.size[0]) || int(origin[1])+int(size[1]) > int(img.size[1]) {
			img.mu.Unlock()
			return fmt.Errorf("image %d: rectangle at %v size %v does not fit image size %v", img.id, *origin, size, img.size)
		}
	}
	sendWire := img.connected.Load() && img.enabled.Load()

	var wirePayload []byte
	if sendWire {
		wirePayload = compactRows(data, stride, size, format)
	}

	rgba := expand(data, stride, size, format)
	if origin != nil {
		imaging.WriteRectangle(img.rgba, int(img.size[1]), *origin, size, rgba)
	} else {
		img.rgba = rgba
		img.size = size
	}

	header := wire.ServerHeader{Tag: wire.SImage, ID: img.id, Update: update, Image: wire.ImageHeader{Size: size, Format: format}}
	if origin != nil {
		header.Image.HasRect = true
		header.Image.Rect = [4]uint32{origin[0], origin[1], size[0], size[1]}
	}
	img.mu.Unlock()

	if !sendWire {
		return nil
	}

	<-img.permit
	if !img.connected.Load() {
		return nil
	}
	img.sender.Send(wire.EncodeServerRecord(header, wirePayload))
	return nil
}

// Acknowledge restores the send permit, releasing a SetImage or Sync
// call (on this or the next image) that is waiting for the client to
// confirm the previous frame.
func (img *Image) Acknowledge() {
	select {
	case img.permit <- struct{}{}:
	default:
	}
}

// Enable toggles whether this slot currently participates in the wire
// protocol for the active connection.
func (img *Image) Enable(enabled bool) { img.enabled.Store(enabled) }

// Sync resends the full RGBA mirror, declared as ColorAlpha regardless
// of the format images were originally set in, matching the
// always-RGBA-locally invariant. It consumes the send permit outright
// (rather than acquiring and later releasing it) so a fresh connection
// starts with the permit held until the client's first acknowledgement
// of this resync, exactly mirroring image.rs's sync() clearing the
// event before sending.
func (img *Image) Sync() {
	img.mu.Lock()
	size := img.size
	rgba := img.rgba
	enabled := img.enabled.Load()
	img.mu.Unlock()

	if !enabled || size[0] == 0 || size[1] == 0 {
		img.Acknowledge()
		return
	}

	select {
	case <-img.permit:
	default:
	}
	header := wire.ServerHeader{Tag: wire.SImage, ID: img.id, Update: false, Image: wire.ImageHeader{Size: size, Format: wire.FormatColorAlpha}}
	img.sender.Send(wire.EncodeServerRecord(header, rgba))
}
