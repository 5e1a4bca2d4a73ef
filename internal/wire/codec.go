package wire

import (
	"encoding/binary"
	"math"
)

// writer accumulates a header's bytes. Fields are appended in
// declaration order; a string is written as its u32 length followed by
// its bytes, and the handshake's id/hash pairs follow a u64 count.
type writer struct {
	buf []byte
}

func newWriter() *writer { return &writer{buf: make([]byte, 0, 32)} }

func (w *writer) byte(b byte)     { w.buf = append(w.buf, b) }
func (w *writer) bool(b bool)     { if b { w.byte(1) } else { w.byte(0) } }
func (w *writer) u16(v uint16)    { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }
func (w *writer) u32(v uint32)    { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *writer) u64(v uint64)    { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *writer) f64(v float64)   { w.u64(math.Float64bits(v)) }
func (w *writer) str(s string)    { w.u32(uint32(len(s))); w.buf = append(w.buf, s...) }

// reader consumes a header's bytes from the front of buf, tracking how
// many bytes were read so the caller can locate the payload.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) need(n int) bool { return r.pos+n <= len(r.buf) }

func (r *reader) byte() (byte, bool) {
	if !r.need(1) {
		return 0, false
	}
	b := r.buf[r.pos]
	r.pos++
	return b, true
}

func (r *reader) boolean() (bool, bool) {
	b, ok := r.byte()
	return b != 0, ok
}

func (r *reader) u16() (uint16, bool) {
	if !r.need(2) {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, true
}

func (r *reader) u32() (uint32, bool) {
	if !r.need(4) {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, true
}

func (r *reader) u64() (uint64, bool) {
	if !r.need(8) {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, true
}

func (r *reader) f64() (float64, bool) {
	v, ok := r.u64()
	return math.Float64frombits(v), ok
}

func (r *reader) str() (string, bool) {
	n, ok := r.u32()
	if !ok || !r.need(int(n)) {
		return "", false
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, true
}

// EncodeServerHeader serializes a server->client record header.
func EncodeServerHeader(h ServerHeader) []byte {
	w := newWriter()
	w.byte(byte(h.Tag))
	switch h.Tag {
	case SValue, SStatic:
		w.u64(h.ID)
		w.bool(h.Update)
		w.u64(h.PayloadLen)
	case SImage:
		w.u64(h.ID)
		w.bool(h.Update)
		w.u32(h.Image.Size[0])
		w.u32(h.Image.Size[1])
		w.bool(h.Image.HasRect)
		if h.Image.HasRect {
			w.u32(h.Image.Rect[0])
			w.u32(h.Image.Rect[1])
			w.u32(h.Image.Rect[2])
			w.u32(h.Image.Rect[3])
		}
		w.byte(byte(h.Image.Format))
	case SList:
		w.u64(h.ID)
		w.bool(h.Update)
		w.byte(byte(h.List.Op))
		switch h.List.Op {
		case ListSet, ListRemove:
			w.u64(h.List.Index)
		}
		w.u64(h.ListLen)
	case SMap:
		w.u64(h.ID)
		w.bool(h.Update)
		w.byte(byte(h.Map.Op))
		w.u64(h.MapLen)
	case SGraph:
		w.u64(h.ID)
		w.bool(h.Update)
		w.byte(byte(h.Graph.Op))
		switch h.Graph.Op {
		case GraphSet, GraphAddPoints:
			w.u16(h.Graph.Series)
			w.byte(byte(h.Graph.Info.ElemType))
			w.bool(h.Graph.Info.IsLinear)
			w.u64(h.Graph.Info.Points)
		case GraphRemove:
			w.u16(h.Graph.Series)
		}
	case SUpdate:
		w.f64(h.Seconds)
	}
	return w.buf
}

// DecodeServerHeader decodes a server->client record header from the
// front of data, returning the header and the number of bytes it
// occupied. The payload, if any, follows immediately.
func DecodeServerHeader(data []byte) (ServerHeader, int, error) {
	r := &reader{buf: data}
	tagByte, ok := r.byte()
	if !ok {
		return ServerHeader{}, 0, ErrIncomplete
	}
	tag := ServerTag(tagByte)
	h := ServerHeader{Tag: tag}

	ok = true
	switch tag {
	case SValue, SStatic:
		h.ID, ok = readIf(ok, r.u64)
		h.Update, ok = readIf(ok, r.boolean)
		h.PayloadLen, ok = readIf(ok, r.u64)
	case SImage:
		h.ID, ok = readIf(ok, r.u64)
		h.Update, ok = readIf(ok, r.boolean)
		h.Image.Size[0], ok = readIf(ok, r.u32)
		h.Image.Size[1], ok = readIf(ok, r.u32)
		h.Image.HasRect, ok = readIf(ok, r.boolean)
		if ok && h.Image.HasRect {
			h.Image.Rect[0], ok = readIf(ok, r.u32)
			h.Image.Rect[1], ok = readIf(ok, r.u32)
			h.Image.Rect[2], ok = readIf(ok, r.u32)
			h.Image.Rect[3], ok = readIf(ok, r.u32)
		}
		var fb byte
		fb, ok = readIf(ok, r.byte)
		h.Image.Format = ImageFormat(fb)
	case SList:
		h.ID, ok = readIf(ok, r.u64)
		h.Update, ok = readIf(ok, r.boolean)
		var opb byte
		opb, ok = readIf(ok, r.byte)
		h.List.Op = ListOp(opb)
		if ok && (h.List.Op == ListSet || h.List.Op == ListRemove) {
			h.List.Index, ok = readIf(ok, r.u64)
		}
		h.ListLen, ok = readIf(ok, r.u64)
	case SMap:
		h.ID, ok = readIf(ok, r.u64)
		h.Update, ok = readIf(ok, r.boolean)
		var opb byte
		opb, ok = readIf(ok, r.byte)
		h.Map.Op = MapOp(opb)
		h.MapLen, ok = readIf(ok, r.u64)
	case SGraph:
		h.ID, ok = readIf(ok, r.u64)
		h.Update, ok = readIf(ok, r.boolean)
		var opb byte
		opb, ok = readIf(ok, r.byte)
		h.Graph.Op = GraphOp(opb)
		switch h.Graph.Op {
		case GraphSet, GraphAddPoints:
			h.Graph.Series, ok = readIf(ok, r.u16)
			var eb byte
			eb, ok = readIf(ok, r.byte)
			h.Graph.Info.ElemType = GraphElemType(eb)
			h.Graph.Info.IsLinear, ok = readIf(ok, r.boolean)
			h.Graph.Info.Points, ok = readIf(ok, r.u64)
		case GraphRemove:
			h.Graph.Series, ok = readIf(ok, r.u16)
		}
	case SUpdate:
		h.Seconds, ok = readIf(ok, r.f64)
	default:
		return ServerHeader{}, 0, ErrMalformedTag
	}
	if !ok {
		return ServerHeader{}, 0, ErrIncomplete
	}
	return h, r.pos, nil
}

// EncodeClientHeader serializes a client->server record header.
func EncodeClientHeader(h ClientHeader) []byte {
	w := newWriter()
	w.byte(byte(h.Tag))
	switch h.Tag {
	case CValue:
		w.u64(h.ID)
		w.bool(h.Signal)
		w.u64(h.PayloadLen)
	case CSignal:
		w.u64(h.ID)
		w.u64(h.PayloadLen)
	case CAck:
		w.u64(h.ID)
	case CError:
		w.str(h.ErrorText)
	case CHandshake:
		w.u16(h.ProtocolVersion)
		w.u64(h.ClientToken)
		w.u64(uint64(len(h.TypeHashes)))
		for _, p := range h.TypeHashes {
			w.u64(p.ID)
			w.u64(p.Hash)
		}
	}
	return w.buf
}

// DecodeClientHeader decodes a client->server record header from the
// front of data, returning the header and the number of bytes it
// occupied. The payload, if any, follows immediately.
func DecodeClientHeader(data []byte) (ClientHeader, int, error) {
	r := &reader{buf: data}
	tagByte, ok := r.byte()
	if !ok {
		return ClientHeader{}, 0, ErrIncomplete
	}
	tag := ClientTag(tagByte)
	h := ClientHeader{Tag: tag}

	switch tag {
	case CValue:
		h.ID, ok = readIf(ok, r.u64)
		h.Signal, ok = readIf(ok, r.boolean)
		h.PayloadLen, ok = readIf(ok, r.u64)
	case CSignal:
		h.ID, ok = readIf(ok, r.u64)
		h.PayloadLen, ok = readIf(ok, r.u64)
	case CAck:
		h.ID, ok = readIf(ok, r.u64)
	case CError:
		h.ErrorText, ok = readIf(ok, r.str)
	case CHandshake:
		h.ProtocolVersion, ok = readIf(ok, r.u16)
		h.ClientToken, ok = readIf(ok, r.u64)
		var count uint64
		count, ok = readIf(ok, r.u64)
		if ok {
			h.TypeHashes = make([]IDHash, 0, count)
			for i := uint64(0); ok && i < count; i++ {
				var id, hash uint64
				id, ok = readIf(ok, r.u64)
				hash, ok = readIf(ok, r.u64)
				if ok {
					h.TypeHashes = append(h.TypeHashes, IDHash{ID: id, Hash: hash})
				}
			}
		}
	default:
		return ClientHeader{}, 0, ErrMalformedTag
	}
	if !ok {
		return ClientHeader{}, 0, ErrIncomplete
	}
	return h, r.pos, nil
}

// readIf short-circuits a chain of reads: once ok is false, every
// subsequent call is skipped and its zero value returned, so a decode
// function can be written as a flat sequence of assignments without an
// if-err-return after every field.
func readIf[T any](ok bool, read func() (T, bool)) (T, bool) {
	var zero T
	if !ok {
		return zero, false
	}
	v, ok2 := read()
	if !ok2 {
		return zero, false
	}
	return v, true
}
