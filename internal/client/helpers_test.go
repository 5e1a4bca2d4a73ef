package client

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/typeinfo"
)

func marshalU32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func unmarshalU32(b []byte) (uint32, error) {
	return binary.LittleEndian.Uint32(b), nil
}

func connectedFlag(v bool) *atomic.Bool {
	b := &atomic.Bool{}
	b.Store(v)
	return b
}

func newTestSender() *transport.Sender {
	return transport.NewSender()
}

var u32Desc = typeinfo.U32()

func encodeListAll(items [][]byte) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(len(items)))
	for _, item := range items {
		lenBuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(lenBuf, uint32(len(item)))
		buf = append(buf, lenBuf...)
		buf = append(buf, item...)
	}
	return buf
}

func encodeMapAll(keys, values [][]byte) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(len(keys)))
	for i := range keys {
		for _, b := range [][]byte{keys[i], values[i]} {
			lenBuf := make([]byte, 4)
			binary.LittleEndian.PutUint32(lenBuf, uint32(len(b)))
			buf = append(buf, lenBuf...)
			buf = append(buf, b...)
		}
	}
	return buf
}

func encodeMapEntry(key, value []byte) []byte {
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(key)))
	buf := append([]byte{}, lenBuf...)
	buf = append(buf, key...)
	buf = append(buf, value...)
	return buf
}
