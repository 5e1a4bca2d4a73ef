package registry

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/eguisync/eguisync/internal/dispatch"
	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/typeinfo"
)

func descFor(name string) *typeinfo.Descriptor {
	switch name {
	case "u32":
		return typeinfo.U32()
	default:
		return typeinfo.Struct(name)
	}
}

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

func newTestDispatcher() *dispatch.Dispatcher {
	return dispatch.NewDispatcher(false)
}

func newTestSender() *transport.Sender {
	return transport.NewSender()
}
