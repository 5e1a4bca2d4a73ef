package client

import (
	"testing"

	"github.com/eguisync/eguisync/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestRegistryApplyRoutesByTag(t *testing.T) {
	r := NewRegistry()
	sender := newTestSender()
	connected := connectedFlag(true)

	v, err := RegisterValue[uint32](r, "health", 0, marshalU32, unmarshalU32, u32Desc, sender, connected)
	require.NoError(t, err)
	r.Seal()

	update, known, err := r.Apply(wire.ServerRecord{
		Header:  wire.ServerHeader{Tag: wire.SValue, ID: v.ID(), Update: true},
		Payload: marshalU32(7),
	})
	require.NoError(t, err)
	require.True(t, known)
	require.True(t, update)

	got, err := v.Get()
	require.NoError(t, err)
	require.Equal(t, uint32(7), got)
}

func TestRegistryApplyUnknownIDIsNotFatal(t *testing.T) {
	r := NewRegistry()
	r.Seal()

	_, known, err := r.Apply(wire.ServerRecord{
		Header: wire.ServerHeader{Tag: wire.SValue, ID: 999, Update: true},
	})
	require.NoError(t, err)
	require.False(t, known)
}

func TestRegistryApplyUpdateRecordAlwaysRequestsRepaint(t *testing.T) {
	r := NewRegistry()
	r.Seal()

	update, known, err := r.Apply(wire.ServerRecord{Header: wire.ServerHeader{Tag: wire.SUpdate, Seconds: 1.5}})
	require.NoError(t, err)
	require.True(t, known)
	require.True(t, update)
}

func TestRegistryRejectsDuplicatePathAndPostSealRegistration(t *testing.T) {
	r := NewRegistry()
	sender := newTestSender()
	connected := connectedFlag(true)

	_, err := RegisterValue[uint32](r, "dup", 0, marshalU32, unmarshalU32, u32Desc, sender, connected)
	require.NoError(t, err)
	_, err = RegisterValue[uint32](r, "dup", 0, marshalU32, unmarshalU32, u32Desc, sender, connected)
	require.Error(t, err)

	r.Seal()
	_, err = RegisterValue[uint32](r, "after-seal", 0, marshalU32, unmarshalU32, u32Desc, sender, connected)
	require.Error(t, err)
}

func TestRegistryTypeHashesPreserveRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	sender := newTestSender()
	connected := connectedFlag(true)

	a, err := RegisterValue[uint32](r, "a", 0, marshalU32, unmarshalU32, u32Desc, sender, connected)
	require.NoError(t, err)
	b, err := RegisterStatic[uint32](r, "b", 0, marshalU32, unmarshalU32, u32Desc)
	require.NoError(t, err)
	r.Seal()

	hashes := r.TypeHashes()
	require.Len(t, hashes, 2)
	require.Equal(t, a.ID(), hashes[0].ID)
	require.Equal(t, b.ID(), hashes[1].ID)
}
