package client

import (
	"testing"

	"github.com/eguisync/eguisync/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestListApplyAll(t *testing.T) {
	l := NewList(1)

	payload := encodeListAll([][]byte{[]byte("a"), []byte("bb"), []byte("ccc")})
	update, err := l.ApplyList(true, wire.ListHeader{Op: wire.ListAll}, payload)
	require.NoError(t, err)
	require.True(t, update)
	require.Equal(t, 3, l.Len())

	got, err := l.GetItem(1)
	require.NoError(t, err)
	require.Equal(t, "bb", string(got))
}

func TestListApplyAddAndSet(t *testing.T) {
	l := NewList(1)
	_, err := l.ApplyList(false, wire.ListHeader{Op: wire.ListAdd}, []byte("x"))
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())

	_, err = l.ApplyList(false, wire.ListHeader{Op: wire.ListSet, Index: 0}, []byte("y"))
	require.NoError(t, err)
	got, err := l.GetItem(0)
	require.NoError(t, err)
	require.Equal(t, "y", string(got))
}

func TestListApplyOutOfBoundsIsTolerated(t *testing.T) {
	l := NewList(1)

	_, err := l.ApplyList(false, wire.ListHeader{Op: wire.ListSet, Index: 99}, []byte("z"))
	require.NoError(t, err)
	require.Equal(t, 0, l.Len())

	_, err = l.ApplyList(false, wire.ListHeader{Op: wire.ListRemove, Index: 99}, nil)
	require.NoError(t, err)
}

func TestListApplyRemove(t *testing.T) {
	l := NewList(1)
	_, _ = l.ApplyList(false, wire.ListHeader{Op: wire.ListAdd}, []byte("a"))
	_, _ = l.ApplyList(false, wire.ListHeader{Op: wire.ListAdd}, []byte("b"))

	_, err := l.ApplyList(false, wire.ListHeader{Op: wire.ListRemove, Index: 0}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
	got, err := l.GetItem(0)
	require.NoError(t, err)
	require.Equal(t, "b", string(got))
}
