package client

import (
	"testing"

	"github.com/eguisync/eguisync/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestGraphApplySetLinear(t *testing.T) {
	g := NewGraph(1)

	info := wire.GraphDataInfo{ElemType: wire.GraphF32, IsLinear: true, Points: 2}
	payload := make([]byte, 8)
	update, err := g.ApplyGraph(true, wire.GraphHeader{Op: wire.GraphSet, Series: 0, Info: info}, payload)
	require.NoError(t, err)
	require.True(t, update)

	n, ok := g.SeriesLen(0)
	require.True(t, ok)
	require.Equal(t, 2, n)
}

func TestGraphApplySetXYThenAddPoints(t *testing.T) {
	g := NewGraph(1)

	info := wire.GraphDataInfo{ElemType: wire.GraphF64, IsLinear: false, Points: 1}
	payload := make([]byte, 16) // x (8) + y (8)
	_, err := g.ApplyGraph(false, wire.GraphHeader{Op: wire.GraphSet, Series: 3, Info: info}, payload)
	require.NoError(t, err)

	addInfo := wire.GraphDataInfo{ElemType: wire.GraphF64, IsLinear: false, Points: 1}
	addPayload := make([]byte, 16)
	_, err = g.ApplyGraph(false, wire.GraphHeader{Op: wire.GraphAddPoints, Series: 3, Info: addInfo}, addPayload)
	require.NoError(t, err)

	n, ok := g.SeriesLen(3)
	require.True(t, ok)
	require.Equal(t, 2, n)

	y, x, elemType, ok := g.Series(3)
	require.True(t, ok)
	require.Len(t, y, 16)
	require.Len(t, x, 16)
	require.Equal(t, wire.GraphF64, elemType)
}

func TestGraphApplyAddPointsRejectsLinearityMismatch(t *testing.T) {
	g := NewGraph(1)
	info := wire.GraphDataInfo{ElemType: wire.GraphF32, IsLinear: true, Points: 1}
	_, err := g.ApplyGraph(false, wire.GraphHeader{Op: wire.GraphSet, Series: 0, Info: info}, make([]byte, 4))
	require.NoError(t, err)

	badInfo := wire.GraphDataInfo{ElemType: wire.GraphF32, IsLinear: false, Points: 1}
	_, err = g.ApplyGraph(false, wire.GraphHeader{Op: wire.GraphAddPoints, Series: 0, Info: badInfo}, make([]byte, 8))
	require.Error(t, err)
}

func TestGraphApplyAddPointsRejectsMissingSeries(t *testing.T) {
	g := NewGraph(1)
	info := wire.GraphDataInfo{ElemType: wire.GraphF32, IsLinear: true, Points: 1}
	_, err := g.ApplyGraph(false, wire.GraphHeader{Op: wire.GraphAddPoints, Series: 9, Info: info}, make([]byte, 4))
	require.Error(t, err)
}

func TestGraphApplyRemoveAndReset(t *testing.T) {
	g := NewGraph(1)
	info := wire.GraphDataInfo{ElemType: wire.GraphF32, IsLinear: true, Points: 1}
	_, _ = g.ApplyGraph(false, wire.GraphHeader{Op: wire.GraphSet, Series: 0, Info: info}, make([]byte, 4))
	_, _ = g.ApplyGraph(false, wire.GraphHeader{Op: wire.GraphSet, Series: 1, Info: info}, make([]byte, 4))

	_, err := g.ApplyGraph(false, wire.GraphHeader{Op: wire.GraphRemove, Series: 0}, nil)
	require.NoError(t, err)
	_, ok := g.SeriesLen(0)
	require.False(t, ok)

	_, err = g.ApplyGraph(false, wire.GraphHeader{Op: wire.GraphReset}, nil)
	require.NoError(t, err)
	_, ok = g.SeriesLen(1)
	require.False(t, ok)
}
