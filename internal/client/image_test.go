package client

import (
	"testing"

	"github.com/eguisync/eguisync/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestImageApplyFullFrameAndAcks(t *testing.T) {
	sender := newTestSender()
	img := NewImage(1, sender, connectedFlag(true))

	header := wire.ImageHeader{Size: [2]uint32{2, 2}, Format: wire.FormatGray}
	payload := []byte{10, 20, 30, 40} // 2x2 gray
	update, err := img.ApplyImage(true, header, payload)
	require.NoError(t, err)
	require.True(t, update)

	rgba, size := img.RGBA()
	require.Equal(t, [2]uint32{2, 2}, size)
	require.Len(t, rgba, 16)
	require.Equal(t, byte(10), rgba[0])
	require.Equal(t, byte(255), rgba[3]) // alpha filled in for Gray

	require.False(t, sender.Empty(), "expected an Ack after applying")
	msg := sender.Recv()
	hdr, _, err := wire.DecodeClientHeader(msg.Payload)
	require.NoError(t, err)
	require.Equal(t, wire.CAck, hdr.Tag)
}

func TestImageApplyRectOnUnsizedImageIsRejectedButStillAcks(t *testing.T) {
	sender := newTestSender()
	img := NewImage(1, sender, connectedFlag(true))

	header := wire.ImageHeader{
		Size:    [2]uint32{4, 4},
		HasRect: true,
		Rect:    [4]uint32{0, 0, 2, 2},
		Format:  wire.FormatGray,
	}
	_, err := img.ApplyImage(true, header, []byte{1, 2, 3, 4})
	require.Error(t, err)

	require.False(t, sender.Empty(), "ack must still be sent on rejection")
}

func TestImageApplyRectSplicesIntoExistingFrame(t *testing.T) {
	sender := newTestSender()
	img := NewImage(1, sender, connectedFlag(true))

	full := wire.ImageHeader{Size: [2]uint32{2, 2}, Format: wire.FormatGray}
	_, err := img.ApplyImage(false, full, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	sender.Recv() // drain the first ack

	rectHeader := wire.ImageHeader{
		Size:    [2]uint32{2, 2},
		HasRect: true,
		Rect:    [4]uint32{0, 1, 1, 1},
		Format:  wire.FormatGray,
	}
	_, err = img.ApplyImage(false, rectHeader, []byte{99})
	require.NoError(t, err)

	rgba, _ := img.RGBA()
	require.Equal(t, byte(99), rgba[4]) // row0,col1 -> pixel index 1 -> byte offset 4
}
