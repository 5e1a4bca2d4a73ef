package client

import (
	"errors"

	"github.com/eguisync/eguisync/internal/wire"
	"github.com/eguisync/eguisync/internal/wsconn"
)

// wsSource adapts a *wsconn.Conn to wire.Source for the client's reader
// loop, the mirror of internal/server's wsSource.
type wsSource struct {
	conn *wsconn.Conn
}

func (w *wsSource) NextBinaryMessage() ([]byte, error) {
	data, err := w.conn.ReadMessage()
	if err != nil {
		if errors.Is(err, wsconn.ErrNotBinary) {
			return nil, wire.ErrNonBinary
		}
		return nil, err
	}
	return data, nil
}
