// Package wsconn wraps a gorilla/websocket connection with the framing
// discipline spec §4.E's listener loop requires: binary messages only,
// a generous 512MiB frame limit (slots carry full image/graph
// snapshots, which can be large), and TCP_NODELAY so small control
// frames (Ack, Update) aren't held back by Nagle's algorithm.
package wsconn

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
)

// MaxMessageBytes bounds a single WebSocket message, matching the
// reference server's own frame-size ceiling.
const MaxMessageBytes = 512 * 1024 * 1024

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Conn is one accepted, binary-framed WebSocket connection.
type Conn struct {
	ws *websocket.Conn
}

// Accept upgrades an incoming HTTP request to a WebSocket connection,
// configuring it per this package's framing rules.
func Accept(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("wsconn: upgrade: %w", err)
	}
	ws.SetReadLimit(MaxMessageBytes)

	if tcp, ok := ws.UnderlyingConn().(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	return &Conn{ws: ws}, nil
}

// dialer configures the client-side handshake buffers. Dial then applies
// the same MaxMessageBytes read limit that Accept applies (spec §6's
// 512MiB limit binds both directions of the channel).
var dialer = websocket.Dialer{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Dial opens a client-side connection to a ws:// or wss:// URL,
// configuring it per this package's framing rules (spec §4.E's
// client session: "dial the endpoint").
func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("wsconn: dial: %w", err)
	}
	ws.SetReadLimit(MaxMessageBytes)

	if tcp, ok := ws.UnderlyingConn().(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	return &Conn{ws: ws}, nil
}

// ErrNotBinary is returned by ReadMessage when the peer sends a text
// frame; this protocol never carries text messages.
var ErrNotBinary = errors.New("wsconn: received a non-binary message")

// ReadMessage blocks for the next binary message and returns its
// payload. A text message is a protocol violation and returns
// ErrNotBinary without closing the connection; the caller decides
// whether that's fatal.
func (c *Conn) ReadMessage() ([]byte, error) {
	kind, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	if kind != websocket.BinaryMessage {
		return nil, ErrNotBinary
	}
	return data, nil
}

// WriteMessage sends data as a single binary WebSocket message.
func (c *Conn) WriteMessage(data []byte) error {
	return c.ws.WriteMessage(websocket.BinaryMessage, data)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// RemoteAddr returns the peer's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}

// IsUnexpectedClose reports whether err represents an abnormal close
// (as opposed to the peer cleanly going away), used to decide whether
// a reader-loop exit deserves a warning-level log.
func IsUnexpectedClose(err error) bool {
	return websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure)
}
