package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/wire"
	"github.com/eguisync/eguisync/internal/wsconn"
)

// ConnectionState mirrors client_base.rs's ConnectionState: what a GUI
// frame can show the user about the channel right now.
type ConnectionState int32

const (
	NotConnected ConnectionState = iota
	Connected
	Disconnected
)

func (s ConnectionState) String() string {
	switch s {
	case NotConnected:
		return "not_connected"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Config names the endpoint and handshake parameters a Client dials
// with (spec §4.E's client session).
type Config struct {
	URL             string
	ProtocolVersion uint16
	ClientToken     uint64
	DialTimeout     time.Duration
}

// Client runs the reverse-roles mirror of internal/server's connection
// lifecycle: a single outstanding connection at a time, redialed each
// time Connect is called, against one shared Registry and Sender that
// survive across reconnects exactly as the server's slots do.
type Client struct {
	cfg       Config
	registry  *Registry
	sender    *transport.Sender
	connected *atomic.Bool
	onRepaint func(seconds float64)
	logger    *slog.Logger

	state    atomic.Int32
	trigger  chan struct{}
}

// New builds a Client wired to a sealed Registry. sender and connected
// must be the same instances every slot in registry was registered
// with.
func New(cfg Config, registry *Registry, sender *transport.Sender, connected *atomic.Bool, onRepaint func(seconds float64), logger *slog.Logger) *Client {
	if onRepaint == nil {
		onRepaint = func(float64) {}
	}
	return &Client{
		cfg:       cfg,
		registry:  registry,
		sender:    sender,
		connected: connected,
		onRepaint: onRepaint,
		logger:    logger,
		trigger:   make(chan struct{}, 1),
	}
}

// State returns the connection's current phase.
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

func (c *Client) setState(s ConnectionState) {
	c.state.Store(int32(s))
	c.onRepaint(0)
}

// Connect requests a (re)connection attempt. It never blocks; a
// trigger already pending is left as-is (connect() in client_base.rs
// is likewise idempotent while a connection attempt is in flight).
func (c *Client) Connect() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Disconnect closes the active connection's outbound queue, the same
// effect client_base.rs's disconnect has via sender.close().
func (c *Client) Disconnect() {
	c.sender.Close()
}

// Run drives the connect/handshake/serve loop until ctx is canceled,
// mirroring start_gui_client's outer loop: wait for a trigger, dial,
// send the handshake, run the reader/writer pair to completion, mark
// Disconnected, and loop back to waiting.
func (c *Client) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.trigger:
		}

		c.setState(NotConnected)

		dialCtx := ctx
		var cancel context.CancelFunc
		if c.cfg.DialTimeout > 0 {
			dialCtx, cancel = context.WithTimeout(ctx, c.cfg.DialTimeout)
		}
		conn, err := wsconn.Dial(dialCtx, c.cfg.URL)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			c.logger.Warn("connecting to server failed", "url", c.cfg.URL, "err", err)
			c.setState(Disconnected)
			continue
		}

		c.sender.Drain()

		handshake := wire.ClientHeader{
			Tag:             wire.CHandshake,
			ProtocolVersion: c.cfg.ProtocolVersion,
			ClientToken:     c.cfg.ClientToken,
			TypeHashes:      c.registry.TypeHashes(),
		}
		if err := conn.WriteMessage(wire.EncodeClientRecord(handshake, nil)); err != nil {
			c.logger.Warn("sending handshake failed", "err", err)
			conn.Close()
			c.setState(Disconnected)
			continue
		}

		c.connected.Store(true)
		c.setState(Connected)

		readerDone := make(chan struct{})
		writerDone := make(chan struct{})
		go func() {
			c.readerLoop(conn)
			close(readerDone)
		}()
		go func() {
			c.writerLoop(conn)
			close(writerDone)
		}()

		<-readerDone
		c.sender.Close()
		<-writerDone

		c.connected.Store(false)
		conn.Close()
		c.setState(Disconnected)
	}
}

// readerLoop decodes server records off conn and applies them to the
// registry until the connection errs out. An SUpdate record, or any
// record whose update flag is set, triggers a repaint request (spec
// §4.F: "each Update record... requests a repaint after the given
// number of seconds").
func (c *Client) readerLoop(conn *wsconn.Conn) {
	reader := wire.NewServerRecordReader(&wsSource{conn: conn})
	for {
		rec, err := reader.Next()
		if err != nil {
			c.logger.Info("reader exiting", "err", err)
			return
		}

		if rec.Header.Tag == wire.SUpdate {
			c.onRepaint(rec.Header.Seconds)
			continue
		}

		update, known, err := c.registry.Apply(rec)
		if err != nil {
			c.logger.Warn("applying server record failed", "tag", rec.Header.Tag, "id", rec.Header.ID, "err", err)
			continue
		}
		if !known {
			c.logger.Error(fmt.Sprintf("server record for unknown id %d", rec.Header.ID))
			continue
		}
		if update {
			c.onRepaint(0)
		}
	}
}

// writerLoop drains the Sender onto conn until it sees the close
// tombstone or a write fails.
func (c *Client) writerLoop(conn *wsconn.Conn) {
	for {
		msg := c.sender.Recv()
		if msg.Close {
			return
		}
		if err := conn.WriteMessage(msg.Payload); err != nil {
			c.logger.Warn("write failed, closing connection", "err", err)
			conn.Close()
			return
		}
	}
}
