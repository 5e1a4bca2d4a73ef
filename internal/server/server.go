// Package server implements the connection lifecycle of spec §4.E: a
// single active client at a time, displaced by a newer handshake
// rather than refused, with the outbound queue and every slot
// surviving the reconnect that replaces the reader/writer task pair
// serving it.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/eguisync/eguisync/internal/config"
	"github.com/eguisync/eguisync/internal/dispatch"
	"github.com/eguisync/eguisync/internal/metrics"
	"github.com/eguisync/eguisync/internal/registry"
	"github.com/eguisync/eguisync/internal/transport"
	"github.com/eguisync/eguisync/internal/wire"
	"github.com/eguisync/eguisync/internal/wsconn"
	"github.com/google/uuid"
)

// Server accepts WebSocket upgrades on one path and runs the
// handshake/takeover/reader/writer lifecycle against a single shared
// Registry. Construct one with New and register it as an http.Handler.
type Server struct {
	cfg        *config.Config
	registry   *registry.Registry
	sender     *transport.Sender
	connected  *atomic.Bool
	dispatcher *dispatch.Dispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger

	mu      sync.Mutex
	session *session
}

// session tracks one accepted connection's resources so a later
// handshake can tell a stale reader/writer pair from the current one
// (spec §4.E step 3: tombstone the old sender, await the old writer
// and reader before proceeding).
type session struct {
	id   uuid.UUID
	conn *wsconn.Conn
	wg   sync.WaitGroup
}

// New builds a Server wired to a sealed Registry. sender, connected
// and dispatcher must be the exact instances the registry's slots were
// constructed with, since those are shared across every reconnect by
// design (see internal/registry and internal/transport).
func New(cfg *config.Config, reg *registry.Registry, sender *transport.Sender, connected *atomic.Bool, dispatcher *dispatch.Dispatcher, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		cfg:        cfg,
		registry:   reg,
		sender:     sender,
		connected:  connected,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}
}

// ServeHTTP upgrades the request to a WebSocket connection, runs the
// handshake, and on success spawns the reader/writer task pair that
// serves it. A failed handshake closes the connection and logs a
// warning; it never panics or crashes the listener (spec §4.E step 4's
// "connection rejected; warning logged").
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := wsconn.Accept(w, r)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err, "remote", r.RemoteAddr)
		return
	}

	if err := s.handshake(conn); err != nil {
		s.logger.Warn("handshake rejected", "remote", conn.RemoteAddr(), "err", err)
		conn.Close()
	}
}

// Shutdown tears down the active connection, if any, and blocks until
// its reader and writer tasks have exited. Intended for process
// shutdown (SIGINT/SIGTERM), not for normal takeover.
func (s *Server) Shutdown() {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()
	if sess == nil {
		return
	}
	s.sender.Close()
	sess.conn.Close()
	sess.wg.Wait()
}

// tagName labels an outbound frame for the frames-sent counter. It
// reads the tag byte directly off the wire instead of re-decoding the
// whole header, since the writer task only needs the label.
func tagName(tag wire.ServerTag) string {
	switch tag {
	case wire.SValue:
		return "value"
	case wire.SStatic:
		return "static"
	case wire.SImage:
		return "image"
	case wire.SList:
		return "list"
	case wire.SMap:
		return "map"
	case wire.SGraph:
		return "graph"
	case wire.SUpdate:
		return "update"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}
