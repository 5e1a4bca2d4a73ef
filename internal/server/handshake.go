package server

import (
	"fmt"
	"time"

	"github.com/eguisync/eguisync/internal/metrics"
	"github.com/eguisync/eguisync/internal/registry"
	"github.com/eguisync/eguisync/internal/wire"
	"github.com/eguisync/eguisync/internal/wsconn"
	"github.com/google/uuid"
)

// handshake runs spec §4.E steps 3-8 against a freshly accepted
// connection: read the first record (must be Handshake), validate
// protocol version and token, displace any existing session, enable
// the matching slots, and spawn the new reader/writer pair.
func (s *Server) handshake(conn *wsconn.Conn) error {
	rec, err := s.readHandshake(conn, s.cfg.Server.HandshakeTimeout.Duration())
	if err != nil {
		return err
	}
	if rec.Header.Tag != wire.CHandshake {
		return fmt.Errorf("expected Handshake as the first record, got tag %d", rec.Header.Tag)
	}
	if rec.Header.ProtocolVersion != s.cfg.Server.ProtocolVersion {
		return fmt.Errorf("protocol version mismatch: client=%d server=%d", rec.Header.ProtocolVersion, s.cfg.Server.ProtocolVersion)
	}
	if !s.cfg.Auth.Allowed(rec.Header.ClientToken) {
		return fmt.Errorf("client token not in the configured allow-list")
	}

	clientHashes := make(map[uint64]uint64, len(rec.Header.TypeHashes))
	for _, p := range rec.Header.TypeHashes {
		clientHashes[p.ID] = p.Hash
	}

	s.mu.Lock()
	if old := s.session; old != nil {
		s.registry.DisableAll()
		s.sender.Close()
		old.conn.Close()
		s.mu.Unlock()

		s.logger.Info("terminating previous connection", "session", old.id)
		old.wg.Wait()
		s.logger.Info("writer is closing connection", "session", old.id)
		s.sender.Drain()

		s.mu.Lock()
	}

	counts := s.registry.EnableMatching(clientHashes)
	if s.metrics != nil {
		for _, kind := range registry.Kinds {
			s.metrics.SetEnabledSlots(kind, counts[kind])
		}
	}
	s.connected.Store(true)
	s.registry.SyncAll()
	s.sender.Send(wire.EncodeServerRecord(wire.ServerHeader{Tag: wire.SUpdate, Seconds: 0}, nil))

	sess := &session{id: uuid.New(), conn: conn}
	s.session = sess
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetConnectionState(metrics.StateRunning)
	}
	s.logger.Info("connection established", "session", sess.id, "remote", conn.RemoteAddr())

	sess.wg.Add(2)
	go s.readerLoop(sess)
	go s.writerLoop(sess)
	return nil
}

// readHandshake blocks for the connection's first record, giving up
// and closing the socket if none arrives within timeout (spec §4.E
// step 3's handshake timeout).
func (s *Server) readHandshake(conn *wsconn.Conn, timeout time.Duration) (wire.ClientRecord, error) {
	type result struct {
		rec wire.ClientRecord
		err error
	}
	ch := make(chan result, 1)

	go func() {
		reader := wire.NewClientRecordReader(&wsSource{conn: conn})
		rec, err := reader.Next()
		ch <- result{rec, err}
	}()

	select {
	case res := <-ch:
		return res.rec, res.err
	case <-time.After(timeout):
		conn.Close()
		return wire.ClientRecord{}, fmt.Errorf("handshake timed out after %s", timeout)
	}
}
