package server

import (
	"fmt"
	"io"

	"github.com/eguisync/eguisync/internal/metrics"
	"github.com/eguisync/eguisync/internal/wire"
	"github.com/eguisync/eguisync/internal/wsconn"
)

// readerLoop decodes client records off sess's connection and
// dispatches them into the registry until the connection errors out,
// then runs the disconnect cleanup (spec §4.E step 9) if sess is still
// the active session — a takeover may have already replaced it and run
// that cleanup itself, in which case this exit is a no-op.
func (s *Server) readerLoop(sess *session) {
	defer sess.wg.Done()

	reader := wire.NewClientRecordReader(&wsSource{conn: sess.conn})
	for {
		rec, err := reader.Next()
		if err != nil {
			if err == io.EOF || !wsconn.IsUnexpectedClose(err) {
				s.logger.Info("reader exiting", "session", sess.id, "err", err)
			} else {
				s.logger.Warn("reader exiting on connection error", "session", sess.id, "err", err)
			}
			break
		}
		s.dispatchClientRecord(rec)
	}

	s.mu.Lock()
	if s.session == sess {
		s.registry.AcknowledgeAll()
		s.connected.Store(false)
		s.registry.DisableAll()
		s.dispatcher.Reset()
		s.sender.Close()
		s.session = nil
		if s.metrics != nil {
			s.metrics.SetConnectionState(metrics.StateIdle)
		}
	}
	s.mu.Unlock()
}

// dispatchClientRecord routes one decoded record to its registry
// handler. An id with no matching handler, or a handler that rejects
// the record, is logged through the dispatcher's internal logging
// channel and the connection stays open (spec §9's resolved Open
// Question: an unrecognized id is not itself a framing error).
func (s *Server) dispatchClientRecord(rec wire.ClientRecord) {
	switch rec.Header.Tag {
	case wire.CValue:
		updater, ok := s.registry.ValueUpdaterFor(rec.Header.ID)
		if !ok {
			s.dispatcher.Error(fmt.Sprintf("value record for unknown id %d", rec.Header.ID))
			return
		}
		if err := updater.UpdateValue(rec.Header.Signal, rec.Payload); err != nil {
			s.dispatcher.Warning(err.Error())
		}
	case wire.CSignal:
		updater, ok := s.registry.SignalUpdaterFor(rec.Header.ID)
		if !ok {
			s.dispatcher.Error(fmt.Sprintf("signal record for unknown id %d", rec.Header.ID))
			return
		}
		if err := updater.UpdateSignal(rec.Payload); err != nil {
			s.dispatcher.Warning(err.Error())
		}
	case wire.CAck:
		ack, ok := s.registry.AcknowledgerFor(rec.Header.ID)
		if !ok {
			s.dispatcher.Error(fmt.Sprintf("ack record for unknown id %d", rec.Header.ID))
			return
		}
		ack.Acknowledge()
	case wire.CError:
		s.logger.Warn("client reported an error", "text", rec.Header.ErrorText)
	case wire.CHandshake:
		// A Handshake on an already-established connection is logged
		// and otherwise ignored rather than treated as fatal framing
		// error (see DESIGN.md's Open Question decision).
		s.logger.Warn("handshake received on an established connection, ignoring")
	}
}
