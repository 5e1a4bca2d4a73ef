package server

import "github.com/eguisync/eguisync/internal/wire"

// writerLoop drains sess's share of the outbound queue and writes each
// frame to the socket until it sees the close tombstone or a write
// fails, then closes the connection and returns (spec §4.E's "writer
// is closing connection").
func (s *Server) writerLoop(sess *session) {
	defer sess.wg.Done()

	for {
		msg := s.sender.Recv()
		if msg.Close {
			sess.conn.Close()
			return
		}

		if err := sess.conn.WriteMessage(msg.Payload); err != nil {
			s.logger.Warn("write failed, closing connection", "session", sess.id, "err", err)
			sess.conn.Close()
			return
		}

		if s.metrics != nil && len(msg.Payload) > 0 {
			s.metrics.ObserveFrameSent(tagName(wire.ServerTag(msg.Payload[0])))
		}
	}
}
