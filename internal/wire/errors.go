package wire

import "errors"

// Fatal framing errors (spec §4.A "Framing errors", §7.1). All of them
// end the current connection.
var (
	ErrIncomplete   = errors.New("wire: declared record length exceeds available bytes")
	ErrMalformedTag = errors.New("wire: unrecognized record tag")
	ErrNonBinary    = errors.New("wire: non-binary websocket message")
)
