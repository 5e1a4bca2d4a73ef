package wire

// copyThreshold is the zero-copy/copy boundary from spec §4.A: records
// extracted from a message larger than this many bytes are returned as
// slices into the original message buffer; smaller messages are
// copied so the (possibly pooled) source buffer can be reused
// immediately.
const copyThreshold = 1024

// Source yields the next inbound WebSocket binary message. A non-binary
// message must be reported as ErrNonBinary.
type Source interface {
	NextBinaryMessage() ([]byte, error)
}

// ClientRecord is one decoded client->server record plus its payload.
type ClientRecord struct {
	Header  ClientHeader
	Payload []byte
}

// ClientRecordReader extracts successive client->server records from a
// Source, maintaining a cursor into the current message so repeated
// calls are O(1) per record once a message has been read.
type ClientRecordReader struct {
	source  Source
	pending []byte
	pos     int
	zeroCopy bool
}

// NewClientRecordReader wraps a Source for the server's reader task.
func NewClientRecordReader(s Source) *ClientRecordReader {
	return &ClientRecordReader{source: s}
}

// Next returns the next record, blocking on the Source for a new
// message when the current one is exhausted.
func (r *ClientRecordReader) Next() (ClientRecord, error) {
	for r.pos >= len(r.pending) {
		msg, err := r.source.NextBinaryMessage()
		if err != nil {
			return ClientRecord{}, err
		}
		r.pending = msg
		r.pos = 0
		r.zeroCopy = len(msg) > copyThreshold
	}

	hdr, hsize, err := DecodeClientHeader(r.pending[r.pos:])
	if err != nil {
		return ClientRecord{}, err
	}
	payloadLen := int(hdr.PayloadLength())
	start := r.pos + hsize
	end := start + payloadLen
	if end > len(r.pending) {
		return ClientRecord{}, ErrIncomplete
	}

	payload := r.slice(start, end)
	r.pos = end
	return ClientRecord{Header: hdr, Payload: payload}, nil
}

func (r *ClientRecordReader) slice(start, end int) []byte {
	if start == end {
		return nil
	}
	if r.zeroCopy {
		return r.pending[start:end]
	}
	out := make([]byte, end-start)
	copy(out, r.pending[start:end])
	return out
}

// ServerRecord is one decoded server->client record plus its payload.
type ServerRecord struct {
	Header  ServerHeader
	Payload []byte
}

// ServerRecordReader is the client-side mirror of ClientRecordReader.
type ServerRecordReader struct {
	source   Source
	pending  []byte
	pos      int
	zeroCopy bool
}

// NewServerRecordReader wraps a Source for the client's reader loop.
func NewServerRecordReader(s Source) *ServerRecordReader {
	return &ServerRecordReader{source: s}
}

// Next returns the next record, blocking on the Source for a new
// message when the current one is exhausted.
func (r *ServerRecordReader) Next() (ServerRecord, error) {
	for r.pos >= len(r.pending) {
		msg, err := r.source.NextBinaryMessage()
		if err != nil {
			return ServerRecord{}, err
		}
		r.pending = msg
		r.pos = 0
		r.zeroCopy = len(msg) > copyThreshold
	}

	hdr, hsize, err := DecodeServerHeader(r.pending[r.pos:])
	if err != nil {
		return ServerRecord{}, err
	}
	payloadLen := int(hdr.PayloadLength())
	start := r.pos + hsize
	end := start + payloadLen
	if end > len(r.pending) {
		return ServerRecord{}, ErrIncomplete
	}

	payload := r.slice(start, end)
	r.pos = end
	return ServerRecord{Header: hdr, Payload: payload}, nil
}

func (r *ServerRecordReader) slice(start, end int) []byte {
	if start == end {
		return nil
	}
	if r.zeroCopy {
		return r.pending[start:end]
	}
	out := make([]byte, end-start)
	copy(out, r.pending[start:end])
	return out
}
