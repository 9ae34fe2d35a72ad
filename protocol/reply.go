package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Reply is one decoded engine answer.
type Reply struct {
	Header     Header
	Certitudes []uint32
	Body       []byte
}

// ReadReply reads exactly one framed reply from r: the fixed header, then
// the certitude list and body lengths the header declares. Reading fewer
// bytes than declared surfaces the reader's error, never a truncated Reply.
func ReadReply(r io.Reader) (*Reply, error) {
	hb := make([]byte, HeaderLen)
	if _, err := io.ReadFull(r, hb); err != nil {
		return nil, err
	}

	reply := &Reply{}
	if err := reply.Header.Decode(hb); err != nil {
		return nil, err
	}

	// Bounds both allocations below before trusting the peer's counts.
	if reply.Header.CertitudeSize > MaxCertitudes {
		return nil, fmt.Errorf("%w: certitude size %d exceeds maximum %d",
			ErrMalformedResponse, reply.Header.CertitudeSize, MaxCertitudes)
	}
	if reply.Header.BodySize > MaxBodySize {
		return nil, fmt.Errorf("%w: body size %d exceeds maximum %d",
			ErrMalformedResponse, reply.Header.BodySize, MaxBodySize)
	}

	if n := reply.Header.CertitudeSize; n > 0 {
		cb := make([]byte, n*CertitudeLen)
		if _, err := io.ReadFull(r, cb); err != nil {
			return nil, err
		}
		reply.Certitudes = make([]uint32, n)
		for i := range reply.Certitudes {
			reply.Certitudes[i] = binary.LittleEndian.Uint32(cb[i*CertitudeLen:])
		}
	}

	if reply.Header.BodySize > 0 {
		reply.Body = make([]byte, reply.Header.BodySize)
		if _, err := io.ReadFull(r, reply.Body); err != nil {
			return nil, err
		}
	}

	return reply, nil
}
