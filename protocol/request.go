package protocol

import (
	"encoding/json"
	"fmt"
)

// Request is one outgoing evaluation packet. Items always holds one argument
// list per evaluation; a single call is a bulk of one on the wire.
type Request struct {
	FilterCode   uint64
	ResponseType ResponseType
	EventID      [EventIDLen]byte
	Items        [][]interface{}
}

// Encode serializes the request into header + JSON body bytes, ready to send.
func (r *Request) Encode() ([]byte, error) {
	body, err := json.Marshal(r.Items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	// Some TCP forwarders (seen with HAProxy 2.2.5) hold on to the packet
	// until they see a newline. It does not interfere with the engine's
	// JSON parsing and is counted in body_size.
	body = append(body, '\n')

	h := &Header{
		PacketType:   PacketOther,
		ResponseType: r.ResponseType,
		FilterCode:   r.FilterCode,
		BodySize:     uint64(len(body)),
		EventID:      r.EventID,
	}

	packet := make([]byte, HeaderLen, HeaderLen+len(body))
	if _, err := h.Encode(packet); err != nil {
		return nil, err
	}
	return append(packet, body...), nil
}
