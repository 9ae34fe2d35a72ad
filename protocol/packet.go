// Package protocol implements the Darwin packet format.
//
// A packet is a packed little-endian header followed by a certitude list and
// a JSON body:
//
//	packet_type    uint32
//	response_type  uint32
//	filter_code    uint64
//	body_size      uint64
//	event_id       [16]byte
//	certitude_size uint64
//	certitudes     certitude_size * uint32
//	body           body_size bytes
//
// This matches the engine's packed C struct on LP64 little-endian hosts and
// is the canonical layout on both ends.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

type PacketType uint32
type ResponseType uint32

const (
	// PacketOther marks a packet coming from a regular client,
	// PacketFilter one forwarded by another Darwin filter.
	PacketOther  PacketType = 0
	PacketFilter PacketType = 1
)

const (
	ResponseNone    ResponseType = 0
	ResponseBack    ResponseType = 1
	ResponseForward ResponseType = 2
	ResponseBoth    ResponseType = 3
)

const (
	HeaderLen     = 48
	EventIDLen    = 16
	CertitudeLen  = 4
	MaxCertitudes = 10000
	// MaxBodySize bounds the reply body a peer can make us allocate. Far
	// above any real filter reply, which carries at most a JSON detail per
	// certitude.
	MaxBodySize = 16 << 20

	FilterCodeNone uint64 = 0
)

var (
	ErrEncoding          = errors.New("cannot encode request body")
	ErrMalformedResponse = errors.New("malformed darwin response")
)

var packetTypeMap = map[PacketType]string{
	PacketOther:  "other",
	PacketFilter: "filter",
}

var responseTypeMap = map[ResponseType]string{
	ResponseNone:    "none",
	ResponseBack:    "back",
	ResponseForward: "forward",
	ResponseBoth:    "both",
}

// responseTypeNames accepts the names used by the engine documentation
// ("no", "darwin") next to the canonical ones.
var responseTypeNames = map[string]ResponseType{
	"":        ResponseNone,
	"no":      ResponseNone,
	"none":    ResponseNone,
	"back":    ResponseBack,
	"darwin":  ResponseForward,
	"forward": ResponseForward,
	"both":    ResponseBoth,
}

// ParseResponseType resolves a textual response type from configuration.
func ParseResponseType(name string) (ResponseType, error) {
	rt, ok := responseTypeNames[name]
	if !ok {
		return ResponseNone, fmt.Errorf("unknown response type %q", name)
	}
	return rt, nil
}

// ExpectsReply reports whether the engine will answer back to the caller.
func (rt ResponseType) ExpectsReply() bool {
	return rt == ResponseBack || rt == ResponseBoth
}

func (rt ResponseType) String() string {
	if n, ok := responseTypeMap[rt]; ok {
		return n
	}
	return "unknown"
}

func (pt PacketType) String() string {
	if n, ok := packetTypeMap[pt]; ok {
		return n
	}
	return "unknown"
}

// Header is the fixed part of a Darwin packet.
type Header struct {
	PacketType    PacketType
	ResponseType  ResponseType
	FilterCode    uint64
	BodySize      uint64
	EventID       [EventIDLen]byte
	CertitudeSize uint64
}

func (h *Header) Encode(b []byte) ([]byte, error) {
	if h == nil {
		return nil, errors.New("nil header")
	}
	if len(b) < HeaderLen {
		return nil, fmt.Errorf("buffer must be at least %d bytes long", HeaderLen)
	}

	b = b[:HeaderLen]
	binary.LittleEndian.PutUint32(b[0:4], uint32(h.PacketType))
	binary.LittleEndian.PutUint32(b[4:8], uint32(h.ResponseType))
	binary.LittleEndian.PutUint64(b[8:16], h.FilterCode)
	binary.LittleEndian.PutUint64(b[16:24], h.BodySize)
	copy(b[24:40], h.EventID[:])
	binary.LittleEndian.PutUint64(b[40:48], h.CertitudeSize)
	return b, nil
}

func (h *Header) Decode(b []byte) error {
	if len(b) < HeaderLen {
		return fmt.Errorf("%w: header is %d bytes, want %d", ErrMalformedResponse, len(b), HeaderLen)
	}

	h.PacketType = PacketType(binary.LittleEndian.Uint32(b[0:4]))
	h.ResponseType = ResponseType(binary.LittleEndian.Uint32(b[4:8]))
	h.FilterCode = binary.LittleEndian.Uint64(b[8:16])
	h.BodySize = binary.LittleEndian.Uint64(b[16:24])
	copy(h.EventID[:], b[24:40])
	h.CertitudeSize = binary.LittleEndian.Uint64(b[40:48])

	return nil
}

func (h *Header) String() string {
	if h == nil {
		return "<nil>"
	}
	return fmt.Sprintf("packettype=%s responsetype=%s filtercode=%#x bodysize=%d eventid=%x certitudesize=%d",
		h.PacketType, h.ResponseType, h.FilterCode, h.BodySize, h.EventID, h.CertitudeSize)
}
