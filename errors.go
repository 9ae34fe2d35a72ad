package darwin

import (
	"errors"

	"github.com/darwin-filters/darwin-go/protocol"
	"github.com/darwin-filters/darwin-go/transport"
)

// The full error taxonomy, re-exported so callers only need this package.
// Check with errors.Is; ErrTimeout also matches ErrConnection.
var (
	ErrConnection        = transport.ErrConnection
	ErrTimeout           = transport.ErrTimeout
	ErrInvalidArgument   = transport.ErrInvalidArgument
	ErrEncoding          = protocol.ErrEncoding
	ErrMalformedResponse = protocol.ErrMalformedResponse

	ErrUnknownFilter = errors.New("unknown darwin filter")
	ErrClientClosed  = errors.New("darwin client is closed")
)
