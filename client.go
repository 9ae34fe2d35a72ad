// Package darwin is a client for the Darwin filter engine. It connects to a
// filter over a unix or tcp socket, sends framed evaluation requests and
// decodes the certitudes the engine answers with.
package darwin

import (
	"crypto/rand"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/darwin-filters/darwin-go/protocol"
	"github.com/darwin-filters/darwin-go/transport"
)

// Config describes how to reach a filter. SocketType is "unix" or "tcp";
// SocketPath and SocketHost/SocketPort are mutually exclusive. A zero
// Timeout means transport.DefaultTimeout, a negative one disables deadlines.
type Config struct {
	SocketType string
	SocketPath string
	SocketHost string
	SocketPort int
	Timeout    time.Duration

	// Verbose enables debug logging of every protocol step.
	Verbose bool
	Logger  *logrus.Logger

	// Registry overrides the built-in filter table.
	Registry *Registry
}

// CallOptions selects the filter and delivery mode for one call. An explicit
// FilterCode always wins over Filter, so operators can target filters the
// built-in table does not know about.
type CallOptions struct {
	Filter       string
	FilterCode   uint64
	ResponseType protocol.ResponseType

	// EventID correlates asynchronous calls (response type none or
	// forward). Left zero, a random one is generated per call.
	EventID [protocol.EventIDLen]byte
}

// Client drives one connection to a Darwin filter. It is not safe for
// concurrent use; run one client per worker instead.
type Client struct {
	conn     *transport.Conn
	registry *Registry
	logger   *logrus.Logger
	verbose  bool
	closed   bool
}

// Connect opens a connection to the filter described by cfg.
func Connect(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.Out = os.Stdout
		if cfg.Verbose {
			logger.SetLevel(logrus.DebugLevel)
		}
	}

	registry := cfg.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}

	if cfg.Verbose {
		if cfg.SocketType == "unix" {
			logger.Debugf("darwin: connecting to %s", cfg.SocketPath)
		} else {
			logger.Debugf("darwin: connecting to %s:%d", cfg.SocketHost, cfg.SocketPort)
		}
	}

	conn, err := transport.Dial(transport.Config{
		SocketType: cfg.SocketType,
		SocketPath: cfg.SocketPath,
		SocketHost: cfg.SocketHost,
		SocketPort: cfg.SocketPort,
		Timeout:    cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		conn:     conn,
		registry: registry,
		logger:   logger,
		verbose:  cfg.Verbose,
	}, nil
}

// Call evaluates one argument list. The result is nil, with no error, when
// opts.ResponseType implies no reply (none or forward).
func (c *Client) Call(arguments []interface{}, opts CallOptions) (*Result, error) {
	reply, err := c.roundTrip([][]interface{}{arguments}, opts)
	if err != nil || reply == nil {
		return nil, err
	}

	if len(reply.Certitudes) == 0 {
		if c.verbose {
			c.logger.Debug("darwin: no certitude returned")
		}
		return nil, nil
	}
	return &Result{Certitude: reply.Certitudes[0]}, nil
}

// BulkCall evaluates several argument lists in one packet. Results come back
// in request order, one per item; an item the engine could not evaluate is
// marked failed in place without affecting its siblings. A reply whose item
// count does not match the request is ErrMalformedResponse.
func (c *Client) BulkCall(items [][]interface{}, opts CallOptions) ([]Result, error) {
	reply, err := c.roundTrip(items, opts)
	if err != nil || reply == nil {
		return nil, err
	}

	if len(reply.Certitudes) != len(items) {
		c.Close()
		return nil, fmt.Errorf("%w: got %d certitudes for %d items",
			ErrMalformedResponse, len(reply.Certitudes), len(items))
	}

	results := make([]Result, len(items))
	for i, certitude := range reply.Certitudes {
		results[i] = Result{Certitude: certitude}
	}
	return results, nil
}

// Close releases the connection. Safe to call more than once.
func (c *Client) Close() error {
	c.closed = true
	return c.conn.Close()
}

func (c *Client) roundTrip(items [][]interface{}, opts CallOptions) (*protocol.Reply, error) {
	if c.closed {
		return nil, ErrClientClosed
	}

	code, err := c.resolveCode(opts)
	if err != nil {
		return nil, err
	}

	req := &protocol.Request{
		FilterCode:   code,
		ResponseType: opts.ResponseType,
		EventID:      opts.EventID,
		Items:        items,
	}
	if req.EventID == ([protocol.EventIDLen]byte{}) {
		id, err := newEventID()
		if err != nil {
			return nil, err
		}
		req.EventID = id
	}

	packet, err := req.Encode()
	if err != nil {
		return nil, err
	}

	if c.verbose {
		c.logger.Debugf("darwin: sending %d byte packet, filtercode=%#x responsetype=%s eventid=%x items=%d",
			len(packet), code, opts.ResponseType, req.EventID, len(items))
	}

	if err := c.conn.Send(packet); err != nil {
		c.closed = true
		return nil, err
	}

	// No reply is coming for none/forward: the call is complete once the
	// packet is on the wire.
	if !opts.ResponseType.ExpectsReply() {
		if c.verbose {
			c.logger.Debugf("darwin: no response expected, eventid=%x", req.EventID)
		}
		return nil, nil
	}

	reply, err := protocol.ReadReply(c.conn)
	if err != nil {
		c.Close()
		return nil, err
	}

	if c.verbose {
		c.logger.Debugf("darwin: received reply %s", reply.Header.String())
	}
	return reply, nil
}

func (c *Client) resolveCode(opts CallOptions) (uint64, error) {
	if opts.FilterCode != protocol.FilterCodeNone {
		return opts.FilterCode, nil
	}
	if opts.Filter != "" {
		return c.registry.Resolve(opts.Filter)
	}
	return protocol.FilterCodeNone, nil
}

func newEventID() ([protocol.EventIDLen]byte, error) {
	var id [protocol.EventIDLen]byte
	if _, err := rand.Read(id[:]); err != nil {
		return id, fmt.Errorf("generating event id: %v", err)
	}
	return id, nil
}
