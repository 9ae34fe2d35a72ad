// Package transport owns the socket to the Darwin engine: one blocking
// connection over a unix or tcp stream, with deadline handling and a
// deterministic close.
package transport

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

var (
	ErrConnection      = errors.New("darwin connection error")
	ErrTimeout         = fmt.Errorf("%w: timeout", ErrConnection)
	ErrInvalidArgument = errors.New("invalid socket configuration")
)

// DefaultTimeout applies when Config.Timeout is zero. A negative Timeout
// disables deadlines entirely.
const DefaultTimeout = 10 * time.Second

// Config selects the engine endpoint. SocketType is "unix" or "tcp"; the
// path and host/port fields are mutually exclusive.
type Config struct {
	SocketType string
	SocketPath string
	SocketHost string
	SocketPort int
	Timeout    time.Duration
}

func (c Config) resolve() (network, address string, err error) {
	switch c.SocketType {
	case "unix":
		if c.SocketPath == "" {
			return "", "", fmt.Errorf("%w: no socket path has been given", ErrInvalidArgument)
		}
		if c.SocketHost != "" || c.SocketPort != 0 {
			return "", "", fmt.Errorf("%w: socket host/port are not valid for unix sockets", ErrInvalidArgument)
		}
		return "unix", c.SocketPath, nil
	case "tcp":
		if c.SocketHost == "" {
			return "", "", fmt.Errorf("%w: no socket host has been given", ErrInvalidArgument)
		}
		if c.SocketPort == 0 {
			return "", "", fmt.Errorf("%w: no socket port has been given", ErrInvalidArgument)
		}
		if c.SocketPath != "" {
			return "", "", fmt.Errorf("%w: socket path is not valid for tcp sockets", ErrInvalidArgument)
		}
		return "tcp", net.JoinHostPort(c.SocketHost, strconv.Itoa(c.SocketPort)), nil
	default:
		return "", "", fmt.Errorf("%w: unknown socket type %q", ErrInvalidArgument, c.SocketType)
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout == 0 {
		return DefaultTimeout
	}
	if c.Timeout < 0 {
		return 0
	}
	return c.Timeout
}

// Conn is one live socket to the engine. It is not safe for concurrent use;
// a caller drives one request/response cycle at a time.
type Conn struct {
	nc      net.Conn
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

// Dial opens a connection to the endpoint described by cfg.
func Dial(cfg Config) (*Conn, error) {
	network, address, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	timeout := cfg.timeout()
	d := net.Dialer{Timeout: timeout}
	nc, err := d.Dial(network, address)
	if err != nil {
		return nil, wrapNetErr(err)
	}

	return &Conn{nc: nc, timeout: timeout}, nil
}

// Send writes the whole buffer. Any write failure closes the connection.
func (c *Conn) Send(b []byte) error {
	if c.isClosed() {
		return fmt.Errorf("%w: connection is closed", ErrConnection)
	}
	if c.timeout > 0 {
		if err := c.nc.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			c.Close()
			return wrapNetErr(err)
		}
	}
	if _, err := c.nc.Write(b); err != nil {
		c.Close()
		return wrapNetErr(err)
	}
	return nil
}

// Read implements io.Reader with the connection's deadline applied. Any
// read failure, including a peer close mid-frame, closes the connection.
func (c *Conn) Read(p []byte) (int, error) {
	if c.isClosed() {
		return 0, fmt.Errorf("%w: connection is closed", ErrConnection)
	}
	if c.timeout > 0 {
		if err := c.nc.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			c.Close()
			return 0, wrapNetErr(err)
		}
	}
	n, err := c.nc.Read(p)
	if err != nil {
		c.Close()
		return n, wrapNetErr(err)
	}
	return n, nil
}

// Close releases the socket. Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.nc.Close()
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func wrapNetErr(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}
