// Package config loads the declarative test suites run by darwin-test.
package config

import (
	"fmt"
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/darwin-filters/darwin-go/protocol"
)

// TestConfig describes one filter to exercise. Exactly one transport is
// configured: socket_path for unix, socket_host/socket_port for tcp.
type TestConfig struct {
	FilterName string `yaml:"filter_name"`
	SocketType string `yaml:"socket_type"`
	SocketPath string `yaml:"socket_path"`
	SocketHost string `yaml:"socket_host"`
	SocketPort int    `yaml:"socket_port"`
	// FilterCode overrides name-based resolution when non-zero, for
	// filters the built-in table does not list.
	FilterCode   uint64 `yaml:"filter_code"`
	ResponseType string `yaml:"response_type"`
	Verbose      bool   `yaml:"verbose"`
	// Timeout in seconds. Zero keeps the client default.
	Timeout float64 `yaml:"timeout"`

	CallArgs     []interface{}   `yaml:"call_args"`
	BulkCallArgs [][]interface{} `yaml:"bulk_call_args"`

	// ExpectedCallResult is only checked when present in the file.
	// ExpectNoResult instead asserts the call returns no result at all.
	ExpectedCallResult *uint32 `yaml:"expected_call_result"`
	ExpectNoResult     bool    `yaml:"expect_no_result"`
	// ExpectedBulkResults is only checked when present; an explicit empty
	// list asserts an empty reply.
	ExpectedBulkResults []uint32 `yaml:"expected_bulk_results"`
}

type Suite struct {
	Tests []TestConfig `yaml:"tests"`
}

func Load(filename string) (*Suite, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var suite Suite
	if err = yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}

	for i := range suite.Tests {
		if err := suite.Tests[i].Validate(); err != nil {
			return nil, fmt.Errorf("test %d (%s): %w", i, suite.Tests[i].FilterName, err)
		}
	}

	return &suite, nil
}

func (t *TestConfig) Validate() error {
	switch t.SocketType {
	case "unix":
		if t.SocketPath == "" {
			return fmt.Errorf("socket_type unix requires socket_path")
		}
		if t.SocketHost != "" || t.SocketPort != 0 {
			return fmt.Errorf("socket_host/socket_port are not valid with socket_type unix")
		}
	case "tcp":
		if t.SocketHost == "" || t.SocketPort == 0 {
			return fmt.Errorf("socket_type tcp requires socket_host and socket_port")
		}
		if t.SocketPath != "" {
			return fmt.Errorf("socket_path is not valid with socket_type tcp")
		}
	default:
		return fmt.Errorf("unknown socket_type %q", t.SocketType)
	}

	if _, err := protocol.ParseResponseType(t.ResponseType); err != nil {
		return err
	}

	return nil
}

// ClientTimeout converts the per-test timeout to a duration.
func (t *TestConfig) ClientTimeout() time.Duration {
	return time.Duration(t.Timeout * float64(time.Second))
}
