package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tests.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeSuite(t, `
tests:
  - filter_name: dga
    socket_type: unix
    socket_path: /var/sockets/darwin/dga_1.sock
    response_type: back
    timeout: 1.5
    call_args: ["example.com"]
    bulk_call_args:
      - ["example.com"]
      - ["google.com"]
    expected_call_result: 0
    expected_bulk_results: [0, 0]
  - filter_name: end
    socket_type: unix
    socket_path: /var/sockets/darwin/end_1.1.sock
    filter_code: 0x454E4445
    response_type: none
    call_args: ["darwin-test run"]
    expect_no_result: true
  - filter_name: dga
    socket_type: tcp
    socket_host: 127.0.0.1
    socket_port: 8006
    call_args: ["example.com"]
`)

	suite, err := Load(path)
	require.NoError(t, err)
	require.Len(t, suite.Tests, 3)

	dga := suite.Tests[0]
	assert.Equal(t, "dga", dga.FilterName)
	assert.Equal(t, "unix", dga.SocketType)
	assert.Equal(t, "/var/sockets/darwin/dga_1.sock", dga.SocketPath)
	assert.Equal(t, 1500*time.Millisecond, dga.ClientTimeout())
	require.NotNil(t, dga.ExpectedCallResult)
	assert.Equal(t, uint32(0), *dga.ExpectedCallResult)
	assert.Equal(t, []uint32{0, 0}, dga.ExpectedBulkResults)
	assert.Equal(t, []interface{}{"example.com"}, dga.CallArgs)
	require.Len(t, dga.BulkCallArgs, 2)

	end := suite.Tests[1]
	assert.Equal(t, uint64(0x454E4445), end.FilterCode)
	assert.True(t, end.ExpectNoResult)
	assert.Nil(t, end.ExpectedCallResult, "absent expectation stays unset")
	assert.Nil(t, end.ExpectedBulkResults)

	tcp := suite.Tests[2]
	assert.Equal(t, "tcp", tcp.SocketType)
	assert.Equal(t, 8006, tcp.SocketPort)
	assert.Equal(t, time.Duration(0), tcp.ClientTimeout())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TestConfig
		wantErr bool
	}{
		{
			"unix ok",
			TestConfig{SocketType: "unix", SocketPath: "/tmp/d.sock", ResponseType: "back"},
			false,
		},
		{
			"tcp ok",
			TestConfig{SocketType: "tcp", SocketHost: "127.0.0.1", SocketPort: 8006},
			false,
		},
		{
			"unix without path",
			TestConfig{SocketType: "unix"},
			true,
		},
		{
			"unix with tcp fields",
			TestConfig{SocketType: "unix", SocketPath: "/tmp/d.sock", SocketHost: "127.0.0.1"},
			true,
		},
		{
			"tcp without port",
			TestConfig{SocketType: "tcp", SocketHost: "127.0.0.1"},
			true,
		},
		{
			"tcp with path",
			TestConfig{SocketType: "tcp", SocketHost: "127.0.0.1", SocketPort: 8006, SocketPath: "/tmp/d.sock"},
			true,
		},
		{
			"unknown socket type",
			TestConfig{SocketType: "udp", SocketHost: "127.0.0.1", SocketPort: 8006},
			true,
		},
		{
			"unknown response type",
			TestConfig{SocketType: "unix", SocketPath: "/tmp/d.sock", ResponseType: "sideways"},
			true,
		},
	}

	for _, test := range tests {
		err := test.cfg.Validate()
		if test.wantErr {
			assert.Error(t, err, test.name)
		} else {
			assert.NoError(t, err, test.name)
		}
	}
}

func TestLoadRejectsInvalidTest(t *testing.T) {
	path := writeSuite(t, `
tests:
  - filter_name: dga
    socket_type: unix
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "socket_path")
}
