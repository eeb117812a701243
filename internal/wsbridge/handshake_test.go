package wsbridge

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRequestParsesLineAndHeaders(t *testing.T) {
	raw := "GET /api/status HTTP/1.1\r\nHost: example.com\r\nPairkey: abc\r\n\r\n"
	req, err := readRequest(bufio.NewReader(strings.NewReader(raw)))
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/api/status", req.Path)
	assert.Equal(t, "abc", req.Headers["pairkey"])
}

func TestIsUpgradeRequiresAllFourHeaders(t *testing.T) {
	raw := "GET /ws HTTP/1.1\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 13\r\n\r\n"
	req, err := readRequest(bufio.NewReader(strings.NewReader(raw)))
	require.NoError(t, err)
	assert.True(t, req.isUpgrade())
}

func TestIsUpgradeRejectsWrongVersion(t *testing.T) {
	raw := "GET /ws HTTP/1.1\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 8\r\n\r\n"
	req, err := readRequest(bufio.NewReader(strings.NewReader(raw)))
	require.NoError(t, err)
	assert.False(t, req.isUpgrade())
}

func TestAcceptKeyMatchesRFC6455Example(t *testing.T) {
	// RFC 6455 section 1.3's worked example.
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", acceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}
