package rfb

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candiedoperation/spifyrfb/internal/display/simulator"
	"github.com/candiedoperation/spifyrfb/internal/rfb/rfbtypes"
)

func newTestPair(t *testing.T, cfg *Config) (client net.Conn, done <-chan error) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	ch := make(chan error, 1)
	go func() {
		ch <- newSession(serverConn, cfg).Serve()
	}()
	return clientConn, ch
}

func TestHandshakeNoAuthSucceeds(t *testing.T) {
	cfg := &Config{Display: simulator.New(800, 600)}
	client, done := newTestPair(t, cfg)
	defer client.Close()

	version := make([]byte, 12)
	_, err := client.Read(version)
	require.NoError(t, err)
	assert.Equal(t, protocolVersion, string(version))

	_, err = client.Write([]byte(protocolVersion))
	require.NoError(t, err)

	secTypes := make([]byte, 2)
	_, err = client.Read(secTypes)
	require.NoError(t, err)
	assert.EqualValues(t, 1, secTypes[0])
	assert.EqualValues(t, securityTypeNone, secTypes[1])

	_, err = client.Write([]byte{securityTypeNone})
	require.NoError(t, err)

	result := make([]byte, 4)
	_, err = client.Read(result)
	require.NoError(t, err)
	assert.EqualValues(t, 0, binary.BigEndian.Uint32(result))

	_, err = client.Write([]byte{0}) // ClientInit, non-shared
	require.NoError(t, err)

	serverInit := make([]byte, 4+16+4+8)
	_, err = client.Read(serverInit)
	require.NoError(t, err)
	assert.EqualValues(t, 800, binary.BigEndian.Uint16(serverInit[0:2]))
	assert.EqualValues(t, 600, binary.BigEndian.Uint16(serverInit[2:4]))
	assert.Equal(t, "SpifyRFB", string(serverInit[24:32]))

	client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not exit after client close")
	}
}

func performHandshake(t *testing.T, client net.Conn) {
	t.Helper()
	version := make([]byte, 12)
	_, err := client.Read(version)
	require.NoError(t, err)
	_, err = client.Write([]byte(protocolVersion))
	require.NoError(t, err)

	secTypes := make([]byte, 2)
	_, err = client.Read(secTypes)
	require.NoError(t, err)
	_, err = client.Write([]byte{secTypes[1]})
	require.NoError(t, err)

	result := make([]byte, 4)
	_, err = client.Read(result)
	require.NoError(t, err)

	_, err = client.Write([]byte{1})
	require.NoError(t, err)

	serverInit := make([]byte, 4+16+4+8)
	_, err = client.Read(serverInit)
	require.NoError(t, err)
}

func TestFramebufferUpdateRequestReturnsZRLERectangle(t *testing.T) {
	cfg := &Config{Display: simulator.New(64, 64)}
	client, done := newTestPair(t, cfg)
	defer client.Close()
	performHandshake(t, client)

	// SetEncodings: only Raw advertised. The core must still reply with
	// ZRLE; the advertised list is read and discarded, never consulted.
	setEncodings := []byte{2, 0, 0, 1}
	var rawID [4]byte
	binary.BigEndian.PutUint32(rawID[:], 0)
	setEncodings = append(setEncodings, rawID[:]...)
	_, err := client.Write(setEncodings)
	require.NoError(t, err)

	fbur := make([]byte, 10)
	fbur[0] = 3 // FramebufferUpdateRequest
	fbur[1] = 0 // non-incremental
	binary.BigEndian.PutUint16(fbur[2:4], 0)
	binary.BigEndian.PutUint16(fbur[4:6], 0)
	binary.BigEndian.PutUint16(fbur[6:8], 16)
	binary.BigEndian.PutUint16(fbur[8:10], 16)
	_, err = client.Write(fbur)
	require.NoError(t, err)

	header := make([]byte, 4+12)
	_, err = readFullClient(client, header)
	require.NoError(t, err)
	assert.EqualValues(t, msgFramebufferUpdate, header[0])
	assert.EqualValues(t, 1, binary.BigEndian.Uint16(header[2:4]))
	assert.EqualValues(t, 16, binary.BigEndian.Uint16(header[8:10]))
	assert.EqualValues(t, 16, binary.BigEndian.Uint16(header[10:12]))
	assert.EqualValues(t, 16, int32(binary.BigEndian.Uint32(header[12:16])))

	client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not exit after client close")
	}
}

func TestSetPixelFormatAcknowledgesWithFramebufferUpdate(t *testing.T) {
	cfg := &Config{Display: simulator.New(32, 32)}
	client, done := newTestPair(t, cfg)
	defer client.Close()
	performHandshake(t, client)

	setPixelFormat := make([]byte, 1+3+16)
	setPixelFormat[0] = msgSetPixelFormat
	rfbtypes.DefaultPixelFormat.Marshal(setPixelFormat[4:20])
	_, err := client.Write(setPixelFormat)
	require.NoError(t, err)

	header := make([]byte, 4+12)
	_, err = readFullClient(client, header)
	require.NoError(t, err)
	assert.EqualValues(t, msgFramebufferUpdate, header[0])
	assert.EqualValues(t, 1, binary.BigEndian.Uint16(header[2:4]))
	assert.EqualValues(t, 32, binary.BigEndian.Uint16(header[8:10]))
	assert.EqualValues(t, 32, binary.BigEndian.Uint16(header[10:12]))

	client.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not exit after client close")
	}
}

func TestSecurityHandshakeWrongChoiceWritesReason(t *testing.T) {
	cfg := &Config{Display: simulator.New(32, 32), Password: "password"}
	client, done := newTestPair(t, cfg)
	defer client.Close()

	version := make([]byte, 12)
	_, err := client.Read(version)
	require.NoError(t, err)
	_, err = client.Write([]byte(protocolVersion))
	require.NoError(t, err)

	secTypes := make([]byte, 2)
	_, err = client.Read(secTypes)
	require.NoError(t, err)
	assert.EqualValues(t, securityTypeVNCAuth, secTypes[1])

	_, err = client.Write([]byte{securityTypeNone}) // wrong choice
	require.NoError(t, err)

	result := make([]byte, 4)
	_, err = readFullClient(client, result)
	require.NoError(t, err)
	assert.EqualValues(t, securityResultFailed, binary.BigEndian.Uint32(result))

	reasonLen := make([]byte, 4)
	_, err = readFullClient(client, reasonLen)
	require.NoError(t, err)
	assert.Greater(t, binary.BigEndian.Uint32(reasonLen), uint32(0))

	// The result, length and reason are flushed in one write, which a
	// net.Pipe only completes once every byte has been read.
	reason := make([]byte, binary.BigEndian.Uint32(reasonLen))
	_, err = readFullClient(client, reason)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session did not exit after client misbehaves")
	}
}

func readFullClient(c net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := c.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
