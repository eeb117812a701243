package ipc

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameMarshalRoundTrips(t *testing.T) {
	f := EncodeHello(42, "10.0.0.5:5900")
	buf, err := f.Marshal()
	require.NoError(t, err)

	got, err := ReadFrame(bytes.NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, f.Opcode, got.Opcode)
	assert.Equal(t, f.Payload, got.Payload)
}

func TestDecodeEventHello(t *testing.T) {
	f := EncodeHello(7, "127.0.0.1:9000")
	ev, err := DecodeEvent(f)
	require.NoError(t, err)
	assert.Equal(t, EventHello, ev.Kind)
	assert.EqualValues(t, 7, ev.PID)
	assert.Equal(t, "127.0.0.1:9000", ev.Addr)
}

func TestDecodeEventIPUpdate(t *testing.T) {
	f := EncodeIPUpdate(3, "wss", "example.com:443")
	ev, err := DecodeEvent(f)
	require.NoError(t, err)
	assert.Equal(t, EventIPUpdate, ev.Kind)
	assert.Equal(t, "wss", ev.Scheme)
	assert.Equal(t, "example.com:443", ev.Addr)
}

func TestDecodeEventDisconnect(t *testing.T) {
	f := EncodeDisconnect(99)
	ev, err := DecodeEvent(f)
	require.NoError(t, err)
	assert.Equal(t, EventDisconnect, ev.Kind)
	assert.EqualValues(t, 99, ev.PID)
}

func TestHelloThenIPUpdateWireBytesMatchOpcodeTable(t *testing.T) {
	hello, err := EncodeHello(4242, "127.0.0.1:51000").Marshal()
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), hello[0])
	assert.Equal(t, "4242\r\n127.0.0.1:51000", string(hello[2:]))

	ipUpdate, err := EncodeIPUpdate(4242, "wss", "127.0.0.1:51001").Marshal()
	require.NoError(t, err)
	assert.Equal(t, byte(0x03), ipUpdate[0])
	assert.Equal(t, "4242\r\nwss\r\n127.0.0.1:51001", string(ipUpdate[2:]))
}

func TestMarshalRejectsOversizedPayload(t *testing.T) {
	f := Frame{Opcode: OpHello, Payload: make([]byte, 256)}
	_, err := f.Marshal()
	assert.Error(t, err)
}

func TestPumpDrainsPendingFramesOnReadTimeout(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	pump := NewPump(serverConn, 10*time.Millisecond)
	pump.Enqueue(PingFrame)

	stop := make(chan struct{})
	go func() {
		_ = pump.Run(stop, func(Event) error { return nil })
	}()

	frame, err := ReadFrame(clientConn)
	require.NoError(t, err)
	assert.Equal(t, OpPing, frame.Opcode)
	close(stop)
}

func TestWorkerClientRespondsPongToPing(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()

	client := &WorkerClient{conn: clientConn, pump: NewPump(clientConn, 10*time.Millisecond)}
	stop := make(chan struct{})
	go func() {
		_ = client.Run(stop)
	}()

	require.NoError(t, WriteFrame(serverConn, Frame{Opcode: OpPing}))

	frame, err := ReadFrame(serverConn)
	require.NoError(t, err)
	assert.Equal(t, OpPong, frame.Opcode)
	close(stop)
}

