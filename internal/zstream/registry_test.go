package zstream

import (
	"bytes"
	"compress/zlib"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeflateFramesInflateInOrderThroughOneReader(t *testing.T) {
	r := NewRegistry()

	a, err := r.Deflate(KeyZlib, []byte("hello world"))
	require.NoError(t, err)

	b, err := r.Deflate(KeyZlib, []byte("second rectangle"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	// Each flushed frame concatenated together inflates, via a single
	// reader, back to the original plaintext stream in order. The stream
	// is sync-flushed, never closed, so the reader is given exactly the
	// expected byte count rather than read to EOF.
	want := "hello worldsecond rectangle"
	combined := append(append([]byte{}, a...), b...)
	zr, err := zlib.NewReader(bytes.NewReader(combined))
	require.NoError(t, err)
	out := make([]byte, len(want))
	_, err = io.ReadFull(zr, out)
	require.NoError(t, err)
	assert.Equal(t, want, string(out))
}

func TestDeflateKeepsZlibAndZRLEStreamsIndependent(t *testing.T) {
	r := NewRegistry()

	zlibFrame, err := r.Deflate(KeyZlib, []byte("same payload"))
	require.NoError(t, err)

	zrleFrame, err := r.Deflate(KeyZRLE, []byte("same payload"))
	require.NoError(t, err)

	// Two freshly created streams compressing identical bytes produce
	// identical output; this assertion would catch the streams
	// accidentally sharing state.
	assert.Equal(t, zlibFrame, zrleFrame)
}

func TestDeflateAfterPriorFailureStaysFailed(t *testing.T) {
	r := NewRegistry()
	r.streams[KeyZlib] = &stream{buf: new(bytes.Buffer), bad: true}

	_, err := r.Deflate(KeyZlib, []byte("x"))
	assert.Error(t, err)
}

func TestCloseResetsRegistry(t *testing.T) {
	r := NewRegistry()
	_, err := r.Deflate(KeyZlib, []byte("x"))
	require.NoError(t, err)
	r.Close()
	assert.Empty(t, r.streams)
}
