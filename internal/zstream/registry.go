// Package zstream manages per-session, per-encoding persistent deflate
// contexts. Zlib and ZRLE rectangles are encoded against a single
// continuous deflate stream for the lifetime of a session, flushed with
// Z_SYNC_FLUSH after each rectangle so the client's matching inflate
// context stays synchronized without the stream ever being closed.
package zstream

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"sync"
)

// Key identifies one persistent deflate stream within a session: one
// slot for the Zlib encoding and one for ZRLE, since each maintains an
// independent compression history.
type Key int

const (
	KeyZlib Key = iota
	KeyZRLE
)

// Registry owns the persistent deflate writers for a single session.
// Callers obtain exclusive access to the requested stream via Deflate;
// the registry serializes concurrent callers rather than handing out
// the *zlib.Writer directly, since an update-pipeline rectangle and a
// session teardown could otherwise race on the same stream.
type Registry struct {
	mu      sync.Mutex
	streams map[Key]*stream
}

type stream struct {
	buf *bytes.Buffer
	w   *zlib.Writer
	bad bool
}

// NewRegistry returns an empty registry with no streams yet created.
// Streams are created lazily, level 5 matching the compression level
// the original encoder uses, on first use per key.
func NewRegistry() *Registry {
	return &Registry{streams: make(map[Key]*stream)}
}

// Deflate compresses plaintext against the persistent stream for key,
// flushing with Z_SYNC_FLUSH (zlib.Writer.Flush) so an inflater that has
// consumed every earlier output of this stream can decode all of this
// one without further input, while the compression dictionary carries
// forward to the next call. A stream that has
// previously failed stays failed: the first error on a key poisons it
// for the rest of the session, matching the fatal-on-failure policy in
// rfberr.ErrDeflateFatal.
func (r *Registry) Deflate(key Key, plaintext []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.streams[key]
	if !ok {
		buf := new(bytes.Buffer)
		w, err := zlib.NewWriterLevel(buf, 5)
		if err != nil {
			return nil, fmt.Errorf("zstream: create writer: %w", err)
		}
		s = &stream{buf: buf, w: w}
		r.streams[key] = s
	}
	if s.bad {
		return nil, fmt.Errorf("zstream: stream %d previously failed", key)
	}

	s.buf.Reset()
	if _, err := s.w.Write(plaintext); err != nil {
		s.bad = true
		return nil, fmt.Errorf("zstream: write: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		s.bad = true
		return nil, fmt.Errorf("zstream: flush: %w", err)
	}

	out := make([]byte, s.buf.Len())
	copy(out, s.buf.Bytes())
	return out, nil
}

// Close closes the underlying writers and empties the registry. The final
// block each writer emits on close goes only into the registry's own
// buffer and is discarded; nothing more is sent to the peer.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.streams {
		_ = s.w.Close()
	}
	r.streams = make(map[Key]*stream)
}
