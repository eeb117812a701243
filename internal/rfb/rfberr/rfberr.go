// Package rfberr names the error conditions the protocol engine can hit,
// from the version handshake onward, so callers can tell
// a client protocol violation apart from a transport failure or an
// internal encoder fault.
package rfberr

import "errors"

var (
	// ErrUnsupportedVersion is returned when the client's ProtocolVersion
	// message does not match the exact 12-byte string the server sent.
	ErrUnsupportedVersion = errors.New("rfb: unsupported protocol version")

	// ErrNoSecurityType is returned when a client selects a security type
	// the server did not advertise.
	ErrNoSecurityType = errors.New("rfb: client selected unadvertised security type")

	// ErrAuthFailed is returned when VNC-DES challenge/response
	// authentication fails.
	ErrAuthFailed = errors.New("rfb: authentication failed")

	// ErrMalformedMessage is returned when a client-to-server message
	// cannot be parsed, or a fixed-size payload read comes up short.
	ErrMalformedMessage = errors.New("rfb: malformed client message")

	// ErrUnknownMessageType is returned when a client sends a message-type
	// byte the engine does not recognize.
	ErrUnknownMessageType = errors.New("rfb: unknown client message type")

	// ErrDeflateFatal is returned when a zlib or ZRLE stream's deflate
	// call fails. The original implementation falls back to emitting the
	// uncompressed payload for that one update and leaves the stream
	// desynchronized for later rectangles; this implementation instead
	// treats the failure as fatal to the session, since a desynchronized
	// per-session deflate context cannot be recovered without the peer
	// also resetting its corresponding inflate context.
	ErrDeflateFatal = errors.New("rfb: deflate stream failed, session must close")

	// ErrSessionClosed names an operation attempted after a session's
	// connection has already been torn down. No function in this module
	// returns it.
	ErrSessionClosed = errors.New("rfb: session closed")
)
