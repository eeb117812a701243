package wsbridge

import (
	"bufio"
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/golang/glog"
)

// Config configures a Bridge.
type Config struct {
	// RFBAddr is the local RFB listener a WebSocket upgrade is proxied
	// to, e.g. "127.0.0.1:5900".
	RFBAddr string

	// TLS, when non-nil, wraps accepted connections (wss:// instead of
	// ws://). Loaded by the caller from ./ssl/cert.pem and ./ssl/key.pem.
	TLS *tls.Config

	// Fallback serves any request that is not a WebSocket upgrade, on
	// the same listener — normally internal/statusapi's mux.
	Fallback http.Handler
}

// Bridge accepts either plain HTTP requests (served via Fallback) or
// WebSocket upgrades (proxied to RFBAddr) on a single listener.
type Bridge struct {
	cfg Config
}

// New returns a Bridge configured by cfg.
func New(cfg Config) *Bridge {
	return &Bridge{cfg: cfg}
}

// Serve accepts connections on ln until it is closed.
func (b *Bridge) Serve(ln net.Listener) error {
	if b.cfg.TLS != nil {
		ln = tls.NewListener(ln, b.cfg.TLS)
	}
	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("wsbridge: accept: %w", err)
		}
		go b.handle(conn)
	}
}

func (b *Bridge) handle(conn net.Conn) {
	bufr := bufio.NewReader(conn)
	req, err := readRequest(bufr)
	if err != nil {
		glog.V(1).Infof("wsbridge: %s: bad request: %v", conn.RemoteAddr(), err)
		conn.Close()
		return
	}

	if req.isUpgrade() {
		b.serveUpgrade(conn, req)
		return
	}

	b.serveFallback(conn, req)
}

// serveUpgrade completes the WebSocket handshake, dials the local RFB
// listener, and pumps bytes bidirectionally until either side closes.
func (b *Bridge) serveUpgrade(conn net.Conn, req *request) {
	defer conn.Close()

	if _, err := io.WriteString(conn, upgradeResponse(req.Headers["sec-websocket-key"])); err != nil {
		glog.Warningf("wsbridge: %s: write upgrade response: %v", conn.RemoteAddr(), err)
		return
	}

	rfbConn, err := net.Dial("tcp", b.cfg.RFBAddr)
	if err != nil {
		glog.Warningf("wsbridge: %s: dial rfb listener: %v", conn.RemoteAddr(), err)
		_ = WriteClose(conn, CloseInternalError)
		return
	}
	defer rfbConn.Close()

	glog.V(1).Infof("wsbridge: %s: bridged to %s", conn.RemoteAddr(), b.cfg.RFBAddr)

	errCh := make(chan error, 2)
	go pumpWSToTCP(conn, rfbConn, errCh)
	go pumpTCPToWS(rfbConn, conn, errCh)
	<-errCh
}

// pumpWSToTCP reads WebSocket binary frames from ws and writes their
// payload bytes to tcp, until a Close frame, an error, or an
// unsupported opcode is seen. A Close frame half-closes tcp's write
// side and sends a CloseNormal reply on ws before the pump exits.
func pumpWSToTCP(ws net.Conn, tcp net.Conn, errCh chan<- error) {
	r := bufio.NewReader(ws)
	for {
		frame, err := ReadFrame(r)
		if err != nil {
			if errors.Is(err, ErrUnmaskedFrame) {
				_ = WriteClose(ws, ClosePolicyViolation)
			}
			errCh <- err
			return
		}
		switch frame.Opcode {
		case OpBinary, OpText, OpContinuation:
			if _, err := tcp.Write(frame.Payload); err != nil {
				errCh <- err
				return
			}
		case OpClose:
			if tcpConn, ok := tcp.(*net.TCPConn); ok {
				_ = tcpConn.CloseWrite()
			}
			_ = WriteClose(ws, CloseNormal)
			errCh <- nil
			return
		case OpPing:
			_ = WriteFrame(ws, OpPong, frame.Payload)
		case OpPong:
			// no-op keepalive acknowledgment
		default:
			_ = WriteClose(ws, ClosePolicyViolation)
			errCh <- fmt.Errorf("wsbridge: unsupported opcode %d", frame.Opcode)
			return
		}
	}
}

// pumpTCPToWS reads raw bytes from tcp and forwards each chunk as one
// binary WebSocket frame to ws.
func pumpTCPToWS(tcp net.Conn, ws net.Conn, errCh chan<- error) {
	buf := make([]byte, 32*1024)
	for {
		n, err := tcp.Read(buf)
		if n > 0 {
			if writeErr := WriteFrame(ws, OpBinary, buf[:n]); writeErr != nil {
				errCh <- writeErr
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

// serveFallback adapts the already-parsed request into an *http.Request
// and drives b.cfg.Fallback, writing its response directly to conn. The
// connection is always closed afterward; keep-alive is not supported,
// matching the one-shot style of every other connection this server
// accepts.
func (b *Bridge) serveFallback(conn net.Conn, req *request) {
	defer conn.Close()

	if b.cfg.Fallback == nil {
		io.WriteString(conn, "HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n")
		return
	}

	httpReq, err := http.NewRequest(req.Method, req.Path, nil)
	if err != nil {
		io.WriteString(conn, "HTTP/1.1 400 Bad Request\r\nContent-Length: 0\r\n\r\n")
		return
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.RemoteAddr = conn.RemoteAddr().String()

	rw := newRawResponseWriter()
	b.cfg.Fallback.ServeHTTP(rw, httpReq)
	rw.WriteTo(conn)
}

// rawResponseWriter buffers an http.Handler's response so it can be
// written to a raw net.Conn after the hand-rolled request parsing in
// this package, since net/http.Server cannot be handed a connection it
// did not accept itself.
type rawResponseWriter struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func newRawResponseWriter() *rawResponseWriter {
	return &rawResponseWriter{status: http.StatusOK, header: make(http.Header)}
}

func (w *rawResponseWriter) Header() http.Header         { return w.header }
func (w *rawResponseWriter) Write(p []byte) (int, error) { return w.body.Write(p) }
func (w *rawResponseWriter) WriteHeader(status int)      { w.status = status }

func (w *rawResponseWriter) WriteTo(conn net.Conn) {
	fmt.Fprintf(conn, "HTTP/1.1 %d %s\r\n", w.status, http.StatusText(w.status))
	w.header.Set("Content-Length", fmt.Sprintf("%d", w.body.Len()))
	w.header.Set("Connection", "close")
	w.header.Write(conn)
	io.WriteString(conn, "\r\n")
	conn.Write(w.body.Bytes())
}
