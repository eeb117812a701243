// Package rfb implements the RFB (Remote Framebuffer) protocol server:
// version and security handshakes, ClientInit/ServerInit, and the
// message dispatch loop that serves framebuffer updates and injects
// pointer/keyboard input.
package rfb

import (
	"fmt"
	"net"

	"github.com/golang/glog"
)

// Server accepts RFB connections and drives each to its own Session.
type Server struct {
	config *Config
}

// NewServer returns a Server bound to cfg. cfg.Display must be non-nil.
func NewServer(cfg *Config) *Server {
	return &Server{config: cfg}
}

// Serve accepts connections on ln until it is closed, running each
// session in its own goroutine. A single connection's protocol error
// never brings down the listener.
func (srv *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("rfb: accept: %w", err)
		}
		go srv.handle(conn)
	}
}

func (srv *Server) handle(conn net.Conn) {
	session := newSession(conn, srv.config)
	if err := session.Serve(); err != nil {
		glog.Warningf("rfb: session %s ended: %v", session.ID, err)
	}
}
