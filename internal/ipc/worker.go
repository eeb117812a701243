package ipc

import (
	"fmt"
	"net"

	"github.com/golang/glog"
)

// WorkerClient is the worker side of the IPC link: it dials the daemon,
// announces itself with a Hello frame, answers the daemon's liveness
// pings, and forwards IP-update notifications the caller enqueues.
type WorkerClient struct {
	conn net.Conn
	pump *Pump
}

// Dial connects to the daemon at addr and sends the initial Hello
// frame carrying pid and the worker's own listen address.
func Dial(addr string, pid uint32, selfAddr string) (*WorkerClient, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("ipc: dial daemon at %s: %w", addr, err)
	}

	if err := WriteFrame(conn, EncodeHello(pid, selfAddr)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ipc: send hello: %w", err)
	}

	return &WorkerClient{conn: conn, pump: NewPump(conn, WorkerReadTimeout)}, nil
}

// NotifyIPUpdate enqueues an IPUpdate frame to be sent to the daemon the
// next time the pump drains its queue.
func (c *WorkerClient) NotifyIPUpdate(pid uint32, scheme, addr string) {
	c.pump.Enqueue(EncodeIPUpdate(pid, scheme, addr))
}

// Run drives the client pump until the daemon disconnects or a protocol
// error occurs, replying to every Ping with a Pong and ignoring
// IPUpdate/Hello events that are only meaningful on the daemon side.
// It returns nil when stop is closed, and an error for which
// IsDaemonDisconnect reports true when the daemon sends a Disconnect
// frame; any other failure, including the daemon closing the socket,
// is returned as is.
func (c *WorkerClient) Run(stop <-chan struct{}) error {
	defer c.conn.Close()

	return c.pump.Run(stop, func(ev Event) error {
		switch ev.Kind {
		case EventPing:
			c.pump.Enqueue(PongFrame)
		case EventDisconnect:
			glog.V(1).Infof("ipc: daemon requested disconnect")
			return errDaemonDisconnected
		}
		return nil
	})
}

// errDaemonDisconnected is a sentinel the worker's main loop checks for
// to distinguish an orderly daemon-initiated shutdown (exit 0) from any
// other pump failure (exit non-zero).
var errDaemonDisconnected = fmt.Errorf("ipc: daemon disconnected")

// IsDaemonDisconnect reports whether err is the orderly-disconnect
// sentinel Run returns.
func IsDaemonDisconnect(err error) bool {
	return err == errDaemonDisconnected
}
