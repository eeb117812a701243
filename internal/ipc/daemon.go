package ipc

import (
	"fmt"
	"net"
	"sync"

	"github.com/golang/glog"
)

// Session records what the daemon knows about one connected worker,
// matching spec.md §3's DaemonSession: the RFB listen address and the
// WebSocket bridge address are tracked independently, since a worker
// announces them in two separate messages (HELLO, then IP_UPDATE) and
// neither should erase the other.
type Session struct {
	PID      uint32
	Ip       string
	WsAddr   string
	WsSecure bool
}

// SessionMap is the daemon's view of all connected workers, keyed by
// PID. It is safe for concurrent use.
type SessionMap struct {
	mu       sync.RWMutex
	sessions map[uint32]Session
}

// NewSessionMap returns an empty SessionMap.
func NewSessionMap() *SessionMap {
	return &SessionMap{sessions: make(map[uint32]Session)}
}

// putHello records a worker's initial RFB listen address, creating its
// session entry if this is the first message seen for pid.
func (m *SessionMap) putHello(pid uint32, ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[pid]
	s.PID = pid
	s.Ip = ip
	m.sessions[pid] = s
}

// putIPUpdate records a worker's WebSocket bridge address without
// disturbing whatever RFB listen address putHello already recorded.
func (m *SessionMap) putIPUpdate(pid uint32, scheme, addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[pid]
	s.PID = pid
	s.WsAddr = addr
	s.WsSecure = scheme == "wss"
	m.sessions[pid] = s
}

func (m *SessionMap) remove(pid uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, pid)
}

// List returns a snapshot of all known sessions, used by
// internal/statusapi's /api/sessions route.
func (m *SessionMap) List() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Daemon accepts IPC connections from worker processes and maintains
// the shared SessionMap every handler goroutine updates through typed
// events, rather than through the original's global callback registry.
type Daemon struct {
	Sessions *SessionMap
}

// NewDaemon returns a Daemon with a fresh SessionMap.
func NewDaemon() *Daemon {
	return &Daemon{Sessions: NewSessionMap()}
}

// Serve accepts worker connections on ln until it is closed.
func (d *Daemon) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("ipc: daemon accept: %w", err)
		}
		go d.handleWorker(conn)
	}
}

func (d *Daemon) handleWorker(conn net.Conn) {
	defer conn.Close()

	var pid uint32
	pump := NewPump(conn, DaemonReadTimeout)
	stop := make(chan struct{})

	err := pump.Run(stop, func(ev Event) error {
		switch ev.Kind {
		case EventHello:
			pid = ev.PID
			d.Sessions.putHello(ev.PID, ev.Addr)
			glog.V(1).Infof("ipc: worker %d said hello from %s", ev.PID, ev.Addr)
		case EventIPUpdate:
			d.Sessions.putIPUpdate(ev.PID, ev.Scheme, ev.Addr)
			glog.V(1).Infof("ipc: worker %d updated address to %s://%s", ev.PID, ev.Scheme, ev.Addr)
		case EventDisconnect:
			d.Sessions.remove(ev.PID)
			close(stop)
		case EventPong:
			// liveness acknowledged, nothing to do
		}
		return nil
	})

	if pid != 0 {
		d.Sessions.remove(pid)
	}
	if err != nil {
		glog.Warningf("ipc: worker connection %s ended: %v", conn.RemoteAddr(), err)
	}
}
