package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"
)

// DaemonReadTimeout and WorkerReadTimeout are the short read deadlines
// each side races against its pending-writes queue, matching the
// daemon's 50ms and the worker's 100ms polling intervals in the
// original implementation.
const (
	DaemonReadTimeout = 50 * time.Millisecond
	WorkerReadTimeout = 100 * time.Millisecond
)

// Pump drives one IPC connection: it alternates between a short,
// timing-out read attempt and draining any frames queued via Enqueue,
// so neither direction can starve the other without requiring a second
// goroutine per connection.
type Pump struct {
	conn        net.Conn
	readTimeout time.Duration

	mu      sync.Mutex
	pending []Frame
}

// NewPump returns a Pump for conn using readTimeout as its read-vs-drain
// polling interval.
func NewPump(conn net.Conn, readTimeout time.Duration) *Pump {
	return &Pump{conn: conn, readTimeout: readTimeout}
}

// Enqueue schedules f to be written the next time Run's loop drains
// pending writes.
func (p *Pump) Enqueue(f Frame) {
	p.mu.Lock()
	p.pending = append(p.pending, f)
	p.mu.Unlock()
}

// Run loops until stop is closed or the connection fails: each
// iteration sets a short read deadline, attempts to read one frame, and
// on timeout instead drains and writes any pending frames. handle is
// called with every successfully decoded event; its error, if any,
// stops the pump.
func (p *Pump) Run(stop <-chan struct{}, handle func(Event) error) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if err := p.conn.SetReadDeadline(time.Now().Add(p.readTimeout)); err != nil {
			return fmt.Errorf("ipc: set read deadline: %w", err)
		}

		frame, err := ReadFrame(p.conn)
		if err != nil {
			if isTimeout(err) {
				if drainErr := p.drain(); drainErr != nil {
					return drainErr
				}
				continue
			}
			return err
		}

		event, err := DecodeEvent(frame)
		if err != nil {
			return err
		}
		if err := handle(event); err != nil {
			return err
		}
	}
}

func (p *Pump) drain() error {
	p.mu.Lock()
	batch := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, f := range batch {
		if err := WriteFrame(p.conn, f); err != nil {
			return fmt.Errorf("ipc: write pending frame: %w", err)
		}
	}
	return nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}
