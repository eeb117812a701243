package rfb

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/candiedoperation/spifyrfb/internal/display"
	"github.com/candiedoperation/spifyrfb/internal/encode"
	"github.com/candiedoperation/spifyrfb/internal/pixel"
	"github.com/candiedoperation/spifyrfb/internal/rfb/encodings"
	"github.com/candiedoperation/spifyrfb/internal/rfb/rfberr"
	"github.com/candiedoperation/spifyrfb/internal/rfb/rfbtypes"
	"github.com/candiedoperation/spifyrfb/internal/zstream"
)

// Session is one accepted RFB connection, from the version handshake
// through framebuffer-update serving until the client disconnects.
type Session struct {
	ID uuid.UUID

	conn    net.Conn
	bufr    *bufio.Reader
	bufw    *bufio.Writer
	display display.Provider
	config  *Config

	mu             sync.Mutex
	pixelFormat    rfbtypes.PixelFormat
	advertisedEncs []encodings.Type
	streams        *zstream.Registry
}

// Config carries the server-wide settings a session needs during its
// handshake and update pipeline.
type Config struct {
	// Password, when non-empty, requires VNC-DES authentication
	// (security type 2). When empty, security type 1 (None) is offered.
	Password string
	Display  display.Provider
}

func newSession(conn net.Conn, cfg *Config) *Session {
	return &Session{
		ID:          uuid.New(),
		conn:        conn,
		bufr:        bufio.NewReader(conn),
		bufw:        bufio.NewWriter(conn),
		display:     cfg.Display,
		config:      cfg,
		pixelFormat: rfbtypes.DefaultPixelFormat,
		streams:     zstream.NewRegistry(),
	}
}

// Serve drives one session to completion: handshake, then the message
// dispatch loop, until the connection closes or a protocol error
// occurs. It always closes conn before returning.
func (s *Session) Serve() error {
	defer s.conn.Close()
	defer s.streams.Close()

	if err := s.handshake(); err != nil {
		glog.Warningf("rfb: session %s handshake failed: %v", s.ID, err)
		return err
	}

	glog.V(1).Infof("rfb: session %s established, display %v", s.ID, s.display.Geometry())

	for {
		msgType, err := s.bufr.ReadByte()
		if err != nil {
			if err == io.EOF {
				glog.V(1).Infof("rfb: session %s closed by client", s.ID)
				return nil
			}
			return fmt.Errorf("rfb: read message type: %w", err)
		}

		if err := s.dispatch(msgType); err != nil {
			return err
		}
	}
}

func (s *Session) dispatch(msgType byte) error {
	switch msgType {
	case msgSetPixelFormat:
		return s.handleSetPixelFormat()
	case msgSetEncodings:
		return s.handleSetEncodings()
	case msgFramebufferUpdateRequest:
		return s.handleFramebufferUpdateRequest()
	case msgKeyEvent:
		return s.handleKeyEvent()
	case msgPointerEvent:
		return s.handlePointerEvent()
	case msgClientCutText:
		return s.handleClientCutText()
	default:
		return fmt.Errorf("%w: type %d", rfberr.ErrUnknownMessageType, msgType)
	}
}

func (s *Session) readFull(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.bufr, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", rfberr.ErrMalformedMessage, err)
	}
	return buf, nil
}

// handleSetPixelFormat reads the 19-byte payload (msg-type already
// consumed, padding(3), PixelFormat(16) = 19 remaining bytes). All
// padding bytes are read and discarded unconditionally, regardless of
// their value. Per spec.md §4.E's dispatch table, the new format is
// acknowledged with one full framebuffer update.
func (s *Session) handleSetPixelFormat() error {
	payload, err := s.readFull(19)
	if err != nil {
		return err
	}
	format := rfbtypes.UnmarshalPixelFormat(payload[3:19])

	s.mu.Lock()
	s.pixelFormat = format
	s.mu.Unlock()

	glog.V(2).Infof("rfb: session %s set pixel format: %+v", s.ID, format)

	geo := s.display.Geometry()
	full := rfbtypes.Rectangle{Width: geo.Width, Height: geo.Height}
	return s.sendFramebufferUpdate(full, false)
}

// handleSetEncodings reads the full declared encoding list even though
// only Raw/Hextile/Zlib/ZRLE are ever produced, per the requirement that
// the wire payload always be fully drained.
func (s *Session) handleSetEncodings() error {
	header, err := s.readFull(3)
	if err != nil {
		return err
	}
	count := binary.BigEndian.Uint16(header[1:3])

	encs := make([]encodings.Type, 0, count)
	for i := uint16(0); i < count; i++ {
		raw, err := s.readFull(4)
		if err != nil {
			return err
		}
		encs = append(encs, encodings.Type(int32(binary.BigEndian.Uint32(raw))))
	}

	s.mu.Lock()
	s.advertisedEncs = encs
	s.mu.Unlock()

	glog.V(2).Infof("rfb: session %s advertised %d encodings", s.ID, count)
	return nil
}

func (s *Session) handleFramebufferUpdateRequest() error {
	payload, err := s.readFull(9)
	if err != nil {
		return err
	}
	incremental := payload[0] != 0
	rect := rfbtypes.Rectangle{
		X:      binary.BigEndian.Uint16(payload[1:3]),
		Y:      binary.BigEndian.Uint16(payload[3:5]),
		Width:  binary.BigEndian.Uint16(payload[5:7]),
		Height: binary.BigEndian.Uint16(payload[7:9]),
	}

	return s.sendFramebufferUpdate(rect, incremental)
}

func (s *Session) handlePointerEvent() error {
	payload, err := s.readFull(5)
	if err != nil {
		return err
	}
	buttons := payload[0]
	x := binary.BigEndian.Uint16(payload[1:3])
	y := binary.BigEndian.Uint16(payload[3:5])

	return s.display.InjectPointer(x, y, display.ButtonMask(buttons))
}

func (s *Session) handleKeyEvent() error {
	payload, err := s.readFull(7)
	if err != nil {
		return err
	}
	down := payload[0] != 0
	keysym := binary.BigEndian.Uint32(payload[3:7])

	return s.display.InjectKey(keysym, down)
}

func (s *Session) handleClientCutText() error {
	header, err := s.readFull(7)
	if err != nil {
		return err
	}
	length := binary.BigEndian.Uint32(header[3:7])
	if _, err := s.readFull(int(length)); err != nil {
		return err
	}
	// Clipboard injection into the host desktop is not implemented; the
	// text is drained from the wire and discarded.
	return nil
}

// sendFramebufferUpdate captures rect from the display, encodes it as
// ZRLE regardless of what the client advertised via SetEncodings, and
// writes one FramebufferUpdate message containing exactly one
// rectangle.
func (s *Session) sendFramebufferUpdate(rect rfbtypes.Rectangle, _ bool) error {
	geo := s.display.Geometry()
	rect = rect.Intersect(geo.Width, geo.Height)
	if rect.Empty() {
		return nil
	}

	raw, err := s.display.Capture(rect)
	if err != nil {
		return fmt.Errorf("rfb: capture: %w", err)
	}

	s.mu.Lock()
	format := s.pixelFormat
	s.mu.Unlock()

	enc, _ := encode.Select(encodings.ZRLE)

	var payload []byte
	if enc.Type() == encodings.ZRLE && format.IsCPixelEligible() {
		payload, err = enc.Encode(pixel.CompactPixels(raw, format), rect, format, s.streams)
	} else {
		payload, err = enc.Encode(pixel.Transcode(raw, format), rect, format, s.streams)
	}
	if err != nil {
		return fmt.Errorf("rfb: encode: %w", err)
	}

	header := make([]byte, 4)
	header[0] = msgFramebufferUpdate
	header[1] = 0
	binary.BigEndian.PutUint16(header[2:4], 1) // number-of-rectangles

	rectHeader := make([]byte, 12)
	binary.BigEndian.PutUint16(rectHeader[0:2], rect.X)
	binary.BigEndian.PutUint16(rectHeader[2:4], rect.Y)
	binary.BigEndian.PutUint16(rectHeader[4:6], rect.Width)
	binary.BigEndian.PutUint16(rectHeader[6:8], rect.Height)
	binary.BigEndian.PutUint32(rectHeader[8:12], uint32(int32(enc.Type())))

	if _, err := s.bufw.Write(header); err != nil {
		return err
	}
	if _, err := s.bufw.Write(rectHeader); err != nil {
		return err
	}
	if _, err := s.bufw.Write(payload); err != nil {
		return err
	}
	return s.bufw.Flush()
}

