package rfb

import (
	"encoding/binary"
	"fmt"

	"github.com/candiedoperation/spifyrfb/internal/rfb/rfberr"
	"github.com/candiedoperation/spifyrfb/internal/rfbauth"
)

// handshake runs the four-stage connection setup: protocol version,
// security type negotiation and authentication, ClientInit, and
// ServerInit. It matches RFC 6143 section 7.1-7.3.
func (s *Session) handshake() error {
	if err := s.versionHandshake(); err != nil {
		return err
	}
	if err := s.securityHandshake(); err != nil {
		return err
	}
	if err := s.clientInit(); err != nil {
		return err
	}
	return s.serverInit()
}

func (s *Session) versionHandshake() error {
	if _, err := s.bufw.WriteString(protocolVersion); err != nil {
		return fmt.Errorf("rfb: write protocol version: %w", err)
	}
	if err := s.bufw.Flush(); err != nil {
		return err
	}

	client, err := s.readFull(12)
	if err != nil {
		return err
	}
	if string(client) != protocolVersion {
		_ = s.writeErrorString("unsupported protocol version")
		return fmt.Errorf("%w: got %q", rfberr.ErrUnsupportedVersion, client)
	}
	return nil
}

// writeErrorString writes the u32-length + UTF-8 reason string spec.md
// §4.E and §7 use for pre-handshake failures: a ProtocolVersionMismatch
// (in place of the normal 12-byte version echo) or, via
// writeSecurityResult, an AuthFailure following a non-zero
// SecurityResult.
func (s *Session) writeErrorString(reason string) error {
	msg := []byte(reason)
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(msg)))
	if _, err := s.bufw.Write(length[:]); err != nil {
		return err
	}
	if _, err := s.bufw.Write(msg); err != nil {
		return err
	}
	return s.bufw.Flush()
}

// securityHandshake advertises exactly one security type — None when no
// password is configured, VNC authentication otherwise — and runs it to
// completion, including the SecurityResult message.
func (s *Session) securityHandshake() error {
	secType := byte(securityTypeNone)
	if s.config.Password != "" {
		secType = securityTypeVNCAuth
	}

	if err := s.bufw.WriteByte(1); err != nil { // number-of-security-types
		return err
	}
	if err := s.bufw.WriteByte(secType); err != nil {
		return err
	}
	if err := s.bufw.Flush(); err != nil {
		return err
	}

	chosen, err := s.bufr.ReadByte()
	if err != nil {
		return fmt.Errorf("rfb: read chosen security type: %w", err)
	}
	if chosen != secType {
		_ = s.writeSecurityResult(false, "unsupported security type")
		return fmt.Errorf("%w: chose %d, offered %d", rfberr.ErrNoSecurityType, chosen, secType)
	}

	if secType == securityTypeVNCAuth {
		ok, err := s.runVNCAuth()
		if err != nil {
			return err
		}
		if !ok {
			_ = s.writeSecurityResult(false, "authentication failed")
			return rfberr.ErrAuthFailed
		}
	}

	return s.writeSecurityResult(true, "")
}

func (s *Session) runVNCAuth() (bool, error) {
	challenge, err := rfbauth.NewChallenge()
	if err != nil {
		return false, err
	}
	if _, err := s.bufw.Write(challenge); err != nil {
		return false, err
	}
	if err := s.bufw.Flush(); err != nil {
		return false, err
	}

	response, err := s.readFull(rfbauth.ChallengeSize)
	if err != nil {
		return false, err
	}

	return rfbauth.VerifyResponse(s.config.Password, challenge, response)
}

// writeSecurityResult writes the 4-byte SecurityResult. On failure, per
// spec.md §4.E, it is followed immediately by a u32-length + UTF-8
// reason string.
func (s *Session) writeSecurityResult(ok bool, reason string) error {
	result := uint32(securityResultOK)
	if !ok {
		result = securityResultFailed
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], result)
	if _, err := s.bufw.Write(buf[:]); err != nil {
		return err
	}
	if !ok {
		return s.writeErrorString(reason)
	}
	return s.bufw.Flush()
}

// clientInit reads the 1-byte ClientInit message (shared-flag), which
// this server does not act on: every session gets its own independent
// view of the shared display.
func (s *Session) clientInit() error {
	_, err := s.readFull(1)
	return err
}

func (s *Session) serverInit() error {
	geo := s.display.Geometry()

	buf := make([]byte, 4+16)
	binary.BigEndian.PutUint16(buf[0:2], geo.Width)
	binary.BigEndian.PutUint16(buf[2:4], geo.Height)
	s.pixelFormat.Marshal(buf[4:20])

	if _, err := s.bufw.Write(buf); err != nil {
		return err
	}

	name := []byte("SpifyRFB")
	var nameLen [4]byte
	binary.BigEndian.PutUint32(nameLen[:], uint32(len(name)))
	if _, err := s.bufw.Write(nameLen[:]); err != nil {
		return err
	}
	if _, err := s.bufw.Write(name); err != nil {
		return err
	}
	return s.bufw.Flush()
}
