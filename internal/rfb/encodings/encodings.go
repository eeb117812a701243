// Package encodings names the RFB encoding-type and pseudo-encoding
// identifiers used on the wire.
// https://tools.ietf.org/html/rfc6143#section-7.7
package encodings

// Type is an RFB encoding-type identifier, as sent in SetEncodings and in
// each FramebufferUpdate rectangle header.
type Type int32

const (
	Raw      Type = 0
	CopyRect Type = 1
	RRE      Type = 2
	CoRRE    Type = 4
	Hextile  Type = 5
	Zlib     Type = 6
	Tight    Type = 7
	ZlibHex  Type = 8
	TRLE     Type = 15
	ZRLE     Type = 16

	// Pseudo-encodings (negative IDs). Recognized in SetEncodings lists but
	// never advertised or required by the core; kept for completeness when
	// draining a client's encoding list (see spec's SetEncodings note).
	CursorPseudo      Type = -239
	DesktopSizePseudo Type = -223
)

// Produced reports whether the core actually emits rectangles of this type.
// CopyRect/RRE/Tight/TRLE are recognized (a client may list them) but are
// never produced; the core falls back to Raw/Hextile/Zlib/ZRLE regardless of
// what a client claims to support.
func Produced(t Type) bool {
	switch t {
	case Raw, Hextile, Zlib, ZRLE:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	switch t {
	case Raw:
		return "Raw"
	case CopyRect:
		return "CopyRect"
	case RRE:
		return "RRE"
	case CoRRE:
		return "CoRRE"
	case Hextile:
		return "Hextile"
	case Zlib:
		return "Zlib"
	case Tight:
		return "Tight"
	case ZlibHex:
		return "ZlibHex"
	case TRLE:
		return "TRLE"
	case ZRLE:
		return "ZRLE"
	case CursorPseudo:
		return "CursorPseudo"
	case DesktopSizePseudo:
		return "DesktopSizePseudo"
	default:
		return "Unknown"
	}
}
