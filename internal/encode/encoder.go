// Package encode implements the tile-based rectangle encoders the
// framebuffer-update pipeline chooses between: Raw, Hextile, Zlib and
// ZRLE. Each encoder consumes already pixel-transcoded bytes (see
// internal/pixel) for one rectangle and returns the bytes that follow
// the rectangle header on the wire.
package encode

import (
	"github.com/candiedoperation/spifyrfb/internal/rfb/encodings"
	"github.com/candiedoperation/spifyrfb/internal/rfb/rfbtypes"
	"github.com/candiedoperation/spifyrfb/internal/zstream"
)

// Encoder produces the encoding-specific payload for one rectangle.
// pixels holds exactly rect.Width*rect.Height pixels already transcoded
// into format; streams is the session's persistent deflate registry,
// used by Zlib and ZRLE and ignored by Raw and Hextile.
type Encoder interface {
	Type() encodings.Type
	Encode(pixels []byte, rect rfbtypes.Rectangle, format rfbtypes.PixelFormat, streams *zstream.Registry) ([]byte, error)
}

// Select returns the Encoder for t, or ok=false if the core does not
// produce that encoding (see encodings.Produced).
func Select(t encodings.Type) (Encoder, bool) {
	switch t {
	case encodings.Raw:
		return Raw{}, true
	case encodings.Hextile:
		return Hextile{}, true
	case encodings.Zlib:
		return Zlib{}, true
	case encodings.ZRLE:
		return ZRLE{}, true
	default:
		return nil, false
	}
}
