package encode

import (
	"github.com/candiedoperation/spifyrfb/internal/rfb/encodings"
	"github.com/candiedoperation/spifyrfb/internal/rfb/rfberr"
	"github.com/candiedoperation/spifyrfb/internal/rfb/rfbtypes"
	"github.com/candiedoperation/spifyrfb/internal/zstream"
)

// Zlib deflates the whole rectangle's pixel-transcoded bytes against the
// session's persistent Zlib stream and prefixes the compressed payload
// with its u32 big-endian length, per RFC 6143 section 7.7.4.
type Zlib struct{}

func (Zlib) Type() encodings.Type { return encodings.Zlib }

func (Zlib) Encode(pixels []byte, _ rfbtypes.Rectangle, _ rfbtypes.PixelFormat, streams *zstream.Registry) ([]byte, error) {
	compressed, err := streams.Deflate(zstream.KeyZlib, pixels)
	if err != nil {
		return nil, rfberr.ErrDeflateFatal
	}
	out := make([]byte, 4+len(compressed))
	putUint32BE(out, uint32(len(compressed)))
	copy(out[4:], compressed)
	return out, nil
}

func putUint32BE(dst []byte, v uint32) {
	dst[0] = byte(v >> 24)
	dst[1] = byte(v >> 16)
	dst[2] = byte(v >> 8)
	dst[3] = byte(v)
}
