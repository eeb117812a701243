package encode

import (
	"github.com/candiedoperation/spifyrfb/internal/rfb/encodings"
	"github.com/candiedoperation/spifyrfb/internal/rfb/rfberr"
	"github.com/candiedoperation/spifyrfb/internal/rfb/rfbtypes"
	"github.com/candiedoperation/spifyrfb/internal/zstream"
)

// ZRLE subencoding values this encoder produces.
// https://tools.ietf.org/html/rfc6143#section-7.7.6
const (
	zrleSubencodingRaw   = 0
	zrleSubencodingSolid = 1

	zrleTileSize = 64
)

// ZRLE splits a rectangle into 64x64 tiles, emits each as either a raw
// pixel dump or a one-pixel solid marker, then deflates the whole tile
// stream against the session's persistent ZRLE zlib context and
// prefixes it with a u32 big-endian length.
//
// pixels must already be in ZRLE's wire pixel stride: 3-byte CPIXELs
// (internal/pixel.CompactPixels) when format.IsCPixelEligible(), or
// format.BytesPerPixel() bytes per pixel otherwise.
type ZRLE struct{}

func (ZRLE) Type() encodings.Type { return encodings.ZRLE }

func (ZRLE) Encode(pixels []byte, rect rfbtypes.Rectangle, format rfbtypes.PixelFormat, streams *zstream.Registry) ([]byte, error) {
	stride := format.BytesPerPixel()
	if format.IsCPixelEligible() {
		stride = 3
	}

	w, h := int(rect.Width), int(rect.Height)
	tiles := make([]byte, 0, len(pixels)+len(pixels)/zrleTileSize)

	for ty := 0; ty < h; ty += zrleTileSize {
		tileH := min(ty+zrleTileSize, h) - ty
		for tx := 0; tx < w; tx += zrleTileSize {
			tileW := min(tx+zrleTileSize, w) - tx

			tile := extractTile(pixels, w, stride, tx, ty, tileW, tileH)
			if color, solid := solidColor(tile, stride); solid {
				tiles = append(tiles, zrleSubencodingSolid)
				tiles = append(tiles, color...)
			} else {
				tiles = append(tiles, zrleSubencodingRaw)
				tiles = append(tiles, tile...)
			}
		}
	}

	compressed, err := streams.Deflate(zstream.KeyZRLE, tiles)
	if err != nil {
		return nil, rfberr.ErrDeflateFatal
	}
	out := make([]byte, 4+len(compressed))
	putUint32BE(out, uint32(len(compressed)))
	copy(out[4:], compressed)
	return out, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
