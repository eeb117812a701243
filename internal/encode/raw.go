package encode

import (
	"github.com/candiedoperation/spifyrfb/internal/rfb/encodings"
	"github.com/candiedoperation/spifyrfb/internal/rfb/rfbtypes"
	"github.com/candiedoperation/spifyrfb/internal/zstream"
)

// Raw emits pixel-transcoded bytes unchanged. The session's update
// pipeline always encodes with ZRLE; Raw is reachable through Select.
type Raw struct{}

func (Raw) Type() encodings.Type { return encodings.Raw }

func (Raw) Encode(pixels []byte, _ rfbtypes.Rectangle, _ rfbtypes.PixelFormat, _ *zstream.Registry) ([]byte, error) {
	out := make([]byte, len(pixels))
	copy(out, pixels)
	return out, nil
}
