package pixel

import (
	"testing"

	"github.com/candiedoperation/spifyrfb/internal/rfb/rfbtypes"
	"github.com/stretchr/testify/assert"
)

func TestTranscodeIdentityFormat(t *testing.T) {
	src := []byte{0x10, 0x20, 0x30, 0xFF, 0x40, 0x50, 0x60, 0xFF}
	out := Transcode(src, rfbtypes.DefaultPixelFormat)
	assert.Len(t, out, 8)
	assert.Equal(t, byte(0x30), out[2]) // red at shift 16 byte 2
	assert.Equal(t, byte(0x20), out[1]) // green at shift 8 byte 1
	assert.Equal(t, byte(0x10), out[0]) // blue at shift 0 byte 0
}

func TestTranscode16BitLittleEndian(t *testing.T) {
	format := rfbtypes.PixelFormat{
		BitsPerPixel: 16, Depth: 16, BigEndianFlag: 0, TrueColorFlag: 1,
		RedMax: 31, GreenMax: 63, BlueMax: 31,
		RedShift: 11, GreenShift: 5, BlueShift: 0,
	}
	src := []byte{0xFF, 0xFF, 0xFF, 0xFF} // white BGRA pixel
	out := Transcode(src, format)
	assert.Len(t, out, 2)
	assert.Equal(t, uint16(0xFFFF), uint16(out[0])|uint16(out[1])<<8)
}

func TestTranscode16BitBigEndian(t *testing.T) {
	format := rfbtypes.PixelFormat{
		BitsPerPixel: 16, Depth: 16, BigEndianFlag: 1, TrueColorFlag: 1,
		RedMax: 31, GreenMax: 63, BlueMax: 31,
		RedShift: 11, GreenShift: 5, BlueShift: 0,
	}
	src := []byte{0x00, 0x00, 0xFF, 0xFF} // pure red BGRA pixel
	out := Transcode(src, format)
	assert.Len(t, out, 2)
	// Big-endian wire order: high byte first.
	assert.Equal(t, uint16(0xF800), uint16(out[0])<<8|uint16(out[1]))
}

func TestTranscode8Bit(t *testing.T) {
	format := rfbtypes.PixelFormat{
		BitsPerPixel: 8, Depth: 8, TrueColorFlag: 1,
		RedMax: 7, GreenMax: 7, BlueMax: 3,
		RedShift: 5, GreenShift: 2, BlueShift: 0,
	}
	src := []byte{0x00, 0x00, 0x00, 0xFF} // black
	out := Transcode(src, format)
	assert.Equal(t, []byte{0x00}, out)
}

func TestTranscodeUnsupportedBppFallsBackToSource(t *testing.T) {
	format := rfbtypes.PixelFormat{BitsPerPixel: 24}
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	out := Transcode(src, format)
	assert.Equal(t, src, out)
}

func TestCompactPixelsDropsPaddingByte(t *testing.T) {
	src := []byte{0x10, 0x20, 0x30, 0xFF}
	out := CompactPixels(src, rfbtypes.DefaultPixelFormat)
	assert.Equal(t, []byte{0x10, 0x20, 0x30}, out)
}

func TestScaleIdentityAt255(t *testing.T) {
	assert.Equal(t, uint32(200), scale(200, 255))
}

func TestScaleDownTo5Bit(t *testing.T) {
	assert.Equal(t, uint32(31), scale(255, 31))
	assert.Equal(t, uint32(0), scale(0, 31))
}
