// Package pixel converts captured BGRA framebuffer data into the pixel
// encoding a connected client has negotiated via SetPixelFormat.
package pixel

import "github.com/candiedoperation/spifyrfb/internal/rfb/rfbtypes"

// Transcode rewrites src, a tightly packed BGRA32 buffer (4 bytes per
// pixel, byte order B,G,R,A as produced by display capture), into the
// wire format described by format. The returned slice holds
// len(src)/4*format.BytesPerPixel() bytes.
//
// Only bits-per-pixel of 8, 16 and 32 are supported; any other value
// falls back to returning a copy of src unchanged, matching the
// server's documented behavior of refusing to honor SetPixelFormat
// requests it cannot transcode and continuing to emit its native
// 32-bpp BGRA format instead.
func Transcode(src []byte, format rfbtypes.PixelFormat) []byte {
	n := len(src) / 4
	switch format.BitsPerPixel {
	case 32:
		out := make([]byte, n*4)
		for i := 0; i < n; i++ {
			writePixel(out[i*4:i*4+4], format, src[i*4+2], src[i*4+1], src[i*4+0])
		}
		return out
	case 16:
		out := make([]byte, n*2)
		for i := 0; i < n; i++ {
			var buf [4]byte
			writePixel(buf[:], format, src[i*4+2], src[i*4+1], src[i*4+0])
			out[i*2], out[i*2+1] = buf[0], buf[1]
		}
		return out
	case 8:
		out := make([]byte, n)
		for i := 0; i < n; i++ {
			var buf [4]byte
			writePixel(buf[:], format, src[i*4+2], src[i*4+1], src[i*4+0])
			out[i] = buf[0]
		}
		return out
	default:
		out := make([]byte, len(src))
		copy(out, src)
		return out
	}
}

// writePixel packs r/g/b into dst (a buffer at least format.BytesPerPixel()
// long) at the shifts and maxima the client negotiated, honoring the
// requested byte order when the pixel occupies more than one byte.
func writePixel(dst []byte, format rfbtypes.PixelFormat, r, g, b byte) {
	var v uint32
	v |= scale(r, format.RedMax) << format.RedShift
	v |= scale(g, format.GreenMax) << format.GreenShift
	v |= scale(b, format.BlueMax) << format.BlueShift

	bytesPerPixel := int(format.BitsPerPixel / 8)
	if format.BigEndianFlag != 0 {
		for i := 0; i < bytesPerPixel; i++ {
			dst[bytesPerPixel-1-i] = byte(v >> (8 * i))
		}
	} else {
		for i := 0; i < bytesPerPixel; i++ {
			dst[i] = byte(v >> (8 * i))
		}
	}
}

// scale maps an 8-bit channel value onto a client-negotiated maximum
// (e.g. 31 for a 5-bit channel, 255 for an 8-bit channel).
func scale(c byte, max uint16) uint32 {
	if max == 255 {
		return uint32(c)
	}
	return uint32(c) * uint32(max) / 255
}

// CompactPixels truncates a tightly packed BGRA32 buffer into ZRLE's
// 3-byte CPIXEL representation (used whenever bits-per-pixel is 32,
// depth is 24, and true-color is set — the only case ZRLE's CPIXEL
// shortcut applies to). Each CPIXEL carries the three color bytes at
// the negotiated shifts with the padding byte dropped.
func CompactPixels(src []byte, format rfbtypes.PixelFormat) []byte {
	n := len(src) / 4
	out := make([]byte, n*3)
	for i := 0; i < n; i++ {
		var full [4]byte
		writePixel(full[:], format, src[i*4+2], src[i*4+1], src[i*4+0])
		if format.BigEndianFlag != 0 {
			copy(out[i*3:i*3+3], full[1:4])
		} else {
			copy(out[i*3:i*3+3], full[0:3])
		}
	}
	return out
}
