// Package rfbtypes holds wire-level value types shared across the RFB
// engine, its encoders and the pixel transcoder. It is a leaf package
// so that internal/pixel and internal/encode can depend on it without
// importing the protocol engine itself.
package rfbtypes

import "encoding/binary"

// PixelFormat mirrors the 16-byte PIXEL_FORMAT structure carried in
// ServerInit and SetPixelFormat.
// https://tools.ietf.org/html/rfc6143#section-7.4
type PixelFormat struct {
	BitsPerPixel  uint8
	Depth         uint8
	BigEndianFlag uint8
	TrueColorFlag uint8
	RedMax        uint16
	GreenMax      uint16
	BlueMax       uint16
	RedShift      uint8
	GreenShift    uint8
	BlueShift     uint8
	// Padding occupies the final 3 bytes of the wire structure.
}

// DefaultPixelFormat is the server's native framebuffer format: 32-bpp,
// 24-bit depth, little-endian, true-color BGRA with blue in the low byte.
var DefaultPixelFormat = PixelFormat{
	BitsPerPixel:  32,
	Depth:         24,
	BigEndianFlag: 0,
	TrueColorFlag: 1,
	RedMax:        255,
	GreenMax:      255,
	BlueMax:       255,
	RedShift:      16,
	GreenShift:    8,
	BlueShift:     0,
}

// BytesPerPixel returns BitsPerPixel/8.
func (f PixelFormat) BytesPerPixel() int {
	return int(f.BitsPerPixel / 8)
}

// IsCPixelEligible reports whether f qualifies for ZRLE's compact 3-byte
// CPIXEL representation: 32 bits per pixel, 24-bit depth, true-color.
func (f PixelFormat) IsCPixelEligible() bool {
	return f.BitsPerPixel == 32 && f.Depth == 24 && f.TrueColorFlag != 0
}

// Marshal writes the 16-byte wire representation of f, including the
// 3 padding bytes, to dst (which must be at least 16 bytes).
func (f PixelFormat) Marshal(dst []byte) {
	dst[0] = f.BitsPerPixel
	dst[1] = f.Depth
	dst[2] = f.BigEndianFlag
	dst[3] = f.TrueColorFlag
	binary.BigEndian.PutUint16(dst[4:6], f.RedMax)
	binary.BigEndian.PutUint16(dst[6:8], f.GreenMax)
	binary.BigEndian.PutUint16(dst[8:10], f.BlueMax)
	dst[10] = f.RedShift
	dst[11] = f.GreenShift
	dst[12] = f.BlueShift
	dst[13], dst[14], dst[15] = 0, 0, 0
}

// UnmarshalPixelFormat parses the 16-byte wire representation carried in
// a SetPixelFormat message.
func UnmarshalPixelFormat(src []byte) PixelFormat {
	return PixelFormat{
		BitsPerPixel:  src[0],
		Depth:         src[1],
		BigEndianFlag: src[2],
		TrueColorFlag: src[3],
		RedMax:        binary.BigEndian.Uint16(src[4:6]),
		GreenMax:      binary.BigEndian.Uint16(src[6:8]),
		BlueMax:       binary.BigEndian.Uint16(src[8:10]),
		RedShift:      src[10],
		GreenShift:    src[11],
		BlueShift:     src[12],
	}
}

// Rectangle is a framebuffer sub-region in pixel coordinates, as carried
// in FramebufferUpdateRequest and each update rectangle header.
type Rectangle struct {
	X, Y, Width, Height uint16
}

// Intersect clamps r to the bounds of a fbWidth x fbHeight framebuffer,
// returning the empty Rectangle if there is no overlap.
func (r Rectangle) Intersect(fbWidth, fbHeight uint16) Rectangle {
	if r.X >= fbWidth || r.Y >= fbHeight {
		return Rectangle{}
	}
	w, h := r.Width, r.Height
	if uint32(r.X)+uint32(w) > uint32(fbWidth) {
		w = fbWidth - r.X
	}
	if uint32(r.Y)+uint32(h) > uint32(fbHeight) {
		h = fbHeight - r.Y
	}
	return Rectangle{X: r.X, Y: r.Y, Width: w, Height: h}
}

// Empty reports whether r covers zero pixels.
func (r Rectangle) Empty() bool {
	return r.Width == 0 || r.Height == 0
}
