// Package display defines the capability the RFB engine needs from a
// concrete desktop backend: framebuffer capture and input injection. No
// platform backend lives here — wiring a Win32 or X11 implementation is
// out of scope — only the interface and the types its methods share.
package display

import "github.com/candiedoperation/spifyrfb/internal/rfb/rfbtypes"

// ButtonMask bits, matching RFC 6143's PointerEvent button-mask and the
// shared Win32/X11 table this server's original implementation used
// inconsistently per platform.
type ButtonMask uint8

const (
	ButtonLeft       ButtonMask = 1 << 0
	ButtonMiddle     ButtonMask = 1 << 1
	ButtonRight      ButtonMask = 1 << 2
	ButtonScrollUp   ButtonMask = 1 << 3
	ButtonScrollDown ButtonMask = 1 << 4
)

// Geometry describes a display's pixel dimensions, as reported in
// ServerInit and whenever a DesktopSize pseudo-encoding update is due.
type Geometry struct {
	Width, Height uint16
}

// Provider captures framebuffer pixels and injects input on behalf of an
// RFB session. Implementations are expected to be safe for concurrent
// use by multiple sessions sharing one physical display.
type Provider interface {
	// Geometry returns the current display dimensions.
	Geometry() Geometry

	// Capture returns BGRA32 pixels for the given sub-rectangle,
	// clamped to the display's current bounds.
	Capture(rect rfbtypes.Rectangle) ([]byte, error)

	// InjectPointer delivers an absolute pointer position and button
	// state, as decoded from a PointerEvent message.
	InjectPointer(x, y uint16, buttons ButtonMask) error

	// InjectKey delivers a key press or release, as decoded from a
	// KeyEvent message. keysym is the X11 keysym the client sent.
	InjectKey(keysym uint32, down bool) error

	// Close releases any resources the provider holds.
	Close() error
}
