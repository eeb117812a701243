// Package simulator implements an in-memory display.Provider that paints
// a deterministic synthetic desktop: a static background with a solid
// colored square that moves one pixel per capture. It exists so the RFB
// engine, encoders and WebSocket bridge can be exercised end-to-end
// without a Win32 or X11 backend, and so the server is runnable on any
// platform Go targets via --display=simulated.
package simulator

import (
	"sync"

	"github.com/candiedoperation/spifyrfb/internal/display"
	"github.com/candiedoperation/spifyrfb/internal/rfb/rfbtypes"
)

const squareSize = 40

// Provider is a synthetic display.Provider. The zero value is not
// usable; construct with New.
type Provider struct {
	mu       sync.Mutex
	width    uint16
	height   uint16
	tick     int
	pointerX uint16
	pointerY uint16
	buttons  display.ButtonMask
}

// New returns a simulator sized width x height.
func New(width, height uint16) *Provider {
	return &Provider{width: width, height: height}
}

func (p *Provider) Geometry() display.Geometry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return display.Geometry{Width: p.width, Height: p.height}
}

// Capture renders the synthetic frame and returns the BGRA32 bytes for
// rect, advancing the animation tick by one on every call.
func (p *Provider) Capture(rect rfbtypes.Rectangle) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rect = rect.Intersect(p.width, p.height)
	if rect.Empty() {
		return nil, nil
	}

	squareX := p.tick % (int(p.width) - squareSize)
	p.tick++

	out := make([]byte, int(rect.Width)*int(rect.Height)*4)
	for row := 0; row < int(rect.Height); row++ {
		y := int(rect.Y) + row
		for col := 0; col < int(rect.Width); col++ {
			x := int(rect.X) + col
			offset := (row*int(rect.Width) + col) * 4
			if x >= squareX && x < squareX+squareSize && y >= 20 && y < 20+squareSize {
				// Solid orange square: B,G,R,A.
				out[offset+0] = 0x00
				out[offset+1] = 0x80
				out[offset+2] = 0xFF
				out[offset+3] = 0xFF
			} else {
				// Static slate background.
				out[offset+0] = 0x30
				out[offset+1] = 0x30
				out[offset+2] = 0x30
				out[offset+3] = 0xFF
			}
		}
	}
	return out, nil
}

func (p *Provider) InjectPointer(x, y uint16, buttons display.ButtonMask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pointerX, p.pointerY, p.buttons = x, y, buttons
	return nil
}

func (p *Provider) InjectKey(uint32, bool) error {
	return nil
}

func (p *Provider) Close() error {
	return nil
}

var _ display.Provider = (*Provider)(nil)
