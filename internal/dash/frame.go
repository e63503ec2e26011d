package dash

import (
	"image"
	"image/color"
	"image/png"
	"net/http"
)

// Frame geometry, scaled down from the interactive scene.
const (
	frameW = 400
	frameH = 300

	tankW = 200
	tankH = 200
)

var (
	frameBG     = color.RGBA{255, 255, 255, 255}
	tankBorder  = color.RGBA{70, 130, 180, 255}
	waterColor  = color.RGBA{0, 191, 255, 255}
	borderWidth = 3
)

// frame renders the current tank state to PNG. Drawing is deliberately
// primitive: border, water fill, nothing else.
func (s *Server) frame(w http.ResponseWriter, _ *http.Request) {
	snap := s.state.Snapshot()

	img := image.NewRGBA(image.Rect(0, 0, frameW, frameH))
	for y := 0; y < frameH; y++ {
		for x := 0; x < frameW; x++ {
			img.SetRGBA(x, y, frameBG)
		}
	}

	tankX := (frameW - tankW) / 2
	tankY := (frameH - tankH) / 2

	// Water level, bottom up.
	ratio := snap.Volume / s.cfg.Tank.MaxVolume
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	waterH := int(float64(tankH) * ratio)
	for y := tankY + tankH - waterH; y < tankY+tankH; y++ {
		for x := tankX; x < tankX+tankW; x++ {
			img.SetRGBA(x, y, waterColor)
		}
	}

	// Border on top of the water.
	for t := 0; t < borderWidth; t++ {
		for x := tankX - t; x < tankX+tankW+t; x++ {
			img.SetRGBA(x, tankY-t, tankBorder)
			img.SetRGBA(x, tankY+tankH+t, tankBorder)
		}
		for y := tankY - t; y < tankY+tankH+t; y++ {
			img.SetRGBA(tankX-t, y, tankBorder)
			img.SetRGBA(tankX+tankW+t, y, tankBorder)
		}
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		s.log.WithError(err).Error("frame encode failed")
	}
}
