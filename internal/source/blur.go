package source

import (
	"image"

	"github.com/ironsheep/marker-score/internal/imaging"
)

// blurFrame applies the configured pre-blur to a frame that is already at
// its final size.
func blurFrame(frame *image.RGBA, sigma float64) *image.RGBA {
	b := frame.Bounds()
	return imaging.ToFrame(frame, b.Dx(), b.Dy(), sigma)
}
