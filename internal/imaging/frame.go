package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"
)

// ToFrame converts img into a detection frame of exactly width x height.
//
// Parameters:
//   - img: Any decoded image (camera buffer, PNG, JPEG, video frame).
//   - width, height: Target frame size in pixels. Must be positive.
//   - blurSigma: Gaussian blur radius applied after resizing. 0 disables it.
//
// Returns a new *image.RGBA with bounds (0,0)-(width,height). The input is
// never modified, and an input that already matches is still copied so the
// caller owns the result outright.
//
// # Resizing
//
// Images of a different size are stretched with a linear filter. Aspect ratio
// is not preserved: the frame source contract is a fixed W x H buffer.
func ToFrame(img image.Image, width, height int, blurSigma float64) *image.RGBA {
	var src image.Image = img
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		src = imaging.Resize(img, width, height, imaging.Linear)
	}

	if blurSigma > 0 {
		return rebase(blur.Gaussian(src, blurSigma))
	}
	return rebase(clone.AsRGBA(src))
}

// rebase moves an RGBA image's origin to (0,0) without copying pixels.
func rebase(img *image.RGBA) *image.RGBA {
	if img.Rect.Min == (image.Point{}) {
		return img
	}
	return &image.RGBA{
		Pix:    img.Pix,
		Stride: img.Stride,
		Rect:   image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()),
	}
}
