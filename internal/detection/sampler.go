package detection

import "image"

// Point is a frame coordinate where the classifier matched.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Sample scans frame on a stride grid and returns the matching coordinates.
//
// Visits x = Min.X, Min.X+stride, ... and y = Min.Y, Min.Y+stride, ... in
// row-major order, reading pixels straight from frame.Pix. The returned slice
// preserves scan order, which Group relies on for deterministic seeds.
//
// A stride below 1 is treated as 1. Markers narrower than the stride may be
// skipped entirely; that is the cost of not visiting every pixel.
func Sample(frame *image.RGBA, stride int, c Classifier) []Point {
	if stride < 1 {
		stride = 1
	}
	b := frame.Bounds()

	var points []Point
	for y := b.Min.Y; y < b.Max.Y; y += stride {
		for x := b.Min.X; x < b.Max.X; x += stride {
			i := frame.PixOffset(x, y)
			px := Pixel{
				R: frame.Pix[i],
				G: frame.Pix[i+1],
				B: frame.Pix[i+2],
				A: frame.Pix[i+3],
			}
			if c.Match(px) {
				points = append(points, Point{X: x, Y: y})
			}
		}
	}
	return points
}
