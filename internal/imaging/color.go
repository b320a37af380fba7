package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/marker-score/internal/detection"
)

// HSVColor represents a color in HSV (Hue, Saturation, Value) color space.
//
// This is the space the HSV classifier tests against:
//   - H is the color type in degrees (0=red, 120=green, 240=blue, 300=magenta)
//   - S is color intensity, 0 for grays
//   - V is brightness, 0 for black
type HSVColor struct {
	H float64 `json:"h"` // Hue: 0 <= H < 360 degrees
	S float64 `json:"s"` // Saturation: 0-1
	V float64 `json:"v"` // Value: 0-1
}

// ColorResult describes one frame pixel and how the classifier judged it.
type ColorResult struct {
	Hex   string               `json:"hex"`   // Hex format "#RRGGBB" (no alpha)
	RGBA  detection.Pixel      `json:"rgba"`  // RGBA components with alpha
	HSV   HSVColor             `json:"hsv"`   // HSV representation, rounded for display
	Match bool                 `json:"match"` // Whether the classifier accepts this pixel
	Model detection.ColorModel `json:"model,omitempty"`
}

// PixelAt reads the pixel at (x, y) straight from the frame buffer.
// The coordinates must lie inside frame.Bounds().
func PixelAt(frame *image.RGBA, x, y int) detection.Pixel {
	i := frame.PixOffset(x, y)
	return detection.Pixel{
		R: frame.Pix[i],
		G: frame.Pix[i+1],
		B: frame.Pix[i+2],
		A: frame.Pix[i+3],
	}
}

// SampleColor reports the color at (x, y) and whether it is a marker color.
//
// Parameters:
//   - frame: The frame to sample from.
//   - x, y: 0-based coordinates inside the frame.
//   - c: The classifier to evaluate the pixel with.
//   - model: The classifier's model name, echoed in the result.
//
// Returns:
//   - *ColorResult: The color in several representations plus the match flag.
//   - error: Non-nil if the coordinates are outside the frame bounds.
func SampleColor(frame *image.RGBA, x, y int, c detection.Classifier, model detection.ColorModel) (*ColorResult, error) {
	if !(image.Point{X: x, Y: y}).In(frame.Bounds()) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside frame bounds", x, y)
	}

	px := PixelAt(frame, x, y)
	h, s, v := detection.ToHSV(px.R, px.G, px.B)

	return &ColorResult{
		Hex:  fmt.Sprintf("#%02X%02X%02X", px.R, px.G, px.B),
		RGBA: px,
		HSV: HSVColor{
			H: math.Round(h*10) / 10,
			S: math.Round(s*1000) / 1000,
			V: math.Round(v*1000) / 1000,
		},
		Match: c.Match(px),
		Model: model,
	}, nil
}

// LabeledPoint represents a pixel coordinate with an optional descriptive label.
type LabeledPoint struct {
	X     int    // X coordinate (0-based)
	Y     int    // Y coordinate (0-based)
	Label string // Optional label, e.g. "sticker_center"
}

// LabeledColorResult combines a color sample with its location and optional label.
type LabeledColorResult struct {
	Label string      `json:"label,omitempty"`
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Color ColorResult `json:"color"`
}

// MultiColorResult contains color samples from multiple points.
//
// Results are returned in the same order as the input points. Matches counts
// the samples the classifier accepted.
type MultiColorResult struct {
	Samples []LabeledColorResult `json:"samples"`
	Matches int                  `json:"matches"`
}

// SampleColorsMulti samples several points in one call.
//
// On the first out-of-bounds point an error is returned and no partial
// results are reported.
func SampleColorsMulti(frame *image.RGBA, points []LabeledPoint, c detection.Classifier, model detection.ColorModel) (*MultiColorResult, error) {
	results := make([]LabeledColorResult, 0, len(points))
	matches := 0

	for _, p := range points {
		color, err := SampleColor(frame, p.X, p.Y, c, model)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		if color.Match {
			matches++
		}
		results = append(results, LabeledColorResult{
			Label: p.Label,
			X:     p.X,
			Y:     p.Y,
			Color: *color,
		})
	}

	return &MultiColorResult{Samples: results, Matches: matches}, nil
}
