package detection

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorModel selects the colour test used by a Classifier.
type ColorModel string

const (
	// ModelRGB compares raw channel values against fixed thresholds.
	ModelRGB ColorModel = "rgb"

	// ModelHSV converts to hue/saturation/value and tests a hue window.
	ModelHSV ColorModel = "hsv"
)

// Pixel is one RGBA sample read from a frame.
type Pixel struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
	A uint8 `json:"a"` // Alpha component (0-255), ignored by both models
}

// Classifier decides whether a pixel has the marker colour.
//
// Implementations must be pure: the result depends only on the pixel and the
// classifier's own configuration.
type Classifier interface {
	Match(p Pixel) bool
}

// RGBThreshold matches strongly red pixels using channel comparisons only.
//
// A pixel matches when R > RedMin, G < GreenMax and B < BlueMax.
type RGBThreshold struct {
	RedMin   uint8 `json:"red_min" yaml:"red_min"`
	GreenMax uint8 `json:"green_max" yaml:"green_max"`
	BlueMax  uint8 `json:"blue_max" yaml:"blue_max"`
}

// Match implements Classifier.
func (t RGBThreshold) Match(p Pixel) bool {
	return p.R > t.RedMin && p.G < t.GreenMax && p.B < t.BlueMax
}

// HSVWindow matches pixels whose hue lies in an open window and whose
// saturation and value exceed the given floors.
//
// Hue bounds are in degrees [0, 360]. SatMin and ValMin are in [0, 1]. When
// HueMin > HueMax the window wraps through 0 degrees, so (340, 20) selects reds
// on both sides of the hue origin.
type HSVWindow struct {
	HueMin float64 `json:"hue_min" yaml:"hue_min"`
	HueMax float64 `json:"hue_max" yaml:"hue_max"`
	SatMin float64 `json:"sat_min" yaml:"sat_min"`
	ValMin float64 `json:"val_min" yaml:"val_min"`
}

// Match implements Classifier.
func (w HSVWindow) Match(p Pixel) bool {
	h, s, v := ToHSV(p.R, p.G, p.B)
	if s <= w.SatMin || v <= w.ValMin {
		return false
	}
	return w.containsHue(h)
}

func (w HSVWindow) containsHue(h float64) bool {
	if w.HueMin <= w.HueMax {
		return h > w.HueMin && h < w.HueMax
	}
	return h > w.HueMin || h < w.HueMax
}

// ToHSV converts 8-bit RGB to hue, saturation and value.
//
// Returns:
//   - h: hue in degrees, 0 <= h < 360. Defined as 0 when the pixel is gray.
//   - s: saturation in [0, 1], chroma / max (0 for black and grays).
//   - v: value in [0, 1], the largest normalised channel.
func ToHSV(r, g, b uint8) (h, s, v float64) {
	c := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	h, s, v = c.Hsv()
	if h >= 360 {
		h -= 360
	}
	return h, s, v
}

// NewClassifier builds the classifier selected by p.Model.
func NewClassifier(p Params) (Classifier, error) {
	switch p.Model {
	case ModelRGB:
		return p.RGB, nil
	case ModelHSV:
		return p.HSV, nil
	default:
		return nil, fmt.Errorf("unknown color model: %q", p.Model)
	}
}
