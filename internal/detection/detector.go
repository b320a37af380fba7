package detection

import (
	"fmt"
	"image"
)

// Params holds every tunable of the detection pipeline.
//
// Params are read once per session and passed by value; nothing in this
// package modifies them after New.
type Params struct {
	// Model selects the classifier: "rgb" or "hsv".
	Model ColorModel `json:"model" yaml:"model"`

	// RGB configures the channel-threshold classifier.
	RGB RGBThreshold `json:"rgb" yaml:"rgb"`

	// HSV configures the hue-window classifier.
	HSV HSVWindow `json:"hsv" yaml:"hsv"`

	// Stride is the sampling grid spacing in pixels (>= 1).
	Stride int `json:"stride" yaml:"stride"`

	// Threshold is the per-axis grouping distance in pixels (>= 1).
	// Points group with a seed only when strictly closer than this.
	Threshold int `json:"threshold" yaml:"threshold"`

	// PixelsPerMarker is the matched-pixel area of one marker, used for
	// Tick.PixelEstimate. 0 disables the estimate.
	PixelsPerMarker int `json:"pixels_per_marker" yaml:"pixels_per_marker"`
}

// DefaultParams returns the parameters tuned for red stickers under indoor light.
func DefaultParams() Params {
	return Params{
		Model: ModelRGB,
		RGB: RGBThreshold{
			RedMin:   150,
			GreenMax: 100,
			BlueMax:  100,
		},
		HSV: HSVWindow{
			HueMin: 270, // pink stickers
			HueMax: 330,
			SatMin: 0.3,
			ValMin: 0.4,
		},
		Stride:          5,
		Threshold:       15,
		PixelsPerMarker: 500,
	}
}

// Validate reports the first invalid field.
func (p Params) Validate() error {
	if p.Model != ModelRGB && p.Model != ModelHSV {
		return fmt.Errorf("unknown color model: %q (want %q or %q)", p.Model, ModelRGB, ModelHSV)
	}
	if p.Stride < 1 {
		return fmt.Errorf("stride must be >= 1, got %d", p.Stride)
	}
	if p.Threshold < 1 {
		return fmt.Errorf("threshold must be >= 1, got %d", p.Threshold)
	}
	if p.PixelsPerMarker < 0 {
		return fmt.Errorf("pixels_per_marker must be >= 0, got %d", p.PixelsPerMarker)
	}
	if p.HSV.HueMin < 0 || p.HSV.HueMin > 360 || p.HSV.HueMax < 0 || p.HSV.HueMax > 360 {
		return fmt.Errorf("hue window (%g, %g) outside [0, 360]", p.HSV.HueMin, p.HSV.HueMax)
	}
	if p.HSV.SatMin < 0 || p.HSV.SatMin > 1 {
		return fmt.Errorf("sat_min must be in [0, 1], got %g", p.HSV.SatMin)
	}
	if p.HSV.ValMin < 0 || p.HSV.ValMin > 1 {
		return fmt.Errorf("val_min must be in [0, 1], got %g", p.HSV.ValMin)
	}
	return nil
}

// Tick is the outcome of processing one frame.
type Tick struct {
	// Results holds one bounding box per cluster, in seed order. Never nil.
	Results []Result `json:"results"`

	// Score is the number of markers visible in this frame: len(Results).
	Score int `json:"score"`

	// Samples is the number of grid points that matched the marker colour.
	Samples int `json:"samples"`

	// PixelEstimate approximates the marker count from matched area alone:
	// Samples * Stride² / PixelsPerMarker, rounded down. Informational.
	PixelEstimate int `json:"pixel_estimate"`
}

// Detector runs the per-frame pipeline with fixed parameters.
type Detector struct {
	params     Params
	classifier Classifier
}

// New validates p and returns a Detector bound to it.
func New(p Params) (*Detector, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detection params: %w", err)
	}
	c, err := NewClassifier(p)
	if err != nil {
		return nil, err
	}
	return &Detector{params: p, classifier: c}, nil
}

// Params returns a copy of the detector's parameters.
func (d *Detector) Params() Params {
	return d.params
}

// Classifier returns the classifier selected by the detector's model.
func (d *Detector) Classifier() Classifier {
	return d.classifier
}

// Process runs one tick over frame: sample, group, bound.
//
// A frame with no matching pixels yields Score 0 and an empty Results slice.
// Process has no error path.
func (d *Detector) Process(frame *image.RGBA) Tick {
	points := Sample(frame, d.params.Stride, d.classifier)
	results := Aggregate(Group(points, d.params.Threshold))

	estimate := 0
	if d.params.PixelsPerMarker > 0 {
		estimate = len(points) * d.params.Stride * d.params.Stride / d.params.PixelsPerMarker
	}

	return Tick{
		Results:       results,
		Score:         len(results),
		Samples:       len(points),
		PixelEstimate: estimate,
	}
}
