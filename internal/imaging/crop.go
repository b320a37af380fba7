package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/marker-score/internal/detection"
)

// CropResult contains a cropped marker region encoded as base64 PNG.
type CropResult struct {
	// Region is the frame area that was cropped, after padding and clamping.
	// X2/Y2 are exclusive.
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`

	// Width and Height are the output image size after scaling.
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropMarker extracts the area around one detection result.
//
// Parameters:
//   - frame: The frame the result was detected in.
//   - r: The detection result to crop around.
//   - padding: Extra pixels added on every side of the rectangle (>= 0).
//   - scale: Output scale factor; 1.0 keeps the original size.
//
// The padded rectangle is clamped to the frame bounds. Since results are
// inclusive rectangles, a single-point result with padding 0 crops 1x1 pixel.
func CropMarker(frame *image.RGBA, r detection.Result, padding int, scale float64) (*CropResult, error) {
	if padding < 0 {
		return nil, fmt.Errorf("padding must be >= 0, got %d", padding)
	}

	region := image.Rect(r.X-padding, r.Y-padding, r.X+r.Width+1+padding, r.Y+r.Height+1+padding)
	region = region.Intersect(frame.Bounds())
	if region.Empty() {
		return nil, fmt.Errorf("marker at (%d,%d) lies outside the frame", r.X, r.Y)
	}

	cropped := imaging.Crop(frame, region)
	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.NearestNeighbor)
	}

	encoded, err := EncodePNGBase64(cropped)
	if err != nil {
		return nil, err
	}

	return &CropResult{
		X1:          region.Min.X,
		Y1:          region.Min.Y,
		X2:          region.Max.X,
		Y2:          region.Max.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}
