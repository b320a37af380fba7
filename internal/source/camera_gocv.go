//go:build cgo && linux

package source

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Camera captures live frames from a video device through OpenCV.
type Camera struct {
	device    int
	capture   *gocv.VideoCapture
	width     int
	height    int
	blurSigma float64

	raw     gocv.Mat
	resized gocv.Mat
	rgba    gocv.Mat
}

// NewCamera opens the video device with the given index. Failure to open is
// reported as ErrCaptureUnavailable.
func NewCamera(device, width, height int, blurSigma float64) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrCaptureUnavailable, device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: device %d", ErrCaptureUnavailable, device)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(height))

	return &Camera{
		device:    device,
		capture:   capture,
		width:     width,
		height:    height,
		blurSigma: blurSigma,
		raw:       gocv.NewMat(),
		resized:   gocv.NewMat(),
		rgba:      gocv.NewMat(),
	}, nil
}

// Next implements Source. A failed read mid-session is an error, not EOF.
func (c *Camera) Next(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok := c.capture.Read(&c.raw); !ok || c.raw.Empty() {
		return nil, fmt.Errorf("failed to read frame from camera %d", c.device)
	}

	src := c.raw
	if c.raw.Cols() != c.width || c.raw.Rows() != c.height {
		gocv.Resize(c.raw, &c.resized, image.Pt(c.width, c.height), 0, 0, gocv.InterpolationLinear)
		src = c.resized
	}
	gocv.CvtColor(src, &c.rgba, gocv.ColorBGRToRGBA)

	frame := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	copy(frame.Pix, c.rgba.ToBytes())

	if c.blurSigma > 0 {
		return blurFrame(frame, c.blurSigma), nil
	}
	return frame, nil
}

// Close implements Source.
func (c *Camera) Close() error {
	c.raw.Close()
	c.resized.Close()
	c.rgba.Close()
	return c.capture.Close()
}
