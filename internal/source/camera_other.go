//go:build !(cgo && linux)

package source

import (
	"context"
	"fmt"
	"image"
)

// Camera is unavailable in builds without OpenCV.
type Camera struct{}

// NewCamera always fails with ErrCaptureUnavailable in this build.
func NewCamera(device, width, height int, blurSigma float64) (*Camera, error) {
	return nil, fmt.Errorf("%w: device %d: built without OpenCV support", ErrCaptureUnavailable, device)
}

// Next implements Source.
func (c *Camera) Next(ctx context.Context) (*image.RGBA, error) {
	return nil, ErrCaptureUnavailable
}

// Close implements Source.
func (c *Camera) Close() error {
	return nil
}
