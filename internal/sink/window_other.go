//go:build !(cgo && linux)

package sink

import (
	"errors"
	"image"

	"github.com/ironsheep/marker-score/internal/detection"
)

// ErrNoWindow is returned by NewWindow in builds without OpenCV.
var ErrNoWindow = errors.New("preview window not supported in this build")

// Window is unavailable in builds without OpenCV.
type Window struct{}

// NewWindow always fails in this build; run headless instead.
func NewWindow(name string) (*Window, error) {
	return nil, ErrNoWindow
}

// Publish implements Sink.
func (w *Window) Publish(*image.RGBA, detection.Tick) error { return ErrStop }

// Close implements Sink.
func (w *Window) Close() error { return nil }
