// Package source supplies detection frames, one per tick.
//
// Every Source delivers *image.RGBA frames of exactly the configured width and
// height, origin (0,0). Next returns io.EOF once the stream has ended; the tick
// driver stops calling it at that point.
package source

import (
	"context"
	"errors"
	"image"
)

// ErrCaptureUnavailable reports that a capture device could not be opened,
// either because it is missing, permission was denied, or this build has no
// camera support. It is fatal to starting a live session and is not retried.
var ErrCaptureUnavailable = errors.New("capture device unavailable")

// Source produces frames for the tick driver.
type Source interface {
	// Next blocks until the next frame is ready. It returns io.EOF at the end
	// of the stream. The returned frame belongs to the caller.
	Next(ctx context.Context) (*image.RGBA, error)

	// Close releases the underlying device or process.
	Close() error
}

// Counter is implemented by sources that know their length in advance.
type Counter interface {
	// FrameCount returns the expected number of frames, or 0 if unknown.
	FrameCount() int
}
