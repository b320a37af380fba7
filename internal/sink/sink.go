// Package sink delivers tick results to their consumers.
//
// A Sink receives the frame that was processed together with its Tick. The
// frame is shared and must not be modified; sinks that draw on it work on a
// copy (see imaging.Annotate).
package sink

import (
	"errors"
	"image"

	"github.com/ironsheep/marker-score/internal/detection"
)

// ErrStop is returned by Publish when the consumer wants the session to end,
// for example because the preview window was closed.
var ErrStop = errors.New("sink requested stop")

// Sink consumes one tick at a time.
type Sink interface {
	Publish(frame *image.RGBA, tick detection.Tick) error
	Close() error
}

type multi struct {
	sinks []Sink
}

// Multi fans every tick out to all sinks, in order.
//
// Every sink sees every tick even when an earlier one fails. The returned
// error joins all failures, so errors.Is(err, ErrStop) holds if any sink asked
// to stop.
func Multi(sinks ...Sink) Sink {
	var kept []Sink
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &multi{sinks: kept}
}

func (m *multi) Publish(frame *image.RGBA, tick detection.Tick) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Publish(frame, tick); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard is a Sink that ignores everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Publish(*image.RGBA, detection.Tick) error { return nil }
func (discard) Close() error                              { return nil }
