// Package runner drives detection ticks from a frame source to a sink.
//
// Ticks run strictly one after another on the calling goroutine: the next
// frame is not requested until the previous tick has been published. A slow
// tick therefore lowers the effective frame rate and nothing is queued.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ironsheep/marker-score/internal/debug"
	"github.com/ironsheep/marker-score/internal/detection"
	"github.com/ironsheep/marker-score/internal/sink"
	"github.com/ironsheep/marker-score/internal/source"
)

// Options tune a session. The zero value runs until the source ends.
type Options struct {
	// MaxTicks stops the session after this many ticks when > 0.
	MaxTicks int

	// OnTick is called after each tick has been published.
	OnTick func(index int, tick detection.Tick)
}

// Stats summarises a finished session.
type Stats struct {
	Ticks     int           `json:"ticks"`
	LastScore int           `json:"last_score"`
	MaxScore  int           `json:"max_score"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Run processes frames from src with det and publishes each tick to out.
//
// Run returns a nil error when the source is exhausted, ctx is cancelled, a
// sink returns sink.ErrStop, or MaxTicks is reached. Any other source error
// ends the session and is returned. Sink failures other than ErrStop are
// logged and the session continues.
//
// Run does not close src or out.
func Run(ctx context.Context, src source.Source, det *detection.Detector, out sink.Sink, opts Options) (stats Stats, err error) {
	start := time.Now()
	defer func() { stats.Elapsed = time.Since(start) }()

	for opts.MaxTicks <= 0 || stats.Ticks < opts.MaxTicks {
		if ctx.Err() != nil {
			return stats, nil
		}

		frame, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				debug.Logf("source exhausted after %d ticks", stats.Ticks)
				return stats, nil
			}
			if ctx.Err() != nil {
				return stats, nil
			}
			return stats, fmt.Errorf("failed to read frame %d: %w", stats.Ticks, err)
		}

		tickStart := time.Now()
		tick := det.Process(frame)
		debug.Logf("tick %d: score=%d samples=%d estimate=%d in %v",
			stats.Ticks, tick.Score, tick.Samples, tick.PixelEstimate, time.Since(tickStart))

		index := stats.Ticks
		stats.Ticks++
		stats.LastScore = tick.Score
		if tick.Score > stats.MaxScore {
			stats.MaxScore = tick.Score
		}

		pubErr := out.Publish(frame, tick)
		if opts.OnTick != nil {
			opts.OnTick(index, tick)
		}
		if pubErr != nil {
			if errors.Is(pubErr, sink.ErrStop) {
				debug.Logf("sink requested stop at tick %d", index)
				return stats, nil
			}
			log.Printf("Failed to publish tick %d: %v", index, pubErr)
		}
	}

	return stats, nil
}
