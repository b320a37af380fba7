package sink

import (
	"fmt"
	"image"
	"io"

	"github.com/ironsheep/marker-score/internal/detection"
)

// ScoreWriter prints a "Score: N" line per tick.
type ScoreWriter struct {
	w           io.Writer
	onlyChanges bool
	last        int
	started     bool
}

// NewScoreWriter writes score lines to w. With onlyChanges set, a line is
// written only for the first tick and whenever the score differs from the
// previous one.
func NewScoreWriter(w io.Writer, onlyChanges bool) *ScoreWriter {
	return &ScoreWriter{w: w, onlyChanges: onlyChanges}
}

// Publish implements Sink.
func (s *ScoreWriter) Publish(_ *image.RGBA, tick detection.Tick) error {
	if s.onlyChanges && s.started && tick.Score == s.last {
		return nil
	}
	s.started = true
	s.last = tick.Score

	if _, err := fmt.Fprintf(s.w, "Score: %d\n", tick.Score); err != nil {
		return fmt.Errorf("failed to write score: %w", err)
	}
	return nil
}

// Close implements Sink.
func (s *ScoreWriter) Close() error {
	return nil
}
