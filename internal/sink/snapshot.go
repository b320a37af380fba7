package sink

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/ironsheep/marker-score/internal/detection"
	"github.com/ironsheep/marker-score/internal/imaging"
)

// SnapshotWriter saves annotated frames as PNG files.
type SnapshotWriter struct {
	dir   string
	every int
	tick  int
	saved []string
}

// NewSnapshotWriter saves every Nth tick (starting with the first) to dir,
// creating it if needed. every below 1 is treated as 1.
func NewSnapshotWriter(dir string, every int) (*SnapshotWriter, error) {
	if every < 1 {
		every = 1
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &SnapshotWriter{dir: dir, every: every}, nil
}

// Publish implements Sink.
func (s *SnapshotWriter) Publish(frame *image.RGBA, tick detection.Tick) error {
	n := s.tick
	s.tick++
	if n%s.every != 0 {
		return nil
	}

	path := filepath.Join(s.dir, fmt.Sprintf("frame-%06d.png", n))
	annotated := imaging.Annotate(frame, tick.Results, tick.Score)
	if err := imgio.Save(path, annotated, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	s.saved = append(s.saved, path)
	return nil
}

// Saved returns the paths written so far.
func (s *SnapshotWriter) Saved() []string {
	return s.saved
}

// Close implements Sink.
func (s *SnapshotWriter) Close() error {
	return nil
}
