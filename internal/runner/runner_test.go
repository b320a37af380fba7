package runner

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/ironsheep/marker-score/internal/detection"
	"github.com/ironsheep/marker-score/internal/sink"
)

var (
	background = color.RGBA{30, 120, 200, 255}
	red        = color.RGBA{220, 30, 40, 255}
)

// frameWithMarkers returns a 100x100 frame with n separated red squares.
func frameWithMarkers(n int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetRGBA(x, y, background)
		}
	}
	for i := 0; i < n; i++ {
		x0 := 5 + i*30
		for y := 40; y < 50; y++ {
			for x := x0; x < x0+10; x++ {
				img.SetRGBA(x, y, red)
			}
		}
	}
	return img
}

// fakeSource replays frames, then returns err (io.EOF if nil).
type fakeSource struct {
	frames []*image.RGBA
	err    error
	calls  int
}

func (f *fakeSource) Next(ctx context.Context) (*image.RGBA, error) {
	f.calls++
	if len(f.frames) == 0 {
		if f.err != nil {
			return nil, f.err
		}
		return nil, io.EOF
	}
	frame := f.frames[0]
	f.frames = f.frames[1:]
	return frame, nil
}

func (f *fakeSource) Close() error { return nil }

// scoreSink records scores and can fail or stop at a given tick.
type scoreSink struct {
	scores []int
	failAt int
	stopAt int
}

func (s *scoreSink) Publish(_ *image.RGBA, tick detection.Tick) error {
	s.scores = append(s.scores, tick.Score)
	n := len(s.scores)
	if n == s.stopAt {
		return sink.ErrStop
	}
	if n == s.failAt {
		return errors.New("disk full")
	}
	return nil
}

func (s *scoreSink) Close() error { return nil }

func newDetector(t *testing.T) *detection.Detector {
	t.Helper()
	det, err := detection.New(detection.DefaultParams())
	if err != nil {
		t.Fatalf("detection.New() error: %v", err)
	}
	return det
}

func TestRun(t *testing.T) {
	boom := errors.New("device unplugged")

	tests := []struct {
		name      string
		markers   []int
		srcErr    error
		sink      *scoreSink
		opts      Options
		wantTicks int
		wantLast  int
		wantMax   int
		wantErr   error
	}{
		{
			name:      "runs until source ends",
			markers:   []int{0, 2, 3, 1},
			sink:      &scoreSink{},
			wantTicks: 4,
			wantLast:  1,
			wantMax:   3,
		},
		{
			name:      "max ticks",
			markers:   []int{1, 2, 3},
			sink:      &scoreSink{},
			opts:      Options{MaxTicks: 2},
			wantTicks: 2,
			wantLast:  2,
			wantMax:   2,
		},
		{
			name:      "sink stop",
			markers:   []int{1, 1, 1},
			sink:      &scoreSink{stopAt: 2},
			wantTicks: 2,
			wantLast:  1,
			wantMax:   1,
		},
		{
			name:      "sink failure does not stop",
			markers:   []int{1, 2},
			sink:      &scoreSink{failAt: 1},
			wantTicks: 2,
			wantLast:  2,
			wantMax:   2,
		},
		{
			name:      "source error",
			markers:   []int{2},
			srcErr:    boom,
			sink:      &scoreSink{},
			wantTicks: 1,
			wantLast:  2,
			wantMax:   2,
			wantErr:   boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{err: tt.srcErr}
			for _, n := range tt.markers {
				src.frames = append(src.frames, frameWithMarkers(n))
			}

			stats, err := Run(context.Background(), src, newDetector(t), tt.sink, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Run() error: %v", err)
			}

			if stats.Ticks != tt.wantTicks {
				t.Errorf("Ticks = %d, want %d", stats.Ticks, tt.wantTicks)
			}
			if stats.LastScore != tt.wantLast {
				t.Errorf("LastScore = %d, want %d", stats.LastScore, tt.wantLast)
			}
			if stats.MaxScore != tt.wantMax {
				t.Errorf("MaxScore = %d, want %d", stats.MaxScore, tt.wantMax)
			}
			if len(tt.sink.scores) != tt.wantTicks {
				t.Errorf("sink saw %d ticks, want %d", len(tt.sink.scores), tt.wantTicks)
			}
		})
	}
}

func TestRunScoresMatchMarkers(t *testing.T) {
	src := &fakeSource{frames: []*image.RGBA{
		frameWithMarkers(0), frameWithMarkers(1), frameWithMarkers(2), frameWithMarkers(3),
	}}
	out := &scoreSink{}
	var indexes []int

	_, err := Run(context.Background(), src, newDetector(t), out, Options{
		OnTick: func(i int, _ detection.Tick) { indexes = append(indexes, i) },
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []int{0, 1, 2, 3}
	for i, s := range want {
		if out.scores[i] != s {
			t.Errorf("tick %d score = %d, want %d", i, out.scores[i], s)
		}
		if indexes[i] != i {
			t.Errorf("OnTick index %d = %d", i, indexes[i])
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{frames: []*image.RGBA{frameWithMarkers(1)}}
	stats, err := Run(ctx, src, newDetector(t), &scoreSink{}, Options{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if stats.Ticks != 0 || src.calls != 0 {
		t.Errorf("cancelled run processed %d ticks with %d source calls, want 0", stats.Ticks, src.calls)
	}
}
