//go:build cgo && linux

package sink

import (
	"fmt"
	"image"

	"github.com/ironsheep/marker-score/internal/detection"
	"github.com/ironsheep/marker-score/internal/imaging"
	"gocv.io/x/gocv"
)

// Window shows the annotated frame in an OpenCV window. Any key press ends
// the session.
type Window struct {
	window *gocv.Window
	bgr    gocv.Mat
}

// NewWindow opens a preview window titled name.
func NewWindow(name string) (*Window, error) {
	return &Window{
		window: gocv.NewWindow(name),
		bgr:    gocv.NewMat(),
	}, nil
}

// Publish implements Sink.
func (w *Window) Publish(frame *image.RGBA, tick detection.Tick) error {
	annotated := imaging.Annotate(frame, tick.Results, tick.Score)
	b := annotated.Bounds()

	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, annotated.Pix)
	if err != nil {
		return fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	gocv.CvtColor(mat, &w.bgr, gocv.ColorRGBAToBGR)
	w.window.IMShow(w.bgr)
	if w.window.WaitKey(1) >= 0 {
		return ErrStop
	}
	return nil
}

// Close implements Sink.
func (w *Window) Close() error {
	w.bgr.Close()
	return w.window.Close()
}
