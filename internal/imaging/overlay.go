package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/marker-score/internal/detection"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Overlay styling.
var (
	BoxColor       = color.RGBA{0, 255, 0, 255}
	LabelColor     = color.RGBA{255, 255, 255, 255}
	LabelBackColor = color.RGBA{0, 0, 0, 180}
)

const (
	boxThickness = 2
	// boxMargin pads each rectangle so single-sample clusters stay visible.
	boxMargin  = 3
	labelPad   = 2
	labelSpace = 4
)

// Annotate returns a copy of frame with one rectangle per result, the result's
// member count centred above each rectangle, and "Score: N" in the top-left
// corner. The input frame is not modified.
func Annotate(frame *image.RGBA, results []detection.Result, score int) *image.RGBA {
	out := image.NewRGBA(frame.Bounds())
	draw.Draw(out, out.Bounds(), frame, frame.Bounds().Min, draw.Src)

	face := basicfont.Face7x13
	for _, r := range results {
		box := image.Rect(r.X-boxMargin, r.Y-boxMargin, r.X+r.Width+boxMargin+1, r.Y+r.Height+boxMargin+1)
		drawOutline(out, box, BoxColor, boxThickness)

		label := strconv.Itoa(r.Count)
		w := font.MeasureString(face, label).Ceil()
		x := (box.Min.X+box.Max.X)/2 - w/2
		y := box.Min.Y - labelSpace
		if y-face.Ascent < out.Bounds().Min.Y {
			// No room above the box: put the label just inside the top edge.
			y = box.Min.Y + boxThickness + face.Ascent + labelPad
		}
		drawLabel(out, x, y, label, LabelColor, LabelBackColor)
	}

	drawLabel(out, out.Bounds().Min.X+4, out.Bounds().Min.Y+4+face.Ascent, fmt.Sprintf("Score: %d", score), LabelColor, LabelBackColor)
	return out
}

// drawOutline draws a rectangle border of the given thickness, clipped to img.
func drawOutline(img *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), // top
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y), // left
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), src, image.Point{}, draw.Over)
	}
}

// drawLabel draws text with its baseline at (x, y) over a filled background.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	back := image.Rect(x-labelPad, y-face.Ascent-labelPad, x+w+labelPad, y+face.Descent+labelPad)
	draw.Draw(img, back.Intersect(img.Bounds()), image.NewUniform(bg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// EncodePNGBase64 encodes img as PNG and returns it base64-encoded.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodeJPEG encodes img as JPEG at the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
