package source

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ironsheep/marker-score/internal/imaging"
)

// imageExts lists the still-image extensions picked up from directories.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ImageSequence replays still images as frames, one file per tick.
type ImageSequence struct {
	paths     []string
	width     int
	height    int
	blurSigma float64
	next      int
}

// NewImageSequence creates a source over paths, in the given order.
func NewImageSequence(paths []string, width, height int, blurSigma float64) *ImageSequence {
	return &ImageSequence{
		paths:     paths,
		width:     width,
		height:    height,
		blurSigma: blurSigma,
	}
}

// Next implements Source.
func (s *ImageSequence) Next(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}
	path := s.paths[s.next]
	s.next++

	frame, err := imaging.LoadFrame(path, s.width, s.height, s.blurSigma)
	if err != nil {
		return nil, fmt.Errorf("failed to load frame %s: %w", path, err)
	}
	return frame, nil
}

// Current returns the path of the most recently returned frame.
func (s *ImageSequence) Current() string {
	if s.next == 0 {
		return ""
	}
	return s.paths[s.next-1]
}

// FrameCount implements Counter.
func (s *ImageSequence) FrameCount() int {
	return len(s.paths)
}

// Close implements Source.
func (s *ImageSequence) Close() error {
	return nil
}

// ExpandPaths resolves command-line arguments into a list of image files.
//
// Each argument may be a file, a directory (its images are listed, sorted by
// name, not recursively) or a glob pattern. Files named explicitly are kept
// regardless of extension.
func ExpandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			entries, err := os.ReadDir(arg)
			if err != nil {
				return nil, fmt.Errorf("failed to read directory: %w", err)
			}
			var found []string
			for _, e := range entries {
				if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
					continue
				}
				found = append(found, filepath.Join(arg, e.Name()))
			}
			sort.Strings(found)
			paths = append(paths, found...)
		case err == nil:
			paths = append(paths, arg)
		default:
			matches, globErr := filepath.Glob(arg)
			if globErr != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", arg, globErr)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no such file: %s", arg)
			}
			sort.Strings(matches)
			paths = append(paths, matches...)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images found")
	}
	return paths, nil
}
