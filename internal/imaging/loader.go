package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// FrameCache provides thread-safe caching of normalised frames loaded from disk.
//
// Each entry is the *image.RGBA produced by ToFrame for the cache's fixed
// frame size and blur setting, keyed by the exact path string. Repeated tool
// calls against the same file reuse the decoded frame.
//
// Callers must treat returned frames as read-only; they are shared between
// all users of the cache.
//
// # Example Usage
//
//	cache := imaging.NewFrameCache(640, 480, 0)
//	frame, err := cache.Load("/path/to/photo.jpg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tick := detector.Process(frame)
type FrameCache struct {
	width     int
	height    int
	blurSigma float64

	mu     sync.RWMutex
	frames map[string]*image.RGBA
}

// NewFrameCache creates an empty cache producing width x height frames.
func NewFrameCache(width, height int, blurSigma float64) *FrameCache {
	return &FrameCache{
		width:     width,
		height:    height,
		blurSigma: blurSigma,
		frames:    make(map[string]*image.RGBA),
	}
}

// Load retrieves a frame from the cache or loads it from disk if not cached.
//
// Supported formats are PNG, JPEG and GIF. JPEG EXIF orientation is applied
// before resizing so that phone photos come out upright.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a decodable image
func (c *FrameCache) Load(path string) (*image.RGBA, error) {
	c.mu.RLock()
	if f, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return f, nil
	}
	c.mu.RUnlock()

	frame, err := LoadFrame(path, c.width, c.height, c.blurSigma)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.frames[path] = frame
	c.mu.Unlock()

	return frame, nil
}

// LoadFrame decodes the image at path and normalises it with ToFrame.
//
// JPEG EXIF orientation is applied first, so every still-image path in the
// program sees a phone photo the same way up.
func LoadFrame(path string, width, height int, blurSigma float64) (*image.RGBA, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return ToFrame(img, width, height, blurSigma), nil
}

// Clear removes all frames from the cache.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]*image.RGBA)
	c.mu.Unlock()
}

// Evict removes a specific frame from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// ImageInfo describes an image file and the frame it becomes.
type ImageInfo struct {
	// Width and Height are the original image dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// FrameWidth and FrameHeight are the normalised frame dimensions the
	// detector sees. They differ from Width/Height when the image is resized.
	FrameWidth  int `json:"frame_width"`
	FrameHeight int `json:"frame_height"`

	// Format is the decoder that read the file: "png", "jpeg" or "gif".
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path into the cache and reports its metadata.
//
// Unlike Load, the original dimensions are read from the file header so they
// reflect the image before normalisation.
func LoadImageInfo(cache *FrameCache, path string) (*ImageInfo, error) {
	if _, err := cache.Load(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	return &ImageInfo{
		Width:         cfg.Width,
		Height:        cfg.Height,
		FrameWidth:    cache.width,
		FrameHeight:   cache.height,
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}
