// Package imaging adapts decoded images to detection frames and renders results.
//
// This package sits between the outside world (image files, camera buffers,
// video decoders) and the detection pipeline. It normalises any image.Image
// into the fixed-size *image.RGBA frame the pipeline expects, and it draws the
// pipeline's bounding boxes and score back onto frames for display.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Frames produced by ToFrame always have their origin at (0,0)
//   - Detection results are inclusive rectangles (Width = maxX - minX)
//
// # Frames
//
// A frame is an *image.RGBA of exactly the configured width and height. ToFrame
// resizes when needed and can apply a Gaussian pre-blur to suppress sensor
// noise before classification. Frames are never shared across ticks.
//
// # Thread Safety
//
// The FrameCache type is safe for concurrent use. All other functions are
// stateless and return new images rather than modifying their inputs.
//
// # Color Representation
//
// Sampled colors are reported as:
//   - Hex: 6-character format "#RRGGBB" (alpha excluded)
//   - RGBA: 8-bit components with alpha (0-255)
//   - HSV: Hue (0-360 degrees), Saturation (0-1), Value (0-1)
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Coordinates outside frame bounds
//   - File I/O errors during image loading
//   - Encoding errors during image output
package imaging
