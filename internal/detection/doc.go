// Package detection finds coloured adhesive markers in a single video frame.
//
// This package is the per-frame pipeline behind the marker score. It turns one
// RGBA frame into a list of bounding boxes, one per marker candidate, and a
// score equal to the number of boxes.
//
// # Pipeline
//
// Every tick runs the same four stages, synchronously and in order:
//
//  1. Classification: a Classifier decides whether a pixel has the marker colour
//     (RGB channel thresholds or an HSV window, selected by Params.Model)
//  2. Sampling: the frame is scanned on a stride grid, row-major, and the
//     coordinates where the classifier matched become Points
//  3. Grouping: Points are grouped around seed points using a per-axis
//     proximity threshold (see Group for the exact rule)
//  4. Aggregation: each Cluster is reduced to its minimal enclosing rectangle
//     plus member count
//
// # Coordinate System
//
// Coordinates are frame pixel coordinates:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Result rectangles are inclusive: a single point has Width = Height = 0
//
// # Grouping Rule
//
// Group is deliberately not a connected-components pass. Each cluster collects
// only the unvisited points that are close to its seed, so a chain of points
// spaced just under the threshold is split into several clusters. Scores
// produced by this package depend on that behaviour.
//
// # State
//
// A Detector holds only its immutable Params and classifier. Process keeps no
// state between calls, so the same frame always yields the same Tick. Distinct
// goroutines may share a Detector.
//
// # Limitations
//
// Markers smaller than the sampling stride can fall between grid points and be
// missed. There is no minimum size filter: a single stray matching sample
// produces a result and counts toward the score.
package detection
