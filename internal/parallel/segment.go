// Package parallel implements the host-side grayscale path: the segmenter
// that partitions an image into an n x n grid of tiles, a worker pool with
// per-worker queues and work stealing, and the coordinator that dispatches
// one filter job per tile and writes the results back.
//
// Thread safety: WorkerPool is safe for concurrent use. The coordinator
// (Run) owns its destination image exclusively; tiles are disjoint by
// construction, so no locking is needed when pasting results.
package parallel

import (
	"errors"
	"fmt"
)

// Segmenter errors.
var (
	// ErrInvalidWorkerCount is returned when the band count is less than 1.
	ErrInvalidWorkerCount = errors.New("parallel: worker count must be at least 1")

	// ErrInvalidDimensions is returned when width or height is negative.
	ErrInvalidDimensions = errors.New("parallel: invalid dimensions")
)

// Segment is one tile of the partition: the half-open pixel ranges
// [X0, X1) x [Y0, Y1).
type Segment struct {
	X0, X1 int
	Y0, Y1 int
}

// Width returns the tile width in pixels.
func (s Segment) Width() int { return s.X1 - s.X0 }

// Height returns the tile height in pixels.
func (s Segment) Height() int { return s.Y1 - s.Y0 }

// Empty reports whether the tile covers no pixels.
func (s Segment) Empty() bool { return s.Width() == 0 || s.Height() == 0 }

// Contains reports whether pixel (x, y) lies inside the tile.
func (s Segment) Contains(x, y int) bool {
	return x >= s.X0 && x < s.X1 && y >= s.Y0 && y < s.Y1
}

func (s Segment) String() string {
	return fmt.Sprintf("[%d,%d)x[%d,%d)", s.X0, s.X1, s.Y0, s.Y1)
}

// ComputeSegments partitions a width x height image into an n x n grid.
//
// Each axis is split into n bands of width/n (resp. height/n) pixels; the
// last column and the last row absorb the remainder, so the segments cover
// the image exactly with no overlap. When n exceeds a dimension the leading
// bands degenerate to zero extent. Segments are returned in row-major order,
// but only their coverage is significant.
func ComputeSegments(width, height, n int) ([]Segment, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkerCount, n)
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	perX := width / n
	perY := height / n

	segments := make([]Segment, 0, n*n)
	for i := range n {
		y0 := i * perY
		y1 := y0 + perY
		// Bottom row takes the leftover height
		if i == n-1 {
			y1 = height
		}

		for j := range n {
			x0 := j * perX
			x1 := x0 + perX
			// Right column takes the leftover width
			if j == n-1 {
				x1 = width
			}

			segments = append(segments, Segment{X0: x0, X1: x1, Y0: y0, Y1: y1})
		}
	}

	return segments, nil
}
