// Package geometry holds the pure coordinate arithmetic shared by the
// augmentation engine and the transform adapter: aspect-preserving resize
// dimensions and the padded-canvas filters for boxes and keypoints.
package geometry

import "math"

// Side selects which image side a max-size bound applies to.
type Side int

const (
	// Longest bounds the longer side (longest-max-size resize).
	Longest Side = iota
	// Shortest bounds the shorter side (smallest-max-size resize).
	Shortest
)

func (s Side) pick(width, height int) int {
	if s == Shortest {
		return min(width, height)
	}
	return max(width, height)
}

// RoundHalfEven rounds to the nearest integer, resolving exact .5 ties to the
// even neighbour (2.5 -> 2, 3.5 -> 4).
func RoundHalfEven(v float64) int {
	return int(math.RoundToEven(v))
}

// MaxSizeDims returns the (height, width) an image takes after an
// aspect-preserving resize that maps the selected side to maxSize.
//
// When the selected side already equals maxSize the dimensions are returned
// untouched, so there is no rounding drift for no-op resizes.
func MaxSizeDims(height, width, maxSize int, side Side) (int, int) {
	ref := side.pick(width, height)
	if ref <= 0 {
		return height, width
	}
	scale := float64(maxSize) / float64(ref)
	if scale != 1.0 {
		height = max(RoundHalfEven(float64(height)*scale), 1)
		width = max(RoundHalfEven(float64(width)*scale), 1)
	}
	return height, width
}
