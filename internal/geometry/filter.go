package geometry

import "github.com/ironsheep/annotated-augment/internal/annotation"

// Region is the sub-rectangle of a square padded canvas that holds image
// content. Bounds are inclusive on both ends.
type Region struct {
	X1, Y1, X2, Y2 float64
}

// ContentRegion returns the content region for an image of contentH x
// contentW centred on a square canvas whose side is the longer of the two.
//
// The padding on the shorter axis is (longer - shorter) / 2 using integer
// division, matching how the pad operation splits odd padding (the extra
// pixel goes to the bottom/right).
func ContentRegion(contentH, contentW int) Region {
	if contentW >= contentH {
		pad := (contentW - contentH) / 2
		return Region{
			X1: 0, X2: float64(contentW),
			Y1: float64(pad), Y2: float64(contentW - pad),
		}
	}
	pad := (contentH - contentW) / 2
	return Region{
		X1: float64(pad), X2: float64(contentH - pad),
		Y1: 0, Y2: float64(contentH),
	}
}

// Contains reports whether (x, y) lies inside the region, edges included.
func (r Region) Contains(x, y float64) bool {
	return x >= r.X1 && x <= r.X2 && y >= r.Y1 && y <= r.Y2
}

// FilterBox clips a box on the padded axis so it stays inside the content
// region. The other axis is left alone, and boxes are never dropped here:
// a box that collapses to zero area is still returned.
func FilterBox(b annotation.BBox, contentH, contentW int) annotation.BBox {
	r := ContentRegion(contentH, contentW)
	if contentW >= contentH {
		return annotation.BBox{X1: b.X1, Y1: max(b.Y1, r.Y1), X2: b.X2, Y2: min(b.Y2, r.Y2)}
	}
	return annotation.BBox{X1: max(b.X1, r.X1), Y1: b.Y1, X2: min(b.X2, r.X2), Y2: b.Y2}
}

// Point is a bare (x, y) coordinate as returned by the augmentation engine.
type Point struct {
	X, Y float64
}

// FilterKeypoints re-derives visibility for transformed points against the
// content region.
//
// A point whose incoming visibility is non-zero keeps that visibility when it
// lands inside the region and becomes invisible otherwise. Every invisible
// point, including ones that arrived invisible, is moved to (0, 0). The result
// has the same length and order as points; visible must be the same length.
func FilterKeypoints(points []Point, contentH, contentW int, visible []int) []annotation.KeyPoint {
	return FilterKeypointsIn(points, ContentRegion(contentH, contentW), visible)
}

// CanvasRegion is the region covering a whole width x height canvas.
func CanvasRegion(width, height int) Region {
	return Region{X2: float64(width), Y2: float64(height)}
}

// ClipBox clamps both axes of a box into r. Like FilterBox it never drops.
func ClipBox(b annotation.BBox, r Region) annotation.BBox {
	return annotation.BBox{
		X1: min(max(b.X1, r.X1), r.X2),
		Y1: min(max(b.Y1, r.Y1), r.Y2),
		X2: max(min(b.X2, r.X2), r.X1),
		Y2: max(min(b.Y2, r.Y2), r.Y1),
	}
}

// FilterKeypointsIn is FilterKeypoints against an explicit region, for
// canvases that are not the centred square FilterKeypoints assumes.
func FilterKeypointsIn(points []Point, r Region, visible []int) []annotation.KeyPoint {
	out := make([]annotation.KeyPoint, len(points))
	for i, p := range points {
		v := visible[i]
		if v > 0 && !r.Contains(p.X, p.Y) {
			v = 0
		}
		if v != 0 {
			out[i] = annotation.KeyPoint{X: p.X, Y: p.Y, Visible: v}
		}
	}
	return out
}
