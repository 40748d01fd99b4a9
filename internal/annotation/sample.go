package annotation

import (
	"fmt"
	"image"
)

// BBox is an axis-aligned box in absolute pixel coordinates.
type BBox struct {
	X1 float64 `json:"x1"` // Left edge
	Y1 float64 `json:"y1"` // Top edge
	X2 float64 `json:"x2"` // Right edge
	Y2 float64 `json:"y2"` // Bottom edge
}

// FromXYXY builds a box from corner coordinates.
func FromXYXY(x1, y1, x2, y2 float64) BBox {
	return BBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// XYXY returns the corner coordinates in (x1, y1, x2, y2) order.
func (b BBox) XYXY() (float64, float64, float64, float64) {
	return b.X1, b.Y1, b.X2, b.Y2
}

// Width returns X2 - X1.
func (b BBox) Width() float64 { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

// Area returns the box area, or 0 for an inverted or empty box.
func (b BBox) Area() float64 {
	if b.X2 <= b.X1 || b.Y2 <= b.Y1 {
		return 0
	}
	return b.Width() * b.Height()
}

// Valid reports whether the box has a positive extent on both axes.
func (b BBox) Valid() bool {
	return b.X1 < b.X2 && b.Y1 < b.Y2
}

// KeyPoint is a single landmark with its visibility flag.
//
// Visibility follows the COCO convention: 0 = not labelled or not visible,
// 1 = labelled but occluded, 2 = labelled and visible. Any non-zero value is
// treated as visible by the geometry filters.
type KeyPoint struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Visible int     `json:"visible"`
}

// KeyPoints is the ordered keypoint set of one instance together with the
// parallel per-point labels (e.g. "nose", "left_eye").
type KeyPoints struct {
	Points []KeyPoint `json:"points"`
	Labels []string   `json:"labels,omitempty"`
}

// FromXYV builds a keypoint set from a flat (x, y, v, x, y, v, ...) slice.
func FromXYV(xyv []float64, labels []string) (KeyPoints, error) {
	if len(xyv)%3 != 0 {
		return KeyPoints{}, fmt.Errorf("flat keypoint slice length %d is not a multiple of 3", len(xyv))
	}
	points := make([]KeyPoint, 0, len(xyv)/3)
	for i := 0; i < len(xyv); i += 3 {
		points = append(points, KeyPoint{X: xyv[i], Y: xyv[i+1], Visible: int(xyv[i+2])})
	}
	return KeyPoints{Points: points, Labels: labels}, nil
}

// XYV flattens the set to (x, y, v, ...) triples.
func (k KeyPoints) XYV() []float64 {
	out := make([]float64, 0, 3*len(k.Points))
	for _, p := range k.Points {
		out = append(out, p.X, p.Y, float64(p.Visible))
	}
	return out
}

// Sum adds up every x, y and visibility value. A zero sum marks a group
// whose points were all suppressed.
func (k KeyPoints) Sum() float64 {
	var s float64
	for _, p := range k.Points {
		s += p.X + p.Y + float64(p.Visible)
	}
	return s
}

// MaskArray is a stack of binary instance masks, one per instance.
type MaskArray []*image.Gray

// Sample is one image and its aligned annotation collections.
type Sample struct {
	Image image.Image

	// Height and Width are the image dimensions. They are filled in on every
	// sample returned by the adapter; on input they are informational.
	Height int
	Width  int

	Labels    []int
	BBoxes    []BBox
	Masks     MaskArray
	IsCrowds  []int
	Keypoints []KeyPoints
}

// Instances returns the instance count implied by the supplied fields, taken
// from the first present field in the order labels, boxes, masks, crowd
// flags, keypoints.
func (s *Sample) Instances() int {
	switch {
	case s.Labels != nil:
		return len(s.Labels)
	case s.BBoxes != nil:
		return len(s.BBoxes)
	case s.Masks != nil:
		return len(s.Masks)
	case s.IsCrowds != nil:
		return len(s.IsCrowds)
	case s.Keypoints != nil:
		return len(s.Keypoints)
	}
	return 0
}

// Validate checks that every supplied instance-indexed field has the same
// length, that boxes are well formed, that masks match the image size and that
// every keypoint group carries one label per point when labels are given.
func (s *Sample) Validate() error {
	if s.Image == nil {
		return fmt.Errorf("sample has no image")
	}
	n := s.Instances()
	check := func(name string, present bool, got int) error {
		if present && got != n {
			return fmt.Errorf("%s has %d entries, want %d", name, got, n)
		}
		return nil
	}
	if err := check("labels", s.Labels != nil, len(s.Labels)); err != nil {
		return err
	}
	if err := check("bboxes", s.BBoxes != nil, len(s.BBoxes)); err != nil {
		return err
	}
	if err := check("masks", s.Masks != nil, len(s.Masks)); err != nil {
		return err
	}
	if err := check("iscrowds", s.IsCrowds != nil, len(s.IsCrowds)); err != nil {
		return err
	}
	if err := check("keypoints", s.Keypoints != nil, len(s.Keypoints)); err != nil {
		return err
	}

	for i, b := range s.BBoxes {
		if !b.Valid() {
			return fmt.Errorf("bbox %d (%g,%g)-(%g,%g): x1 must be < x2, y1 must be < y2",
				i, b.X1, b.Y1, b.X2, b.Y2)
		}
	}

	size := s.Image.Bounds().Size()
	for i, m := range s.Masks {
		if m == nil {
			return fmt.Errorf("mask %d is nil", i)
		}
		if m.Bounds().Size() != size {
			return fmt.Errorf("mask %d is %dx%d, image is %dx%d",
				i, m.Bounds().Dx(), m.Bounds().Dy(), size.X, size.Y)
		}
	}

	for i, k := range s.Keypoints {
		if k.Labels != nil && len(k.Labels) != len(k.Points) {
			return fmt.Errorf("keypoints %d has %d labels for %d points", i, len(k.Labels), len(k.Points))
		}
	}
	return nil
}
