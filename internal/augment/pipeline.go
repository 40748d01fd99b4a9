package augment

import (
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/ironsheep/annotated-augment/internal/annotation"
	"github.com/ironsheep/annotated-augment/internal/geometry"
)

// Plan says which annotation branches a run must track. It is fixed for the
// whole run.
type Plan struct {
	Boxes     bool
	Keypoints bool
}

// Input is everything a pipeline run consumes. Boxes and IDs are parallel
// when Plan.Boxes is set; Points and PointLabels are parallel when
// Plan.Keypoints is set.
type Input struct {
	Image       image.Image
	Masks       []*image.Gray
	Boxes       []annotation.BBox
	IDs         []int
	Points      []geometry.Point
	PointLabels []string
}

// Output is the result of a pipeline run.
type Output struct {
	Image       image.Image
	Masks       []*image.Gray
	Boxes       []annotation.BBox
	IDs         []int
	Points      []geometry.Point
	PointLabels []string

	// Executed lists the operations that actually ran, in order. A
	// OneOrOther entry is followed by the branch it picked.
	Executed []Transform
}

// Pipeline is an immutable, ordered list of operations.
type Pipeline struct {
	ops []Transform
}

// NewPipeline returns a pipeline over a copy of ops.
func NewPipeline(ops []Transform) *Pipeline {
	return &Pipeline{ops: append([]Transform(nil), ops...)}
}

// Transforms returns a copy of the top-level operation list.
func (p *Pipeline) Transforms() []Transform {
	return append([]Transform(nil), p.ops...)
}

// Run pushes one sample through every operation. Each operation draws from
// rng once per call, so boxes, masks and keypoints see the same geometry.
//
// The input is not modified: slices and masks are copied before the first
// operation runs.
func (p *Pipeline) Run(in Input, plan Plan, rng *rand.Rand) (*Output, error) {
	if in.Image == nil {
		return nil, fmt.Errorf("pipeline input has no image")
	}

	t := &Target{Image: in.Image}
	t.Masks = make([]*image.Gray, len(in.Masks))
	for i, m := range in.Masks {
		t.Masks[i] = cloneGray(m)
	}
	t.IDs = append([]int{}, in.IDs...)
	if plan.Boxes {
		if len(in.Boxes) != len(in.IDs) {
			return nil, fmt.Errorf("pipeline input has %d boxes and %d ids", len(in.Boxes), len(in.IDs))
		}
		t.Boxes = append([]annotation.BBox{}, in.Boxes...)
		t.dropDegenerateBoxes()
	}
	if plan.Keypoints {
		t.Points = append([]geometry.Point{}, in.Points...)
		t.PointLabels = append([]string{}, in.PointLabels...)
	}

	for _, op := range p.ops {
		if !fires(rng, op.Probability()) {
			continue
		}
		t.record(op)
		if err := op.Apply(t, rng); err != nil {
			return nil, fmt.Errorf("%s: %w", op.Kind(), err)
		}
		if plan.Boxes {
			t.dropDegenerateBoxes()
		}
	}

	out := &Output{
		Image:    t.Image,
		Masks:    t.Masks,
		IDs:      t.IDs,
		Executed: t.executed,
	}
	if plan.Boxes {
		out.Boxes = t.Boxes
	}
	if plan.Keypoints {
		out.Points = t.Points
		out.PointLabels = t.PointLabels
	}
	return out, nil
}

// dropDegenerateBoxes clips boxes to the image and removes the ones left
// with zero area, keeping IDs aligned.
func (t *Target) dropDegenerateBoxes() {
	w, h := t.Size()
	boxes := t.Boxes[:0]
	ids := t.IDs[:0]
	for i, b := range t.Boxes {
		c := annotation.BBox{
			X1: clampf(b.X1, 0, float64(w)),
			Y1: clampf(b.Y1, 0, float64(h)),
			X2: clampf(b.X2, 0, float64(w)),
			Y2: clampf(b.Y2, 0, float64(h)),
		}
		if c.Area() == 0 {
			continue
		}
		boxes = append(boxes, c)
		ids = append(ids, t.IDs[i])
	}
	t.Boxes = boxes
	t.IDs = ids
}

func fires(rng *rand.Rand, p float64) bool {
	if p >= 1 {
		return true
	}
	if p <= 0 {
		return false
	}
	return rng.Float64() < p
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
