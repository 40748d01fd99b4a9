// Package adapter runs annotated samples through an augmentation pipeline and
// reconciles the pipeline's geometric side effects with every annotation
// field.
//
// One Apply call is one synchronous pass: validate, plan, run the engine once,
// rebuild the annotations. An Adapter owns a random source and is not safe for
// concurrent use; give each worker its own Adapter over the shared, immutable
// operation list.
package adapter

import (
	"fmt"
	"math/rand/v2"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/annotated-augment/internal/annotation"
	"github.com/ironsheep/annotated-augment/internal/augment"
	"github.com/ironsheep/annotated-augment/internal/geometry"
)

// Adapter applies one operation list to annotated samples.
type Adapter struct {
	pipeline *augment.Pipeline
	ops      []augment.Transform
	rng      *rand.Rand
	log      log.FieldLogger
	rec      Recorder
}

// New builds an adapter over ops. Boxes are tracked as absolute
// (x1, y1, x2, y2) and keypoints as absolute (x, y) with a per-point label
// channel; keypoint visibility is kept by the adapter, not the engine.
func New(ops []augment.Transform, opts ...Option) *Adapter {
	a := &Adapter{
		pipeline: augment.NewPipeline(ops),
		ops:      augment.Flatten(ops),
		log:      log.StandardLogger(),
		rec:      nopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return a
}

// Transforms returns the adapter's flattened operation list.
func (a *Adapter) Transforms() []augment.Transform {
	return append([]augment.Transform(nil), a.ops...)
}

// plan is the per-call execution plan, derived once from the fields present.
type plan struct {
	labels, boxes, masks, crowds, keypoints bool
	instances                               int
}

func planFor(s *annotation.Sample) plan {
	return plan{
		labels:    s.Labels != nil,
		boxes:     s.BBoxes != nil,
		masks:     s.Masks != nil,
		crowds:    s.IsCrowds != nil,
		keypoints: s.Keypoints != nil,
		instances: s.Instances(),
	}
}

// Apply transforms one sample. The input is never modified; the result is a
// new sample holding exactly the fields that were supplied, plus Height and
// Width of the transformed image.
//
// Instances whose box is removed by the engine, whose keypoints all end up
// suppressed, or whose mask is emptied are dropped from every field. That is
// not an error. Errors are *SampleError for malformed input,
// *ConfigurationError when the pipeline cannot serve the sample and
// *InternalConsistencyError when the engine breaks its keypoint contract.
func (a *Adapter) Apply(in *annotation.Sample) (*annotation.Sample, error) {
	out, err := a.apply(in)
	if err != nil {
		a.rec.ObserveError(err)
		return nil, err
	}
	return out, nil
}

func (a *Adapter) apply(in *annotation.Sample) (*annotation.Sample, error) {
	if in == nil {
		return nil, &SampleError{Err: fmt.Errorf("nil sample")}
	}
	if err := in.Validate(); err != nil {
		return nil, &SampleError{Err: err}
	}
	p := planFor(in)

	if p.keypoints && augment.Has(a.ops, augment.KindOneOrOther) {
		return nil, &ConfigurationError{
			Reason: "the crop-or-resize step cannot track keypoints; build the pipeline with crop off",
		}
	}

	if op, ok := untrackedAfterPad(a.ops); ok {
		return nil, &ConfigurationError{
			Reason: fmt.Sprintf("%s after pad moves content off the padded region; pad must follow it", op.Kind()),
		}
	}

	input, visible, counts := a.buildInput(in, p)
	res, err := a.pipeline.Run(input, augment.Plan{Boxes: p.boxes, Keypoints: p.keypoints}, a.rng)
	if err != nil {
		return nil, fmt.Errorf("augmentation pipeline: %w", err)
	}

	b := res.Image.Bounds()
	out := &annotation.Sample{Image: res.Image, Height: b.Dy(), Width: b.Dx()}
	region := a.contentRegion(in, res)

	// alive[id] is the verdict per original instance: returned by the engine,
	// then the keypoint and mask rules.
	alive := make([]bool, p.instances)
	for _, id := range res.IDs {
		alive[id] = true
	}
	a.noteDrops(p.instances-len(res.IDs), DropBBox)

	var groups []annotation.KeyPoints
	if p.keypoints {
		groups, err = a.regroupKeypoints(in, res, region, visible, counts)
		if err != nil {
			return nil, err
		}
		n := 0
		for id := range groups {
			if alive[id] && groups[id].Sum() == 0 {
				alive[id] = false
				n++
			}
		}
		a.noteDrops(n, DropKeypoints)
	}

	if p.masks {
		n := 0
		for id, m := range res.Masks {
			if alive[id] && annotation.MaskArea(m) == 0 && annotation.MaskArea(in.Masks[id]) > 0 {
				alive[id] = false
				n++
			}
		}
		a.noteDrops(n, DropMask)
	}

	// Clipping to the content region can empty a box the engine kept.
	boxByID := make(map[int]annotation.BBox, len(res.Boxes))
	if p.boxes {
		n := 0
		for i, b := range res.Boxes {
			id := res.IDs[i]
			clipped := region.clip(b)
			boxByID[id] = clipped
			if alive[id] && !clipped.Valid() {
				alive[id] = false
				n++
			}
		}
		a.noteDrops(n, DropBBox)
	}

	var survivors []int
	for _, id := range res.IDs {
		if alive[id] {
			survivors = append(survivors, id)
		}
	}

	if p.labels {
		out.Labels = make([]int, 0, len(survivors))
		for _, id := range survivors {
			out.Labels = append(out.Labels, in.Labels[id])
		}
	}
	if p.boxes {
		out.BBoxes = make([]annotation.BBox, 0, len(survivors))
		for _, id := range survivors {
			out.BBoxes = append(out.BBoxes, boxByID[id])
		}
	}
	if p.masks {
		out.Masks = make(annotation.MaskArray, 0, len(survivors))
		for _, id := range survivors {
			out.Masks = append(out.Masks, res.Masks[id])
		}
	}
	if p.crowds {
		out.IsCrowds = make([]int, 0, len(survivors))
		for _, id := range survivors {
			out.IsCrowds = append(out.IsCrowds, in.IsCrowds[id])
		}
	}
	if p.keypoints {
		out.Keypoints = make([]annotation.KeyPoints, 0, len(survivors))
		for _, id := range survivors {
			out.Keypoints = append(out.Keypoints, groups[id])
		}
	}

	a.rec.ObserveApply(p.instances, len(survivors))
	return out, nil
}

// buildInput translates the sample into engine input: synthetic ids instead
// of labels, flattened keypoints with their label channel. It returns the
// flattened visibilities and the per-instance point counts alongside.
func (a *Adapter) buildInput(in *annotation.Sample, p plan) (augment.Input, []int, []int) {
	input := augment.Input{Image: in.Image}

	input.IDs = make([]int, p.instances)
	for i := range input.IDs {
		input.IDs[i] = i
	}
	if p.boxes {
		input.Boxes = in.BBoxes
	}
	if p.masks {
		input.Masks = in.Masks
	}

	var visible, counts []int
	if p.keypoints {
		counts = make([]int, len(in.Keypoints))
		for i, k := range in.Keypoints {
			counts[i] = len(k.Points)
			for j, pt := range k.Points {
				input.Points = append(input.Points, geometry.Point{X: pt.X, Y: pt.Y})
				label := ""
				if k.Labels != nil {
					label = k.Labels[j]
				}
				input.PointLabels = append(input.PointLabels, label)
				visible = append(visible, pt.Visible)
			}
		}
	}
	return input, visible, counts
}

// regroupKeypoints filters the engine's flat point list against the content
// region and splits it back into one group per original instance.
func (a *Adapter) regroupKeypoints(in *annotation.Sample, res *augment.Output, region contentRegion,
	visible, counts []int) ([]annotation.KeyPoints, error) {
	if len(res.Points) != len(visible) {
		return nil, &InternalConsistencyError{
			Reason: fmt.Sprintf("pipeline returned %d keypoints for %d sent", len(res.Points), len(visible)),
		}
	}

	filtered := region.filterKeypoints(res.Points, visible)

	groups := make([]annotation.KeyPoints, len(counts))
	offset := 0
	for i, n := range counts {
		g := annotation.KeyPoints{Points: filtered[offset : offset+n : offset+n]}
		if in.Keypoints[i].Labels != nil {
			g.Labels = append([]string{}, res.PointLabels[offset:offset+n]...)
		}
		groups[i] = g
		offset += n
	}
	return groups, nil
}

func (a *Adapter) noteDrops(n int, reason string) {
	if n <= 0 {
		return
	}
	a.rec.ObserveDrop(reason, n)
	a.log.WithFields(log.Fields{"reason": reason, "count": n}).Debug("dropped instances")
}
