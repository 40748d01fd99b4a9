package adapter

import (
	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/annotated-augment/internal/annotation"
	"github.com/ironsheep/annotated-augment/internal/augment"
	"github.com/ironsheep/annotated-augment/internal/geometry"
)

// contentRegion is the part of the output canvas that holds image content.
// Boxes are clipped to it and keypoints outside it lose their visibility.
type contentRegion struct {
	// centred is set when the canvas is the square a pad step builds around
	// content of contentH x contentW; the centred filters apply.
	centred            bool
	contentH, contentW int
	region             geometry.Region
}

func (r contentRegion) clip(b annotation.BBox) annotation.BBox {
	if r.centred {
		return geometry.FilterBox(b, r.contentH, r.contentW)
	}
	return geometry.ClipBox(b, r.region)
}

func (r contentRegion) filterKeypoints(points []geometry.Point, visible []int) []annotation.KeyPoint {
	if r.centred {
		return geometry.FilterKeypoints(points, r.contentH, r.contentW, visible)
	}
	return geometry.FilterKeypointsIn(points, r.region, visible)
}

// contentRegion replays the operations that ran to locate the image content
// on the canvas of the first pad. Resizes, flips and further pads that follow
// it move that rectangle with the image. Without a pad the whole output
// canvas is content.
func (a *Adapter) contentRegion(in *annotation.Sample, res *augment.Output) contentRegion {
	b := res.Image.Bounds()
	outW, outH := b.Dx(), b.Dy()
	whole := contentRegion{region: geometry.CanvasRegion(outW, outH)}

	ib := in.Image.Bounds()
	w, h := ib.Dx(), ib.Dy()
	var (
		region     geometry.Region
		padded     bool
		moved      bool
		padW, padH int
	)
	for _, op := range res.Executed {
		nw, nh := w, h
		switch o := op.(type) {
		case augment.LongestMaxSize:
			nh, nw = geometry.MaxSizeDims(h, w, o.MaxSize, geometry.Longest)
		case augment.SmallestMaxSize:
			nh, nw = geometry.MaxSizeDims(h, w, o.MaxSize, geometry.Shortest)
		case augment.Resize:
			nh, nw = o.Height, o.Width
		case augment.BBoxSafeCrop:
			nh, nw = o.Height, o.Width
		case augment.HorizontalFlip:
			if padded {
				fw := float64(w)
				region.X1, region.X2 = fw-region.X2, fw-region.X1
				moved = true
			}
		case augment.Pad:
			top, left := o.Offsets(w, h)
			if padded {
				dx, dy := float64(left), float64(top)
				region = geometry.Region{X1: region.X1 + dx, Y1: region.Y1 + dy, X2: region.X2 + dx, Y2: region.Y2 + dy}
				moved = true
			} else {
				region = geometry.Region{
					X1: float64(left), Y1: float64(top),
					X2: float64(left + w), Y2: float64(top + h),
				}
				padded, padW, padH = true, w, h
			}
			nw, nh = max(w, o.MinWidth), max(h, o.MinHeight)
		}
		if padded && op.Kind() != augment.KindPad && (nw != w || nh != h) {
			sx, sy := float64(nw)/float64(w), float64(nh)/float64(h)
			region = geometry.Region{X1: region.X1 * sx, Y1: region.Y1 * sy, X2: region.X2 * sx, Y2: region.Y2 * sy}
			moved = true
		}
		w, h = nw, nh
	}
	if !padded {
		return whole
	}
	a.log.WithFields(log.Fields{"content": [2]int{padW, padH}, "region": region}).Debug("pad content region")

	if !moved && outW == outH && outW == max(padW, padH) {
		return contentRegion{centred: true, contentH: padH, contentW: padW}
	}
	return contentRegion{region: region}
}

// untrackedAfterPad returns the first operation in ops that follows a pad and
// moves content by an amount the output does not record.
func untrackedAfterPad(ops []augment.Transform) (augment.Transform, bool) {
	padded := false
	for _, op := range augment.Flatten(ops) {
		switch op.Kind() {
		case augment.KindPad:
			padded = true
		case augment.KindBBoxSafeCrop, augment.KindShiftScaleRotate, augment.KindOneOrOther:
			if padded {
				return op, true
			}
		}
	}
	return nil, false
}
