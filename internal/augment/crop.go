package augment

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/annotated-augment/internal/annotation"
)

// BBoxSafeCrop crops a random region that still contains every box, then
// resizes it to Height x Width.
//
// ErosionRate shrinks each box by that fraction of its size before the union
// is taken, so the crop may cut slightly into boxes. With no boxes the crop
// is a random region with the image's aspect ratio.
type BBoxSafeCrop struct {
	Height      int
	Width       int
	ErosionRate float64
	P           float64
}

func (BBoxSafeCrop) Kind() Kind { return KindBBoxSafeCrop }
func (o BBoxSafeCrop) Probability() float64 { return o.P }
func (o BBoxSafeCrop) Params() map[string]any {
	return map[string]any{"height": o.Height, "width": o.Width, "erosion_rate": o.ErosionRate, "p": o.P}
}

func (o BBoxSafeCrop) Apply(t *Target, rng *rand.Rand) error {
	if o.Height <= 0 || o.Width <= 0 {
		return fmt.Errorf("invalid crop size %dx%d", o.Height, o.Width)
	}

	r := o.region(t, rng)
	if r.Empty() {
		return fmt.Errorf("empty crop region %v", r)
	}

	t.Image = imaging.Crop(t.Image, r)
	t.mapMasks(func(m *image.Gray) *image.Gray { return toGray(imaging.Crop(m, r)) })

	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	shift := func(x, y float64) (float64, float64) { return x - ox, y - oy }
	t.mapBoxes(shift)
	t.mapPoints(shift)

	t.scaleTo(o.Width, o.Height)
	return nil
}

func (o BBoxSafeCrop) region(t *Target, rng *rand.Rand) image.Rectangle {
	w, h := t.Size()

	if len(t.Boxes) == 0 {
		erosive := int(float64(h) * (1 - o.ErosionRate))
		cropH := h
		if erosive < h {
			cropH = erosive + rng.IntN(h-erosive+1)
		}
		cropW := min(w, int(float64(cropH)*float64(w)/float64(h)))
		y := int(float64(h-cropH) * rng.Float64())
		x := int(float64(w-cropW) * rng.Float64())
		return image.Rect(x, y, x+cropW, y+cropH)
	}

	u := o.union(t.Boxes)
	bx := u.X1 * rng.Float64()
	by := u.Y1 * rng.Float64()
	bx2 := u.X2 + (float64(w)-u.X2)*rng.Float64()
	by2 := u.Y2 + (float64(h)-u.Y2)*rng.Float64()

	r := image.Rect(
		int(math.Floor(bx)), int(math.Floor(by)),
		int(math.Ceil(bx2)), int(math.Ceil(by2)),
	)
	return r.Intersect(image.Rect(0, 0, w, h))
}

// union returns the bounding box of all eroded boxes.
func (o BBoxSafeCrop) union(boxes []annotation.BBox) annotation.BBox {
	u := annotation.BBox{X1: math.Inf(1), Y1: math.Inf(1), X2: math.Inf(-1), Y2: math.Inf(-1)}
	for _, b := range boxes {
		ew := o.ErosionRate * b.Width()
		eh := o.ErosionRate * b.Height()
		u.X1 = math.Min(u.X1, b.X1+ew)
		u.Y1 = math.Min(u.Y1, b.Y1+eh)
		u.X2 = math.Max(u.X2, b.X2-ew)
		u.Y2 = math.Max(u.Y2, b.Y2-eh)
	}
	return u
}
