package augment

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/annotated-augment/internal/annotation"
	"github.com/ironsheep/annotated-augment/internal/geometry"
)

// Kind identifies an operation type.
type Kind string

// Operation kinds.
const (
	KindLongestMaxSize     Kind = "longest_max_size"
	KindSmallestMaxSize    Kind = "smallest_max_size"
	KindResize             Kind = "resize"
	KindHorizontalFlip     Kind = "horizontal_flip"
	KindShiftScaleRotate   Kind = "shift_scale_rotate"
	KindRGBShift           Kind = "rgb_shift"
	KindBrightnessContrast Kind = "brightness_contrast"
	KindBlur               Kind = "blur"
	KindBBoxSafeCrop       Kind = "bbox_safe_crop"
	KindOneOrOther         Kind = "one_or_other"
	KindPad                Kind = "pad"
)

// Transform is one configured pipeline operation.
type Transform interface {
	// Kind returns the operation tag.
	Kind() Kind

	// Probability is the chance that the pipeline runs the operation.
	Probability() float64

	// Params describes the configuration, for logging and tooling.
	Params() map[string]any

	// Apply transforms the target in place. The pipeline has already decided
	// that the operation fires.
	Apply(t *Target, rng *rand.Rand) error
}

// Target is the mutable state threaded through one pipeline run.
type Target struct {
	Image       image.Image
	Masks       []*image.Gray
	Boxes       []annotation.BBox
	IDs         []int
	Points      []geometry.Point
	PointLabels []string

	executed []Transform
}

// Size returns the current image width and height.
func (t *Target) Size() (int, int) {
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

func (t *Target) record(op Transform) {
	t.executed = append(t.executed, op)
}

// mapBoxes maps every box corner through f and replaces each box with the
// bounding rectangle of its mapped corners.
func (t *Target) mapBoxes(f func(x, y float64) (float64, float64)) {
	for i, b := range t.Boxes {
		xs := [4]float64{}
		ys := [4]float64{}
		xs[0], ys[0] = f(b.X1, b.Y1)
		xs[1], ys[1] = f(b.X2, b.Y1)
		xs[2], ys[2] = f(b.X1, b.Y2)
		xs[3], ys[3] = f(b.X2, b.Y2)
		t.Boxes[i] = annotation.BBox{
			X1: math.Min(math.Min(xs[0], xs[1]), math.Min(xs[2], xs[3])),
			Y1: math.Min(math.Min(ys[0], ys[1]), math.Min(ys[2], ys[3])),
			X2: math.Max(math.Max(xs[0], xs[1]), math.Max(xs[2], xs[3])),
			Y2: math.Max(math.Max(ys[0], ys[1]), math.Max(ys[2], ys[3])),
		}
	}
}

func (t *Target) mapPoints(f func(x, y float64) (float64, float64)) {
	for i, p := range t.Points {
		t.Points[i].X, t.Points[i].Y = f(p.X, p.Y)
	}
}

func (t *Target) mapMasks(f func(m *image.Gray) *image.Gray) {
	for i, m := range t.Masks {
		t.Masks[i] = f(m)
	}
}

// scaleTo resizes image and masks to width x height and scales every
// coordinate by the same factors.
func (t *Target) scaleTo(width, height int) {
	// imaging.Resize reads a zero side as "keep aspect ratio".
	width, height = max(width, 1), max(height, 1)
	w, h := t.Size()
	if w == width && h == height {
		return
	}
	sx := float64(width) / float64(w)
	sy := float64(height) / float64(h)

	t.Image = imaging.Resize(t.Image, width, height, imaging.Linear)
	t.mapMasks(func(m *image.Gray) *image.Gray {
		return toGray(imaging.Resize(m, width, height, imaging.NearestNeighbor))
	})
	scale := func(x, y float64) (float64, float64) { return x * sx, y * sy }
	t.mapBoxes(scale)
	t.mapPoints(scale)
}

// toGray copies the red channel of an imaging result back into a mask plane.
func toGray(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			g.Pix[y*g.Stride+x] = row[x*4]
		}
	}
	return g
}

func cloneGray(m *image.Gray) *image.Gray {
	c := image.NewGray(image.Rect(0, 0, m.Bounds().Dx(), m.Bounds().Dy()))
	for y := 0; y < c.Rect.Dy(); y++ {
		src := m.Pix[y*m.Stride : y*m.Stride+c.Rect.Dx()]
		copy(c.Pix[y*c.Stride:], src)
	}
	return c
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
