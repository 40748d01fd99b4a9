package augment

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// ShiftScaleRotate applies a random affine transform with probability P:
// rotation by an angle in [-RotateLimit, RotateLimit] degrees and scaling by a
// factor in [1-ScaleLimit, 1+ScaleLimit], both around the image centre,
// followed by a shift of up to ShiftLimit of the image size on each axis.
//
// The output keeps the input size; uncovered pixels take Fill.
type ShiftScaleRotate struct {
	ShiftLimit  float64
	ScaleLimit  float64
	RotateLimit float64
	P           float64
	Fill        color.Color
}

func (ShiftScaleRotate) Kind() Kind { return KindShiftScaleRotate }
func (o ShiftScaleRotate) Probability() float64 { return o.P }
func (o ShiftScaleRotate) Params() map[string]any {
	return map[string]any{
		"shift_limit":  o.ShiftLimit,
		"scale_limit":  o.ScaleLimit,
		"rotate_limit": o.RotateLimit,
		"p":            o.P,
	}
}

func (o ShiftScaleRotate) Apply(t *Target, rng *rand.Rand) error {
	angle := uniform(rng, -o.RotateLimit, o.RotateLimit)
	scale := uniform(rng, 1-o.ScaleLimit, 1+o.ScaleLimit)
	dx := uniform(rng, -o.ShiftLimit, o.ShiftLimit)
	dy := uniform(rng, -o.ShiftLimit, o.ShiftLimit)

	w, h := t.Size()
	m := affineMatrix(w, h, angle, scale, dx, dy)
	t.warp(m, o.Fill)
	return nil
}

// affineMatrix builds the source-to-destination matrix for a rotation by
// angle degrees (counter-clockwise on screen) and a scale around the image
// centre, then a shift of (dx*w, dy*h).
func affineMatrix(w, h int, angle, scale, dx, dy float64) f64.Aff3 {
	rad := angle * math.Pi / 180
	a := scale * math.Cos(rad)
	b := scale * math.Sin(rad)
	cx, cy := float64(w)/2, float64(h)/2
	return f64.Aff3{
		a, b, (1-a)*cx - b*cy + dx*float64(w),
		-b, a, b*cx + (1-a)*cy + dy*float64(h),
	}
}

// warp maps the image, masks and coordinates through m, keeping the size.
func (t *Target) warp(m f64.Aff3, fill color.Color) {
	if fill == nil {
		fill = color.Black
	}
	w, h := t.Size()
	r := image.Rect(0, 0, w, h)

	dst := imaging.New(w, h, fill)
	src := t.Image
	draw.BiLinear.Transform(dst, m, src, src.Bounds(), draw.Src, nil)
	t.Image = dst

	t.mapMasks(func(g *image.Gray) *image.Gray {
		out := image.NewGray(r)
		draw.NearestNeighbor.Transform(out, m, g, g.Bounds(), draw.Src, nil)
		return out
	})

	apply := func(x, y float64) (float64, float64) {
		return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
	}
	t.mapBoxes(apply)
	t.mapPoints(apply)
}
