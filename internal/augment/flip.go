package augment

import (
	"image"
	"math/rand/v2"

	"github.com/disintegration/imaging"
)

// HorizontalFlip mirrors the sample around the vertical axis with
// probability P.
type HorizontalFlip struct {
	P float64
}

func (HorizontalFlip) Kind() Kind { return KindHorizontalFlip }
func (o HorizontalFlip) Probability() float64 { return o.P }
func (o HorizontalFlip) Params() map[string]any { return map[string]any{"p": o.P} }

func (o HorizontalFlip) Apply(t *Target, _ *rand.Rand) error {
	w, _ := t.Size()
	fw := float64(w)

	t.Image = imaging.FlipH(t.Image)
	t.mapMasks(func(m *image.Gray) *image.Gray { return toGray(imaging.FlipH(m)) })

	// Box edges sit between pixels, keypoints sit on pixel indices.
	t.mapBoxes(func(x, y float64) (float64, float64) { return fw - x, y })
	t.mapPoints(func(x, y float64) (float64, float64) { return fw - 1 - x, y })
	return nil
}
