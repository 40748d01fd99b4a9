package augment

import (
	"image/color"
	"math/rand/v2"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
)

// RGBShift adds an independent random offset to each colour channel with
// probability P. Offsets are drawn from [-Limit, Limit] per channel, in 8-bit
// units.
type RGBShift struct {
	RLimit float64
	GLimit float64
	BLimit float64
	P      float64
}

func (RGBShift) Kind() Kind { return KindRGBShift }
func (o RGBShift) Probability() float64 { return o.P }
func (o RGBShift) Params() map[string]any {
	return map[string]any{"r_shift_limit": o.RLimit, "g_shift_limit": o.GLimit, "b_shift_limit": o.BLimit, "p": o.P}
}

func (o RGBShift) Apply(t *Target, rng *rand.Rand) error {
	dr := uniform(rng, -o.RLimit, o.RLimit)
	dg := uniform(rng, -o.GLimit, o.GLimit)
	db := uniform(rng, -o.BLimit, o.BLimit)

	t.Image = adjust.Apply(t.Image, func(c color.RGBA) color.RGBA {
		return color.RGBA{
			R: shiftChannel(c.R, dr),
			G: shiftChannel(c.G, dg),
			B: shiftChannel(c.B, db),
			A: c.A,
		}
	})
	return nil
}

func shiftChannel(v uint8, d float64) uint8 {
	return uint8(clampf(float64(v)+d, 0, 255))
}

// BrightnessContrast randomly changes brightness and contrast with
// probability P. Both changes are relative, drawn from [-Limit, Limit].
type BrightnessContrast struct {
	BrightnessLimit float64
	ContrastLimit   float64
	P               float64
}

func (BrightnessContrast) Kind() Kind { return KindBrightnessContrast }
func (o BrightnessContrast) Probability() float64 { return o.P }
func (o BrightnessContrast) Params() map[string]any {
	return map[string]any{"brightness_limit": o.BrightnessLimit, "contrast_limit": o.ContrastLimit, "p": o.P}
}

func (o BrightnessContrast) Apply(t *Target, rng *rand.Rand) error {
	brightness := uniform(rng, -o.BrightnessLimit, o.BrightnessLimit)
	contrast := uniform(rng, -o.ContrastLimit, o.ContrastLimit)

	t.Image = adjust.Contrast(adjust.Brightness(t.Image, brightness), contrast)
	return nil
}

// Blur applies a box blur with probability P. The kernel size is an odd
// number drawn from [MinKernel, MaxKernel]; a kernel of 1 leaves the image
// unchanged.
type Blur struct {
	MinKernel int
	MaxKernel int
	P         float64
}

func (Blur) Kind() Kind { return KindBlur }
func (o Blur) Probability() float64 { return o.P }
func (o Blur) Params() map[string]any {
	return map[string]any{"blur_limit": []int{o.MinKernel, o.MaxKernel}, "p": o.P}
}

func (o Blur) Apply(t *Target, rng *rand.Rand) error {
	k := o.kernel(rng)
	if k <= 1 {
		return nil
	}
	t.Image = blur.Box(t.Image, float64(k-1)/2)
	return nil
}

// kernel picks an odd kernel size in [MinKernel, MaxKernel].
func (o Blur) kernel(rng *rand.Rand) int {
	lo := max(o.MinKernel, 1)
	if lo%2 == 0 {
		lo++
	}
	hi := o.MaxKernel
	if hi < lo {
		return lo
	}
	choices := (hi-lo)/2 + 1
	return lo + 2*rng.IntN(choices)
}
