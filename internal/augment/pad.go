package augment

import (
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// DefaultFill is the canvas colour used for padding and uncovered affine
// regions: RGB(124, 116, 104).
const DefaultFill = "#7c7468"

// ParseFill parses a "#rrggbb" colour into an opaque color.Color.
func ParseFill(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid fill colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func mustFill(hex string) color.Color {
	c, err := ParseFill(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// Pad centres the image on a canvas of at least MinHeight x MinWidth filled
// with Fill. Axes that are already large enough are left alone. Odd padding
// puts the extra pixel at the bottom/right.
type Pad struct {
	MinHeight int
	MinWidth  int
	Fill      color.Color
}

func (Pad) Kind() Kind { return KindPad }
func (Pad) Probability() float64 { return 1 }
func (o Pad) Params() map[string]any {
	params := map[string]any{"min_height": o.MinHeight, "min_width": o.MinWidth}
	if o.Fill != nil {
		r, g, b, _ := o.Fill.RGBA()
		params["fill"] = fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
	}
	return params
}

// Offsets returns the top and left padding for an image of the given size.
func (o Pad) Offsets(width, height int) (top, left int) {
	if height < o.MinHeight {
		top = (o.MinHeight - height) / 2
	}
	if width < o.MinWidth {
		left = (o.MinWidth - width) / 2
	}
	return top, left
}

func (o Pad) Apply(t *Target, _ *rand.Rand) error {
	w, h := t.Size()
	nw, nh := max(w, o.MinWidth), max(h, o.MinHeight)
	if nw == w && nh == h {
		return nil
	}
	top, left := o.Offsets(w, h)
	fill := o.Fill
	if fill == nil {
		fill = mustFill(DefaultFill)
	}

	canvas := imaging.New(nw, nh, fill)
	t.Image = imaging.Paste(canvas, t.Image, image.Pt(left, top))

	at := image.Rect(left, top, left+w, top+h)
	t.mapMasks(func(m *image.Gray) *image.Gray {
		out := image.NewGray(image.Rect(0, 0, nw, nh))
		draw.Draw(out, at, m, m.Bounds().Min, draw.Src)
		return out
	})

	ox, oy := float64(left), float64(top)
	shift := func(x, y float64) (float64, float64) { return x + ox, y + oy }
	t.mapBoxes(shift)
	t.mapPoints(shift)
	return nil
}
