package imaging

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/annotated-augment/internal/annotation"
)

// labelHeight is the vertical space a box label takes above its box.
const labelHeight = 15

// OverlayOptions controls how annotations are drawn.
type OverlayOptions struct {
	// LineWidth is the box outline width in pixels. Values below 1 mean 2.
	LineWidth int

	// ShowLabels prints each instance's class label above its box.
	ShowLabels bool

	// MaskAlpha is the opacity of the mask tint, 0 to 1. Zero disables it.
	MaskAlpha float64
}

// Overlay draws the sample's boxes, visible keypoints and masks on a copy of
// its image. Each instance is coloured by its class label, or by its index
// when no labels are given, so the same class keeps the same colour across
// samples.
func Overlay(s *annotation.Sample, opts OverlayOptions) *image.NRGBA {
	dst := imaging.Clone(s.Image)
	lw := opts.LineWidth
	if lw < 1 {
		lw = 2
	}

	n := s.Instances()
	for i := 0; i < n; i++ {
		key := i
		if s.Labels != nil {
			key = s.Labels[i]
		}
		c := instanceColor(key)

		if opts.MaskAlpha > 0 && s.Masks != nil {
			tintMask(dst, s.Masks[i], c, opts.MaskAlpha)
		}
		if s.BBoxes != nil {
			b := s.BBoxes[i]
			drawBox(dst, b, lw, c)
			if opts.ShowLabels && s.Labels != nil {
				drawLabel(dst, int(b.X1), int(b.Y1)-labelHeight, strconv.Itoa(s.Labels[i]), color.NRGBA{R: 255, G: 255, B: 255, A: 255}, c)
			}
		}
		if s.Keypoints != nil {
			for _, p := range s.Keypoints[i].Points {
				if p.Visible > 0 {
					fillRect(dst, int(math.Round(p.X))-2, int(math.Round(p.Y))-2, 5, 5, c)
				}
			}
		}
	}
	return dst
}

// instanceColor spreads keys around the hue circle by the golden angle.
func instanceColor(key int) color.NRGBA {
	hue := math.Mod(float64(key)*137.508, 360)
	if hue < 0 {
		hue += 360
	}
	r, g, b := colorful.Hsv(hue, 0.85, 0.95).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func drawBox(img *image.NRGBA, b annotation.BBox, lw int, c color.NRGBA) {
	x1, y1 := int(math.Floor(b.X1)), int(math.Floor(b.Y1))
	x2, y2 := int(math.Ceil(b.X2)), int(math.Ceil(b.Y2))
	w, h := x2-x1, y2-y1
	if w <= 0 || h <= 0 {
		return
	}
	fillRect(img, x1, y1, w, lw, c)    // top
	fillRect(img, x1, y2-lw, w, lw, c) // bottom
	fillRect(img, x1, y1, lw, h, c)    // left
	fillRect(img, x2-lw, y1, lw, h, c) // right
}

func fillRect(img *image.NRGBA, x, y, w, h int, c color.NRGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(img.Bounds())
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			img.SetNRGBA(px, py, c)
		}
	}
}

func tintMask(img *image.NRGBA, m *image.Gray, c color.NRGBA, alpha float64) {
	if m == nil {
		return
	}
	tint, _ := colorful.MakeColor(c)
	r := m.Bounds().Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if m.GrayAt(x, y).Y == 0 {
				continue
			}
			base, _ := colorful.MakeColor(img.NRGBAAt(x, y))
			cr, cg, cb := base.BlendRgb(tint, alpha).Clamped().RGB255()
			img.SetNRGBA(x, y, color.NRGBA{R: cr, G: cg, B: cb, A: 255})
		}
	}
}

// drawLabel prints text on a filled background with its top-left corner at
// (x, y). Text that runs past the image is clipped.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	face := basicfont.Face7x13
	if y < 0 {
		y = 0
	}
	w := font.MeasureString(face, text).Ceil()
	fillRect(img, x-1, y-1, w+2, face.Height+2, bg)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}
