package annotation

import (
	"image"
	"image/color"
)

// NewMask returns an all-zero mask of the given size.
func NewMask(width, height int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, width, height))
}

// MaskFromBox returns a mask of the given size with the box interior set to 1.
// Box edges are truncated to whole pixels.
func MaskFromBox(width, height int, b BBox) *image.Gray {
	m := NewMask(width, height)
	r := image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2)).Intersect(m.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.SetGray(x, y, color.Gray{Y: 1})
		}
	}
	return m
}

// MaskArea counts the non-zero pixels of a mask.
func MaskArea(m *image.Gray) int {
	if m == nil {
		return 0
	}
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Binarize converts any image to a binary mask: a pixel is 1 when its
// luminance is non-zero.
func Binarize(img image.Image) *image.Gray {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y != 0 {
				m.Pix[y*m.Stride+x] = 1
			}
		}
	}
	return m
}
