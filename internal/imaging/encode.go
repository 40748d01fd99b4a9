package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodedImage is an image ready to return over MCP.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as base64 PNG. A scale other than 1 resizes the
// image first with Lanczos resampling; a non-positive scale is treated as 1.
func EncodePNG(img image.Image, scale float64) (*EncodedImage, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to encode")
	}

	out := img
	if scale != 1.0 && scale > 0 {
		b := img.Bounds()
		w := max(int(float64(b.Dx())*scale), 1)
		h := max(int(float64(b.Dy())*scale), 1)
		out = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b := out.Bounds()
	return &EncodedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// EncodeMaskPNG encodes a binary mask as a black and white PNG.
func EncodeMaskPNG(m *image.Gray) (*EncodedImage, error) {
	if m == nil {
		return nil, fmt.Errorf("no mask to encode")
	}
	b := m.Bounds()
	vis := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if m.GrayAt(b.Min.X+x, b.Min.Y+y).Y != 0 {
				vis.Pix[y*vis.Stride+x] = 255
			}
		}
	}
	return EncodePNG(vis, 1)
}
