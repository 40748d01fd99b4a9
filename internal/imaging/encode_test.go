package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func decodeResult(t *testing.T, r *EncodedImage) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func TestEncodePNG(t *testing.T) {
	img := createInMemoryImage(64, 32, color.RGBA{0, 0, 255, 255})

	result, err := EncodePNG(img, 1)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if result.Width != 64 || result.Height != 32 || result.MimeType != "image/png" {
		t.Errorf("got %dx%d %s", result.Width, result.Height, result.MimeType)
	}

	decoded := decodeResult(t, result)
	r, g, b, _ := decoded.At(10, 10).RGBA()
	if r>>8 != 0 || g>>8 != 0 || b>>8 != 255 {
		t.Errorf("pixel: got (%d,%d,%d), want blue", r>>8, g>>8, b>>8)
	}
}

func TestEncodePNG_Scale(t *testing.T) {
	img := createInMemoryImage(100, 50, color.White)

	tests := []struct {
		scale        float64
		wantW, wantH int
	}{
		{2, 200, 100},
		{0.5, 50, 25},
		{0, 100, 50},
		{-1, 100, 50},
		{0.001, 1, 1},
	}

	for _, tt := range tests {
		result, err := EncodePNG(img, tt.scale)
		if err != nil {
			t.Fatalf("scale %v: EncodePNG failed: %v", tt.scale, err)
		}
		if result.Width != tt.wantW || result.Height != tt.wantH {
			t.Errorf("scale %v: got %dx%d, want %dx%d", tt.scale, result.Width, result.Height, tt.wantW, tt.wantH)
		}
	}
}

func TestEncodePNG_NilImage(t *testing.T) {
	if _, err := EncodePNG(nil, 1); err == nil {
		t.Error("expected error for nil image")
	}
}

func TestEncodeMaskPNG(t *testing.T) {
	m := image.NewGray(image.Rect(0, 0, 3, 1))
	m.Pix = []uint8{0, 1, 0}

	result, err := EncodeMaskPNG(m)
	if err != nil {
		t.Fatalf("EncodeMaskPNG failed: %v", err)
	}
	decoded := decodeResult(t, result)
	if y, _, _, _ := decoded.At(1, 0).RGBA(); y>>8 != 255 {
		t.Errorf("mask pixel: got %d, want 255", y>>8)
	}
	if y, _, _, _ := decoded.At(0, 0).RGBA(); y != 0 {
		t.Errorf("background pixel: got %d, want 0", y)
	}

	if _, err := EncodeMaskPNG(nil); err == nil {
		t.Error("expected error for nil mask")
	}
}
