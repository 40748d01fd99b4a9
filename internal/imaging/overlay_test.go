package imaging

import (
	"image/color"
	"testing"

	"github.com/ironsheep/annotated-augment/internal/annotation"
)

func TestOverlay_Boxes(t *testing.T) {
	bg := color.RGBA{0, 0, 0, 255}
	s := &annotation.Sample{
		Image:  createInMemoryImage(100, 100, bg),
		Labels: []int{3},
		BBoxes: []annotation.BBox{annotation.FromXYXY(10, 20, 60, 70)},
	}

	out := Overlay(s, OverlayOptions{LineWidth: 2})
	want := instanceColor(3)

	edges := [][2]int{{10, 20}, {11, 40}, {59, 40}, {30, 69}, {30, 20}}
	for _, p := range edges {
		if got := out.NRGBAAt(p[0], p[1]); got != want {
			t.Errorf("edge pixel %v: got %v, want %v", p, got, want)
		}
	}
	for _, p := range [][2]int{{30, 40}, {5, 5}, {61, 40}} {
		if got := out.NRGBAAt(p[0], p[1]); got != (color.NRGBA{A: 255}) {
			t.Errorf("pixel %v should be untouched, got %v", p, got)
		}
	}

	// The source image is not modified.
	if r, _, _, _ := s.Image.At(10, 20).RGBA(); r != 0 {
		t.Error("Overlay drew on the input image")
	}
}

func TestOverlay_Keypoints(t *testing.T) {
	s := &annotation.Sample{
		Image: createInMemoryImage(50, 50, color.Black),
		Keypoints: []annotation.KeyPoints{{Points: []annotation.KeyPoint{
			{X: 10, Y: 10, Visible: 2},
			{X: 40, Y: 40, Visible: 0},
		}}},
	}

	out := Overlay(s, OverlayOptions{})
	c := instanceColor(0)

	if out.NRGBAAt(10, 10) != c || out.NRGBAAt(12, 12) != c {
		t.Error("visible keypoint not drawn")
	}
	if out.NRGBAAt(40, 40) != (color.NRGBA{A: 255}) {
		t.Error("invisible keypoint was drawn")
	}
}

func TestOverlay_MaskTint(t *testing.T) {
	m := annotation.NewMask(20, 20)
	m.SetGray(5, 5, color.Gray{Y: 1})
	s := &annotation.Sample{
		Image: createInMemoryImage(20, 20, color.Black),
		Masks: annotation.MaskArray{m},
	}

	out := Overlay(s, OverlayOptions{MaskAlpha: 0.5})
	if out.NRGBAAt(5, 5) == (color.NRGBA{A: 255}) {
		t.Error("mask pixel not tinted")
	}
	if out.NRGBAAt(6, 5) != (color.NRGBA{A: 255}) {
		t.Error("pixel outside the mask was tinted")
	}
}

func TestOverlay_LabelsNearTopEdge(t *testing.T) {
	s := &annotation.Sample{
		Image:  createInMemoryImage(40, 40, color.Black),
		Labels: []int{-12},
		BBoxes: []annotation.BBox{annotation.FromXYXY(0, 0, 30, 30)},
	}

	// Must not panic with the label clamped to the top row.
	out := Overlay(s, OverlayOptions{ShowLabels: true})
	if out.Bounds().Dx() != 40 {
		t.Errorf("width: got %d", out.Bounds().Dx())
	}
}

func TestOverlay_LabelDrawnAboveBox(t *testing.T) {
	s := &annotation.Sample{
		Image:  createInMemoryImage(60, 60, color.Black),
		Labels: []int{7},
		BBoxes: []annotation.BBox{annotation.FromXYXY(10, 30, 50, 55)},
	}

	plain := Overlay(s, OverlayOptions{})
	labelled := Overlay(s, OverlayOptions{ShowLabels: true})

	// The label background sits in the band above the box.
	if plain.NRGBAAt(12, 20) != (color.NRGBA{A: 255}) {
		t.Fatal("unlabelled overlay drew above the box")
	}
	if labelled.NRGBAAt(12, 20) == (color.NRGBA{A: 255}) {
		t.Error("label not drawn above the box")
	}
}

func TestInstanceColor(t *testing.T) {
	if instanceColor(1) == instanceColor(2) {
		t.Error("neighbouring keys share a colour")
	}
	if instanceColor(7) != instanceColor(7) {
		t.Error("colour is not deterministic")
	}
	if c := instanceColor(-3); c.A != 255 {
		t.Errorf("negative key: got %v", c)
	}
}

func TestDrawLabel_Clipped(t *testing.T) {
	s := &annotation.Sample{Image: createInMemoryImage(5, 5, color.Black)}
	img := Overlay(s, OverlayOptions{})

	// Should not panic when the label runs past the image.
	drawLabel(img, 3, 3, "123", color.NRGBA{R: 255, A: 255}, color.NRGBA{A: 255})
	drawLabel(img, 0, 0, "", color.NRGBA{R: 255, A: 255}, color.NRGBA{A: 255})
}
