package augment

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/annotated-augment/internal/annotation"
	"github.com/ironsheep/annotated-augment/internal/geometry"
)

func newTarget(w, h int, boxes ...annotation.BBox) *Target {
	t := &Target{Image: createTestImage(w, h), Boxes: boxes}
	for i := range boxes {
		t.IDs = append(t.IDs, i)
	}
	return t
}

func TestResizeOps(t *testing.T) {
	tests := []struct {
		name         string
		op           Transform
		w, h         int
		wantW, wantH int
	}{
		{"longest landscape", LongestMaxSize{MaxSize: 128}, 200, 100, 128, 64},
		{"longest portrait", LongestMaxSize{MaxSize: 50}, 100, 200, 25, 50},
		{"longest upscales", LongestMaxSize{MaxSize: 400}, 200, 100, 400, 200},
		{"smallest", SmallestMaxSize{MaxSize: 50}, 200, 100, 100, 50},
		{"exact", Resize{Height: 30, Width: 70}, 200, 100, 70, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := newTarget(tt.w, tt.h)
			if err := tt.op.Apply(tg, testRand(1)); err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if w, h := tg.Size(); w != tt.wantW || h != tt.wantH {
				t.Errorf("size: got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestResize_ScalesAnnotations(t *testing.T) {
	tg := newTarget(200, 100, annotation.FromXYXY(20, 10, 100, 50))
	tg.Points = []geometry.Point{{X: 40, Y: 60}}
	tg.Masks = []*image.Gray{annotation.MaskFromBox(200, 100, annotation.FromXYXY(20, 10, 100, 50))}

	if err := (Resize{Height: 50, Width: 100}).Apply(tg, testRand(1)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if tg.Boxes[0] != annotation.FromXYXY(10, 5, 50, 25) {
		t.Errorf("box: got %+v", tg.Boxes[0])
	}
	if tg.Points[0] != (geometry.Point{X: 20, Y: 30}) {
		t.Errorf("point: got %+v", tg.Points[0])
	}
	if got := tg.Masks[0].Bounds().Size(); got != image.Pt(100, 50) {
		t.Errorf("mask size: got %v", got)
	}
	// Nearest-neighbour keeps the mask binary.
	for _, v := range tg.Masks[0].Pix {
		if v != 0 && v != 1 {
			t.Fatalf("mask value %d is not binary", v)
		}
	}
}

func TestLongestMaxSize_ThinImage(t *testing.T) {
	tg := newTarget(1600, 1, annotation.FromXYXY(160, 0, 480, 1))

	if err := (LongestMaxSize{MaxSize: 100}).Apply(tg, testRand(1)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if w, h := tg.Size(); w != 100 || h != 1 {
		t.Errorf("size: got %dx%d, want 100x1", w, h)
	}
	if len(tg.Boxes) != 1 || tg.Boxes[0] != annotation.FromXYXY(10, 0, 30, 1) {
		t.Errorf("boxes: got %+v, want [(10,0)-(30,1)]", tg.Boxes)
	}
}

func TestResize_ZeroSideKeepsOnePixel(t *testing.T) {
	tg := newTarget(40, 20)
	tg.scaleTo(10, 0)

	if w, h := tg.Size(); w != 10 || h != 1 {
		t.Errorf("size: got %dx%d, want 10x1", w, h)
	}
}

func TestHorizontalFlip(t *testing.T) {
	tg := newTarget(100, 50, annotation.FromXYXY(0, 0, 10, 20))
	tg.Points = []geometry.Point{{X: 0, Y: 3}, {X: 99, Y: 4}}

	if err := (HorizontalFlip{P: 1}).Apply(tg, testRand(1)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if tg.Boxes[0] != annotation.FromXYXY(90, 0, 100, 20) {
		t.Errorf("box: got %+v", tg.Boxes[0])
	}
	if tg.Points[0] != (geometry.Point{X: 99, Y: 3}) || tg.Points[1] != (geometry.Point{X: 0, Y: 4}) {
		t.Errorf("points: got %+v", tg.Points)
	}
}

func TestPad_Offsets(t *testing.T) {
	tests := []struct {
		name              string
		pad               Pad
		w, h              int
		wantTop, wantLeft int
	}{
		{"landscape", Pad{MinHeight: 500, MinWidth: 500}, 500, 300, 100, 0},
		{"odd padding", Pad{MinHeight: 500, MinWidth: 500}, 500, 301, 99, 0},
		{"portrait", Pad{MinHeight: 500, MinWidth: 500}, 300, 500, 0, 100},
		{"already large", Pad{MinHeight: 10, MinWidth: 10}, 50, 60, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, left := tt.pad.Offsets(tt.w, tt.h)
			if top != tt.wantTop || left != tt.wantLeft {
				t.Errorf("got top=%d left=%d, want top=%d left=%d", top, left, tt.wantTop, tt.wantLeft)
			}
		})
	}
}

func TestPad_Apply(t *testing.T) {
	tg := newTarget(300, 200, annotation.FromXYXY(0, 0, 300, 200))
	tg.Masks = []*image.Gray{annotation.MaskFromBox(300, 200, annotation.FromXYXY(0, 0, 300, 200))}
	fill := color.NRGBA{R: 1, G: 2, B: 3, A: 255}

	if err := (Pad{MinHeight: 400, MinWidth: 400, Fill: fill}).Apply(tg, testRand(1)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if w, h := tg.Size(); w != 400 || h != 400 {
		t.Fatalf("size: got %dx%d, want 400x400", w, h)
	}
	if tg.Boxes[0] != annotation.FromXYXY(50, 100, 350, 300) {
		t.Errorf("box: got %+v", tg.Boxes[0])
	}
	if got := color.NRGBAModel.Convert(tg.Image.At(0, 0)); got != fill {
		t.Errorf("fill: got %v, want %v", got, fill)
	}
	m := tg.Masks[0]
	if m.GrayAt(49, 100).Y != 0 || m.GrayAt(50, 100).Y != 1 || m.GrayAt(349, 299).Y != 1 || m.GrayAt(350, 299).Y != 0 {
		t.Error("mask content not placed at the pad offset")
	}
}

func TestPad_NoOpWhenLargeEnough(t *testing.T) {
	tg := newTarget(64, 64, annotation.FromXYXY(1, 2, 3, 4))
	img := tg.Image

	if err := (Pad{MinHeight: 32, MinWidth: 64}).Apply(tg, testRand(1)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if tg.Image != img || tg.Boxes[0] != annotation.FromXYXY(1, 2, 3, 4) {
		t.Error("pad changed a sample that was already large enough")
	}
}

func TestParseFill(t *testing.T) {
	c, err := ParseFill(DefaultFill)
	if err != nil {
		t.Fatalf("ParseFill failed: %v", err)
	}
	if c != (color.NRGBA{R: 124, G: 116, B: 104, A: 255}) {
		t.Errorf("got %v", c)
	}

	if _, err := ParseFill("grey"); err == nil {
		t.Error("expected error for invalid colour")
	}

	if got := (Pad{Fill: c}).Params()["fill"]; got != DefaultFill {
		t.Errorf("Params fill: got %v, want %s", got, DefaultFill)
	}
}

func TestBBoxSafeCrop_KeepsBoxes(t *testing.T) {
	op := BBoxSafeCrop{Height: 48, Width: 64, P: 1}

	for seed := uint64(1); seed <= 25; seed++ {
		tg := newTarget(200, 150,
			annotation.FromXYXY(30, 40, 80, 90),
			annotation.FromXYXY(120, 20, 160, 70),
		)
		if err := op.Apply(tg, testRand(seed)); err != nil {
			t.Fatalf("seed %d: Apply failed: %v", seed, err)
		}
		if w, h := tg.Size(); w != 64 || h != 48 {
			t.Fatalf("seed %d: size %dx%d, want 64x48", seed, w, h)
		}
		for i, b := range tg.Boxes {
			const eps = 1e-9
			if b.X1 < -eps || b.Y1 < -eps || b.X2 > 64+eps || b.Y2 > 48+eps || b.Area() == 0 {
				t.Errorf("seed %d: box %d not kept whole: %+v", seed, i, b)
			}
		}
	}
}

func TestBBoxSafeCrop_NoBoxes(t *testing.T) {
	tg := newTarget(120, 80)
	if err := (BBoxSafeCrop{Height: 20, Width: 30, ErosionRate: 0.3, P: 1}).Apply(tg, testRand(4)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if w, h := tg.Size(); w != 30 || h != 20 {
		t.Errorf("size: got %dx%d, want 30x20", w, h)
	}
}

func TestBBoxSafeCrop_InvalidSize(t *testing.T) {
	if err := (BBoxSafeCrop{P: 1}).Apply(newTarget(10, 10), testRand(1)); err == nil {
		t.Error("expected error for zero crop size")
	}
}

func TestOneOrOther(t *testing.T) {
	first := Resize{Height: 10, Width: 10}
	second := Resize{Height: 20, Width: 20}

	tests := []struct {
		name  string
		p     float64
		wantW int
	}{
		{"always first", 1, 10},
		{"always second", 0, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := uint64(1); seed <= 10; seed++ {
				tg := newTarget(40, 40)
				if err := (OneOrOther{First: first, Second: second, P: tt.p}).Apply(tg, testRand(seed)); err != nil {
					t.Fatalf("Apply failed: %v", err)
				}
				if w, _ := tg.Size(); w != tt.wantW {
					t.Fatalf("seed %d: width %d, want %d", seed, w, tt.wantW)
				}
			}
		})
	}

	if err := (OneOrOther{First: first}).Apply(newTarget(4, 4), testRand(1)); err == nil {
		t.Error("expected error for a missing branch")
	}
	params := OneOrOther{First: first, P: 0.3}.Params()
	if params["first"] != "resize" || params["second"] != "" {
		t.Errorf("params: got %v", params)
	}
}

func TestBlur_Kernel(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		allowed  map[int]bool
	}{
		{"default range", 1, 3, map[int]bool{1: true, 3: true}},
		{"fixed", 3, 3, map[int]bool{3: true}},
		{"even bounds", 2, 6, map[int]bool{3: true, 5: true}},
		{"inverted", 5, 1, map[int]bool{5: true}},
		{"zero", 0, 0, map[int]bool{1: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := testRand(2)
			for i := 0; i < 50; i++ {
				k := Blur{MinKernel: tt.min, MaxKernel: tt.max}.kernel(rng)
				if !tt.allowed[k] {
					t.Fatalf("kernel %d not in %v", k, tt.allowed)
				}
			}
		})
	}
}

func TestBlur_UnitKernelIsNoOp(t *testing.T) {
	tg := newTarget(8, 8)
	img := tg.Image
	if err := (Blur{MinKernel: 1, MaxKernel: 1, P: 1}).Apply(tg, testRand(1)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if tg.Image != img {
		t.Error("kernel 1 replaced the image")
	}
}

func TestPhotometricOps_KeepGeometry(t *testing.T) {
	ops := []Transform{
		RGBShift{RLimit: 20, GLimit: 20, BLimit: 20, P: 1},
		BrightnessContrast{BrightnessLimit: 0.2, ContrastLimit: 0.2, P: 1},
		Blur{MinKernel: 3, MaxKernel: 3, P: 1},
	}
	box := annotation.FromXYXY(3, 4, 20, 25)

	for _, op := range ops {
		t.Run(string(op.Kind()), func(t *testing.T) {
			tg := newTarget(32, 32, box)
			tg.Points = []geometry.Point{{X: 7, Y: 8}}
			if err := op.Apply(tg, testRand(5)); err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if w, h := tg.Size(); w != 32 || h != 32 {
				t.Errorf("size: got %dx%d", w, h)
			}
			if tg.Boxes[0] != box || tg.Points[0] != (geometry.Point{X: 7, Y: 8}) {
				t.Error("photometric op moved annotations")
			}
		})
	}
}

func TestRGBShift_ShiftsChannels(t *testing.T) {
	tg := newTarget(4, 4)
	// Equal bounds pin the random offsets.
	op := RGBShift{RLimit: 0, GLimit: 0, BLimit: 0, P: 1}
	if err := op.Apply(tg, testRand(1)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	r, g, b, _ := tg.Image.At(1, 1).RGBA()
	if r>>8 != 10 || g>>8 != 200 || b>>8 != 30 {
		t.Errorf("zero shift changed colour to (%d,%d,%d)", r>>8, g>>8, b>>8)
	}

	if got := shiftChannel(250, 20); got != 255 {
		t.Errorf("shiftChannel saturation: got %d, want 255", got)
	}
	if got := shiftChannel(5, -20); got != 0 {
		t.Errorf("shiftChannel floor: got %d, want 0", got)
	}
}

func TestAffineMatrix(t *testing.T) {
	apply := func(m [6]float64, x, y float64) (float64, float64) {
		return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
	}
	near := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

	id := affineMatrix(100, 60, 0, 1, 0, 0)
	if x, y := apply(id, 12, 34); !near(x, 12) || !near(y, 34) {
		t.Errorf("identity moved (12,34) to (%v,%v)", x, y)
	}

	rot := affineMatrix(100, 100, 90, 1, 0, 0)
	if x, y := apply(rot, 50, 50); !near(x, 50) || !near(y, 50) {
		t.Errorf("rotation moved the centre to (%v,%v)", x, y)
	}
	// Counter-clockwise on screen: a point right of centre moves up.
	if x, y := apply(rot, 60, 50); !near(x, 50) || !near(y, 40) {
		t.Errorf("rotation moved (60,50) to (%v,%v), want (50,40)", x, y)
	}

	shift := affineMatrix(100, 60, 0, 1, 0.1, -0.5)
	if x, y := apply(shift, 0, 30); !near(x, 10) || !near(y, 0) {
		t.Errorf("shift moved (0,30) to (%v,%v), want (10,0)", x, y)
	}

	scale := affineMatrix(100, 100, 0, 2, 0, 0)
	if x, y := apply(scale, 60, 50); !near(x, 70) || !near(y, 50) {
		t.Errorf("scale moved (60,50) to (%v,%v), want (70,50)", x, y)
	}
}

func TestShiftScaleRotate_ZeroLimitsIsIdentity(t *testing.T) {
	box := annotation.FromXYXY(10, 10, 30, 40)
	tg := newTarget(64, 48, box)
	tg.Points = []geometry.Point{{X: 5, Y: 6}}

	if err := (ShiftScaleRotate{P: 1, Fill: color.Black}).Apply(tg, testRand(3)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if w, h := tg.Size(); w != 64 || h != 48 {
		t.Errorf("size: got %dx%d", w, h)
	}
	if tg.Boxes[0] != box || tg.Points[0] != (geometry.Point{X: 5, Y: 6}) {
		t.Errorf("annotations moved: box %+v, point %+v", tg.Boxes[0], tg.Points[0])
	}
}
