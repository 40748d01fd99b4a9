package augment

import (
	"image/color"
	"reflect"
	"testing"
)

func kinds(ops []Transform) []Kind {
	out := make([]Kind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind()
	}
	return out
}

func TestTrainPipeline_Defaults(t *testing.T) {
	ops, err := TrainPipeline(TrainConfig{Size: MaxSide(512)})
	if err != nil {
		t.Fatalf("TrainPipeline failed: %v", err)
	}

	want := []Kind{
		KindHorizontalFlip, KindShiftScaleRotate, KindRGBShift,
		KindBrightnessContrast, KindBlur, KindOneOrOther, KindPad,
	}
	if got := kinds(ops); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds: got %v, want %v", got, want)
	}

	choice := ops[5].(OneOrOther)
	if choice.First != (BBoxSafeCrop{Height: 512, Width: 512, P: DefaultCropP}) {
		t.Errorf("crop branch: got %+v", choice.First)
	}
	if choice.Second != (LongestMaxSize{MaxSize: 512}) {
		t.Errorf("resize branch: got %+v", choice.Second)
	}
	if choice.P != DefaultCropP {
		t.Errorf("choice probability: got %v, want %v", choice.P, DefaultCropP)
	}

	pad := ops[6].(Pad)
	if pad.MinHeight != 512 || pad.MinWidth != 512 {
		t.Errorf("pad size: got %dx%d, want 512x512", pad.MinWidth, pad.MinHeight)
	}
	if pad.Fill != (color.NRGBA{R: 124, G: 116, B: 104, A: 255}) {
		t.Errorf("pad fill: got %v", pad.Fill)
	}

	ssr := ops[1].(ShiftScaleRotate)
	if ssr.Fill == nil || ssr.RotateLimit != 45 || ssr.P != 0.5 {
		t.Errorf("shift_scale_rotate defaults: got %+v", ssr)
	}
}

func TestTrainPipeline_Steps(t *testing.T) {
	tests := []struct {
		name string
		cfg  TrainConfig
		want []Kind
	}{
		{
			"presize",
			TrainConfig{Size: MaxSide(384), Presize: MaxSide(512)},
			[]Kind{KindSmallestMaxSize, KindHorizontalFlip, KindShiftScaleRotate, KindRGBShift,
				KindBrightnessContrast, KindBlur, KindOneOrOther, KindPad},
		},
		{
			"crop off",
			TrainConfig{Size: MaxSide(384), Crop: OffSized()},
			[]Kind{KindHorizontalFlip, KindShiftScaleRotate, KindRGBShift,
				KindBrightnessContrast, KindBlur, KindLongestMaxSize, KindPad},
		},
		{
			"everything off",
			TrainConfig{
				Size:             MaxSide(384),
				HorizontalFlip:   Off(),
				ShiftScaleRotate: Off(),
				RGBShift:         Off(),
				Lighting:         Off(),
				Blur:             Off(),
				Crop:             OffSized(),
				Pad:              OffSized(),
			},
			[]Kind{KindLongestMaxSize},
		},
		{
			"exact size",
			TrainConfig{Size: Exact(300, 400), Crop: OffSized()},
			[]Kind{KindHorizontalFlip, KindShiftScaleRotate, KindRGBShift,
				KindBrightnessContrast, KindBlur, KindResize, KindPad},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := TrainPipeline(tt.cfg)
			if err != nil {
				t.Fatalf("TrainPipeline failed: %v", err)
			}
			if got := kinds(ops); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("kinds: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrainPipeline_CustomSteps(t *testing.T) {
	ops, err := TrainPipeline(TrainConfig{
		Size:           Exact(300, 400),
		HorizontalFlip: On(HorizontalFlip{P: 1}),
		Crop:           OnSized(CropFactory(0.9)),
		Pad:            OnSized(PadFactory(color.Black)),
	})
	if err != nil {
		t.Fatalf("TrainPipeline failed: %v", err)
	}

	if ops[0] != (HorizontalFlip{P: 1}) {
		t.Errorf("flip: got %+v", ops[0])
	}
	choice := ops[5].(OneOrOther)
	if choice.First != (BBoxSafeCrop{Height: 300, Width: 400, P: 0.9}) || choice.P != 0.9 {
		t.Errorf("choice: got %+v", choice)
	}
	if choice.Second != (Resize{Height: 300, Width: 400}) {
		t.Errorf("resize branch: got %+v", choice.Second)
	}
	if pad := ops[6].(Pad); pad.Fill != color.Black || pad.MinHeight != 300 || pad.MinWidth != 400 {
		t.Errorf("pad: got %+v", pad)
	}
}

func TestTrainPipeline_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  TrainConfig
	}{
		{"no size", TrainConfig{}},
		{"mixed size", TrainConfig{Size: Size{Max: 10, Height: 5}}},
		{"half exact size", TrainConfig{Size: Size{Height: 5}}},
		{"bad presize", TrainConfig{Size: MaxSide(10), Presize: Size{Width: 3}}},
		{"step on without op", TrainConfig{Size: MaxSide(10), Blur: Step{Mode: StepOn}}},
		{"sized step on without factory", TrainConfig{Size: MaxSide(10), Pad: SizedStep{Mode: StepOn}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := TrainPipeline(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEvalPipeline(t *testing.T) {
	ops, err := EvalPipeline(MaxSide(384), SizedStep{})
	if err != nil {
		t.Fatalf("EvalPipeline failed: %v", err)
	}
	if got := kinds(ops); !reflect.DeepEqual(got, []Kind{KindLongestMaxSize, KindPad}) {
		t.Errorf("kinds: got %v", got)
	}

	ops, err = EvalPipeline(Exact(200, 100), OffSized())
	if err != nil {
		t.Fatalf("EvalPipeline failed: %v", err)
	}
	if len(ops) != 1 || ops[0] != (Resize{Height: 200, Width: 100}) {
		t.Errorf("ops: got %+v", ops)
	}

	if _, err := EvalPipeline(Size{}, SizedStep{}); err == nil {
		t.Error("expected error for empty size")
	}
}

func TestSize_HW(t *testing.T) {
	if h, w := MaxSide(64).HW(); h != 64 || w != 64 {
		t.Errorf("MaxSide: got %dx%d", h, w)
	}
	if h, w := Exact(30, 40).HW(); h != 30 || w != 40 {
		t.Errorf("Exact: got %dx%d", h, w)
	}
	if !(Size{}).IsZero() || MaxSide(1).IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestIntrospection(t *testing.T) {
	ops, _ := TrainPipeline(TrainConfig{Size: MaxSide(64)})

	flat := Flatten(ops)
	if len(flat) != len(ops)+2 {
		t.Fatalf("flattened length: got %d, want %d", len(flat), len(ops)+2)
	}
	if flat[6].Kind() != KindBBoxSafeCrop || flat[7].Kind() != KindLongestMaxSize {
		t.Errorf("branches not right after their parent: %v", kinds(flat))
	}

	op, ok := Find(ops, KindBBoxSafeCrop)
	if !ok {
		t.Fatal("nested crop not found")
	}
	if op.(BBoxSafeCrop).Height != 64 {
		t.Errorf("found crop: got %+v", op)
	}

	noPad, _ := TrainPipeline(TrainConfig{Size: MaxSide(64), Pad: OffSized()})
	if Has(noPad, KindPad) {
		t.Error("Has reported a pad that is not there")
	}
	if !Has(noPad, KindOneOrOther) {
		t.Error("Has missed the crop-or-resize step")
	}
}
