package augment

import (
	"fmt"
	"image/color"
)

// Size is a target image size: either a bound on the longer side (MaxSide)
// or an exact height and width (Exact).
type Size struct {
	Max    int `json:"max,omitempty" yaml:"max,omitempty"`
	Height int `json:"height,omitempty" yaml:"height,omitempty"`
	Width  int `json:"width,omitempty" yaml:"width,omitempty"`
}

// MaxSide returns a size that bounds the longer side to n and pads to n x n.
func MaxSide(n int) Size { return Size{Max: n} }

// Exact returns a fixed height x width size.
func Exact(height, width int) Size { return Size{Height: height, Width: width} }

// IsZero reports whether no size was given.
func (s Size) IsZero() bool { return s.Max == 0 && s.Height == 0 && s.Width == 0 }

// HW returns the final canvas height and width.
func (s Size) HW() (int, int) {
	if s.Max > 0 {
		return s.Max, s.Max
	}
	return s.Height, s.Width
}

// Validate rejects sizes that mix both forms or have non-positive sides.
func (s Size) Validate() error {
	switch {
	case s.Max > 0 && (s.Height != 0 || s.Width != 0):
		return fmt.Errorf("size sets both max (%d) and height/width (%dx%d)", s.Max, s.Height, s.Width)
	case s.Max > 0:
		return nil
	case s.Height > 0 && s.Width > 0:
		return nil
	}
	return fmt.Errorf("size must have a positive max or positive height and width, got %+v", s)
}

// resize returns the resize for the main (final) size step.
func (s Size) resize() Transform {
	if s.Max > 0 {
		return LongestMaxSize{MaxSize: s.Max}
	}
	return Resize{Height: s.Height, Width: s.Width}
}

// presize returns the resize for a presize step.
func (s Size) presize() Transform {
	if s.Max > 0 {
		return SmallestMaxSize{MaxSize: s.Max}
	}
	return Resize{Height: s.Height, Width: s.Width}
}

// StepMode says how a builder treats a step.
type StepMode int

const (
	// StepDefault uses the builder's built-in operation for the step.
	StepDefault StepMode = iota
	// StepOff leaves the step out.
	StepOff
	// StepOn uses the operation supplied with the step.
	StepOn
)

// Step configures one fixed-position builder step. The zero value means
// "use the default".
type Step struct {
	Mode StepMode
	Op   Transform
}

// On enables a step with the given operation.
func On(op Transform) Step { return Step{Mode: StepOn, Op: op} }

// Off disables a step.
func Off() Step { return Step{Mode: StepOff} }

func (s Step) resolve(def Transform) (Transform, error) {
	switch s.Mode {
	case StepOff:
		return nil, nil
	case StepOn:
		if s.Op == nil {
			return nil, fmt.Errorf("step enabled without an operation")
		}
		return s.Op, nil
	}
	return def, nil
}

// SizedStep configures a step whose operation needs the final height and
// width, which the builder injects.
type SizedStep struct {
	Mode StepMode
	Make func(height, width int) Transform
}

// OnSized enables a size-dependent step.
func OnSized(factory func(height, width int) Transform) SizedStep {
	return SizedStep{Mode: StepOn, Make: factory}
}

// OffSized disables a size-dependent step.
func OffSized() SizedStep { return SizedStep{Mode: StepOff} }

func (s SizedStep) resolve(def func(h, w int) Transform, h, w int) (Transform, error) {
	switch s.Mode {
	case StepOff:
		return nil, nil
	case StepOn:
		if s.Make == nil {
			return nil, fmt.Errorf("sized step enabled without a factory")
		}
		return s.Make(h, w), nil
	}
	if def == nil {
		return nil, nil
	}
	return def(h, w), nil
}

// CropFactory returns a bbox-safe crop factory with probability p.
func CropFactory(p float64) func(h, w int) Transform {
	return func(h, w int) Transform { return BBoxSafeCrop{Height: h, Width: w, P: p} }
}

// PadFactory returns a pad factory filling with the given colour.
func PadFactory(fill color.Color) func(h, w int) Transform {
	return func(h, w int) Transform { return Pad{MinHeight: h, MinWidth: w, Fill: fill} }
}

// Default step operations.
var (
	DefaultHorizontalFlip   = HorizontalFlip{P: 0.5}
	DefaultShiftScaleRotate = ShiftScaleRotate{ShiftLimit: 0.0625, ScaleLimit: 0.1, RotateLimit: 45, P: 0.5}
	DefaultRGBShift         = RGBShift{RLimit: 20, GLimit: 20, BLimit: 20, P: 0.5}
	DefaultLighting         = BrightnessContrast{BrightnessLimit: 0.2, ContrastLimit: 0.2, P: 0.5}
	DefaultBlur             = Blur{MinKernel: 1, MaxKernel: 3, P: 0.5}
	DefaultCropP            = 0.5
)

// TrainConfig names every train-time step. Zero-valued steps take their
// defaults, except Presize which is off unless set.
type TrainConfig struct {
	Size    Size
	Presize Size

	HorizontalFlip   Step
	ShiftScaleRotate Step
	RGBShift         Step
	Lighting         Step
	Blur             Step
	Crop             SizedStep
	Pad              SizedStep
}

// TrainPipeline assembles the train-time operation list.
//
// The order is fixed: presize, flip, shift/scale/rotate, rgb shift,
// brightness/contrast, blur, then the step that fixes the size (a random
// choice between crop and resize weighted by the crop's probability, or a
// plain resize when crop is off), then pad. Resizing comes last among the
// geometric steps so interpolation artefacts do not compound; pad only adds
// canvas and so goes after everything else.
func TrainPipeline(cfg TrainConfig) ([]Transform, error) {
	if err := cfg.Size.Validate(); err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	h, w := cfg.Size.HW()

	var ops []Transform
	if !cfg.Presize.IsZero() {
		if err := cfg.Presize.Validate(); err != nil {
			return nil, fmt.Errorf("presize: %w", err)
		}
		ops = append(ops, cfg.Presize.presize())
	}

	steps := []struct {
		name string
		step Step
		def  Transform
	}{
		{"horizontal_flip", cfg.HorizontalFlip, DefaultHorizontalFlip},
		{"shift_scale_rotate", cfg.ShiftScaleRotate, withFill(DefaultShiftScaleRotate)},
		{"rgb_shift", cfg.RGBShift, DefaultRGBShift},
		{"lighting", cfg.Lighting, DefaultLighting},
		{"blur", cfg.Blur, DefaultBlur},
	}
	for _, s := range steps {
		op, err := s.step.resolve(s.def)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		if op != nil {
			ops = append(ops, op)
		}
	}

	crop, err := cfg.Crop.resolve(CropFactory(DefaultCropP), h, w)
	if err != nil {
		return nil, fmt.Errorf("crop: %w", err)
	}
	if crop != nil {
		ops = append(ops, OneOrOther{First: crop, Second: cfg.Size.resize(), P: crop.Probability()})
	} else {
		ops = append(ops, cfg.Size.resize())
	}

	pad, err := cfg.Pad.resolve(PadFactory(mustFill(DefaultFill)), h, w)
	if err != nil {
		return nil, fmt.Errorf("pad: %w", err)
	}
	if pad != nil {
		ops = append(ops, pad)
	}
	return ops, nil
}

// EvalPipeline assembles the deterministic eval-time list: resize to size,
// then pad unless pad is off.
func EvalPipeline(size Size, pad SizedStep) ([]Transform, error) {
	if err := size.Validate(); err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	h, w := size.HW()

	ops := []Transform{size.resize()}
	p, err := pad.resolve(PadFactory(mustFill(DefaultFill)), h, w)
	if err != nil {
		return nil, fmt.Errorf("pad: %w", err)
	}
	if p != nil {
		ops = append(ops, p)
	}
	return ops, nil
}

func withFill(o ShiftScaleRotate) ShiftScaleRotate {
	o.Fill = mustFill(DefaultFill)
	return o
}
