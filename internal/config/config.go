// Package config reads augmentation pipeline definitions from YAML.
//
// A file names the mode (train or eval), the final size, an optional presize,
// the fill colour and per-step settings:
//
//	mode: train
//	size: {max: 384}
//	presize: {max: 512}
//	fill: "#7c7468"
//	steps:
//	  horizontal_flip: {p: 0.5}
//	  shift_scale_rotate: {rotate_limit: 15}
//	  blur: {enabled: false}
//	  crop: {p: 0.3, erosion_rate: 0.1}
//
// A step that is missing takes its default. A step with enabled: false is left
// out. Any parameter a step does not set keeps its default value.
package config

import (
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/ironsheep/annotated-augment/internal/augment"
)

// Pipeline modes.
const (
	ModeTrain = "train"
	ModeEval  = "eval"
)

// DefaultSize is the final size used when a file does not set one.
const DefaultSize = 384

// Config is one pipeline definition.
type Config struct {
	Mode    string       `yaml:"mode"`
	Size    augment.Size `yaml:"size"`
	Presize augment.Size `yaml:"presize,omitempty"`
	Fill    string       `yaml:"fill,omitempty"`
	Steps   Steps        `yaml:"steps,omitempty"`
}

// Steps holds the optional per-step sections.
type Steps struct {
	HorizontalFlip   *FlipStep             `yaml:"horizontal_flip,omitempty"`
	ShiftScaleRotate *ShiftScaleRotateStep `yaml:"shift_scale_rotate,omitempty"`
	RGBShift         *RGBShiftStep         `yaml:"rgb_shift,omitempty"`
	Lighting         *LightingStep         `yaml:"lighting,omitempty"`
	Blur             *BlurStep             `yaml:"blur,omitempty"`
	Crop             *CropStep             `yaml:"crop,omitempty"`
	Pad              *Toggle               `yaml:"pad,omitempty"`
}

// Toggle switches a step on or off. An unset Enabled means on.
type Toggle struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

func (t Toggle) off() bool {
	return t.Enabled != nil && !*t.Enabled
}

// FlipStep configures horizontal_flip.
type FlipStep struct {
	Toggle `yaml:",inline"`
	P      *float64 `yaml:"p,omitempty"`
}

// ShiftScaleRotateStep configures shift_scale_rotate.
type ShiftScaleRotateStep struct {
	Toggle      `yaml:",inline"`
	ShiftLimit  *float64 `yaml:"shift_limit,omitempty"`
	ScaleLimit  *float64 `yaml:"scale_limit,omitempty"`
	RotateLimit *float64 `yaml:"rotate_limit,omitempty"`
	P           *float64 `yaml:"p,omitempty"`
}

// RGBShiftStep configures rgb_shift.
type RGBShiftStep struct {
	Toggle `yaml:",inline"`
	RLimit *float64 `yaml:"r_shift_limit,omitempty"`
	GLimit *float64 `yaml:"g_shift_limit,omitempty"`
	BLimit *float64 `yaml:"b_shift_limit,omitempty"`
	P      *float64 `yaml:"p,omitempty"`
}

// LightingStep configures the brightness/contrast step.
type LightingStep struct {
	Toggle          `yaml:",inline"`
	BrightnessLimit *float64 `yaml:"brightness_limit,omitempty"`
	ContrastLimit   *float64 `yaml:"contrast_limit,omitempty"`
	P               *float64 `yaml:"p,omitempty"`
}

// BlurStep configures blur. BlurLimit is [min, max] kernel size.
type BlurStep struct {
	Toggle    `yaml:",inline"`
	BlurLimit []int    `yaml:"blur_limit,omitempty"`
	P         *float64 `yaml:"p,omitempty"`
}

// CropStep configures the bbox-safe crop that competes with the final resize.
type CropStep struct {
	Toggle      `yaml:",inline"`
	P           *float64 `yaml:"p,omitempty"`
	ErosionRate *float64 `yaml:"erosion_rate,omitempty"`
}

// Default returns a train configuration with every step at its default.
func Default() *Config {
	return &Config{
		Mode: ModeTrain,
		Size: augment.MaxSide(DefaultSize),
		Fill: augment.DefaultFill,
	}
}

// Load reads and validates a YAML pipeline definition.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML pipeline definition. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeTrain
	}
	if c.Size.IsZero() {
		c.Size = augment.MaxSide(DefaultSize)
	}
	if c.Fill == "" {
		c.Fill = augment.DefaultFill
	}
}

// Validate checks the configuration without building operations.
func (c *Config) Validate() error {
	if c.Mode != ModeTrain && c.Mode != ModeEval {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeTrain, ModeEval, c.Mode)
	}
	if err := c.Size.Validate(); err != nil {
		return fmt.Errorf("size: %w", err)
	}
	if !c.Presize.IsZero() {
		if c.Mode == ModeEval {
			return fmt.Errorf("presize is only used in train mode")
		}
		if err := c.Presize.Validate(); err != nil {
			return fmt.Errorf("presize: %w", err)
		}
	}
	if _, err := augment.ParseFill(c.Fill); err != nil {
		return err
	}

	s := c.Steps
	probs := map[string]*float64{}
	limits := map[string]*float64{}
	if s.HorizontalFlip != nil {
		probs["horizontal_flip.p"] = s.HorizontalFlip.P
	}
	if s.ShiftScaleRotate != nil {
		probs["shift_scale_rotate.p"] = s.ShiftScaleRotate.P
		limits["shift_scale_rotate.shift_limit"] = s.ShiftScaleRotate.ShiftLimit
		limits["shift_scale_rotate.scale_limit"] = s.ShiftScaleRotate.ScaleLimit
		limits["shift_scale_rotate.rotate_limit"] = s.ShiftScaleRotate.RotateLimit
	}
	if s.RGBShift != nil {
		probs["rgb_shift.p"] = s.RGBShift.P
		limits["rgb_shift.r_shift_limit"] = s.RGBShift.RLimit
		limits["rgb_shift.g_shift_limit"] = s.RGBShift.GLimit
		limits["rgb_shift.b_shift_limit"] = s.RGBShift.BLimit
	}
	if s.Lighting != nil {
		probs["lighting.p"] = s.Lighting.P
		limits["lighting.brightness_limit"] = s.Lighting.BrightnessLimit
		limits["lighting.contrast_limit"] = s.Lighting.ContrastLimit
	}
	if s.Blur != nil {
		probs["blur.p"] = s.Blur.P
		if l := s.Blur.BlurLimit; l != nil && (len(l) != 2 || l[0] < 1 || l[1] < l[0]) {
			return fmt.Errorf("blur.blur_limit must be [min, max] with 1 <= min <= max, got %v", l)
		}
	}
	if s.Crop != nil {
		probs["crop.p"] = s.Crop.P
		if e := s.Crop.ErosionRate; e != nil && (*e < 0 || *e >= 1) {
			return fmt.Errorf("crop.erosion_rate must be in [0, 1), got %v", *e)
		}
	}
	for name, p := range probs {
		if p != nil && (*p < 0 || *p > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, *p)
		}
	}
	for name, l := range limits {
		if l != nil && *l < 0 {
			return fmt.Errorf("%s must not be negative, got %v", name, *l)
		}
	}
	return nil
}

// Pipeline builds the operation list the configuration describes.
func (c *Config) Pipeline() ([]augment.Transform, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	fill, _ := augment.ParseFill(c.Fill)

	if c.Mode == ModeEval {
		return augment.EvalPipeline(c.Size, c.padStep(fill))
	}
	return augment.TrainPipeline(c.TrainConfig(fill))
}

// TrainConfig maps the definition onto the train builder's steps using fill
// for padding and uncovered affine regions.
func (c *Config) TrainConfig(fill color.Color) augment.TrainConfig {
	s := c.Steps
	cfg := augment.TrainConfig{
		Size:    c.Size,
		Presize: c.Presize,
		Pad:     c.padStep(fill),
	}

	if st := s.HorizontalFlip; st != nil {
		op := augment.DefaultHorizontalFlip
		set(&op.P, st.P)
		cfg.HorizontalFlip = step(st.Toggle, op)
	}

	ssr := augment.DefaultShiftScaleRotate
	ssr.Fill = fill
	cfg.ShiftScaleRotate = augment.On(ssr)
	if st := s.ShiftScaleRotate; st != nil {
		set(&ssr.ShiftLimit, st.ShiftLimit)
		set(&ssr.ScaleLimit, st.ScaleLimit)
		set(&ssr.RotateLimit, st.RotateLimit)
		set(&ssr.P, st.P)
		cfg.ShiftScaleRotate = step(st.Toggle, ssr)
	}

	if st := s.RGBShift; st != nil {
		op := augment.DefaultRGBShift
		set(&op.RLimit, st.RLimit)
		set(&op.GLimit, st.GLimit)
		set(&op.BLimit, st.BLimit)
		set(&op.P, st.P)
		cfg.RGBShift = step(st.Toggle, op)
	}

	if st := s.Lighting; st != nil {
		op := augment.DefaultLighting
		set(&op.BrightnessLimit, st.BrightnessLimit)
		set(&op.ContrastLimit, st.ContrastLimit)
		set(&op.P, st.P)
		cfg.Lighting = step(st.Toggle, op)
	}

	if st := s.Blur; st != nil {
		op := augment.DefaultBlur
		if len(st.BlurLimit) == 2 {
			op.MinKernel, op.MaxKernel = st.BlurLimit[0], st.BlurLimit[1]
		}
		set(&op.P, st.P)
		cfg.Blur = step(st.Toggle, op)
	}

	if st := s.Crop; st != nil {
		p, erosion := augment.DefaultCropP, 0.0
		set(&p, st.P)
		set(&erosion, st.ErosionRate)
		cfg.Crop = augment.OnSized(func(h, w int) augment.Transform {
			return augment.BBoxSafeCrop{Height: h, Width: w, ErosionRate: erosion, P: p}
		})
		if st.off() {
			cfg.Crop = augment.OffSized()
		}
	}
	return cfg
}

func (c *Config) padStep(fill color.Color) augment.SizedStep {
	if t := c.Steps.Pad; t != nil && t.off() {
		return augment.OffSized()
	}
	return augment.OnSized(augment.PadFactory(fill))
}

func step(t Toggle, op augment.Transform) augment.Step {
	if t.off() {
		return augment.Off()
	}
	return augment.On(op)
}

func set(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
