package server

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/annotated-augment/internal/adapter"
	"github.com/ironsheep/annotated-augment/internal/annotation"
	"github.com/ironsheep/annotated-augment/internal/augment"
	"github.com/ironsheep/annotated-augment/internal/config"
	"github.com/ironsheep/annotated-augment/internal/geometry"
	"github.com/ironsheep/annotated-augment/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "aug_apply").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.WithField("tool", params.Name).WithError(err).Info("Tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)

	// Augmentation
	case "aug_apply":
		return s.handleAugApply(args)
	case "aug_preview":
		return s.handleAugPreview(args)

	// Pipeline helpers
	case "aug_describe_pipeline":
		return s.handleAugDescribePipeline(args)
	case "aug_resize_dims":
		return s.handleAugResizeDims(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Augmentation Handlers ===

// pipelineArgs selects the pipeline. Inline values override the config file,
// which in turn overrides the server's default configuration.
type pipelineArgs struct {
	Config string `json:"config,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Size   int    `json:"size,omitempty"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// annotationArgs carries one sample's annotations. A field that is absent
// stays absent in the result; an empty array is returned as an empty array.
type annotationArgs struct {
	Labels         []int        `json:"labels"`
	BBoxes         [][4]float64 `json:"bboxes"`
	IsCrowds       []int        `json:"iscrowds"`
	Keypoints      [][]float64  `json:"keypoints"`
	KeypointLabels []string     `json:"keypoint_labels"`
	MaskPaths      []string     `json:"mask_paths"`
}

type augApplyArgs struct {
	Path string  `json:"path"`
	Seed *uint64 `json:"seed"`

	// Scale resizes the returned image only; annotations stay in pipeline
	// coordinates.
	Scale        float64 `json:"scale"`
	IncludeMasks bool    `json:"include_masks"`

	pipelineArgs
	annotationArgs
}

type augApplyResult struct {
	Width     int                     `json:"width"`
	Height    int                     `json:"height"`
	Labels    []int                   `json:"labels"`
	BBoxes    [][4]float64            `json:"bboxes"`
	IsCrowds  []int                   `json:"iscrowds"`
	Keypoints [][]float64             `json:"keypoints"`
	Masks     []*imaging.EncodedImage `json:"masks,omitempty"`
	Image     *imaging.EncodedImage   `json:"image"`
}

func (s *Server) handleAugApply(args json.RawMessage) (interface{}, error) {
	var a augApplyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	out, err := s.augment(a)
	if err != nil {
		return nil, err
	}
	return s.result(a, out, out.Image)
}

type augPreviewArgs struct {
	augApplyArgs

	ShowLabels bool     `json:"show_labels"`
	LineWidth  int      `json:"line_width"`
	MaskAlpha  *float64 `json:"mask_alpha"`
}

func (s *Server) handleAugPreview(args json.RawMessage) (interface{}, error) {
	var a augPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	alpha := 0.4
	if a.MaskAlpha != nil {
		alpha = *a.MaskAlpha
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("mask_alpha must be between 0 and 1, got %g", alpha)
	}

	out, err := s.augment(a.augApplyArgs)
	if err != nil {
		return nil, err
	}
	preview := imaging.Overlay(out, imaging.OverlayOptions{
		LineWidth:  a.LineWidth,
		ShowLabels: a.ShowLabels,
		MaskAlpha:  alpha,
	})
	return s.result(a.augApplyArgs, out, preview)
}

// augment loads the sample described by a and runs it through the selected
// pipeline.
func (s *Server) augment(a augApplyArgs) (*annotation.Sample, error) {
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	cfg, err := s.resolveConfig(a.pipelineArgs)
	if err != nil {
		return nil, err
	}
	ops, err := cfg.Pipeline()
	if err != nil {
		return nil, err
	}

	sample, err := s.loadSample(a.Path, a.annotationArgs)
	if err != nil {
		return nil, err
	}

	opts := []adapter.Option{adapter.WithLogger(s.log)}
	if a.Seed != nil {
		opts = append(opts, adapter.WithSeed(*a.Seed))
	}
	if s.recorder != nil {
		opts = append(opts, adapter.WithRecorder(s.recorder))
	}
	return adapter.New(ops, opts...).Apply(sample)
}

func (s *Server) resolveConfig(a pipelineArgs) (*config.Config, error) {
	var cfg config.Config
	if a.Config != "" {
		loaded, err := config.Load(a.Config)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	} else {
		cfg = *s.config
	}

	if a.Mode != "" {
		cfg.Mode = a.Mode
	}
	switch {
	case a.Height > 0 || a.Width > 0:
		cfg.Size = augment.Exact(a.Height, a.Width)
	case a.Size > 0:
		cfg.Size = augment.MaxSide(a.Size)
	}
	if cfg.Mode == config.ModeEval {
		cfg.Presize = augment.Size{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Server) loadSample(path string, a annotationArgs) (*annotation.Sample, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	sample := &annotation.Sample{
		Image:    img,
		Height:   b.Dy(),
		Width:    b.Dx(),
		Labels:   a.Labels,
		IsCrowds: a.IsCrowds,
	}

	if a.BBoxes != nil {
		sample.BBoxes = make([]annotation.BBox, 0, len(a.BBoxes))
		for _, bb := range a.BBoxes {
			sample.BBoxes = append(sample.BBoxes, annotation.FromXYXY(bb[0], bb[1], bb[2], bb[3]))
		}
	}

	if a.Keypoints != nil {
		sample.Keypoints = make([]annotation.KeyPoints, 0, len(a.Keypoints))
		for i, xyv := range a.Keypoints {
			kp, err := annotation.FromXYV(xyv, a.KeypointLabels)
			if err != nil {
				return nil, fmt.Errorf("keypoints[%d]: %w", i, err)
			}
			sample.Keypoints = append(sample.Keypoints, kp)
		}
	}

	if a.MaskPaths != nil {
		sample.Masks = make(annotation.MaskArray, 0, len(a.MaskPaths))
		for i, p := range a.MaskPaths {
			m, err := s.cache.LoadMask(p)
			if err != nil {
				return nil, fmt.Errorf("mask_paths[%d]: %w", i, err)
			}
			sample.Masks = append(sample.Masks, m)
		}
	}
	return sample, nil
}

// result encodes img and converts the sample's annotations back to their
// wire form.
func (s *Server) result(a augApplyArgs, out *annotation.Sample, img image.Image) (*augApplyResult, error) {
	scale := a.Scale
	if scale == 0 {
		scale = 1.0
	}
	enc, err := imaging.EncodePNG(img, scale)
	if err != nil {
		return nil, err
	}

	res := &augApplyResult{
		Width:    out.Width,
		Height:   out.Height,
		Labels:   out.Labels,
		IsCrowds: out.IsCrowds,
		Image:    enc,
	}
	if out.BBoxes != nil {
		res.BBoxes = make([][4]float64, 0, len(out.BBoxes))
		for _, b := range out.BBoxes {
			res.BBoxes = append(res.BBoxes, [4]float64{b.X1, b.Y1, b.X2, b.Y2})
		}
	}
	if out.Keypoints != nil {
		res.Keypoints = make([][]float64, 0, len(out.Keypoints))
		for _, kp := range out.Keypoints {
			res.Keypoints = append(res.Keypoints, kp.XYV())
		}
	}
	if a.IncludeMasks && out.Masks != nil {
		res.Masks = make([]*imaging.EncodedImage, 0, len(out.Masks))
		for _, m := range out.Masks {
			em, err := imaging.EncodeMaskPNG(m)
			if err != nil {
				return nil, err
			}
			res.Masks = append(res.Masks, em)
		}
	}
	return res, nil
}

// === Pipeline Helper Handlers ===

type opDescription struct {
	Kind        augment.Kind   `json:"kind"`
	Probability float64        `json:"probability"`
	Params      map[string]any `json:"params"`
}

type pipelineDescription struct {
	Mode       string          `json:"mode"`
	Size       augment.Size    `json:"size"`
	Presize    *augment.Size   `json:"presize,omitempty"`
	Fill       string          `json:"fill"`
	Operations []opDescription `json:"operations"`
}

func (s *Server) handleAugDescribePipeline(args json.RawMessage) (interface{}, error) {
	var a pipelineArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}
	cfg, err := s.resolveConfig(a)
	if err != nil {
		return nil, err
	}
	ops, err := cfg.Pipeline()
	if err != nil {
		return nil, err
	}

	desc := &pipelineDescription{
		Mode: cfg.Mode,
		Size: cfg.Size,
		Fill: cfg.Fill,
	}
	if !cfg.Presize.IsZero() {
		desc.Presize = &cfg.Presize
	}
	for _, op := range augment.Flatten(ops) {
		desc.Operations = append(desc.Operations, opDescription{
			Kind:        op.Kind(),
			Probability: op.Probability(),
			Params:      op.Params(),
		})
	}
	return desc, nil
}

type augResizeDimsArgs struct {
	Height  int    `json:"height"`
	Width   int    `json:"width"`
	MaxSize int    `json:"max_size"`
	Side    string `json:"side"`
}

type resizeDimsResult struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

func (s *Server) handleAugResizeDims(args json.RawMessage) (interface{}, error) {
	var a augResizeDimsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Height <= 0 || a.Width <= 0 || a.MaxSize <= 0 {
		return nil, fmt.Errorf("height, width and max_size must be positive")
	}

	side := geometry.Longest
	switch a.Side {
	case "", "longest":
	case "shortest":
		side = geometry.Shortest
	default:
		return nil, fmt.Errorf("invalid side %q: must be longest or shortest", a.Side)
	}

	h, w := geometry.MaxSizeDims(a.Height, a.Width, a.MaxSize, side)
	return &resizeDimsResult{Height: h, Width: w}, nil
}
