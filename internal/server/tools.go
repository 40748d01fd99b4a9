package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pipelineProperties are the schema properties shared by every tool that
// builds a pipeline.
func pipelineProperties() map[string]interface{} {
	return map[string]interface{}{
		"config": map[string]interface{}{
			"type":        "string",
			"description": "Optional absolute path to a YAML pipeline definition. Defaults to the server's configuration",
		},
		"mode": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"train", "eval"},
			"description": "Pipeline mode. Overrides the config file",
		},
		"size": map[string]interface{}{
			"type":        "integer",
			"description": "Final longest side in pixels. Overrides the config file",
		},
		"height": map[string]interface{}{
			"type":        "integer",
			"description": "Exact final height. Use together with width instead of size",
		},
		"width": map[string]interface{}{
			"type":        "integer",
			"description": "Exact final width. Use together with height instead of size",
		},
	}
}

// augmentProperties are the schema properties of aug_apply.
func augmentProperties() map[string]interface{} {
	props := pipelineProperties()
	props["path"] = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
	props["seed"] = map[string]interface{}{
		"type":        "integer",
		"description": "Optional random seed. The same seed and inputs give the same result",
	}
	props["scale"] = map[string]interface{}{
		"type":        "number",
		"description": "Optional scale for the returned image only. Default 1.0",
		"default":     1.0,
	}
	props["labels"] = map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "integer"},
		"description": "Class label per instance",
	}
	props["bboxes"] = map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type":     "array",
			"items":    map[string]interface{}{"type": "number"},
			"minItems": 4,
			"maxItems": 4,
		},
		"description": "Boxes as [x1, y1, x2, y2] in pixels, one per instance",
	}
	props["iscrowds"] = map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "integer"},
		"description": "Crowd flag (0 or 1) per instance",
	}
	props["keypoints"] = map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "number"},
		},
		"description": "Flat [x, y, v, x, y, v, ...] keypoints per instance (COCO visibility)",
	}
	props["keypoint_labels"] = map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": "Optional name of each keypoint, shared by all instances",
	}
	props["mask_paths"] = map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string"},
		"description": "Absolute paths of instance mask images, one per instance. Non-zero pixels are foreground",
	}
	props["include_masks"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Return the transformed masks as PNG. Default false",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	previewProps := augmentProperties()
	previewProps["show_labels"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Print the class label above each box",
	}
	previewProps["line_width"] = map[string]interface{}{
		"type":        "integer",
		"description": "Box outline width in pixels. Default 2",
	}
	previewProps["mask_alpha"] = map[string]interface{}{
		"type":        "number",
		"description": "Opacity of the mask tint, 0 to 1. Default 0.4",
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Augmentation
		{
			Name:        "aug_apply",
			Description: "Run an image and its annotations through a train or eval augmentation pipeline. Returns the transformed image as base64 PNG together with the surviving instances' labels, boxes, crowd flags and keypoints.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": augmentProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "aug_preview",
			Description: "Like aug_apply, but the returned image has the transformed boxes, visible keypoints and masks drawn on it. Use this to check that annotations still line up after augmentation.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": previewProps,
				"required":   []string{"path"},
			},
		},

		// Pipeline helpers
		{
			Name:        "aug_describe_pipeline",
			Description: "List the operations, with their probabilities and parameters, that a pipeline configuration resolves to.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": pipelineProperties(),
			},
		},
		{
			Name:        "aug_resize_dims",
			Description: "Compute the dimensions an image takes after an aspect-preserving resize that maps its longest (or shortest) side to max_size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Image height in pixels",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Image width in pixels",
					},
					"max_size": map[string]interface{}{
						"type":        "integer",
						"description": "Target size of the selected side",
					},
					"side": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"longest", "shortest"},
						"description": "Which side max_size bounds. Default longest",
						"default":     "longest",
					},
				},
				"required": []string{"height", "width", "max_size"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
