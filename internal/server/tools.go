package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type schema = map[string]interface{}

// objectSchema builds a JSON Schema object. The "required" key is left out
// when no property is required.
func objectSchema(properties schema, required ...string) schema {
	s := schema{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// property builds a scalar schema with a description.
func property(kind, description string) schema {
	return schema{"type": kind, "description": description}
}

// withDefault returns a copy of p carrying a default value.
func withDefault(p schema, value interface{}) schema {
	out := make(schema, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out["default"] = value
	return out
}

var (
	pathProperty  = property("string", "Absolute path to the image file")
	modelProperty = schema{
		"type":        "string",
		"enum":        []string{"rgb", "hsv"},
		"description": "Optional colour model for this call only. Defaults to the configured model.",
	}
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its original dimensions, the frame size detection works on, and its format.",
			InputSchema: objectSchema(schema{"path": pathProperty}, "path"),
		},
		{
			Name:        "marker_detect",
			Description: "Count the coloured markers in an image. Returns the score, one bounding box per marker in frame coordinates, and optionally the frame with boxes and labels drawn as base64 PNG.",
			InputSchema: objectSchema(schema{
				"path":     pathProperty,
				"annotate": withDefault(property("boolean", "Include the annotated frame as base64 PNG. Default false"), false),
				"model":    modelProperty,
			}, "path"),
		},
		{
			Name:        "marker_classify_pixel",
			Description: "Get the colour at a frame coordinate in hex, RGBA and HSV, and whether the classifier counts it as marker colour. Use this to tune thresholds.",
			InputSchema: objectSchema(schema{
				"path":  pathProperty,
				"x":     property("integer", "X coordinate in the frame (0-based, from left)"),
				"y":     property("integer", "Y coordinate in the frame (0-based, from top)"),
				"model": modelProperty,
			}, "path", "x", "y"),
		},
		{
			Name:        "marker_classify_pixels",
			Description: "Classify several frame coordinates in a single call. Results keep the input order and include a count of matches.",
			InputSchema: objectSchema(schema{
				"path": pathProperty,
				"points": schema{
					"type": "array",
					"items": objectSchema(schema{
						"x":     schema{"type": "integer"},
						"y":     schema{"type": "integer"},
						"label": schema{"type": "string"},
					}, "x", "y"),
					"description": "Points to sample, each with optional label",
				},
				"model": modelProperty,
			}, "path", "points"),
		},
		{
			Name:        "marker_crop",
			Description: "Crop the frame around one detected marker and return it as base64 PNG. Markers are numbered in the order marker_detect reports them.",
			InputSchema: objectSchema(schema{
				"path":    pathProperty,
				"marker":  property("integer", "0-based index into marker_detect's results"),
				"padding": withDefault(property("integer", "Pixels added around the bounding box. Default 4"), 4),
				"scale":   withDefault(property("number", "Optional scale factor (e.g., 4.0 to enlarge small markers). Default 1.0"), 1.0),
				"model":   modelProperty,
			}, "path", "marker"),
		},
		{
			Name:        "marker_config",
			Description: "Return the detection parameters and frame size this server uses.",
			InputSchema: objectSchema(schema{}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return reply(req.ID, map[string]interface{}{
		"tools": GetToolDefinitions(),
	})
}
