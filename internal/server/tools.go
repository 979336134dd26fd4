package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func regionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func thresholdProperties(props map[string]interface{}) map[string]interface{} {
	props["threshold_low"] = map[string]interface{}{
		"type":        "integer",
		"description": "Low threshold for Canny edge detection (0-255)",
		"default":     50,
	}
	props["threshold_high"] = map[string]interface{}{
		"type":        "integer",
		"description": "High threshold for Canny edge detection (0-255)",
		"default":     150,
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color at a specific pixel location. Returns hex, RGB, RGBA and HSL values.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},

		// Edges
		{
			Name:        "image_edge_detect",
			Description: "Apply Canny edge detection and return the edge image as base64-encoded PNG. Useful to choose thresholds before fitting.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": thresholdProperties(map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_points",
			Description: "List Canny edge pixels with their image gradients. The result can be passed to ellipse_fit as samples, or written to a sample file for ellipse_fit_file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": thresholdProperties(map[string]interface{}{
					"path":   pathProperty("Absolute path to the image file"),
					"region": regionProperty("Optional region to restrict the edge points to; (x2,y2) is exclusive"),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path of a sample file to write the points to",
					},
				}),
				"required": []string{"path"},
			},
		},

		// Ellipses
		{
			Name:        "image_detect_ellipses",
			Description: "Detect elliptical and circular outlines. Each edge contour is fitted with an ellipse; results include center, semi-axes, orientation, bounds, confidence and fill color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": thresholdProperties(map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"min_points": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum number of edge pixels in a contour",
						"default":     20,
					},
					"min_axis": map[string]interface{}{
						"type":        "number",
						"description": "Minimum semi-axis in pixels",
						"default":     3,
					},
					"max_axis": map[string]interface{}{
						"type":        "number",
						"description": "Maximum semi-axis in pixels (0 = unbounded)",
						"default":     0,
					},
					"tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Distance in pixels within which an edge pixel counts as on the ellipse",
						"default":     1.5,
					},
					"min_confidence": map[string]interface{}{
						"type":        "number",
						"description": "Minimum fraction of contour pixels on the ellipse (0.0-1.0)",
						"default":     0.8,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Downscale factor applied before edge detection (0-1, 1 = full resolution)",
						"default":     1,
					},
					"region": regionProperty("Optional region to search; (x2,y2) is exclusive"),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_ellipse_overlay",
			Description: "Draw ellipses with center marks onto the image and return it as base64-encoded PNG. Without ellipses the detected ellipses are drawn.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"ellipses": map[string]interface{}{
						"type":        "array",
						"description": "Ellipses to draw, as returned by ellipse_fit",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"center_x":    map[string]interface{}{"type": "number"},
								"center_y":    map[string]interface{}{"type": "number"},
								"semi_axis_a": map[string]interface{}{"type": "number"},
								"semi_axis_b": map[string]interface{}{"type": "number"},
								"orientation": map[string]interface{}{"type": "number"},
							},
							"required": []string{"center_x", "center_y", "semi_axis_a", "semi_axis_b", "orientation"},
						},
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as hex (#RRGGBB or #RRGGBBAA)",
						"default":     "#FF0000",
					},
					"show_labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Label each ellipse with its index",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "ellipse_fit",
			Description: "Fit an ellipse to at least two points with the gradient (edge normal) at each point. Gradient length and sign do not matter. Returns center, signed semi-axes, orientation in radians and the canonical form.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"samples": map[string]interface{}{
						"type":        "array",
						"description": "Points on the outline with their gradients",
						"minItems":    2,
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":  map[string]interface{}{"type": "number"},
								"y":  map[string]interface{}{"type": "number"},
								"gx": map[string]interface{}{"type": "number"},
								"gy": map[string]interface{}{"type": "number"},
							},
							"required": []string{"x", "y", "gx", "gy"},
						},
					},
				},
				"required": []string{"samples"},
			},
		},
		{
			Name:        "ellipse_fit_file",
			Description: "Fit an ellipse to a sample file: a point count N followed by N lines of 'x y gx gy'.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the sample file"),
				},
				"required": []string{"path"},
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
