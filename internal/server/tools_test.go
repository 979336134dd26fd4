package server

import (
	"fmt"
	"testing"
)

func toolByName(t *testing.T, name string) Tool {
	t.Helper()
	for _, tool := range GetToolDefinitions() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("%s tool not found", name)
	return Tool{}
}

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"image_sample_color",
		"image_edge_detect",
		"image_edge_points",
		"image_detect_ellipses",
		"image_ellipse_overlay",
		"ellipse_fit",
		"ellipse_fit_file",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("tool count: got %d, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	// Check all expected tools exist
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Dispatched(t *testing.T) {
	s := New()

	// Every listed tool must be known to executeTool
	for _, tool := range GetToolDefinitions() {
		_, err := s.executeTool(tool.Name, []byte(`{invalid`))
		if err == nil {
			t.Errorf("%s: expected a JSON error", tool.Name)
			continue
		}
		if err.Error() == "unknown tool: "+tool.Name {
			t.Errorf("%s is listed but not dispatched", tool.Name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			// Name should not be empty
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}

			// Description should not be empty
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}

			// InputSchema should exist
			if tool.InputSchema == nil {
				t.Error("Tool InputSchema is nil")
			}

			// InputSchema should be an object type
			schemaType, ok := tool.InputSchema["type"]
			if !ok {
				t.Error("InputSchema missing 'type' field")
			}
			if schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			// InputSchema should have properties
			props, ok := tool.InputSchema["properties"]
			if !ok {
				t.Error("InputSchema missing 'properties' field")
			}
			if props == nil {
				t.Error("InputSchema properties is nil")
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := map[string][]string{
		"image_load":            {"path"},
		"image_dimensions":      {"path"},
		"image_sample_color":    {"path", "x", "y"},
		"image_edge_detect":     {"path"},
		"image_edge_points":     {"path"},
		"image_detect_ellipses": {"path"},
		"image_ellipse_overlay": {"path"},
		"ellipse_fit":           {"samples"},
		"ellipse_fit_file":      {"path"},
	}

	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			tool := toolByName(t, name)

			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			if len(required) != len(want) {
				t.Fatalf("required: got %v, want %v", required, want)
			}
			for i := range want {
				if required[i] != want[i] {
					t.Errorf("required[%d]: got %s, want %s", i, required[i], want[i])
				}
			}
		})
	}
}

func TestToolDefinitions_EllipseFitSamples(t *testing.T) {
	tool := toolByName(t, "ellipse_fit")

	props, ok := tool.InputSchema["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("properties should be a map")
	}
	samples, ok := props["samples"].(map[string]interface{})
	if !ok {
		t.Fatal("samples property should exist and be a map")
	}
	if samples["minItems"] != 2 {
		t.Errorf("minItems: got %v, want 2", samples["minItems"])
	}

	items, ok := samples["items"].(map[string]interface{})
	if !ok {
		t.Fatal("samples should describe its items")
	}
	itemProps, ok := items["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("items properties should be a map")
	}
	for _, key := range []string{"x", "y", "gx", "gy"} {
		if _, ok := itemProps[key]; !ok {
			t.Errorf("sample property %s missing", key)
		}
	}
}

func TestToolDefinitions_RegionProperties(t *testing.T) {
	for _, name := range []string{"image_edge_points", "image_detect_ellipses"} {
		t.Run(name, func(t *testing.T) {
			props, ok := toolByName(t, name).InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("properties should be a map")
			}
			region, ok := props["region"].(map[string]interface{})
			if !ok {
				t.Fatal("region property should exist and be a map")
			}
			required, ok := region["required"].([]string)
			if !ok || len(required) != 4 {
				t.Errorf("region should require x1, y1, x2, y2, got %v", region["required"])
			}
		})
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	tools := GetToolDefinitions()

	// Tools with optional parameters that should have defaults
	toolDefaults := map[string]map[string]interface{}{
		"image_edge_detect": {"threshold_low": 50, "threshold_high": 150},
		"image_edge_points": {"threshold_low": 50, "threshold_high": 150},
		"image_detect_ellipses": {
			"threshold_low":  50,
			"threshold_high": 150,
			"min_points":     20,
			"min_axis":       3,
			"tolerance":      1.5,
			"min_confidence": 0.8,
			"scale":          1,
		},
		"image_ellipse_overlay": {"color": "#FF0000", "show_labels": false},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	for toolName, expectedDefaults := range toolDefaults {
		tool, ok := toolMap[toolName]
		if !ok {
			t.Errorf("Tool %s not found", toolName)
			continue
		}

		props, ok := tool.InputSchema["properties"].(map[string]interface{})
		if !ok {
			t.Errorf("%s: properties should be a map", toolName)
			continue
		}

		for paramName, expectedDefault := range expectedDefaults {
			param, ok := props[paramName].(map[string]interface{})
			if !ok {
				t.Errorf("%s.%s: parameter not found or not a map", toolName, paramName)
				continue
			}

			actualDefault, ok := param["default"]
			if !ok {
				t.Errorf("%s.%s: missing default value", toolName, paramName)
				continue
			}

			// Schema defaults are plain Go literals
			if fmt.Sprint(actualDefault) != fmt.Sprint(expectedDefault) {
				t.Errorf("%s.%s: default got %v, want %v", toolName, paramName, actualDefault, expectedDefault)
			}
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	tools, ok := result["tools"]
	if !ok {
		t.Fatal("Result should contain 'tools' key")
	}

	toolsList, ok := tools.([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	// Should match GetToolDefinitions
	expected := GetToolDefinitions()
	if len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}
