// Package server implements the MCP (Model Context Protocol) server for
// ellipse fitting and detection.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_sample_color: Get color at pixel
//
// Edges:
//   - image_edge_detect: Canny edge detection
//   - image_edge_points: Edge pixels with gradients, optionally saved as a
//     sample file
//
// Ellipses:
//   - image_detect_ellipses: Find elliptical outlines
//   - image_ellipse_overlay: Draw ellipses onto the image
//   - ellipse_fit: Fit an ellipse to points and gradients
//   - ellipse_fit_file: Fit an ellipse to a sample file
//
// # State
//
// Images and their gradient fields are cached by path. Detection results are
// cached under an xxhash of the path and options. ellipse_fit and
// ellipse_fit_file share one fitting buffer that grows with the largest
// sample count seen and is never shrunk; its capacity is reported with
// every fit. All state lives for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(server.WithVersion(version))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
