package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"seehuhn.de/go/geom/vec"

	"github.com/ironsheep/ellipse-tools-mcp/internal/detection"
	"github.com/ironsheep/ellipse-tools-mcp/internal/fit"
	"github.com/ironsheep/ellipse-tools-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "ellipse_fit").
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

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if s.debug {
		log.Printf("tool %s finished in %v (err=%v)", params.Name, time.Since(start), err)
	}
	if err != nil {
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images or gradient fields from cache as needed
//  4. Calls the appropriate imaging/detection/fit function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	// Edges
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)
	case "image_edge_points":
		return s.handleImageEdgePoints(args)

	// Ellipses
	case "image_detect_ellipses":
		return s.handleImageDetectEllipses(args)
	case "image_ellipse_overlay":
		return s.handleImageEllipseOverlay(args)
	case "ellipse_fit":
		return s.handleEllipseFit(args)
	case "ellipse_fit_file":
		return s.handleEllipseFitFile(args)

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

// regionArgs is the JSON form of imaging.Region.
type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (r *regionArgs) region() *imaging.Region {
	if r == nil {
		return nil
	}
	return &imaging.Region{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2}
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

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

// === Edge Handlers ===

type imageEdgeDetectArgs struct {
	Path          string `json:"path"`
	ThresholdLow  int    `json:"threshold_low"`
	ThresholdHigh int    `json:"threshold_high"`
}

func (a *imageEdgeDetectArgs) applyDefaults() {
	if a.ThresholdLow == 0 {
		a.ThresholdLow = 50
	}
	if a.ThresholdHigh == 0 {
		a.ThresholdHigh = 150
	}
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	a.applyDefaults()
	field, err := s.cache.Gradients(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeEdges(field, field.Edges(a.ThresholdLow, a.ThresholdHigh))
}

type imageEdgePointsArgs struct {
	imageEdgeDetectArgs
	Region     *regionArgs `json:"region,omitempty"`
	OutputPath string      `json:"output_path,omitempty"`
}

// edgePointsResult adds the sample file location to the edge points.
type edgePointsResult struct {
	*imaging.EdgePointsResult
	OutputPath string `json:"output_path,omitempty"`
}

func (s *Server) handleImageEdgePoints(args json.RawMessage) (interface{}, error) {
	var a imageEdgePointsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	a.applyDefaults()
	field, err := s.cache.Gradients(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := imaging.EdgePointsFromField(field, a.ThresholdLow, a.ThresholdHigh, a.Region.region())
	if err != nil {
		return nil, err
	}
	if a.OutputPath != "" {
		if err := writeSampleFile(a.OutputPath, res.Points); err != nil {
			return nil, err
		}
	}
	return &edgePointsResult{EdgePointsResult: res, OutputPath: a.OutputPath}, nil
}

// writeSampleFile stores edge points in the text format read by
// ellipse_fit_file.
func writeSampleFile(path string, edgePoints []imaging.EdgePoint) (err error) {
	points := make([]vec.Vec2, len(edgePoints))
	gradients := make([]vec.Vec2, len(edgePoints))
	for i, p := range edgePoints {
		points[i] = p.Position()
		gradients[i] = p.Gradient()
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create sample file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close sample file: %w", cerr)
		}
	}()
	return fit.WriteSamples(f, points, gradients)
}

// === Ellipse Handlers ===

type imageDetectEllipsesArgs struct {
	Path          string      `json:"path"`
	ThresholdLow  int         `json:"threshold_low"`
	ThresholdHigh int         `json:"threshold_high"`
	MinPoints     int         `json:"min_points"`
	MinAxis       float64     `json:"min_axis"`
	MaxAxis       float64     `json:"max_axis"`
	Tolerance     float64     `json:"tolerance"`
	MinConfidence float64     `json:"min_confidence"`
	Scale         float64     `json:"scale"`
	Region        *regionArgs `json:"region,omitempty"`
}

func (a imageDetectEllipsesArgs) options() detection.Options {
	return detection.Options{
		ThresholdLow:  a.ThresholdLow,
		ThresholdHigh: a.ThresholdHigh,
		MinPoints:     a.MinPoints,
		MinAxis:       a.MinAxis,
		MaxAxis:       a.MaxAxis,
		Tolerance:     a.Tolerance,
		MinConfidence: a.MinConfidence,
		Scale:         a.Scale,
		Region:        a.Region.region(),
	}
}

func (s *Server) handleImageDetectEllipses(args json.RawMessage) (interface{}, error) {
	var a imageDetectEllipsesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.detectEllipses(a.Path, a.options())
}

// detectEllipses runs detection once per path and option set and serves
// repeated requests from memory.
func (s *Server) detectEllipses(path string, opts detection.Options) (*detection.EllipsesResult, error) {
	key, err := detectionKey(path, opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	res, ok := s.detected[key]
	s.mu.Unlock()
	if ok {
		if s.debug {
			log.Printf("detection cache hit for %s", path)
		}
		return res, nil
	}

	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	res, err = detection.DetectEllipses(img, opts)
	if err != nil {
		return nil, err
	}

	s.storeDetection(key, res)
	return res, nil
}

// storeDetection caches a detection result, dropping the oldest results
// once detectLimit is reached.
func (s *Server) storeDetection(key uint64, res *detection.EllipsesResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.detected[key]; ok {
		s.detected[key] = res
		return
	}
	for len(s.detectedOrder) > 0 && len(s.detectedOrder) >= s.detectLimit {
		delete(s.detected, s.detectedOrder[0])
		s.detectedOrder = s.detectedOrder[1:]
	}
	s.detected[key] = res
	s.detectedOrder = append(s.detectedOrder, key)
}

// detectionKey hashes the image path together with the detection options.
func detectionKey(path string, opts detection.Options) (uint64, error) {
	b, err := json.Marshal(opts)
	if err != nil {
		return 0, fmt.Errorf("failed to encode detection options: %w", err)
	}
	d := xxhash.New()
	_, _ = d.WriteString(path)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(b)
	return d.Sum64(), nil
}

type imageEllipseOverlayArgs struct {
	Path       string        `json:"path"`
	Ellipses   []fit.Ellipse `json:"ellipses,omitempty"`
	Color      string        `json:"color"`
	ShowLabels bool          `json:"show_labels"`
}

func (s *Server) handleImageEllipseOverlay(args json.RawMessage) (interface{}, error) {
	var a imageEllipseOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = "#FF0000"
	}

	ellipses := a.Ellipses
	if len(ellipses) == 0 {
		res, err := s.detectEllipses(a.Path, detection.Options{})
		if err != nil {
			return nil, err
		}
		for _, e := range res.Ellipses {
			ellipses = append(ellipses, e.Ellipse)
		}
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EllipseOverlay(img, ellipses, a.Color, a.ShowLabels)
}

// sampleArgs is one point on an outline with the gradient (edge normal) at
// that point.
type sampleArgs struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	GX float64 `json:"gx"`
	GY float64 `json:"gy"`
}

type ellipseFitArgs struct {
	Samples []sampleArgs `json:"samples"`
}

// EllipseFitResult is returned by ellipse_fit and ellipse_fit_file.
type EllipseFitResult struct {
	// Ellipse holds the parameters as fitted, including signed semi-axes.
	Ellipse fit.Ellipse `json:"ellipse"`

	// Canonical has positive semi-axes with SemiAxisA the major one.
	// Omitted for degenerate or imaginary fits.
	Canonical *fit.Ellipse `json:"canonical,omitempty"`

	// Degenerate is true when the conic is not a proper ellipse.
	Degenerate bool `json:"degenerate"`

	// Samples is the number of samples used.
	Samples int `json:"samples"`

	// BufferCapacity is the size of the server's fitting buffer in float64
	// elements after the fit.
	BufferCapacity int `json:"buffer_capacity"`
}

func (s *Server) handleEllipseFit(args json.RawMessage) (interface{}, error) {
	var a ellipseFitArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	points := make([]vec.Vec2, len(a.Samples))
	gradients := make([]vec.Vec2, len(a.Samples))
	for i, smp := range a.Samples {
		points[i] = vec.Vec2{X: smp.X, Y: smp.Y}
		gradients[i] = vec.Vec2{X: smp.GX, Y: smp.GY}
	}
	return s.fitSamples(points, gradients)
}

type ellipseFitFileArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleEllipseFitFile(args json.RawMessage) (interface{}, error) {
	var a ellipseFitFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample file: %w", err)
	}
	defer f.Close()

	points, gradients, err := fit.ReadSamples(f)
	if err != nil {
		return nil, err
	}
	return s.fitSamples(points, gradients)
}

// fitSamples fits with the session buffer, which only ever grows.
func (s *Server) fitSamples(points, gradients []vec.Vec2) (*EllipseFitResult, error) {
	s.mu.Lock()
	e, err := fit.Fit(points, gradients, s.buf)
	capacity := s.buf.Cap()
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, fit.ErrInvalidInput) {
			return nil, fmt.Errorf("invalid samples: %w", err)
		}
		return nil, err
	}

	res := &EllipseFitResult{
		Ellipse:        e,
		Degenerate:     e.IsDegenerate(),
		Samples:        len(points),
		BufferCapacity: capacity,
	}
	if e.IsReal() {
		c := e.Canonical()
		res.Canonical = &c
	}
	return res, nil
}
