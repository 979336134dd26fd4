package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/ironsheep/ellipse-tools-mcp/internal/detection"
	"github.com/ironsheep/ellipse-tools-mcp/internal/fit"
	"github.com/ironsheep/ellipse-tools-mcp/internal/imaging"
)

// ServerName is reported in the initialize response.
const ServerName = "ellipse-tools-mcp"

// Server handles MCP protocol communication
type Server struct {
	cache   *imaging.ImageCache
	version string
	debug   bool

	// mu guards the fitting buffer and the detection results.
	mu            sync.Mutex
	buf           *fit.Buffer
	detected      map[uint64]*detection.EllipsesResult
	detectedOrder []uint64 // insertion order, oldest first
	detectLimit   int
}

// defaultDetectLimit is the number of detection results kept in memory.
const defaultDetectLimit = 64

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported in the initialize response.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithDebug enables per-call debug logging on stderr.
func WithDebug(debug bool) Option {
	return func(s *Server) { s.debug = debug }
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(opts ...Option) *Server {
	s := &Server{
		cache:       imaging.NewImageCache(),
		version:     "dev",
		buf:         fit.NewBuffer(1),
		detected:    make(map[uint64]*detection.EllipsesResult),
		detectLimit: defaultDetectLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve processes newline-delimited requests from r until EOF and writes
// one response per line to w.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Sample lists for ellipse_fit can be large
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				log.Printf("Failed to encode response: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": s.version,
			},
		},
	}
}
