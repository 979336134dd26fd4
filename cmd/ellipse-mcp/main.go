package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/ellipse-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("ellipse-tools-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("ellipse-tools-mcp - MCP server for ellipse fitting and detection")
			fmt.Println()
			fmt.Println("Usage: ellipse-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  ELLIPSE_MCP_LOG_LEVEL=debug    Log every tool call with its duration")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("ELLIPSE_MCP_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("Ellipse MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New(server.WithVersion(Version), server.WithDebug(debug))
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
