package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ironsheep/ellipse-tools-mcp/internal/fit"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("ellipse-fit - fit an ellipse to points with gradients")
	fmt.Println()
	fmt.Println("Usage: ellipse-fit [file]")
	fmt.Println()
	fmt.Println("The input starts with the point count N followed by N lines")
	fmt.Println("'x y gradx grady'. Without a file, or with '-', stdin is read.")
	fmt.Println()
	fmt.Println("Output: Ellipse parameters: centerX centerY semiAxisA semiAxisB orientation")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(0)
	log.SetPrefix("ellipse-fit: ")

	var in io.Reader = os.Stdin
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("ellipse-fit %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		case "-":
		default:
			f, err := os.Open(os.Args[1])
			if err != nil {
				log.Fatalf("invalid input file: %v", err)
			}
			defer f.Close()
			in = f
		}
	}

	points, gradients, err := fit.ReadSamples(in)
	if err != nil {
		log.Fatalf("%v", err)
	}

	e, err := fit.Fit(points, gradients, fit.NewBuffer(1))
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Print("Ellipse parameters: ")
	for _, p := range e.Params() {
		fmt.Printf("%f ", p)
	}
	fmt.Println()
}
