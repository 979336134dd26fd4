// Package imaging provides the image processing operations behind ellipse
// fitting: loading and caching, gradient fields, Canny edge detection, edge
// point extraction, color sampling and ellipse overlays.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Because Y grows downward, an ellipse orientation measured from +X towards
// +Y turns clockwise on screen.
//
// # Gradients
//
// ComputeGradients converts to grayscale and blurs with bild before applying
// Sobel operators. The resulting GradientField is shared by EdgeDetect,
// EdgePoints and the ellipse detector, and ImageCache keeps one per file.
// Gradients are normal to edges and point from dark to bright.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images.
//
// # Color Representation
//
// Colors are returned in multiple formats:
//   - Hex: 6-character format "#RRGGBB" (alpha excluded)
//   - RGB: 8-bit components (0-255)
//   - RGBA: 8-bit components with alpha (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100), computed
//     with go-colorful
package imaging
