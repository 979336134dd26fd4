// Package detection finds ellipses in images.
//
// DetectEllipses runs Canny edge detection, groups the edge pixels into
// contours and fits one ellipse per contour with package fit, using the
// image gradient at every edge pixel as the edge normal. It is designed for
// diagrams, scanned markers and other clean, high-contrast content.
//
// # Algorithm Overview
//
//  1. Preparation: optional crop to a region and downscale
//  2. Edge Detection: Canny on a bild-smoothed Sobel gradient field
//  3. Contour Finding: 8-connected flood fill over edge pixels
//  4. Fitting: algebraic fit from points and gradients, one shared buffer
//  5. Filtering: drop degenerate fits, axis-range violations and
//     low-confidence results, then merge duplicates
//  6. Result Formatting: center, semi-axes, orientation, bounds, fill color
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Results are always reported in coordinates of the source image, also when
// a region or downscaling was used.
//
// # Confidence Scores
//
// Confidence is the fraction of contour pixels within the configured
// tolerance of the fitted outline. Coverage reports how much of the outline
// those pixels span; a short arc can have full confidence but low coverage.
//
// # Limitations
//
// Each contour is fitted as a whole, so shapes that touch other shapes or
// text produce poor fits and are usually filtered out. Noisy photographs
// need higher thresholds or downscaling.
//
// # Tests
//
// Like package fit, the tests here use testify's require and assert for
// tolerance checks on fitted parameters.
package detection
