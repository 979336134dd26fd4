package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/disintegration/imaging"
)

// cacheEntry is one decoded file and, once requested, its gradient field.
type cacheEntry struct {
	img    image.Image
	format string
	size   int64
	field  *GradientField
}

// ImageCache keeps decoded images and their gradient fields in memory,
// keyed by the path string they were loaded with.
//
// Edge detection, edge point extraction and ellipse detection on the same
// file share one decode and one Sobel pass. Entries stay until Evict or
// Clear; different spellings of the same path are separate entries.
//
// ImageCache is safe for concurrent use.
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

// NewImageCache returns an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{entries: make(map[string]*cacheEntry)}
}

// entry returns the cache entry for path, decoding the file on first use.
//
// JPEG files are rotated according to their EXIF orientation tag, so pixel
// coordinates match what an image viewer shows.
func (c *ImageCache) entry(path string) (*cacheEntry, error) {
	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return e, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have won the race; keep its entry.
	if e, ok := c.entries[path]; ok {
		return e, nil
	}
	e = &cacheEntry{img: img, format: format, size: int64(len(data))}
	c.entries[path] = e
	return e, nil
}

// Load returns the decoded image at path. PNG, JPEG and GIF are supported.
//
// The concrete image type depends on the file (e.g. *image.RGBA,
// *image.NRGBA, *image.YCbCr).
func (c *ImageCache) Load(path string) (image.Image, error) {
	e, err := c.entry(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

// Gradients returns the gradient field of the image at path, computing it
// with DefaultBlurRadius on first use.
func (c *ImageCache) Gradients(path string) (*GradientField, error) {
	e, err := c.entry(path)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	f := e.field
	c.mu.RUnlock()
	if f != nil {
		return f, nil
	}

	f = ComputeGradients(e.img, DefaultBlurRadius)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e.field == nil {
		e.field = f
	}
	return e.field, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every image and gradient field.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Evict drops the image loaded from path, if any, together with its
// gradient field. The next access reads the file again.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format found in the file contents: "png", "jpeg" or
	// "gif". The file extension is not consulted.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache and describes it.
//
// Color depth and alpha follow the decoded Go image type: 64-bit types and
// *image.Gray16 are "16-bit"; RGBA and NRGBA types report an alpha channel.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	e, err := cache.entry(path)
	if err != nil {
		return nil, err
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch e.img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	b := e.img.Bounds()
	return &ImageInfo{
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        e.format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: e.size,
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`
}

// GetDimensions loads an image into the cache and returns its size.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &DimensionsResult{Width: b.Dx(), Height: b.Dy()}, nil
}
