// Package imageload decodes source images and prepares them for sampling.
package imageload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format

	"ha-image-scene/internal/sampling"
)

const DefaultMaxDimension = 500

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Loader decodes images and downscales them so neither side exceeds
// MaxDimension.
type Loader struct {
	MaxDimension int
}

func NewLoader(maxDimension int) *Loader {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Loader{MaxDimension: maxDimension}
}

// Decode reads an encoded image and returns its downscaled raster.
func (l *Loader) Decode(b []byte) (*sampling.Raster, error) {
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode image (format: %s): %w", format, err)
	}
	return sampling.NewRaster(l.Fit(img))
}

// LoadFile reads and decodes an image from disk.
func (l *Loader) LoadFile(path string) (*sampling.Raster, error) {
	if err := ValidateName(path); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path) // #nosec G304 - preset paths come from the operator's catalog
	if err != nil {
		return nil, fmt.Errorf("read image file: %w", err)
	}
	return l.Decode(b)
}

// Fit shrinks img to fit a MaxDimension square, preserving aspect ratio.
// Smaller images are returned unchanged.
func (l *Loader) Fit(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= l.MaxDimension && b.Dy() <= l.MaxDimension {
		return img
	}
	return imaging.Fit(img, l.MaxDimension, l.MaxDimension, imaging.Lanczos)
}

func SupportedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
}

// ValidateName checks a file name or path against SupportedExtensions.
func ValidateName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range SupportedExtensions() {
		if ext == e {
			return nil
		}
	}
	return ErrUnsupportedFormat
}
