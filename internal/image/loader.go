// Package image provides utilities for loading, scaling and listing wallpaper images.
package image

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/webp" // Register WebP format
)

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given path.
	Load(path string) (image.Image, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, BMP, WebP.
func (l *FileLoader) Load(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	return img, nil
}

// SupportedImageExtensions returns the wallpaper file extensions that are listed.
func SupportedImageExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".webp"}
}

// HasImageExtension checks if a file has a supported image extension.
func HasImageExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}

// IsImageFile reports whether the file's leading bytes identify it as an image.
func IsImageFile(path string) bool {
	f, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 261)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return false
	}
	return filetype.IsImage(head[:n])
}

// ListImages returns the image files directly inside dir, sorted by path.
// Files need a supported extension and image content; subdirectories are
// not scanned. A missing directory yields an empty list.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	images := []string{}
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())

		// Stat follows symlinks.
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		if HasImageExtension(entry.Name()) && IsImageFile(full) {
			images = append(images, full)
		}
	}

	sort.Strings(images)
	return images, nil
}

// FitWithin shrinks img so it fits inside maxW x maxH, keeping its aspect
// ratio. Images already small enough are returned unchanged.
func FitWithin(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))
	return transform.Resize(img, nw, nh, transform.Box)
}

// Resize scales img to exactly w x h.
func Resize(img image.Image, w, h int) image.Image {
	return transform.Resize(img, w, h, transform.Linear)
}

// ResizeToWidth scales img to the given width, keeping the aspect ratio and
// using nearest-neighbour sampling so no new colours are introduced.
func ResizeToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 {
		return img
	}
	height := max(1, int(float64(b.Dy())*float64(width)/float64(b.Dx())))
	return transform.Resize(img, width, height, transform.NearestNeighbor)
}

// Dimensions returns the width and height of an image without fully loading it.
func Dimensions(path string) (width, height int, err error) {
	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	return config.Width, config.Height, nil
}
