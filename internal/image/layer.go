// Package image loads the picture being annotated and renders it into the
// display.
package image

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"

	"overlay-annotator/pkg/geometry"
)

// Layer is a loaded image together with its display settings.
type Layer struct {
	Path    string      // Original file path
	Image   image.Image // Decoded, orientation applied
	DPI     float64     // From TIFF metadata when present
	Visible bool
	Opacity float64 // 0.0 - 1.0
}

// NewLayer wraps an already decoded image.
func NewLayer(img image.Image) *Layer {
	return &Layer{
		Image:   img,
		Visible: true,
		Opacity: 1.0,
	}
}

// Load loads an image from the specified path. EXIF orientation is applied
// so that overlay coordinates match what the user sees.
func Load(path string) (*Layer, error) {
	if !IsSupportedFormat(path) {
		return nil, fmt.Errorf("unsupported image format: %s", filepath.Ext(path))
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	layer := NewLayer(img)
	layer.Path = path

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".tiff" || ext == ".tif" {
		if dpi, err := extractTIFFDPI(path); err == nil {
			layer.DPI = dpi
		}
	}

	return layer, nil
}

// Width returns the image width in pixels.
func (l *Layer) Width() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (l *Layer) Height() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (l *Layer) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(l.Width()),
		Height: float64(l.Height()),
	}
}

// Rect returns the image area in image coordinates.
func (l *Layer) Rect() geometry.Rect {
	return geometry.NewRect(0, 0, float64(l.Width()), float64(l.Height()))
}

// PixelAt returns the color at the specified pixel coordinates.
func (l *Layer) PixelAt(x, y int) color.Color {
	if l.Image == nil {
		return color.Black
	}
	b := l.Image.Bounds()
	p := image.Pt(x+b.Min.X, y+b.Min.Y)
	if !p.In(b) {
		return color.Black
	}
	return l.Image.At(p.X, p.Y)
}

// Crop returns the part of the image under r, clipped to the image. The
// result is nil when r does not cover any pixel.
func (l *Layer) Crop(r geometry.Rect) image.Image {
	if l.Image == nil {
		return nil
	}
	b := l.Image.Bounds()
	area := r.Bounds().Add(b.Min).Intersect(b)
	if area.Empty() {
		return nil
	}
	return imaging.Crop(l.Image, area)
}

// extractTIFFDPI attempts to extract DPI from TIFF metadata.
func extractTIFFDPI(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	// Read TIFF header to determine byte order
	header := make([]byte, 8)
	if _, err := file.Read(header); err != nil {
		return 0, err
	}

	var byteOrder binary.ByteOrder
	if header[0] == 'I' && header[1] == 'I' {
		byteOrder = binary.LittleEndian
	} else if header[0] == 'M' && header[1] == 'M' {
		byteOrder = binary.BigEndian
	} else {
		return 0, fmt.Errorf("not a valid TIFF file")
	}

	// Get offset to first IFD
	ifdOffset := byteOrder.Uint32(header[4:8])

	// Seek to IFD
	if _, err := file.Seek(int64(ifdOffset), 0); err != nil {
		return 0, err
	}

	// Read number of directory entries
	var numEntries uint16
	if err := binary.Read(file, byteOrder, &numEntries); err != nil {
		return 0, err
	}

	var xRes, yRes float64
	var resUnit uint16 = 2 // Default to inches

	// Read directory entries
	for i := uint16(0); i < numEntries; i++ {
		entry := make([]byte, 12)
		if _, err := file.Read(entry); err != nil {
			return 0, err
		}

		tag := byteOrder.Uint16(entry[0:2])
		fieldType := byteOrder.Uint16(entry[2:4])
		valueOffset := byteOrder.Uint32(entry[8:12])

		switch tag {
		case 282: // XResolution
			if fieldType == 5 { // RATIONAL
				xRes = readTIFFRational(file, int64(valueOffset), byteOrder)
			}
		case 283: // YResolution
			if fieldType == 5 { // RATIONAL
				yRes = readTIFFRational(file, int64(valueOffset), byteOrder)
			}
		case 296: // ResolutionUnit
			if fieldType == 3 { // SHORT
				resUnit = uint16(valueOffset)
			}
		}
	}

	if xRes == 0 && yRes == 0 {
		return 0, fmt.Errorf("no resolution tags found")
	}

	// Use X resolution (or Y if X is 0)
	dpi := xRes
	if dpi == 0 {
		dpi = yRes
	}

	// Convert from centimeters to inches if needed
	if resUnit == 3 {
		dpi *= 2.54
	}

	if dpi == 0 {
		return 0, fmt.Errorf("DPI is zero")
	}

	return dpi, nil
}

// readTIFFRational reads a RATIONAL value (two uint32s) from a TIFF file.
func readTIFFRational(file *os.File, offset int64, byteOrder binary.ByteOrder) float64 {
	currentPos, _ := file.Seek(0, 1) // Save current position
	defer file.Seek(currentPos, 0)   // Restore position

	file.Seek(offset, 0)
	var num, denom uint32
	binary.Read(file, byteOrder, &num)
	binary.Read(file, byteOrder, &denom)

	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg", ".bmp", ".gif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
