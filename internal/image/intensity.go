// Package image provides 16-bit grayscale intensity images and display adjustment.
package image

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/tiff"
)

// MaxSample is the largest representable sample value.
const MaxSample = 65535

// Intensity is a grayscale image of unsigned 16-bit samples, row-major.
// Once loaded it is never mutated; display adjustment produces a new image.
type Intensity struct {
	Width  int
	Height int
	Pix    []uint16 // len == Width*Height
}

// New creates a zero-filled intensity image.
func New(width, height int) *Intensity {
	return &Intensity{
		Width:  width,
		Height: height,
		Pix:    make([]uint16, width*height),
	}
}

// Load reads an image file and converts it to a 16-bit intensity image.
// 8-bit sources are promoted by a linear rescale (x65535/255) so all
// internal processing is uniformly 16-bit.
func Load(path string) (*Intensity, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return FromImage(img), nil
}

// FromImage converts a decoded image to a 16-bit intensity image.
func FromImage(img image.Image) *Intensity {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := New(w, h)

	switch src := img.(type) {
	case *image.Gray16:
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+2*w]
			for x := 0; x < w; x++ {
				out.Pix[y*w+x] = uint16(row[2*x])<<8 | uint16(row[2*x+1])
			}
		}
	case *image.Gray:
		// 8-bit source: promote by 65535/255 = 257.
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w]
			for x := 0; x < w; x++ {
				out.Pix[y*w+x] = uint16(row[x]) * 257
			}
		}
	default:
		// Color or paletted source: collapse to 16-bit luminance.
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				out.Pix[y*w+x] = uint16((299*r + 587*g + 114*b) / 1000)
			}
		}
	}
	return out
}

// At returns the sample at (x, y). Coordinates outside the image return 0.
func (m *Intensity) At(x, y int) uint16 {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return 0
	}
	return m.Pix[y*m.Width+x]
}

// Clone returns a deep copy.
func (m *Intensity) Clone() *Intensity {
	out := New(m.Width, m.Height)
	copy(out.Pix, m.Pix)
	return out
}

// ToGray16 converts to a standard library image for encoding and display.
func (m *Intensity) ToGray16() *image.Gray16 {
	out := image.NewGray16(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := m.Pix[y*m.Width+x]
			i := y*out.Stride + 2*x
			out.Pix[i] = uint8(v >> 8)
			out.Pix[i+1] = uint8(v)
		}
	}
	return out
}

// Max returns the largest sample value, or 0 for an empty image.
func (m *Intensity) Max() uint16 {
	var max uint16
	for _, v := range m.Pix {
		if v > max {
			max = v
		}
	}
	return max
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
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

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Image Files (*.tiff, *.tif, *.png, *.jpg, *.jpeg)"
}
