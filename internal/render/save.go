package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

// SaveScene encodes a rendered scene to disk. The format is chosen by the
// filename suffix: .png, .jpg/.jpeg or .tif/.tiff.
func SaveScene(path string, scene image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(file, scene)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, scene, nil)
	case ".tif", ".tiff":
		err = tiff.Encode(file, scene, nil)
	default:
		err = fmt.Errorf("unsupported image format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	return nil
}

// DefaultSceneName returns the suggested export path for a source image:
// "dotblot-<name><ext>" in the same directory.
func DefaultSceneName(imagePath string) string {
	dir, base := filepath.Split(imagePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("dotblot-%s%s", name, ext))
}
