package render

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveScenePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.png")
	scene := image.NewRGBA(image.Rect(0, 0, 8, 8))

	require.NoError(t, SaveScene(path, scene))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, scene.Bounds(), decoded.Bounds())
}

func TestSaveSceneUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.bmp")
	err := SaveScene(path, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	require.Error(t, err)
}

func TestDefaultSceneName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/data/blot.png", "/data/dotblot-blot.png"},
		{"/data/scan.tif", "/data/dotblot-scan.tif"},
		{"plate.jpeg", "dotblot-plate.jpeg"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, DefaultSceneName(tt.in))
	}
}
