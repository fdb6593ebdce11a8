package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: 120, B: 40, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestNormalizePhotoResizesAndEncodesJPEG(t *testing.T) {
	out, err := NormalizePhoto(bytes.NewReader(samplePNG(t, 1200, 600)), 300)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 150, cfg.Height)
}

func TestNormalizePhotoKeepsSmallImages(t *testing.T) {
	out, err := NormalizePhoto(bytes.NewReader(samplePNG(t, 40, 30)), 300)
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 30, cfg.Height)
}

func TestNormalizePhotoRejectsGarbage(t *testing.T) {
	_, err := NormalizePhoto(strings.NewReader("definitely not an image"), 300)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("S1.jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "S1.jpg", name)

	f, err := store.Open(name)
	require.NoError(t, err)
	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	_ = f.Close()
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, store.Delete(name))
	require.NoError(t, store.Delete(name))
	_, err = store.Open(name)
	assert.Error(t, err)
}

func TestLocalStorageRejectsEscapes(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(filepath.Join(dir, "photos"))
	require.NoError(t, err)

	_, err = store.Save("../outside.jpg", []byte("x"))
	assert.ErrorIs(t, err, ErrOutsideBase)
	_, err = store.Path("/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideBase)
}
