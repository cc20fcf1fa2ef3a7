package assets

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func writeSheet(t *testing.T, path string, encode func(*os.File, image.Image) error) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{10, 20, 30, 255})
		}
	}
	img.Set(3, 1, MaskColor)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, encode(f, img))
}

func encodePNG(f *os.File, img image.Image) error { return png.Encode(f, img) }
func encodeBMP(f *os.File, img image.Image) error { return bmp.Encode(f, img) }

func TestLoadMasksMagenta(t *testing.T) {
	for _, tc := range []struct {
		file   string
		encode func(*os.File, image.Image) error
	}{
		{"vsi.png", encodePNG},
		{"vsi.bmp", encodeBMP},
	} {
		dir := t.TempDir()
		writeSheet(t, filepath.Join(dir, tc.file), tc.encode)

		l, err := NewLoader(dir, 4)
		require.NoError(t, err)

		img, err := l.Load(tc.file)
		require.NoError(t, err, tc.file)
		assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())

		_, _, _, a := img.At(3, 1).RGBA()
		assert.Zero(t, a, "%s: mask colour should be transparent", tc.file)
		r, g, b, a := img.At(0, 0).RGBA()
		assert.Equal(t, [4]uint32{10 * 0x101, 20 * 0x101, 30 * 0x101, 0xffff}, [4]uint32{r, g, b, a}, tc.file)
	}
}

func TestLoadMissing(t *testing.T) {
	l, err := NewLoader(t.TempDir(), 0)
	require.NoError(t, err)

	_, err = l.Load("oil.bmp")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoad))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vsi.bmp"), []byte("not a bitmap"), 0o644))

	l, err := NewLoader(dir, 0)
	require.NoError(t, err)
	_, err = l.Load("vsi.bmp")
	assert.True(t, errors.Is(err, ErrLoad))
}

func TestLoadCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vsi.png")
	writeSheet(t, path, encodePNG)

	l, err := NewLoader(dir, 4)
	require.NoError(t, err)
	first, err := l.Load("vsi.png")
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	second, err := l.Load("vsi.png")
	require.NoError(t, err, "cached image should survive the file going away")
	assert.Same(t, first, second)

	l.Purge()
	_, err = l.Load("vsi.png")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestFailuresNotCached(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLoader(dir, 4)
	require.NoError(t, err)

	_, err = l.Load("vsi.png")
	require.Error(t, err)

	writeSheet(t, filepath.Join(dir, "vsi.png"), encodePNG)
	_, err = l.Load("vsi.png")
	assert.NoError(t, err)
}
