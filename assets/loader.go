// Package assets loads instrument art sheets from a directory.
package assets

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/bmp" // Register BMP decoder
)

// ErrLoad wraps every failure to produce an image.
var ErrLoad = errors.New("asset load failed")

// MaskColor is painted wherever an art sheet should be transparent. BMP
// has no alpha channel, so sheets use magenta instead.
var MaskColor = color.RGBA{255, 0, 255, 255}

const DefaultCacheSize = 32

// Loader decodes images from dir and keeps recently used ones in memory.
// Failed loads are not cached, so the next attempt reads the disk again.
type Loader struct {
	dir   string
	cache *lru.Cache[string, image.Image]
}

// NewLoader creates a loader rooted at dir holding at most size images.
func NewLoader(dir string, size int) (*Loader, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, image.Image](size)
	if err != nil {
		return nil, err
	}
	return &Loader{dir: dir, cache: cache}, nil
}

// Load returns the decoded image for name with MaskColor made transparent.
func (l *Loader) Load(name string) (image.Image, error) {
	if img, ok := l.cache.Get(name); ok {
		return img, nil
	}

	img, err := l.decode(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, name, err)
	}

	l.cache.Add(name, img)
	return img, nil
}

func (l *Loader) decode(name string) (image.Image, error) {
	f, err := os.Open(filepath.Join(l.dir, filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return applyMask(img), nil
}

// applyMask converts img to NRGBA with every MaskColor pixel cleared.
func applyMask(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	for i := 0; i < len(out.Pix); i += 4 {
		p := out.Pix[i : i+4 : i+4]
		if p[0] == MaskColor.R && p[1] == MaskColor.G && p[2] == MaskColor.B {
			p[0], p[1], p[2], p[3] = 0, 0, 0, 0
		}
	}
	return out
}

// Purge drops every cached image so the next Load reads from disk.
func (l *Loader) Purge() {
	l.cache.Purge()
}
