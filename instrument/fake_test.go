package instrument

import (
	"fmt"
	"image"
	"io/fs"
	"strings"
)

type fakeImage struct {
	id       int
	w, h     int
	disposed bool
}

func (f *fakeImage) Size() (int, int) { return f.w, f.h }
func (f *fakeImage) Dispose() { f.disposed = true }

// call is one recorded Target operation.
type call struct {
	op     string
	target int // 0 is the backbuffer
	img    int
	blend  BlendMode
	xf     Transform
}

// recordingTarget logs every draw with the blend mode and redirection in
// effect at the time.
type recordingTarget struct {
	images     []*fakeImage
	calls      []call
	current    int
	blend      BlendMode
	redirected int
}

func (r *recordingTarget) newImage(w, h int) *fakeImage {
	img := &fakeImage{id: len(r.images) + 1, w: w, h: h}
	r.images = append(r.images, img)
	return img
}

func (r *recordingTarget) NewImage(w, h int) Image { return r.newImage(w, h) }

func (r *recordingTarget) NewImageFromImage(src image.Image) Image {
	b := src.Bounds()
	return r.newImage(b.Dx(), b.Dy())
}

func (r *recordingTarget) Redirect(dst Image) {
	r.current = dst.(*fakeImage).id
	r.redirected++
}

func (r *recordingTarget) RestoreDefault() {
	r.current = 0
	r.redirected--
}

func (r *recordingTarget) SetBlendMode(m BlendMode) { r.blend = m }

func (r *recordingTarget) record(op string, img Image, xf Transform) {
	id := 0
	if img != nil {
		id = img.(*fakeImage).id
	}
	r.calls = append(r.calls, call{op: op, target: r.current, img: id, blend: r.blend, xf: xf})
}

func (r *recordingTarget) Clear() { r.record("clear", nil, Transform{}) }

func (r *recordingTarget) DrawImage(img Image, x, y float64) {
	r.record("draw", img, Transform{DstPivot: Vec{x, y}})
}

func (r *recordingTarget) DrawScaledRegion(src Image, sr, dr image.Rectangle) {
	r.record("region", src, Transform{})
}

func (r *recordingTarget) DrawRotatedScaled(img Image, t Transform) {
	r.record("rotated", img, t)
}

func (r *recordingTarget) reset() { r.calls = nil }

func (r *recordingTarget) live() int {
	n := 0
	for _, img := range r.images {
		if !img.disposed {
			n++
		}
	}
	return n
}

// fakeLoader serves a blank sheet unless failing is set.
type fakeLoader struct {
	failing bool
	loads   int
}

func (f *fakeLoader) Load(name string) (image.Image, error) {
	f.loads++
	if f.failing {
		return nil, fmt.Errorf("open %s: %w", name, fs.ErrNotExist)
	}
	return image.NewRGBA(image.Rect(0, 0, 800, 1000)), nil
}

type settings struct{ x, y, size int }

// fakeSource is an in-memory telemetry source.
type fakeSource struct {
	settings   map[string]settings
	values     map[string]float64
	registered []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{settings: map[string]settings{}, values: map[string]float64{}}
}

func (f *fakeSource) ReadSettings(name string, x, y, size int) (int, int, int) {
	if s, ok := f.settings[name]; ok {
		return s.x, s.y, s.size
	}
	return x, y, size
}

func (f *fakeSource) RegisterVar(group, label string, isBool bool, frequency float64, index int) {
	f.registered = append(f.registered, group+"/"+label)
}

func (f *fakeSource) UnregisterVars(group string) {
	kept := f.registered[:0]
	for _, r := range f.registered {
		if !strings.HasPrefix(r, group+"/") {
			kept = append(kept, r)
		}
	}
	f.registered = kept
}

func (f *fakeSource) Value(label string) float64 { return f.values[label] }
