package instrument

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

type softImage struct {
	rgba *image.RGBA
}

func (s *softImage) Size() (int, int) {
	b := s.rgba.Bounds()
	return b.Dx(), b.Dy()
}

func (s *softImage) Dispose() {
	s.rgba = nil
}

// SoftTarget renders on the CPU into an RGBA backbuffer. It needs no
// window, which makes it suitable for snapshots and tests.
type SoftTarget struct {
	back    *image.RGBA
	current *image.RGBA
	blend   BlendMode
}

// NewSoftTarget creates a target with a w×h backbuffer.
func NewSoftTarget(w, h int) *SoftTarget {
	back := image.NewRGBA(image.Rect(0, 0, w, h))
	return &SoftTarget{back: back, current: back}
}

// Frame returns the backbuffer.
func (s *SoftTarget) Frame() *image.RGBA {
	return s.back
}

// Fill paints the whole backbuffer with c.
func (s *SoftTarget) Fill(c color.Color) {
	draw.Draw(s.back, s.back.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (s *SoftTarget) NewImage(w, h int) Image {
	return &softImage{rgba: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (s *SoftTarget) NewImageFromImage(src image.Image) Image {
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	return &softImage{rgba: rgba}
}

func (s *SoftTarget) Redirect(dst Image) {
	s.current = dst.(*softImage).rgba
}

func (s *SoftTarget) RestoreDefault() {
	s.current = s.back
}

func (s *SoftTarget) SetBlendMode(m BlendMode) {
	s.blend = m
}

func (s *SoftTarget) Clear() {
	draw.Draw(s.current, s.current.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// compose runs paint against the current target. Alpha blending paints
// directly; multiply paints into a scratch layer first and folds that into
// the target pixel by pixel.
func (s *SoftTarget) compose(paint func(dst draw.Image, op draw.Op)) {
	if s.blend != BlendMultiply {
		paint(s.current, draw.Over)
		return
	}
	layer := image.NewRGBA(s.current.Bounds())
	paint(layer, draw.Src)
	multiply(s.current, layer)
}

// multiply applies c = c_src×c_dst + c_dst×(1−α_src) on premultiplied
// pixels, leaving destination alpha untouched.
func multiply(dst, src *image.RGBA) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := src.PixOffset(x, y)
			sa := uint32(src.Pix[si+3])
			if sa == 0 {
				continue
			}
			di := dst.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				d := uint32(dst.Pix[di+c])
				sc := uint32(src.Pix[si+c])
				dst.Pix[di+c] = uint8((sc*d + d*(255-sa)) / 255)
			}
		}
	}
}

func (s *SoftTarget) DrawImage(img Image, x, y float64) {
	src := img.(*softImage).rgba
	at := image.Pt(int(math.Round(x)), int(math.Round(y)))
	s.compose(func(dst draw.Image, op draw.Op) {
		draw.Draw(dst, src.Bounds().Add(at), src, image.Point{}, op)
	})
}

func (s *SoftTarget) DrawScaledRegion(src Image, sr, dr image.Rectangle) {
	rgba := src.(*softImage).rgba
	s.compose(func(dst draw.Image, op draw.Op) {
		if sr.Size() == dr.Size() {
			draw.Draw(dst, dr, rgba, sr.Min, op)
			return
		}
		draw.CatmullRom.Scale(dst, dr, rgba, sr, op, nil)
	})
}

func (s *SoftTarget) DrawRotatedScaled(img Image, t Transform) {
	rgba := img.(*softImage).rgba
	sin, cos := math.Sincos(t.Rotation)
	a, b := t.Scale*cos, -t.Scale*sin
	d, e := t.Scale*sin, t.Scale*cos
	m := f64.Aff3{
		a, b, t.DstPivot.X - (a*t.SrcPivot.X + b*t.SrcPivot.Y),
		d, e, t.DstPivot.Y - (d*t.SrcPivot.X + e*t.SrcPivot.Y),
	}
	s.compose(func(dst draw.Image, op draw.Op) {
		draw.BiLinear.Transform(dst, m, rgba, rgba.Bounds(), op, nil)
	})
}
