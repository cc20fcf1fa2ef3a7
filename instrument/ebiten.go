package instrument

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// multiplyBlend darkens the destination by the source colour:
// c = c_src×c_dst + c_dst×(1−α_src). Destination alpha is kept.
var multiplyBlend = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
	BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

type ebitenImage struct {
	img *ebiten.Image
}

func (e *ebitenImage) Size() (int, int) {
	b := e.img.Bounds()
	return b.Dx(), b.Dy()
}

func (e *ebitenImage) Dispose() {
	e.img.Dispose()
}

// EbitenTarget draws with ebiten. Call Begin with the frame's screen
// before rendering any instrument.
type EbitenTarget struct {
	screen  *ebiten.Image
	current *ebiten.Image
	blend   ebiten.Blend
}

func NewEbitenTarget() *EbitenTarget {
	return &EbitenTarget{blend: ebiten.BlendSourceOver}
}

// Begin makes screen the backbuffer for this frame.
func (e *EbitenTarget) Begin(screen *ebiten.Image) {
	e.screen = screen
	e.current = screen
	e.blend = ebiten.BlendSourceOver
}

func (e *EbitenTarget) NewImage(w, h int) Image {
	return &ebitenImage{img: ebiten.NewImage(w, h)}
}

func (e *EbitenTarget) NewImageFromImage(src image.Image) Image {
	return &ebitenImage{img: ebiten.NewImageFromImage(src)}
}

func (e *EbitenTarget) Redirect(dst Image) {
	e.current = dst.(*ebitenImage).img
}

func (e *EbitenTarget) RestoreDefault() {
	e.current = e.screen
}

func (e *EbitenTarget) SetBlendMode(m BlendMode) {
	switch m {
	case BlendMultiply:
		e.blend = multiplyBlend
	default:
		e.blend = ebiten.BlendSourceOver
	}
}

func (e *EbitenTarget) Clear() {
	if e.current != nil {
		e.current.Clear()
	}
}

func (e *EbitenTarget) draw(img *ebiten.Image, op *ebiten.DrawImageOptions) {
	// Drawing to the backbuffer before the first Begin is dropped
	if e.current == nil {
		return
	}
	op.Blend = e.blend
	op.Filter = ebiten.FilterLinear
	e.current.DrawImage(img, op)
}

func (e *EbitenTarget) DrawImage(img Image, x, y float64) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	e.draw(img.(*ebitenImage).img, op)
}

func (e *EbitenTarget) DrawScaledRegion(src Image, sr, dr image.Rectangle) {
	sub := src.(*ebitenImage).img.SubImage(sr).(*ebiten.Image)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(dr.Dx())/float64(sr.Dx()), float64(dr.Dy())/float64(sr.Dy()))
	op.GeoM.Translate(float64(dr.Min.X), float64(dr.Min.Y))
	e.draw(sub, op)
}

func (e *EbitenTarget) DrawRotatedScaled(img Image, t Transform) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-t.SrcPivot.X, -t.SrcPivot.Y)
	op.GeoM.Scale(t.Scale, t.Scale)
	op.GeoM.Rotate(t.Rotation)
	op.GeoM.Translate(t.DstPivot.X, t.DstPivot.Y)
	e.draw(img.(*ebitenImage).img, op)
}
