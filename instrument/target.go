package instrument

import (
	"image"

	"instrument-panel/log"
)

// BlendMode selects how drawn pixels combine with the destination.
type BlendMode int

const (
	// BlendAlpha is normal straight-alpha "over" compositing.
	BlendAlpha BlendMode = iota
	// BlendMultiply darkens the destination by the source colour. White
	// and fully transparent source pixels leave the destination unchanged.
	BlendMultiply
)

func (m BlendMode) String() string {
	switch m {
	case BlendAlpha:
		return "alpha"
	case BlendMultiply:
		return "multiply"
	default:
		return "unknown"
	}
}

// Vec is a 2D point in pixels.
type Vec struct {
	X, Y float64
}

// Transform places an image so that SrcPivot (in image pixels) lands on
// DstPivot (in target pixels) after scaling by Scale and rotating
// clockwise by Rotation radians around the pivot.
type Transform struct {
	SrcPivot Vec
	DstPivot Vec
	Scale    float64
	Rotation float64
}

// Image is a bitmap owned by a Target.
type Image interface {
	Size() (w, h int)
	Dispose()
}

// Target is the drawing backend an instrument composites into. Drawing
// goes to the backbuffer unless redirected to an image.
type Target interface {
	NewImage(w, h int) Image
	NewImageFromImage(src image.Image) Image

	Redirect(dst Image)
	RestoreDefault()
	SetBlendMode(m BlendMode)

	Clear()
	DrawImage(img Image, x, y float64)
	DrawScaledRegion(src Image, sr, dr image.Rectangle)
	DrawRotatedScaled(img Image, t Transform)
}

// DrawTo redirects t to dst for the duration of fn. The backbuffer is
// restored on every exit path, including a panic in fn.
func DrawTo(t Target, dst Image, fn func()) {
	t.Redirect(dst)
	defer t.RestoreDefault()
	fn()
}

// Context is the render state shared by every instrument on the panel.
// Only one instrument may hold a redirection at a time.
type Context struct {
	Target        Target
	EnableShadows bool
	Log           *log.Logger
}
