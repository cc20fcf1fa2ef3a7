package instrument

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
)

// ErrInvalidSize is reported when an instrument is given a non-positive size.
var ErrInvalidSize = errors.New("invalid instrument size")

// Source is the telemetry and settings provider an instrument polls.
// Reads never block and never fail: unknown values read as zero and
// unknown settings fall back to the supplied defaults.
type Source interface {
	ReadSettings(name string, xPos, yPos, size int) (int, int, int)
	RegisterVar(group, label string, isBool bool, frequency float64, index int)
	UnregisterVars(group string)
	Value(label string) float64
}

// Loader decodes art sheets by filename.
type Loader interface {
	Load(name string) (image.Image, error)
}

// Instrument is one gauge on the panel. Update runs before Render once per
// frame.
type Instrument interface {
	Name() string
	Update(ctx *Context)
	Render(ctx *Context)
	Resize(ctx *Context)
	Destroy()
	State() State
	Err() error
}

// State is the lifecycle position of an instrument.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateInert // art failed to load, Render draws nothing
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateInert:
		return "inert"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Var describes the telemetry variable a dial reads. Frequency is how far
// simulation mode moves the value per tick; Index orders variables within
// an instrument.
type Var struct {
	Label     string
	IsBool    bool
	Frequency float64
	Index     int
}

// Variant is the art layout and telemetry mapping of one kind of dial. Pivots
// and offsets are in reference pixels, the resolution the art was drawn at.
type Variant struct {
	Name          string
	Asset         string
	ReferenceSize int
	DialRegion    image.Rectangle
	PointerRegion image.Rectangle
	ShadowRegion  image.Rectangle
	SrcPivot      Vec
	DstPivot      Vec
	ShadowOffset  float64
	AngleFactor   float64
	Var           Var
	Mapping       Mapping
}

// Dial is a single-needle instrument built from one art sheet.
type Dial struct {
	variant Variant
	name    string
	src     Source
	loader  Loader

	xPos, yPos  int
	size        int
	scaleFactor float64

	angle       float64
	targetAngle float64

	layers Layers
	state  State
	err    error
}

// NewDial registers the dial's variables and builds its layers.
func NewDial(variant Variant, name string, ctx *Context, src Source, loader Loader, xPos, yPos, size int) *Dial {
	if name == "" {
		name = variant.Name
	}
	d := &Dial{
		variant: variant,
		name:    name,
		src:     src,
		loader:  loader,
		xPos:    xPos,
		yPos:    yPos,
		size:    size,
	}
	d.addVars()
	d.Resize(ctx)
	return d
}

func (d *Dial) Name() string { return d.name }
func (d *Dial) State() State { return d.state }
func (d *Dial) Size() int { return d.size }
func (d *Dial) ScaleFactor() float64 { return d.scaleFactor }
func (d *Dial) Angle() float64 { return d.angle }
func (d *Dial) TargetAngle() float64 { return d.targetAngle }

// Position returns the screen position of the dial's top-left corner.
func (d *Dial) Position() (int, int) { return d.xPos, d.yPos }

// Err returns why the dial is inert, or nil.
func (d *Dial) Err() error { return d.err }

func (d *Dial) addVars() {
	v := d.variant.Var
	d.src.RegisterVar(d.name, v.Label, v.IsBool, v.Frequency, v.Index)
}

// Resize destroys all layers and rebuilds them for the current size.
func (d *Dial) Resize(ctx *Context) {
	if d.state == StateDestroyed {
		return
	}
	d.layers.Destroy()

	d.scaleFactor = float64(d.size) / float64(d.variant.ReferenceSize)

	if d.size <= 0 {
		d.fail(ctx, fmt.Errorf("%w: %d", ErrInvalidSize, d.size))
		return
	}

	orig, err := d.loader.Load(d.variant.Asset)
	if err != nil {
		d.fail(ctx, err)
		return
	}

	t := ctx.Target
	d.layers.Source = t.NewImageFromImage(orig)
	d.layers.Canvas = t.NewImage(d.size, d.size)

	d.layers.Dial = t.NewImage(d.size, d.size)
	DrawTo(t, d.layers.Dial, func() {
		t.SetBlendMode(BlendAlpha)
		t.DrawScaledRegion(d.layers.Source, d.variant.DialRegion, image.Rect(0, 0, d.size, d.size))
	})

	d.layers.Pointer = d.extract(t, d.variant.PointerRegion)
	d.layers.Shadow = d.extract(t, d.variant.ShadowRegion)

	d.state, d.err = StateReady, nil
	ctx.Log.Debug("instrument resized", slog.String("instrument", d.name),
		slog.Int("size", d.size), slog.Float64("scale", d.scaleFactor))
}

// extract copies region r of the art sheet into a new image at native
// resolution.
func (d *Dial) extract(t Target, r image.Rectangle) Image {
	img := t.NewImage(r.Dx(), r.Dy())
	DrawTo(t, img, func() {
		t.SetBlendMode(BlendAlpha)
		t.DrawScaledRegion(d.layers.Source, r, image.Rect(0, 0, r.Dx(), r.Dy()))
	})
	return img
}

func (d *Dial) fail(ctx *Context, err error) {
	d.state = StateInert
	d.err = fmt.Errorf("%s: %w", d.name, err)
	ctx.Log.Warn("instrument inert", slog.String("instrument", d.name), slog.Any("error", err))
}

// PointerTransform is the needle placement for the current angle.
func (d *Dial) PointerTransform() Transform {
	sf := d.scaleFactor
	return Transform{
		SrcPivot: d.variant.SrcPivot,
		DstPivot: Vec{X: d.variant.DstPivot.X * sf, Y: d.variant.DstPivot.Y * sf},
		Scale:    sf,
		Rotation: d.angle * d.variant.AngleFactor,
	}
}

// ShadowTransform is the pointer transform displaced by the shadow offset.
func (d *Dial) ShadowTransform() Transform {
	t := d.PointerTransform()
	off := d.variant.ShadowOffset * d.scaleFactor
	t.DstPivot.X += off
	t.DstPivot.Y += off
	return t
}

// Render composites the dial into its canvas and draws the canvas at the
// dial's position. It does nothing unless the dial is ready.
func (d *Dial) Render(ctx *Context) {
	if d.state != StateReady {
		return
	}

	t := ctx.Target
	pointer := d.PointerTransform()

	t.SetBlendMode(BlendAlpha)
	DrawTo(t, d.layers.Canvas, func() {
		t.Clear()
		t.DrawImage(d.layers.Dial, 0, 0)

		if ctx.EnableShadows {
			// Shades of grey darken, white has no effect
			t.SetBlendMode(BlendMultiply)
			t.DrawRotatedScaled(d.layers.Shadow, d.ShadowTransform())
			t.SetBlendMode(BlendAlpha)
		}

		t.DrawRotatedScaled(d.layers.Pointer, pointer)
	})

	t.DrawImage(d.layers.Canvas, float64(d.xPos), float64(d.yPos))
}

// Update polls settings and telemetry and moves the needle one step.
func (d *Dial) Update(ctx *Context) {
	if d.state == StateDestroyed {
		return
	}

	x, y, size := d.src.ReadSettings(d.name, d.xPos, d.yPos, d.size)
	d.xPos, d.yPos = x, y
	if size != d.size {
		d.size = size
		d.Resize(ctx)
	}

	d.targetAngle = d.variant.Mapping.Target(d.src.Value(d.variant.Var.Label))
	d.angle = Ease(d.angle, d.targetAngle)
}

// Destroy releases all layers. The dial is unusable afterwards.
func (d *Dial) Destroy() {
	d.layers.Destroy()
	d.src.UnregisterVars(d.name)
	d.state = StateDestroyed
}
