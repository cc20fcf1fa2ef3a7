package main

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"instrument-panel/instrument"
	"instrument-panel/log"
	"instrument-panel/simvars"
)

// Health is one line of the status overlay.
type Health struct {
	Name  string
	State instrument.State
	Err   error
}

type placed struct {
	inst instrument.Instrument
	kind instrument.Kind
}

// Panel owns the instruments described by the settings file and drives
// them once per frame. It is the loader its instruments see, so the art
// directory can change underneath them.
type Panel struct {
	src    instrument.Source
	loader instrument.Loader
	lg     *log.Logger

	names       []string
	instruments map[string]placed
}

// NewPanel creates an empty panel
func NewPanel(src instrument.Source, loader instrument.Loader, lg *log.Logger) *Panel {
	return &Panel{
		src:         src,
		loader:      loader,
		lg:          lg,
		instruments: make(map[string]placed),
	}
}

// Sync makes the panel's instruments match cfg. Instruments that are gone
// or changed kind are destroyed, new ones are built. Placement changes of
// existing instruments are left to the instruments, which read their
// settings every frame.
func (p *Panel) Sync(ctx *instrument.Context, cfg simvars.Config) error {
	var errs []error

	want := make(map[string]instrument.Kind, len(cfg.Instruments))
	for _, name := range cfg.Names() {
		kind, err := instrument.ParseKind(cfg.Instruments[name].Kind)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		want[name] = kind
	}

	for name, pl := range p.instruments {
		if kind, ok := want[name]; !ok || kind != pl.kind {
			pl.inst.Destroy()
			delete(p.instruments, name)
			p.lg.Info("instrument removed", slog.String("instrument", name))
		}
	}

	p.names = p.names[:0]
	for _, name := range cfg.Names() {
		kind, ok := want[name]
		if !ok {
			continue
		}
		p.names = append(p.names, name)
		if _, ok := p.instruments[name]; ok {
			continue
		}

		pl := cfg.Instruments[name]
		inst, err := instrument.New(kind, name, ctx, p.src, p, pl.X, pl.Y, pl.Size)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		p.instruments[name] = placed{inst: inst, kind: kind}
		p.lg.Info("instrument added", slog.String("instrument", name), slog.String("kind", kind.String()),
			slog.String("state", inst.State().String()))
	}

	return errors.Join(errs...)
}

// Load reads art through the current loader.
func (p *Panel) Load(name string) (image.Image, error) {
	return p.loader.Load(name)
}

// SetLoader switches the art source and rebuilds every instrument from it.
// Instruments whose art was missing recover if the new loader has it.
func (p *Panel) SetLoader(ctx *instrument.Context, loader instrument.Loader) {
	p.loader = loader
	p.each(func(i instrument.Instrument) { i.Resize(ctx) })
	p.lg.Info("instrument art reloaded", slog.Int("instruments", len(p.names)))
}

func (p *Panel) each(fn func(instrument.Instrument)) {
	for _, name := range p.names {
		if pl, ok := p.instruments[name]; ok {
			fn(pl.inst)
		}
	}
}

// Update advances every instrument by one frame.
func (p *Panel) Update(ctx *instrument.Context) {
	p.each(func(i instrument.Instrument) { i.Update(ctx) })
}

// Render draws every instrument to the target's default destination.
func (p *Panel) Render(ctx *instrument.Context) {
	p.each(func(i instrument.Instrument) { i.Render(ctx) })
}

// Frame runs Update then Render for every instrument.
func (p *Panel) Frame(ctx *instrument.Context) {
	p.Update(ctx)
	p.Render(ctx)
}

// Destroy releases every instrument.
func (p *Panel) Destroy() {
	p.each(func(i instrument.Instrument) { i.Destroy() })
	p.instruments = make(map[string]placed)
	p.names = nil
}

// Health reports each instrument's state in name order.
func (p *Panel) Health() []Health {
	var h []Health
	p.each(func(i instrument.Instrument) {
		h = append(h, Health{Name: i.Name(), State: i.State(), Err: i.Err()})
	})
	return h
}

// Instrument returns the named instrument.
func (p *Panel) Instrument(name string) (instrument.Instrument, bool) {
	pl, ok := p.instruments[name]
	return pl.inst, ok
}

// PanelBounds is the smallest rectangle containing every placement.
func PanelBounds(cfg simvars.Config) image.Rectangle {
	var r image.Rectangle
	for _, pl := range cfg.Instruments {
		r = r.Union(image.Rect(pl.X, pl.Y, pl.X+pl.Size, pl.Y+pl.Size))
	}
	return r
}
