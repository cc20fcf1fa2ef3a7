package main

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"instrument-panel/assets"
	"instrument-panel/instrument"
	"instrument-panel/log"
	"instrument-panel/simvars"
)

var panelBg = color.RGBA{20, 20, 24, 255}

// App is the windowed panel
type App struct {
	panel   *Panel
	store   *simvars.Store
	sim     *simvars.Simulator
	client  *simvars.Client
	gpio    *GPIOController
	touch   *TouchControls
	target  *instrument.EbitenTarget
	ctx     *instrument.Context
	lg      *log.Logger
	actions chan func()
	reload  chan simvars.Config

	cfg        simvars.Config
	configPath string

	// Command line overrides; empty means the settings file decides
	assetOverride     string
	telemetryOverride string
	assetDir          string

	width      int
	height     int
	fullscreen bool

	showHelp  bool
	showTouch bool
	quit      bool
}

// NewApp creates the application. The simulator, telemetry client and
// button inputs are optional and attached by the caller.
func NewApp(panel *Panel, store *simvars.Store, cfg simvars.Config, configPath string, lg *log.Logger,
	width, height int, fullscreen bool) *App {
	target := instrument.NewEbitenTarget()
	app := &App{
		panel:      panel,
		store:      store,
		target:     target,
		ctx:        &instrument.Context{Target: target, EnableShadows: store.Shadows(), Log: lg},
		lg:         lg,
		actions:    make(chan func(), 16),
		reload:     make(chan simvars.Config, 1),
		cfg:        cfg,
		configPath: configPath,
		width:      width,
		height:     height,
		fullscreen: fullscreen,
	}
	return app
}

// Post queues fn to run at the start of the next Update. It is safe to
// call from any goroutine; actions are dropped when the queue is full.
func (a *App) Post(fn func()) {
	select {
	case a.actions <- fn:
	default:
		a.lg.Warn("action queue full, dropping input")
	}
}

// Reloaded hands a new settings file to the frame loop. Only the latest
// pending config is kept.
func (a *App) Reloaded(cfg simvars.Config) {
	for {
		select {
		case a.reload <- cfg:
			return
		default:
			select {
			case <-a.reload:
			default:
			}
		}
	}
}

// Run opens the window and blocks until it is closed.
func (a *App) Run() error {
	ebiten.SetWindowSize(a.width, a.height)
	ebiten.SetWindowTitle("Instrument Panel")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if a.fullscreen {
		ebiten.SetFullscreen(true)
	}

	if a.gpio != nil {
		if err := a.gpio.Start(); err != nil {
			a.lg.Warn("GPIO controller", slog.Any("error", err))
		}
	}

	return ebiten.RunGame(a)
}

// Shutdown releases the instruments and stops background inputs.
func (a *App) Shutdown() {
	if a.gpio != nil {
		a.gpio.Stop()
	}
	if a.client != nil {
		a.client.Disconnect()
	}
	a.panel.Destroy()
}

// Update handles input and advances the instruments.
func (a *App) Update() error {
drain:
	for {
		select {
		case fn := <-a.actions:
			fn()
		case cfg := <-a.reload:
			a.applyConfig(cfg)
		default:
			break drain
		}
	}

	if a.touch != nil && a.showTouch {
		a.touch.UpdateLayout(a.width, a.height)
		a.touch.Update()
		a.touch.UpdateButtonStates(a)
	}

	a.handleKeyboard()
	if a.quit {
		return ebiten.Termination
	}

	a.ctx.EnableShadows = a.store.Shadows()
	a.panel.Update(a.ctx)
	return nil
}

// applyConfig brings the panel in line with a reloaded settings file. A
// new asset_dir swaps the art loader. The telemetry address is only read
// at startup.
func (a *App) applyConfig(cfg simvars.Config) {
	if dir := resolveAssetDir(cfg, a.configPath, a.assetOverride); dir != a.assetDir {
		loader, err := assets.NewLoader(dir, assets.DefaultCacheSize)
		if err != nil {
			a.lg.Warn("asset loader", slog.String("dir", dir), slog.Any("error", err))
		} else {
			a.lg.Info("asset directory changed", slog.String("from", a.assetDir), slog.String("to", dir))
			a.assetDir = dir
			a.panel.SetLoader(a.ctx, loader)
		}
	}

	if cfg.Telemetry != a.cfg.Telemetry && a.telemetryOverride == "" {
		a.lg.Warn("telemetry address changed, restart to use it", slog.String("telemetry", cfg.Telemetry))
	}

	a.cfg = cfg
	if err := a.panel.Sync(a.ctx, cfg); err != nil {
		a.lg.Warn("panel sync", slog.Any("error", err))
	}
}

// Draw renders the instruments and overlays
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(panelBg)

	a.target.Begin(screen)
	a.panel.Render(a.ctx)

	a.drawStatus(screen)
	if a.sim != nil {
		a.drawSimulation(screen)
	}
	if a.showHelp {
		a.drawHelp(screen)
	}
	if a.touch != nil && a.showTouch {
		a.touch.Draw(screen)
	}
}

// Layout returns the screen dimensions
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.width, a.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (a *App) handleKeyboard() {
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		a.toggleShadows()
	}

	if a.sim != nil {
		if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
			if ebiten.IsKeyPressed(ebiten.KeyShift) {
				a.simPrev()
			} else {
				a.simNext()
			}
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
			a.simAdjust(1)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
			a.simAdjust(-1)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) || inpututil.IsKeyJustPressed(ebiten.KeySlash) {
		a.showHelp = !a.showHelp
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyT) && a.touch != nil {
		a.showTouch = !a.showTouch
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		a.quit = true
	}
}

// toggleShadows flips pointer shadows and persists the choice.
func (a *App) toggleShadows() {
	on := !a.store.Shadows()
	a.store.SetShadows(on)
	a.cfg.EnableShadows = on
	a.lg.Info("shadows toggled", slog.Bool("enabled", on))

	if a.configPath == "" {
		return
	}
	if err := simvars.SaveConfig(a.configPath, a.cfg); err != nil {
		a.lg.Warn("saving settings", slog.String("path", a.configPath), slog.Any("error", err))
	}
}

func (a *App) simNext() {
	if a.sim != nil {
		a.sim.Next()
	}
}

func (a *App) simPrev() {
	if a.sim != nil {
		a.sim.Prev()
	}
}

func (a *App) simAdjust(dir float64) {
	if a.sim != nil {
		a.sim.Adjust(dir)
	}
}

// drawStatus lists instruments that are not drawing and the link state.
func (a *App) drawStatus(screen *ebiten.Image) {
	var lines []string
	for _, h := range a.panel.Health() {
		if h.State == instrument.StateReady {
			continue
		}
		line := fmt.Sprintf("%s: %s", h.Name, h.State)
		if h.Err != nil {
			line += " (" + h.Err.Error() + ")"
		}
		lines = append(lines, line)
	}
	if a.client != nil && !a.client.IsConnected() {
		lines = append(lines, "Telemetry: disconnected")
	}
	if len(lines) == 0 {
		return
	}

	barH := len(lines)*16 + 8
	barY := screen.Bounds().Dy() - barH
	vector.DrawFilledRect(screen, 0, float32(barY), float32(screen.Bounds().Dx()), float32(barH), color.RGBA{0, 0, 0, 200}, false)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 5, barY+4+i*16)
	}
}

func (a *App) drawSimulation(screen *ebiten.Image) {
	v, ok := a.sim.Selected()
	if !ok {
		return
	}
	text := fmt.Sprintf("SIM %s / %s = %.2f", v.Group, v.Label, a.store.Value(v.Label))
	vector.DrawFilledRect(screen, 5, 5, float32(len(text)*6+10), 20, color.RGBA{0, 0, 0, 180}, false)
	ebitenutil.DebugPrintAt(screen, text, 10, 8)
}

func (a *App) drawHelp(screen *ebiten.Image) {
	help := []string{
		"=== Instrument Panel ===",
		"",
		"S       Toggle pointer shadows",
		"Tab     Next simulation variable",
		"S-Tab   Previous simulation variable",
		"Up/Down Adjust simulation variable",
		"T       Toggle touch buttons",
		"F11     Toggle fullscreen",
		"F1/?    Toggle this help",
		"Q/Esc   Quit",
	}

	panelW := 250
	panelH := len(help)*16 + 20
	panelX := 10
	panelY := 30

	vector.DrawFilledRect(screen, float32(panelX), float32(panelY), float32(panelW), float32(panelH), color.RGBA{0, 0, 0, 200}, false)

	y := panelY + 10
	for _, line := range help {
		ebitenutil.DebugPrintAt(screen, line, panelX+10, y)
		y += 16
	}
}
