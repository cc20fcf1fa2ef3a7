package main

import (
	"flag"
	"fmt"
	"image/color"
	"image/png"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"instrument-panel/assets"
	"instrument-panel/instrument"
	"instrument-panel/log"
	"instrument-panel/simvars"
)

func main() {
	configPath := flag.String("config", "panel.toml", "Panel settings file (created if missing)")
	assetDir := flag.String("assets", "", "Instrument art directory (overrides the settings file)")
	grpcAddr := flag.String("grpc", "", "Telemetry server to stream from, e.g. localhost:10000")
	serveAddr := flag.String("serve", "", "Publish this panel's variables on a gRPC address")
	simMode := flag.Bool("sim", false, "Simulation mode: drive variables from the keyboard or buttons")
	fullscreen := flag.Bool("fullscreen", false, "Start in fullscreen mode")
	width := flag.Int("width", 0, "Window width (default: fit the instruments)")
	height := flag.Int("height", 0, "Window height (default: fit the instruments)")
	touchBtns := flag.Bool("touch", false, "Show on-screen touch buttons")
	gpioBtns := flag.Bool("gpio", true, "Read panel push buttons from the host's GPIO pins")
	logLevel := flag.String("loglevel", "info", "Log level: debug, info, warn, error")
	logDir := flag.String("logdir", "", "Log directory (default: user config dir)")
	snapshot := flag.String("snapshot", "", "Render headless and write a PNG to this path")
	frames := flag.Int("frames", 1, "Frames to run before writing the snapshot")
	flag.Parse()

	lg := log.New(*logLevel, *logDir)

	cfg, err := simvars.LoadOrCreateConfig(*configPath)
	if err != nil {
		lg.Errorf("%s: %v", *configPath, err)
		os.Exit(1)
	}
	dir := resolveAssetDir(cfg, *configPath, *assetDir)
	telemetry := *grpcAddr
	if telemetry == "" {
		telemetry = cfg.Telemetry
	}

	loader, err := assets.NewLoader(dir, assets.DefaultCacheSize)
	if err != nil {
		lg.Errorf("asset loader: %v", err)
		os.Exit(1)
	}

	store := simvars.NewStore()
	store.ApplyConfig(cfg)
	panel := NewPanel(store, loader, lg)

	if *snapshot != "" {
		if err := runSnapshot(panel, store, cfg, lg, *snapshot, *frames); err != nil {
			lg.Errorf("snapshot: %v", err)
			os.Exit(1)
		}
		return
	}

	bounds := PanelBounds(cfg)
	if *width <= 0 {
		*width = max(bounds.Max.X, 320)
	}
	if *height <= 0 {
		*height = max(bounds.Max.Y, 240)
	}

	// Instruments are built on the first Update, once the window exists
	app := NewApp(panel, store, cfg, *configPath, lg, *width, *height, *fullscreen)
	app.assetOverride, app.assetDir = *assetDir, dir
	app.telemetryOverride = *grpcAddr
	app.Reloaded(cfg)

	watcher, err := simvars.Watch(*configPath, store, lg, app.Reloaded)
	if err != nil {
		lg.Warn("settings will not hot reload", slog.Any("error", err))
	} else {
		defer watcher.Close()
	}

	if *simMode {
		app.sim = simvars.NewSimulator(store)
		lg.Info("simulation mode")
	}

	if telemetry != "" {
		app.client = simvars.NewClient(telemetry, store, lg)
		if err := app.client.Connect(); err != nil {
			lg.Warn("could not connect to telemetry server", slog.String("addr", telemetry), slog.Any("error", err))
		} else {
			app.client.StartStream()
		}
	}

	if *serveAddr != "" {
		lis, err := net.Listen("tcp", *serveAddr)
		if err != nil {
			lg.Errorf("listen %s: %v", *serveAddr, err)
			os.Exit(1)
		}
		srv := simvars.NewServer(store, simvars.DefaultPublishRate, lg)
		go func() {
			if err := srv.Serve(lis); err != nil {
				lg.Warn("telemetry server", slog.Any("error", err))
			}
		}()
		defer srv.Stop()
	}

	app.touch = NewTouchControls()
	app.touch.SetupDefaultButtons(app)
	app.showTouch = *touchBtns

	if *gpioBtns {
		app.gpio = NewGPIOController(lg)
		app.gpio.SetupDefaultButtons(app)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		lg.Info("shutting down")
		app.Post(func() { app.quit = true })
	}()

	err = app.Run()
	app.Shutdown()
	if err != nil {
		lg.Errorf("application error: %v", err)
		os.Exit(1)
	}
}

// resolveAssetDir picks the art directory: the command line override, or
// the settings file's asset_dir relative to the settings file.
func resolveAssetDir(cfg simvars.Config, configPath, override string) string {
	if override != "" {
		return override
	}
	if filepath.IsAbs(cfg.AssetDir) {
		return cfg.AssetDir
	}
	return filepath.Join(filepath.Dir(configPath), cfg.AssetDir)
}

// runSnapshot renders the panel with the software target and writes the
// last frame as a PNG.
func runSnapshot(panel *Panel, store *simvars.Store, cfg simvars.Config, lg *log.Logger, path string, frames int) error {
	bounds := PanelBounds(cfg)
	if bounds.Empty() {
		return fmt.Errorf("no instruments to render")
	}

	target := instrument.NewSoftTarget(bounds.Max.X, bounds.Max.Y)
	ctx := &instrument.Context{Target: target, EnableShadows: store.Shadows(), Log: lg}
	if err := panel.Sync(ctx, cfg); err != nil {
		lg.Warn("panel", slog.Any("error", err))
	}
	defer panel.Destroy()

	for i := 0; i < max(frames, 1); i++ {
		target.Fill(color.RGBA{20, 20, 24, 255})
		panel.Frame(ctx)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, target.Frame()); err != nil {
		f.Close()
		return err
	}
	lg.Info("snapshot written", slog.String("path", path), slog.Int("frames", frames))
	return f.Close()
}
