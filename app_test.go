package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instrument-panel/assets"
	"instrument-panel/instrument"
	"instrument-panel/log"
	"instrument-panel/simvars"
)

func newTestApp(t *testing.T) (*App, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panel.toml")
	cfg := simvars.DefaultConfig()
	require.NoError(t, simvars.SaveConfig(path, cfg))

	store := simvars.NewStore()
	store.ApplyConfig(cfg)
	p := NewPanel(store, nil, nil)
	return NewApp(p, store, cfg, path, nil, 800, 400, false), path
}

func TestToggleShadowsPersists(t *testing.T) {
	app, path := newTestApp(t)
	require.True(t, app.store.Shadows())

	app.toggleShadows()
	assert.False(t, app.store.Shadows())

	cfg, err := simvars.LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.EnableShadows)
	assert.Len(t, cfg.Instruments, 2)
}

func TestReloadedKeepsLatest(t *testing.T) {
	app, _ := newTestApp(t)

	first := simvars.DefaultConfig()
	second := simvars.DefaultConfig()
	second.EnableShadows = false
	app.Reloaded(first)
	app.Reloaded(second)

	got := <-app.reload
	assert.False(t, got.EnableShadows)
	select {
	case <-app.reload:
		t.Fatal("stale config left queued")
	default:
	}
}

func TestSimulationActions(t *testing.T) {
	app, _ := newTestApp(t)
	app.simNext()
	app.simAdjust(1)

	app.store.RegisterVar("VSI", "Vertical Speed", false, 4, 0)
	app.sim = simvars.NewSimulator(app.store)
	app.Post(func() { app.simAdjust(2) })

	fn := <-app.actions
	fn()
	assert.Equal(t, 8.0, app.store.Value("Vertical Speed"))
}

func TestSimulationPrev(t *testing.T) {
	app, _ := newTestApp(t)
	app.simPrev()

	app.store.RegisterVar("VSI", "Vertical Speed", false, 4, 0)
	app.store.RegisterVar("Oil", "Oil Pressure", false, 0.5, 0)
	app.sim = simvars.NewSimulator(app.store)

	app.simPrev()
	v, ok := app.sim.Selected()
	require.True(t, ok)
	assert.Equal(t, "VSI", v.Group)
	app.simPrev()
	v, _ = app.sim.Selected()
	assert.Equal(t, "Oil", v.Group)
}

func TestApplyConfigSwapsAssetDir(t *testing.T) {
	app, path := newTestApp(t)
	app.ctx = &instrument.Context{Target: instrument.NewSoftTarget(800, 400)}

	cfg := app.cfg
	app.applyConfig(cfg)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "assets"), app.assetDir)
	health := app.panel.Health()
	require.Len(t, health, 2)
	for _, h := range health {
		assert.Equal(t, instrument.StateInert, h.State, h.Name)
	}

	art := filepath.Join(filepath.Dir(path), "art")
	require.NoError(t, os.Mkdir(art, 0o755))
	writeArt(t, art, "vsi.bmp", "oil.bmp")

	cfg.AssetDir = "art"
	app.applyConfig(cfg)
	assert.Equal(t, art, app.assetDir)
	for _, h := range app.panel.Health() {
		assert.Equal(t, instrument.StateReady, h.State, h.Name)
		assert.NoError(t, h.Err, h.Name)
	}
}

func TestApplyConfigKeepsAssetOverride(t *testing.T) {
	app, _ := newTestApp(t)
	app.ctx = &instrument.Context{Target: instrument.NewSoftTarget(800, 400)}
	art := t.TempDir()
	writeArt(t, art, "vsi.bmp", "oil.bmp")
	loader, err := assets.NewLoader(art, 0)
	require.NoError(t, err)
	app.assetOverride, app.assetDir = art, art
	app.panel.loader = loader

	cfg := app.cfg
	cfg.AssetDir = "elsewhere"
	app.applyConfig(cfg)
	assert.Equal(t, art, app.assetDir)
	assert.Same(t, loader, app.panel.loader, "loader is only replaced when the directory changes")
	for _, h := range app.panel.Health() {
		assert.Equal(t, instrument.StateReady, h.State, h.Name)
	}
}

func TestApplyConfigTelemetryNeedsRestart(t *testing.T) {
	app, _ := newTestApp(t)
	app.ctx = &instrument.Context{Target: instrument.NewSoftTarget(800, 400)}
	var buf bytes.Buffer
	app.lg = &log.Logger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	cfg := app.cfg
	cfg.Telemetry = "localhost:10000"
	app.applyConfig(cfg)
	assert.Contains(t, buf.String(), "restart to use it")
	assert.Nil(t, app.client)
	assert.Equal(t, "localhost:10000", app.cfg.Telemetry)

	buf.Reset()
	app.telemetryOverride = "sim:10000"
	cfg.Telemetry = "localhost:20000"
	app.applyConfig(cfg)
	assert.NotContains(t, buf.String(), "restart to use it")
}
