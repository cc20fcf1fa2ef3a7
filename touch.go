package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// TouchButton is an on-screen button for panels without a keyboard
type TouchButton struct {
	X, Y, W, H int
	Label      string
	Active     bool
	Visible    bool
	OnPress    func()
}

func (b *TouchButton) contains(x, y int) bool {
	return x >= b.X && x <= b.X+b.W && y >= b.Y && y <= b.Y+b.H
}

// TouchControls lays out and dispatches the touch buttons
type TouchControls struct {
	buttons  []*TouchButton
	screenW  int
	screenH  int
	btnColor color.RGBA
	actColor color.RGBA
	txtColor color.RGBA
}

func NewTouchControls() *TouchControls {
	return &TouchControls{
		btnColor: color.RGBA{60, 60, 60, 200},
		actColor: color.RGBA{0, 150, 0, 200},
		txtColor: color.RGBA{255, 255, 255, 255},
	}
}

// AddButton adds a touch button
func (tc *TouchControls) AddButton(w, h int, label string, onPress func()) *TouchButton {
	btn := &TouchButton{
		W:       w,
		H:       h,
		Label:   label,
		Visible: true,
		OnPress: onPress,
	}
	tc.buttons = append(tc.buttons, btn)
	tc.screenW, tc.screenH = 0, 0
	return btn
}

// Update checks for touch and click events
func (tc *TouchControls) Update() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		tc.handlePress(ebiten.CursorPosition())
	}
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		tc.handlePress(ebiten.TouchPosition(id))
	}
}

// handlePress runs the first visible button under x, y and reports
// whether there was one.
func (tc *TouchControls) handlePress(x, y int) bool {
	for _, btn := range tc.buttons {
		if !btn.Visible || !btn.contains(x, y) {
			continue
		}
		if btn.OnPress != nil {
			btn.OnPress()
		}
		return true
	}
	return false
}

// Draw renders all touch buttons
func (tc *TouchControls) Draw(screen *ebiten.Image) {
	for _, btn := range tc.buttons {
		if !btn.Visible {
			continue
		}

		bg := tc.btnColor
		if btn.Active {
			bg = tc.actColor
		}
		vector.DrawFilledRect(screen, float32(btn.X), float32(btn.Y), float32(btn.W), float32(btn.H), bg, true)
		vector.StrokeRect(screen, float32(btn.X), float32(btn.Y), float32(btn.W), float32(btn.H), 2, tc.txtColor, true)

		ebitenutil.DebugPrintAt(screen, btn.Label, btn.X+btn.W/2-len(btn.Label)*3, btn.Y+btn.H/2-6)
	}
}

// UpdateLayout stacks the visible buttons along the right edge, top down.
func (tc *TouchControls) UpdateLayout(screenW, screenH int) {
	if tc.screenW == screenW && tc.screenH == screenH {
		return
	}
	tc.screenW = screenW
	tc.screenH = screenH

	const margin = 5
	y := margin
	for _, btn := range tc.buttons {
		if !btn.Visible {
			continue
		}
		btn.X = screenW - btn.W - margin
		btn.Y = y
		y += btn.H + margin
	}
}

// SetupDefaultButtons creates the panel buttons. The simulation buttons
// only appear in simulation mode.
func (tc *TouchControls) SetupDefaultButtons(app *App) {
	tc.AddButton(60, 45, "SHAD", app.toggleShadows)
	tc.AddButton(60, 45, "HELP", func() { app.showHelp = !app.showHelp })

	sim := app.sim != nil
	tc.AddButton(60, 45, "NEXT", app.simNext).Visible = sim
	tc.AddButton(60, 45, "PREV", app.simPrev).Visible = sim
	tc.AddButton(60, 45, "UP", func() { app.simAdjust(1) }).Visible = sim
	tc.AddButton(60, 45, "DOWN", func() { app.simAdjust(-1) }).Visible = sim
}

// UpdateButtonStates mirrors app state onto toggle buttons
func (tc *TouchControls) UpdateButtonStates(app *App) {
	for _, btn := range tc.buttons {
		switch btn.Label {
		case "SHAD":
			btn.Active = app.store.Shadows()
		case "HELP":
			btn.Active = app.showHelp
		}
	}
}
