package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instrument-panel/simvars"
)

func TestTouchLayoutAndPress(t *testing.T) {
	app, _ := newTestApp(t)
	tc := NewTouchControls()
	tc.SetupDefaultButtons(app)
	tc.UpdateLayout(800, 400)

	require.Len(t, tc.buttons, 6)
	shad, help := tc.buttons[0], tc.buttons[1]
	assert.Equal(t, 735, shad.X)
	assert.Equal(t, 5, shad.Y)
	assert.Equal(t, 55, help.Y)
	for _, btn := range tc.buttons[2:] {
		assert.False(t, btn.Visible, btn.Label)
	}

	assert.True(t, tc.handlePress(shad.X+10, shad.Y+10))
	assert.False(t, app.store.Shadows())
	tc.UpdateButtonStates(app)
	assert.False(t, shad.Active)

	assert.False(t, tc.handlePress(10, 10))
}

func TestTouchSimulationButtons(t *testing.T) {
	app, _ := newTestApp(t)
	app.store.RegisterVar("Oil", "Oil Pressure", false, 0.5, 0)
	app.sim = simvars.NewSimulator(app.store)

	tc := NewTouchControls()
	tc.SetupDefaultButtons(app)
	tc.UpdateLayout(800, 400)

	up := tc.buttons[4]
	require.Equal(t, "UP", up.Label)
	require.True(t, up.Visible)
	assert.Equal(t, 205, up.Y)

	tc.handlePress(up.X+1, up.Y+1)
	tc.handlePress(up.X+1, up.Y+1)
	assert.Equal(t, 1.0, app.store.Value("Oil Pressure"))
}

func TestTouchPrevSelectsPreceding(t *testing.T) {
	app, _ := newTestApp(t)
	app.store.RegisterVar("Oil", "Oil Pressure", false, 0.5, 0)
	app.store.RegisterVar("VSI", "Vertical Speed", false, 4, 0)
	app.sim = simvars.NewSimulator(app.store)

	tc := NewTouchControls()
	tc.SetupDefaultButtons(app)
	tc.UpdateLayout(800, 400)

	prev := tc.buttons[3]
	require.Equal(t, "PREV", prev.Label)
	assert.Equal(t, 155, prev.Y)

	require.True(t, tc.handlePress(prev.X+1, prev.Y+1))
	v, ok := app.sim.Selected()
	require.True(t, ok)
	assert.Equal(t, "Vertical Speed", v.Label)
}
