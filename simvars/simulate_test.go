package simvars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorEmpty(t *testing.T) {
	sim := NewSimulator(NewStore())
	_, ok := sim.Selected()
	assert.False(t, ok)

	sim.Next()
	sim.Prev()
	sim.Adjust(1)
}

func TestSimulatorCycleAndAdjust(t *testing.T) {
	s := NewStore()
	s.RegisterVar("Oil", "Oil Pressure", false, 0.5, 0)
	s.RegisterVar("VSI", "Vertical Speed", false, 4, 0)
	s.RegisterVar("Warn", "Low Vacuum", true, 1, 0)
	sim := NewSimulator(s)

	v, ok := sim.Selected()
	require.True(t, ok)
	assert.Equal(t, "Oil Pressure", v.Label)

	sim.Adjust(1)
	sim.Adjust(1)
	assert.Equal(t, 1.0, s.Value("Oil Pressure"))

	sim.Next()
	sim.Adjust(-3)
	assert.Equal(t, -12.0, s.Value("Vertical Speed"))

	sim.Next()
	v, _ = sim.Selected()
	assert.Equal(t, "Low Vacuum", v.Label)
	sim.Adjust(1)
	assert.Equal(t, 1.0, s.Value("Low Vacuum"))
	sim.Adjust(-1)
	assert.Equal(t, 0.0, s.Value("Low Vacuum"))

	sim.Next()
	v, _ = sim.Selected()
	assert.Equal(t, "Oil Pressure", v.Label, "Next wraps")
	sim.Prev()
	v, _ = sim.Selected()
	assert.Equal(t, "Low Vacuum", v.Label, "Prev wraps")
}
