package instrument

import "math"

// easeBands are the needle step sizes, largest first. A band applies when
// the distance to the target is strictly greater than its threshold.
var easeBands = []struct {
	threshold float64
	step      float64
}{
	{10.0, 1.0},
	{5.0, 0.5},
	{2.5, 0.25},
	{1.25, 0.125},
	{0.625, 0.0625},
	{0.03, 0.03},
}

// Ease advances current one frame toward target. The step halves each
// time the remaining distance drops below a band, and the needle snaps
// onto the target once it is within the smallest band.
func Ease(current, target float64) float64 {
	diff := math.Abs(target - current)
	for _, b := range easeBands {
		if diff > b.threshold {
			if current < target {
				return current + b.step
			}
			return current - b.step
		}
	}
	return target
}

// Mapping converts a raw telemetry reading into instrument units.
type Mapping struct {
	Scale  float64
	Offset float64
}

// Target returns raw*Scale + Offset.
func (m Mapping) Target(raw float64) float64 {
	return raw*m.Scale + m.Offset
}
