package spatial

import (
	"math"
	"time"
)

// RampTimeConstant is the exponential time constant applied to every
// parameter change. Instantaneous writes on a connected graph click audibly,
// so position and gain always approach their targets through this ramp.
const RampTimeConstant = 20 * time.Millisecond

// ramp smooths a parameter toward its target with a per-sample exponential
// approach. Not safe for concurrent use; the engine serializes access.
type ramp struct {
	current float64
	target  float64
	coeff   float64
}

func newRamp(initial float64, timeConstant time.Duration, sampleRate int) *ramp {
	tau := timeConstant.Seconds()
	return &ramp{
		current: initial,
		target:  initial,
		coeff:   1 - math.Exp(-1/(tau*float64(sampleRate))),
	}
}

// setTarget redirects the ramp without discontinuity.
func (r *ramp) setTarget(v float64) {
	r.target = v
}

// step advances the ramp by one sample frame and returns the new value.
func (r *ramp) step() float64 {
	r.current += (r.target - r.current) * r.coeff
	return r.current
}

func (r *ramp) value() float64 {
	return r.current
}
