package spatial

import (
	"math"
	"testing"
	"time"
)

func TestRampApproachesTarget(t *testing.T) {
	r := newRamp(0, RampTimeConstant, 48000)
	r.setTarget(1)

	// after five time constants the ramp should be within 1% of target
	steps := 5 * 48000 * int(RampTimeConstant) / int(time.Second)
	var v float64
	for i := 0; i < steps; i++ {
		v = r.step()
	}
	if math.Abs(v-1) > 0.01 {
		t.Errorf("after 5 time constants value = %v, want ~1", v)
	}
}

func TestRampNeverJumps(t *testing.T) {
	r := newRamp(0, RampTimeConstant, 48000)
	r.setTarget(1)
	first := r.step()
	if first >= 0.01 {
		t.Errorf("first step = %v, ramp moved too fast for a 20ms time constant", first)
	}
}

func TestRampMonotonicToTarget(t *testing.T) {
	r := newRamp(0.2, RampTimeConstant, 48000)
	r.setTarget(0.9)
	prev := r.value()
	for i := 0; i < 10000; i++ {
		v := r.step()
		if v < prev {
			t.Fatalf("ramp not monotonic at step %d: %v < %v", i, v, prev)
		}
		if v > 0.9 {
			t.Fatalf("ramp overshot target at step %d: %v", i, v)
		}
		prev = v
	}
}

func TestRampRetarget(t *testing.T) {
	r := newRamp(0, RampTimeConstant, 48000)
	r.setTarget(1)
	for i := 0; i < 100; i++ {
		r.step()
	}
	mid := r.value()
	r.setTarget(0)
	// ramp must head back down from wherever it was, no discontinuity
	v := r.step()
	if v >= mid {
		t.Errorf("after retarget step = %v, want below %v", v, mid)
	}
}
