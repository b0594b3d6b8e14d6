package spatial

import (
	"math"
	"testing"
)

func TestEarGainsCenterFront(t *testing.T) {
	p := newPannerNode(DefaultConfig(), 48000)
	l, r := p.earGains(0, 0, -1)
	if math.Abs(l-r) > 1e-9 {
		t.Errorf("source dead ahead: gains (%v, %v), want equal", l, r)
	}
	// constant-power center sits at cos(45°)
	if math.Abs(l-math.Sqrt2/2) > 1e-9 {
		t.Errorf("center gain = %v, want %v", l, math.Sqrt2/2)
	}
}

func TestEarGainsHardSides(t *testing.T) {
	p := newPannerNode(DefaultConfig(), 48000)

	l, r := p.earGains(-1, 0, 0)
	if r > 1e-9 || l < 0.9 {
		t.Errorf("hard left: gains (%v, %v), want (~1, 0)", l, r)
	}

	l, r = p.earGains(1, 0, 0)
	if l > 1e-9 || r < 0.9 {
		t.Errorf("hard right: gains (%v, %v), want (0, ~1)", l, r)
	}
}

func TestDistanceGainUnityAtReference(t *testing.T) {
	for _, model := range []DistanceModel{DistanceInverse, DistanceLinear, DistanceExponential} {
		cfg := DefaultConfig()
		cfg.DistanceModel = model
		p := newPannerNode(cfg, 48000)
		if g := p.distanceGain(cfg.RefDistance); math.Abs(g-1) > 1e-9 {
			t.Errorf("%s: gain at refDistance = %v, want 1", model, g)
		}
		// distances inside the reference shell stay at unity
		if g := p.distanceGain(cfg.RefDistance / 2); math.Abs(g-1) > 1e-9 {
			t.Errorf("%s: gain inside refDistance = %v, want 1", model, g)
		}
	}
}

func TestDistanceGainDecreases(t *testing.T) {
	for _, model := range []DistanceModel{DistanceInverse, DistanceLinear, DistanceExponential} {
		cfg := DefaultConfig()
		cfg.DistanceModel = model
		p := newPannerNode(cfg, 48000)
		prev := p.distanceGain(1)
		for d := 2.0; d <= 10; d++ {
			g := p.distanceGain(d)
			if g > prev {
				t.Errorf("%s: gain rose from %v to %v at distance %v", model, prev, g, d)
			}
			if g < 0 {
				t.Errorf("%s: negative gain %v at distance %v", model, g, d)
			}
			prev = g
		}
	}
}

func TestDistanceGainLinearSilenceAtMax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DistanceModel = DistanceLinear
	p := newPannerNode(cfg, 48000)
	if g := p.distanceGain(cfg.MaxDistance); math.Abs(g) > 1e-9 {
		t.Errorf("linear gain at maxDistance = %v, want 0", g)
	}
	// beyond max the linear law clamps instead of going negative
	if g := p.distanceGain(cfg.MaxDistance * 3); g < 0 {
		t.Errorf("linear gain beyond maxDistance = %v, want >= 0", g)
	}
}

func TestProcessSilenceStaysSilent(t *testing.T) {
	p := newPannerNode(DefaultConfig(), 48000)
	p.setPosition(Position3D{X: 3, Y: 0, Z: -4})

	frame := make([]int16, 96)
	out := make([]int16, 96)
	p.process(frame, out)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("silence produced %d at sample %d", s, i)
		}
	}
}

func TestProcessPansRight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PanningModel = PanningEqualPower
	p := newPannerNode(cfg, 48000)
	p.setPosition(Position3D{X: 1, Y: 0, Z: 0})

	// run enough frames for the position ramp to settle hard right
	frame := make([]int16, 96)
	for i := range frame {
		frame[i] = 10000
	}
	out := make([]int16, 96)
	for i := 0; i < 200; i++ {
		p.process(frame, out)
	}

	var left, right float64
	for i := 0; i+1 < len(out); i += 2 {
		left += math.Abs(float64(out[i]))
		right += math.Abs(float64(out[i+1]))
	}
	if right <= left*2 {
		t.Errorf("source hard right: left energy %v, right energy %v, want right dominant", left, right)
	}
}

func TestSetPositionIsRamped(t *testing.T) {
	p := newPannerNode(DefaultConfig(), 48000)
	p.setPosition(Position3D{X: 5, Y: 0, Z: -5})

	if got := p.target(); got != (Position3D{X: 5, Y: 0, Z: -5}) {
		t.Fatalf("target = %+v, want (5, 0, -5)", got)
	}
	// the current value must not jump to the target instantly
	if v := p.x.value(); v != 0 {
		t.Errorf("current x = %v before any processing, want 0", v)
	}
	frame := make([]int16, 2)
	out := make([]int16, 2)
	p.process(frame, out)
	if v := p.x.value(); v <= 0 || v >= 5 {
		t.Errorf("after one sample x = %v, want strictly between 0 and 5", v)
	}
}
