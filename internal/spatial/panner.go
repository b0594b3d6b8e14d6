package spatial

import (
	"math"

	"github.com/imaimai17468/custom-asmr/internal/audio"
)

// Listener frame of reference, set once at graph construction: origin, facing
// -Z, up along +Y. The panner is the host positional primitive of the graph;
// everything above it deals in positions, not gains.
var (
	listenerForward = Position3D{X: 0, Y: 0, Z: -1}
	listenerUp      = Position3D{X: 0, Y: 1, Z: 0}
)

// Cone angles are fixed fully open: the listener hears the source the same
// from every source orientation, so no directional attenuation is modeled.
const (
	coneInnerAngle = 360.0
	coneOuterAngle = 360.0
	coneOuterGain  = 0.0
)

// pannerNode places an interleaved stereo signal around the listener.
// Position changes land as ramp targets and are smoothed per sample.
type pannerNode struct {
	cfg Config

	x, y, z *ramp

	// head-shadow lowpass state, one pole per ear (hrtf model only)
	shadowL float64
	shadowR float64
}

func newPannerNode(cfg Config, sampleRate int) *pannerNode {
	return &pannerNode{
		cfg: cfg,
		x:   newRamp(0, RampTimeConstant, sampleRate),
		y:   newRamp(0, RampTimeConstant, sampleRate),
		z:   newRamp(0, RampTimeConstant, sampleRate),
	}
}

// setPosition retargets the position ramps. The jump itself happens over the
// ramp time constant, never within one sample.
func (p *pannerNode) setPosition(pos Position3D) {
	p.x.setTarget(pos.X)
	p.y.setTarget(pos.Y)
	p.z.setTarget(pos.Z)
}

// target returns the position the ramps are heading toward.
func (p *pannerNode) target() Position3D {
	return Position3D{X: p.x.target, Y: p.y.target, Z: p.z.target}
}

// process spatializes one interleaved stereo frame into out. Slices must be
// the same length and hold an even sample count.
func (p *pannerNode) process(frame, out []int16) {
	hrtf := p.cfg.PanningModel == PanningHRTF

	for i := 0; i+1 < len(frame); i += 2 {
		x := p.x.step()
		y := p.y.step()
		z := p.z.step()

		gl, gr := p.earGains(x, y, z)

		l := float64(frame[i]) * gl
		r := float64(frame[i+1]) * gr

		if hrtf {
			l, r = p.headShadow(l, r, x, z)
		}

		out[i] = audio.Clip(l)
		out[i+1] = audio.Clip(r)
	}
}

// earGains combines constant-power azimuth panning with the configured
// distance law.
func (p *pannerNode) earGains(x, y, z float64) (left, right float64) {
	pan := 0.0
	if lateral := math.Hypot(x, z); lateral > 1e-9 {
		pan = x / lateral // sin of the azimuth off the forward axis
	}
	angle := (pan + 1) * math.Pi / 4
	left = math.Cos(angle)
	right = math.Sin(angle)

	d := p.distanceGain(math.Sqrt(x*x + y*y + z*z))
	return left * d, right * d
}

// distanceGain applies the configured attenuation law. Distances below the
// reference distance stay at unity; the linear law clamps at maxDistance.
func (p *pannerNode) distanceGain(d float64) float64 {
	ref := p.cfg.RefDistance
	max := p.cfg.MaxDistance
	roll := p.cfg.RolloffFactor

	if d < ref {
		d = ref
	}

	switch p.cfg.DistanceModel {
	case DistanceLinear:
		if d > max {
			d = max
		}
		if roll > 1 {
			roll = 1
		}
		return 1 - roll*(d-ref)/(max-ref)
	case DistanceExponential:
		return math.Pow(d/ref, -roll)
	default: // inverse
		return ref / (ref + roll*(d-ref))
	}
}

// headShadow darkens the ear facing away from the source with a one-pole
// lowpass whose strength follows how far the source sits off center. A crude
// stand-in for a measured HRTF, but enough to read as binaural.
func (p *pannerNode) headShadow(l, r, x, z float64) (float64, float64) {
	pan := 0.0
	if lateral := math.Hypot(x, z); lateral > 1e-9 {
		pan = x / lateral
	}
	// alpha 1 = passthrough, smaller = darker
	alpha := 1 - 0.85*math.Abs(pan)

	if pan > 0 {
		// source on the right, left ear is shadowed
		p.shadowL += alpha * (l - p.shadowL)
		l = p.shadowL
		p.shadowR = r
	} else if pan < 0 {
		p.shadowR += alpha * (r - p.shadowR)
		r = p.shadowR
		p.shadowL = l
	}
	return l, r
}
