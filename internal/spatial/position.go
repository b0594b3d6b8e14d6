package spatial

// Position2D is a normalized pad coordinate. Both axes lie in [-1, 1] with
// the origin at the pad center; +Y is up/forward on the pad.
type Position2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position3D places the source around the listener. X is lateral (negative
// left), Y is height, Z is depth with negative values in front of the
// listener.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PanningModel selects how the source is placed in the stereo field.
type PanningModel string

const (
	// PanningHRTF approximates binaural placement: constant-power panning
	// plus a head-shadow lowpass on the far ear.
	PanningHRTF PanningModel = "hrtf"
	// PanningEqualPower is plain constant-power stereo panning.
	PanningEqualPower PanningModel = "equalpower"
)

// DistanceModel selects the attenuation law applied over distance.
type DistanceModel string

const (
	DistanceInverse     DistanceModel = "inverse"
	DistanceLinear      DistanceModel = "linear"
	DistanceExponential DistanceModel = "exponential"
)

// Config is the immutable spatialization configuration, supplied once at
// Initialize and never mutated afterward.
type Config struct {
	MaxDistance   float64       // distance at which attenuation bottoms out
	RefDistance   float64       // distance of unity gain
	RolloffFactor float64       // attenuation curve steepness
	PanningModel  PanningModel  // hrtf or equalpower
	DistanceModel DistanceModel // inverse, linear or exponential
	InitialGain   float64       // gain node starting value, clamped to [0,1]
	PositionScale float64       // pad-normalized coordinates are multiplied by this before placement
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxDistance:   10,
		RefDistance:   1,
		RolloffFactor: 1,
		PanningModel:  PanningHRTF,
		DistanceModel: DistanceInverse,
		InitialGain:   1,
		PositionScale: 5,
	}
}

// validate reports the first problem with a config, or nil.
func (c Config) validate() error {
	switch {
	case c.RefDistance <= 0:
		return errConfig("refDistance must be positive")
	case c.MaxDistance <= c.RefDistance:
		return errConfig("maxDistance must exceed refDistance")
	case c.RolloffFactor < 0:
		return errConfig("rolloffFactor must not be negative")
	case c.PositionScale <= 0:
		return errConfig("positionScale must be positive")
	}
	switch c.PanningModel {
	case PanningHRTF, PanningEqualPower:
	default:
		return errConfig("unknown panning model")
	}
	switch c.DistanceModel {
	case DistanceInverse, DistanceLinear, DistanceExponential:
	default:
		return errConfig("unknown distance model")
	}
	return nil
}
