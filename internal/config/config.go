package config

import (
	"os"
	"strconv"

	"github.com/imaimai17468/custom-asmr/internal/spatial"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port int

	// Spatialization
	MaxDistance   float64 // distance at which attenuation bottoms out
	RefDistance   float64 // distance of unity gain
	RolloffFactor float64 // attenuation curve steepness
	PanningModel  string  // hrtf or equalpower
	DistanceModel string  // inverse, linear or exponential
	InitialGain   float64 // master gain starting value
	PositionScale float64 // pad-normalized coords to audible distance

	// Page player
	PlayerVolume int     // volume forced onto the embedded player on ready
	SourceHeight float64 // initial source height, 0 = ear level

	// Monitor outputs
	MP3Bitrate int // kbps for the MP3 monitor stream
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Port: envInt("ASMR_PORT", 8080),

		MaxDistance:   envFloat("ASMR_MAX_DISTANCE", 10),
		RefDistance:   envFloat("ASMR_REF_DISTANCE", 1),
		RolloffFactor: envFloat("ASMR_ROLLOFF", 1),
		PanningModel:  envStr("ASMR_PANNING_MODEL", "hrtf"),
		DistanceModel: envStr("ASMR_DISTANCE_MODEL", "inverse"),
		InitialGain:   envFloat("ASMR_INITIAL_GAIN", 1),
		PositionScale: envFloat("ASMR_POSITION_SCALE", 5),

		PlayerVolume: envInt("ASMR_PLAYER_VOLUME", 10),
		SourceHeight: envFloat("ASMR_SOURCE_HEIGHT", 0),

		MP3Bitrate: envInt("ASMR_MP3_BITRATE", 192),
	}
}

// Spatial maps the loaded values onto the engine's immutable config.
// Unrecognized model names fall back to the defaults rather than failing
// startup.
func (c Config) Spatial() spatial.Config {
	cfg := spatial.DefaultConfig()
	cfg.MaxDistance = c.MaxDistance
	cfg.RefDistance = c.RefDistance
	cfg.RolloffFactor = c.RolloffFactor
	cfg.InitialGain = c.InitialGain
	cfg.PositionScale = c.PositionScale

	switch spatial.PanningModel(c.PanningModel) {
	case spatial.PanningHRTF, spatial.PanningEqualPower:
		cfg.PanningModel = spatial.PanningModel(c.PanningModel)
	}
	switch spatial.DistanceModel(c.DistanceModel) {
	case spatial.DistanceInverse, spatial.DistanceLinear, spatial.DistanceExponential:
		cfg.DistanceModel = spatial.DistanceModel(c.DistanceModel)
	}
	return cfg
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
