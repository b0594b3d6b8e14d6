package spatial

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/imaimai17468/custom-asmr/internal/audio"
)

// State is the engine lifecycle. It is the single source of truth for
// whether spatialized audio is flowing.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateReady
	StateActive
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the engine for the UI.
type Status struct {
	State    string     `json:"state"`
	Position Position3D `json:"position"`
	Gain     float64    `json:"gain"`
	Error    string     `json:"error,omitempty"`
}

// Engine owns the processing context and the node topology
// source → panner → gain → output. All fallible operations report through
// return values; nothing panics past this boundary. The orchestration layer
// holds the only reference, so callers never race start against stop.
type Engine struct {
	out chan []int16

	mu      sync.Mutex
	state   State
	cfg     Config
	rctx    *renderContext
	panner  *pannerNode
	gain    *gainNode
	source  *sourceNode
	lastErr error

	// procMu serializes parameter writes against the render loop.
	procMu sync.Mutex
}

// NewEngine creates an idle engine. The output channel is created once and
// survives Cleanup so downstream consumers subscribe a single time.
func NewEngine() *Engine {
	return &Engine{
		state: StateIdle,
		out:   make(chan []int16, 100),
	}
}

// Output is the rendered stereo frame stream. Frames are dropped rather than
// blocking the render when no consumer keeps up.
func (e *Engine) Output() <-chan []int16 {
	return e.out
}

// Initialize builds the graph: one processing context, a positional panner
// with a fully open cone, and a gain node, with the listener fixed at the
// origin. Idempotent: initializing an already-initialized engine is a no-op
// returning success. Any failure lands in the error state and is returned.
func (e *Engine) Initialize(ctx context.Context, cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateReady, StateActive:
		return nil
	case StateInitializing:
		return nil
	}

	e.state = StateInitializing

	if err := cfg.validate(); err != nil {
		return e.failInit(err)
	}

	rctx, err := newRenderContext(audio.SampleRate, e.out)
	if err != nil {
		return e.failInit(err)
	}

	// Contexts start suspended; node creation only counts once the resume
	// has completed.
	if err := rctx.resume(ctx); err != nil {
		return e.failInit(fmt.Errorf("%w: resume: %v", ErrInitialization, err))
	}

	e.cfg = cfg
	e.rctx = rctx
	e.procMu.Lock()
	e.panner = newPannerNode(cfg, audio.SampleRate)
	e.gain = newGainNode(clamp(cfg.InitialGain, 0, 1), audio.SampleRate)
	e.procMu.Unlock()
	e.lastErr = nil
	e.state = StateReady

	log.Printf("Spatial engine ready: listener at origin facing (%.0f,%.0f,%.0f), cone %v°/%v°, panning=%s distance=%s",
		listenerForward.X, listenerForward.Y, listenerForward.Z,
		coneInnerAngle, coneOuterAngle, cfg.PanningModel, cfg.DistanceModel)
	return nil
}

func (e *Engine) failInit(err error) error {
	e.state = StateError
	e.lastErr = err
	log.Printf("Spatial engine init failed: %v", err)
	return err
}

// ConnectStream attaches a captured frame stream as the graph source and
// starts rendering. Requires an initialized engine; called earlier it is a
// no-op. An already-attached source is silently superseded, never an error.
func (e *Engine) ConnectStream(frames <-chan []int16) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady && e.state != StateActive {
		log.Printf("Spatial engine: connect ignored in state %s", e.state)
		return
	}

	if e.source != nil {
		e.source.detach()
	}

	src := newSourceNode(frames)
	e.source = src
	e.state = StateActive
	go src.run(e.rctx, e.render)
	log.Println("Spatial engine: source connected, graph active")
}

// DisconnectStream detaches the source and returns to ready, leaving the
// panner, gain and context intact. No-op when no source is attached.
func (e *Engine) DisconnectStream() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive || e.source == nil {
		return
	}
	e.source.detach()
	e.source = nil
	e.state = StateReady
	log.Println("Spatial engine: source disconnected, graph ready")
}

// SetPosition retargets the panner. The pad-normalized position is scaled by
// PositionScale to map into audible distance, then approached over the ramp
// time constant. Silently ignored before the panner exists: the UI may emit
// positions before capture has started.
func (e *Engine) SetPosition(pos Position3D) {
	e.procMu.Lock()
	defer e.procMu.Unlock()
	if e.panner == nil {
		return
	}
	s := e.cfg.PositionScale
	e.panner.setPosition(Position3D{X: pos.X * s, Y: pos.Y * s, Z: pos.Z * s})
}

// SetGain clamps the value into [0,1] and ramps the gain node toward it.
// Ignored before initialization.
func (e *Engine) SetGain(v float64) {
	e.procMu.Lock()
	defer e.procMu.Unlock()
	if e.gain == nil {
		return
	}
	e.gain.setGain(clamp(v, 0, 1))
}

// Cleanup tears down the source, closes the processing context and returns
// to idle. Safe to call from any state, any number of times. A leaked
// context holds audio resources indefinitely, so owners must call this on
// teardown.
func (e *Engine) Cleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateIdle {
		return
	}
	if e.source != nil {
		e.source.detach()
		e.source = nil
	}
	if e.rctx != nil {
		e.rctx.close()
		e.rctx = nil
	}

	e.procMu.Lock()
	e.panner = nil
	e.gain = nil
	e.procMu.Unlock()

	e.state = StateIdle
	log.Println("Spatial engine: cleaned up")
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Status returns a UI snapshot. Position is the panner's current target in
// placement space (already scaled); gain is the ramp target.
func (e *Engine) Status() Status {
	e.mu.Lock()
	state := e.state
	lastErr := e.lastErr
	e.mu.Unlock()

	st := Status{State: state.String()}
	if lastErr != nil {
		st.Error = Explain(lastErr)
	}

	e.procMu.Lock()
	if e.panner != nil {
		st.Position = e.panner.target()
	}
	if e.gain != nil {
		st.Gain = e.gain.target()
	}
	e.procMu.Unlock()
	return st
}

// render runs one frame through panner then gain. Called from the source
// goroutine; parameter writes are serialized by procMu.
func (e *Engine) render(frame []int16) []int16 {
	e.procMu.Lock()
	defer e.procMu.Unlock()

	out := make([]int16, len(frame))
	if e.panner == nil || e.gain == nil {
		copy(out, frame)
		return out
	}
	e.panner.process(frame, out)
	e.gain.process(out)
	return out
}
