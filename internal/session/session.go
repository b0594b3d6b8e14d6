// Package session coordinates the capture controller and the spatial engine
// as one user-facing start/stop pair and owns the unified status the UI
// renders. It holds the only reference to the audio graph; nothing else may
// reach into the engine's nodes.
package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/imaimai17468/custom-asmr/internal/capture"
	"github.com/imaimai17468/custom-asmr/internal/playback"
	"github.com/imaimai17468/custom-asmr/internal/spatial"
)

// ErrBusy rejects a second start while one is still in flight. The UI keeps
// the start control inert while loading; this is the backstop so connect and
// disconnect can never race.
var ErrBusy = errors.New("a start sequence is already in flight")

// Config holds the session parameters.
type Config struct {
	Spatial      spatial.Config
	SourceHeight float64 // initial height of the source, 0 = ear level
	PlayerVolume int     // volume forced onto the page player when it reports ready
}

// Status is the unified snapshot the UI consumes.
type Status struct {
	Spatial   string             `json:"spatial"`
	Capture   string             `json:"capture"`
	Supported bool               `json:"supported"`
	Pad       spatial.Position2D `json:"pad"`
	Height    float64            `json:"height"`
	Position  spatial.Position3D `json:"position"`
	Gain      float64            `json:"gain"`
	Message   string             `json:"message,omitempty"`
}

// Coordinator sequences capture → engine on start and the reverse on stop.
type Coordinator struct {
	engine  *spatial.Engine
	capture *capture.Controller
	cfg     Config

	mu       sync.Mutex
	starting bool
	stream   *capture.Stream
	pad      spatial.Position2D
	height   float64
	player   playback.Handle
	onChange func()
}

// NewCoordinator creates an idle coordinator.
func NewCoordinator(engine *spatial.Engine, ctl *capture.Controller, cfg Config) *Coordinator {
	return &Coordinator{
		engine:  engine,
		capture: ctl,
		cfg:     cfg,
		height:  cfg.SourceHeight,
	}
}

// SetPlayer attaches the page player handle. Optional; without it the
// player-ready duck is skipped.
func (c *Coordinator) SetPlayer(h playback.Handle) {
	c.mu.Lock()
	c.player = h
	c.mu.Unlock()
}

// SetOnChange registers a callback fired after every observable status
// change, used to push snapshots to the UI.
func (c *Coordinator) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Start runs the full sequence: initialize the engine, request capture,
// connect the stream. An engine failure aborts with error. A capture failure
// aborts but leaves the engine initialized and ready, so a retry goes
// straight back to the capture request without re-initializing.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.starting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.starting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.starting = false
		c.mu.Unlock()
		c.notify()
	}()

	if err := c.engine.Initialize(ctx, c.cfg.Spatial); err != nil {
		return err
	}
	c.notify()

	stream, err := c.capture.StartCapture(ctx)
	if err != nil {
		return err
	}

	c.engine.ConnectStream(stream.Frames())

	c.mu.Lock()
	c.stream = stream
	pad, height := c.pad, c.height
	c.mu.Unlock()

	// land the new graph where the UI already is
	c.engine.SetPosition(spatial.PadToPosition3D(pad.X, pad.Y, height))

	go c.watch(stream)
	log.Printf("Session: started with stream %s", stream.ID)
	return nil
}

// Stop is always a full teardown, never a partial pause: disconnect, stop
// capture, clean up the engine. Re-entry goes through the full Start
// sequence. Safe to call in any state.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	c.stream = nil
	c.mu.Unlock()

	c.engine.DisconnectStream()
	c.capture.StopCapture()
	c.engine.Cleanup()
	c.notify()
	log.Println("Session: stopped")
}

// watch tears the session down when the stream ends without a stop press,
// e.g. the user revoking the share from the browser's native UI.
func (c *Coordinator) watch(s *capture.Stream) {
	<-s.Done()

	c.mu.Lock()
	if c.stream != s {
		// superseded or already stopped, nothing to do
		c.mu.Unlock()
		return
	}
	c.stream = nil
	c.mu.Unlock()

	log.Printf("Session: stream %s ended externally, tearing down", s.ID)
	c.engine.DisconnectStream()
	c.capture.StopCapture()
	c.engine.Cleanup()
	c.notify()
}

// SetPad maps a raw pointer position on the pad surface into the engine and
// returns the normalized position for the marker.
func (c *Coordinator) SetPad(pixelX, pixelY, width, height float64) spatial.Position2D {
	p := spatial.PixelToNormalized(pixelX, pixelY, width, height)
	c.SetPosition(p)
	return p
}

// SetPosition places the source from a normalized pad coordinate.
func (c *Coordinator) SetPosition(p spatial.Position2D) {
	c.mu.Lock()
	c.pad = p
	h := c.height
	c.mu.Unlock()

	c.engine.SetPosition(spatial.PadToPosition3D(p.X, p.Y, h))
	c.notify()
}

// SetHeight moves the source vertically, keeping the pad position.
func (c *Coordinator) SetHeight(h float64) {
	if h < -1 {
		h = -1
	}
	if h > 1 {
		h = 1
	}
	c.mu.Lock()
	c.height = h
	p := c.pad
	c.mu.Unlock()

	c.engine.SetPosition(spatial.PadToPosition3D(p.X, p.Y, h))
	c.notify()
}

// SetGain forwards the master gain; the engine clamps into [0,1].
func (c *Coordinator) SetGain(v float64) {
	c.engine.SetGain(v)
	c.notify()
}

// PlayerReady ducks the page player so the raw tab audio underneath the
// spatialized copy is not also audible at full volume.
func (c *Coordinator) PlayerReady() {
	c.mu.Lock()
	h := c.player
	c.mu.Unlock()
	if h == nil {
		return
	}
	h.SetVolume(c.cfg.PlayerVolume)
	log.Printf("Session: player ready, volume forced to %d", c.cfg.PlayerVolume)
}

// Status assembles the unified snapshot. Capture and engine failures are
// reported independently and never conflated.
func (c *Coordinator) Status() Status {
	es := c.engine.Status()

	c.mu.Lock()
	pad := c.pad
	height := c.height
	c.mu.Unlock()

	st := Status{
		Spatial:   es.State,
		Capture:   c.capture.Status().String(),
		Supported: c.capture.Supported(),
		Pad:       pad,
		Height:    height,
		Position:  es.Position,
		Gain:      es.Gain,
	}

	if msg := c.capture.FailureReason().Explain(); msg != "" {
		st.Message = msg
	} else if es.Error != "" {
		st.Message = es.Error
	}
	return st
}

func (c *Coordinator) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
