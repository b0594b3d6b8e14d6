package capture

import (
	"context"
	"errors"
	"log"
	"sync"

	"gopkg.in/hraban/opus.v2"

	"github.com/imaimai17468/custom-asmr/internal/audio"
)

// Status is the capture lifecycle, owned here and read-only to the engine.
type Status int

const (
	StatusIdle Status = iota
	StatusRequesting
	StatusCapturing
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRequesting:
		return "requesting"
	case StatusCapturing:
		return "capturing"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Reason classifies a capture failure. Capture-side failures are classified
// independently of engine-side failures so the UI can tell "the browser
// can't do this" apart from "you said no".
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNotSupported     Reason = "not-supported"
	ReasonPermissionDenied Reason = "permission-denied"
	ReasonNoAudio          Reason = "no-audio"
	ReasonUnknown          Reason = "unknown"
)

var (
	ErrNotSupported     = errors.New("tab capture is not supported in this environment")
	ErrPermissionDenied = errors.New("capture permission was denied")
	ErrNoAudio          = errors.New("the shared tab has no audio track")
	ErrUnknown          = errors.New("capture failed")
	ErrRequestPending   = errors.New("a capture request is already pending")
	ErrStopped          = errors.New("capture stopped before a stream arrived")
)

// Err returns the sentinel error for a reason.
func (r Reason) Err() error {
	switch r {
	case ReasonNotSupported:
		return ErrNotSupported
	case ReasonPermissionDenied:
		return ErrPermissionDenied
	case ReasonNoAudio:
		return ErrNoAudio
	default:
		return ErrUnknown
	}
}

// ReasonOf classifies an error back into a reason.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrNotSupported):
		return ReasonNotSupported
	case errors.Is(err, ErrPermissionDenied):
		return ReasonPermissionDenied
	case errors.Is(err, ErrNoAudio):
		return ReasonNoAudio
	default:
		return ReasonUnknown
	}
}

// Explain returns actionable text for a reason. Every error state the UI can
// show has one.
func (r Reason) Explain() string {
	switch r {
	case ReasonNotSupported:
		return "This browser cannot share tab audio. Use a Chromium-based browser on desktop."
	case ReasonPermissionDenied:
		return "Sharing was declined. Press start and pick a tab with \"share audio\" enabled."
	case ReasonNoAudio:
		return "The shared tab has no audio. Re-share and tick \"share tab audio\" in the picker."
	case ReasonUnknown:
		return "Capture failed unexpectedly. Try sharing the tab again."
	default:
		return ""
	}
}

type startResult struct {
	stream *Stream
	err    error
}

// Controller owns the capture side: it hands out at most one live stream at
// a time, produced by the browser posting an SDP offer for its shared tab.
// StartCapture blocks until the user-mediated flow resolves; the platform
// prompt itself cannot be cancelled, only abandoned via the context.
type Controller struct {
	mu     sync.Mutex
	status Status
	reason Reason
	waiter chan startResult
	stream *Stream

	probeOnce sync.Once
	supported bool
}

// NewController creates an idle controller. The capability flag starts as
// "supported" and settles to the probed value on first read.
func NewController() *Controller {
	return &Controller{status: StatusIdle, supported: true}
}

// Supported reports whether the Opus decode path is available. Probed once;
// before the probe runs the flag defaults to true.
func (c *Controller) Supported() bool {
	c.probeOnce.Do(func() {
		_, err := opus.NewDecoder(audio.SampleRate, audio.Channels)
		c.supported = err == nil
		if err != nil {
			log.Printf("Capture: opus probe failed, capture unsupported: %v", err)
		}
	})
	return c.supported
}

// StartCapture transitions idle→requesting and waits for the browser to
// deliver a stream or report a classified failure. There is no timeout: the
// permission prompt may stay pending indefinitely. The context abandons the
// wait (UI discarding the pending result), it does not cancel the prompt.
func (c *Controller) StartCapture(ctx context.Context) (*Stream, error) {
	if !c.Supported() {
		c.mu.Lock()
		c.status = StatusError
		c.reason = ReasonNotSupported
		c.mu.Unlock()
		return nil, ErrNotSupported
	}

	c.mu.Lock()
	if c.waiter != nil {
		c.mu.Unlock()
		return nil, ErrRequestPending
	}
	w := make(chan startResult, 1)
	c.waiter = w
	c.status = StatusRequesting
	c.reason = ReasonNone
	c.mu.Unlock()

	log.Println("Capture: waiting for the browser to share a tab")

	select {
	case <-ctx.Done():
		c.mu.Lock()
		// StopCapture may already have resolved and replaced this waiter
		if c.waiter == w {
			c.waiter = nil
			c.status = StatusIdle
		}
		c.mu.Unlock()
		// a stream racing in behind the abandonment would otherwise hold
		// its peer connection open forever
		select {
		case res := <-w:
			if res.stream != nil {
				res.stream.Close()
			}
		default:
		}
		return nil, ctx.Err()
	case res := <-w:
		c.mu.Lock()
		if c.waiter == w {
			c.waiter = nil
		}
		if res.err != nil {
			// ErrStopped means StopCapture already put the controller back
			// to idle; anything else is a failure to classify
			if !errors.Is(res.err, ErrStopped) {
				c.status = StatusError
				c.reason = ReasonOf(res.err)
			}
			c.mu.Unlock()
			log.Printf("Capture: request failed: %v", res.err)
			return nil, res.err
		}
		c.stream = res.stream
		c.status = StatusCapturing
		c.mu.Unlock()
		log.Printf("Capture: stream %s live", res.stream.ID)
		return res.stream, nil
	}
}

// Deliver resolves a pending request with a live stream. A stream arriving
// with no request pending is discarded. The send happens under the lock so an
// abandoning StartCapture always either sees the waiter filled or has already
// cleared it; the channel is buffered, so this never blocks.
func (c *Controller) Deliver(s *Stream) {
	c.mu.Lock()
	if w := c.waiter; w != nil {
		w <- startResult{stream: s}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	log.Printf("Capture: unsolicited stream %s, discarding", s.ID)
	s.Close()
}

// Fail resolves a pending request with a classified failure, typically
// reported by the page when the permission prompt is declined.
func (c *Controller) Fail(reason Reason) {
	c.mu.Lock()
	if w := c.waiter; w != nil {
		w <- startResult{err: reason.Err()}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	log.Printf("Capture: failure report %q with no request pending", reason)
}

// StopCapture ends the live stream and returns to idle. A request still
// waiting for the browser is resolved with ErrStopped so a stream delivered
// later counts as unsolicited instead of completing a dead start sequence.
// Idempotent.
func (c *Controller) StopCapture() {
	c.mu.Lock()
	s := c.stream
	c.stream = nil
	if c.waiter != nil {
		c.waiter <- startResult{err: ErrStopped}
		c.waiter = nil
	}
	c.status = StatusIdle
	c.reason = ReasonNone
	c.mu.Unlock()

	if s != nil {
		s.Close()
		log.Printf("Capture: stream %s stopped", s.ID)
	}
}

// Status returns the current capture state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// FailureReason returns the classification of the last failure, if any.
func (c *Controller) FailureReason() Reason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}
