package spatial

import (
	"context"
	"errors"
	"sync"
)

// renderContext is the engine's processing clock and output port. It stands
// in for the host audio context: created suspended, it must be resumed
// before any node work counts, and closing it releases the output for good.
type renderContext struct {
	sampleRate int

	mu    sync.Mutex
	state ctxState

	out chan []int16
}

type ctxState int

const (
	ctxSuspended ctxState = iota
	ctxRunning
	ctxClosed
)

var errContextClosed = errors.New("render context is closed")

// newRenderContext creates a suspended context. The output channel survives
// close so long-lived consumers keep a stable subscription across engine
// restarts; closed contexts simply stop producing.
func newRenderContext(sampleRate int, out chan []int16) (*renderContext, error) {
	if sampleRate <= 0 {
		return nil, errConfig("sample rate must be positive")
	}
	return &renderContext{
		sampleRate: sampleRate,
		state:      ctxSuspended,
		out:        out,
	}, nil
}

// resume moves the context to running. Contexts start suspended (the host
// suspends contexts created outside a direct user gesture), so this must
// complete before node creation is considered valid. The wait is bounded by
// the caller's context.
func (c *renderContext) resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ctxClosed {
		return errContextClosed
	}
	c.state = ctxRunning
	return nil
}

func (c *renderContext) running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == ctxRunning
}

// emit pushes a rendered frame to the output, dropping it when no consumer
// keeps up or the context is no longer running.
func (c *renderContext) emit(frame []int16) {
	if !c.running() {
		return
	}
	select {
	case c.out <- frame:
	default:
		// consumer too slow, drop frame to keep the render moving
	}
}

// close is idempotent and final.
func (c *renderContext) close() {
	c.mu.Lock()
	c.state = ctxClosed
	c.mu.Unlock()
}
