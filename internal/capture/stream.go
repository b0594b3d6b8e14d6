package capture

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
)

// Stream is one live captured audio source: 20ms interleaved stereo PCM
// frames plus a termination signal. Done closes when the remote side ends
// the share (including the user revoking it from the browser's native UI),
// which the orchestrator must observe without a "stop" press.
type Stream struct {
	ID string

	mu     sync.Mutex
	closed bool
	frames chan []int16
	done   chan struct{}
	pc     *webrtc.PeerConnection
}

// NewStream creates an empty stream bound to an optional peer connection.
// The offer handler feeds it; tests may feed it directly.
func NewStream(pc *webrtc.PeerConnection) *Stream {
	return &Stream{
		ID:     uuid.NewString(),
		frames: make(chan []int16, 50), // ~1 second of buffer at 20ms/frame
		done:   make(chan struct{}),
		pc:     pc,
	}
}

// Frames is the decoded PCM feed. Closed together with Done.
func (s *Stream) Frames() <-chan []int16 {
	return s.frames
}

// Done closes when the stream has ended, for any reason.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// push queues a decoded frame, dropping it when the consumer lags or the
// stream already ended.
func (s *Stream) push(frame []int16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.frames <- frame:
	default:
	}
}

// Close ends the stream and releases the peer connection. Idempotent.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	close(s.frames)
	pc := s.pc
	s.pc = nil
	s.mu.Unlock()

	if pc != nil {
		pc.Close()
	}
}
