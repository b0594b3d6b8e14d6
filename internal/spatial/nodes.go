package spatial

// gainNode applies a master volume in [0,1] after the panner. The clamp
// happens at the engine boundary; the node only ramps and multiplies.
type gainNode struct {
	level *ramp
}

func newGainNode(initial float64, sampleRate int) *gainNode {
	return &gainNode{level: newRamp(initial, RampTimeConstant, sampleRate)}
}

func (g *gainNode) setGain(v float64) {
	g.level.setTarget(v)
}

func (g *gainNode) target() float64 {
	return g.level.target
}

// process scales a frame in place, advancing the ramp once per stereo frame.
func (g *gainNode) process(frame []int16) {
	for i := 0; i+1 < len(frame); i += 2 {
		v := g.level.step()
		frame[i] = int16(float64(frame[i]) * v)
		frame[i+1] = int16(float64(frame[i+1]) * v)
	}
}

// sourceNode feeds captured frames through the graph. At most one source is
// attached at a time; attaching a new one supersedes the old.
type sourceNode struct {
	frames <-chan []int16
	stop   chan struct{}
}

func newSourceNode(frames <-chan []int16) *sourceNode {
	return &sourceNode{
		frames: frames,
		stop:   make(chan struct{}),
	}
}

// detach is idempotent.
func (s *sourceNode) detach() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// run pulls frames until the stream closes or the node is detached,
// rendering each frame through the panner and gain stages.
func (s *sourceNode) run(rctx *renderContext, render func([]int16) []int16) {
	for {
		select {
		case <-s.stop:
			return
		case frame, ok := <-s.frames:
			if !ok {
				return
			}
			rctx.emit(render(frame))
		}
	}
}
