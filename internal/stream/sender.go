package stream

import (
	"log"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"gopkg.in/hraban/opus.v2"

	"github.com/imaimai17468/custom-asmr/internal/audio"
)

// SendOpus encodes rendered frames from the broadcaster onto a local track
// until done closes or the listener is unsubscribed. The done channel must be
// tied to the peer's lifetime: writes to a track with no bindings succeed
// silently, so a dead peer never surfaces as a write error here.
func SendOpus(done <-chan struct{}, b *Broadcaster, track *webrtc.TrackLocalStaticSample) {
	listener := b.Subscribe()
	defer b.Unsubscribe(listener)

	enc, err := opus.NewEncoder(audio.SampleRate, audio.Channels, opus.AppAudio)
	if err != nil {
		log.Printf("Stream: opus encoder error: %v", err)
		return
	}
	enc.SetBitrate(128000)

	opusBuf := make([]byte, 4000)

	for {
		select {
		case <-done:
			return
		case <-listener.Done():
			return
		case frame, ok := <-listener.C:
			if !ok {
				return
			}
			n, err := enc.Encode(frame, opusBuf)
			if err != nil {
				log.Printf("Stream: opus encode error: %v", err)
				continue
			}
			if err := track.WriteSample(media.Sample{
				Data:     opusBuf[:n],
				Duration: audio.FrameDuration,
			}); err != nil {
				return
			}
		}
	}
}

// NewOpusTrack creates the local track rendered audio is written to.
func NewOpusTrack(streamID string) (*webrtc.TrackLocalStaticSample, error) {
	return webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio",
		streamID,
	)
}
