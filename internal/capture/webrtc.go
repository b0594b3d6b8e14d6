package capture

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/pion/webrtc/v4"
	"gopkg.in/hraban/opus.v2"

	"github.com/imaimai17468/custom-asmr/internal/audio"
	"github.com/imaimai17468/custom-asmr/internal/stream"
)

// OfferHandler accepts the SDP offer the page posts once the user grants tab
// sharing. The offered audio track becomes the captured stream; the answer
// carries a return track with the spatialized render so the page hears the
// result on the same connection.
type OfferHandler struct {
	controller *Controller
	rendered   *stream.Broadcaster
}

// NewOfferHandler creates the capture negotiation endpoint.
func NewOfferHandler(c *Controller, rendered *stream.Broadcaster) *OfferHandler {
	return &OfferHandler{controller: c, rendered: rendered}
}

func (h *OfferHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var offer webrtc.SessionDescription
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		http.Error(w, "invalid SDP offer", http.StatusBadRequest)
		return
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		http.Error(w, "create peer connection failed", http.StatusInternalServerError)
		return
	}

	returnTrack, err := stream.NewOpusTrack("asmr-render")
	if err != nil {
		pc.Close()
		http.Error(w, "create return track failed", http.StatusInternalServerError)
		return
	}
	if _, err := pc.AddTrack(returnTrack); err != nil {
		pc.Close()
		http.Error(w, "add return track failed", http.StatusInternalServerError)
		return
	}

	st := NewStream(pc)

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if track.Kind() != webrtc.RTPCodecTypeAudio {
			return
		}
		log.Printf("Capture: remote track for stream %s (codec %s)", st.ID, track.Codec().MimeType)
		go decodeTrack(track, st)
	})

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		if s == webrtc.PeerConnectionStateFailed ||
			s == webrtc.PeerConnectionStateClosed ||
			s == webrtc.PeerConnectionStateDisconnected {
			// covers the user revoking the share from the browser chrome
			st.Close()
		}
	})

	if err := pc.SetRemoteDescription(offer); err != nil {
		pc.Close()
		http.Error(w, "set remote description failed", http.StatusBadRequest)
		return
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		pc.Close()
		http.Error(w, "create answer failed", http.StatusInternalServerError)
		return
	}

	if err := pc.SetLocalDescription(answer); err != nil {
		pc.Close()
		http.Error(w, "set local description failed", http.StatusInternalServerError)
		return
	}

	gatherComplete := webrtc.GatheringCompletePromise(pc)
	<-gatherComplete

	go stream.SendOpus(st.Done(), h.rendered, returnTrack)

	h.controller.Deliver(st)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(pc.LocalDescription())
}

// decodeTrack turns the remote Opus track into 20ms stereo PCM frames. A
// read error means the remote side ended the share, so the stream closes and
// Done fires.
func decodeTrack(track *webrtc.TrackRemote, st *Stream) {
	defer st.Close()

	channels := int(track.Codec().Channels)
	if channels != 1 {
		channels = audio.Channels
	}

	dec, err := opus.NewDecoder(audio.SampleRate, channels)
	if err != nil {
		log.Printf("Capture: opus decoder error: %v", err)
		return
	}

	pcm := make([]int16, audio.FrameSize*channels)

	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			log.Printf("Capture: stream %s ended: %v", st.ID, err)
			return
		}
		if len(pkt.Payload) == 0 {
			continue
		}

		n, err := dec.Decode(pkt.Payload, pcm)
		if err != nil {
			log.Printf("Capture: opus decode error: %v", err)
			continue
		}

		frame := make([]int16, n*channels)
		copy(frame, pcm[:n*channels])
		if channels == 1 {
			frame = audio.MonoToStereo(frame)
		}
		st.push(frame)
	}
}

// FailHandler lets the page report a capture failure before any offer is
// made: permission denied, an unsupported browser, or a share with no audio
// track.
type FailHandler struct {
	controller *Controller
}

// NewFailHandler creates the failure-report endpoint.
func NewFailHandler(c *Controller) *FailHandler {
	return &FailHandler{controller: c}
}

func (h *FailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	reason := Reason(req.Reason)
	switch reason {
	case ReasonNotSupported, ReasonPermissionDenied, ReasonNoAudio:
	default:
		reason = ReasonUnknown
	}
	h.controller.Fail(reason)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true})
}
