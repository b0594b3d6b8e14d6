package stream

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/exec"

	"github.com/imaimai17468/custom-asmr/internal/audio"
)

// MP3Handler exposes the rendered feed as a chunked MP3 stream, for media
// players and smart speakers that speak ICY but not WebRTC. One ffmpeg
// process per connection turns PCM into MP3 in real time.
type MP3Handler struct {
	broadcaster *Broadcaster
	bitrateKbps int
}

// NewMP3Handler creates the MP3 monitor endpoint at the given encoding
// bitrate.
func NewMP3Handler(b *Broadcaster, bitrateKbps int) *MP3Handler {
	return &MP3Handler{broadcaster: b, bitrateKbps: bitrateKbps}
}

// encoder starts ffmpeg with PCM on stdin and MP3 on stdout.
func (h *MP3Handler) encoder(ctx context.Context) (*exec.Cmd, io.WriteCloser, io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "s16le",
		"-ar", fmt.Sprint(audio.SampleRate),
		"-ac", fmt.Sprint(audio.Channels),
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", fmt.Sprintf("%dk", h.bitrateKbps),
		"-f", "mp3",
		"-fflags", "nobuffer",
		"-flush_packets", "1",
		"-loglevel", "error",
		"pipe:1",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, nil, err
	}
	return cmd, stdin, stdout, cmd.Start()
}

func (h *MP3Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	cmd, stdin, stdout, err := h.encoder(ctx)
	if err != nil {
		log.Printf("MP3 monitor: encoder unavailable: %v", err)
		http.Error(w, "encoder unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("ICY-Name", "custom asmr monitor")

	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	log.Printf("MP3 monitor: listener %s connected at %dk (total: %d)",
		listener.ID, h.bitrateKbps, h.broadcaster.ListenerCount())
	defer log.Printf("MP3 monitor: listener %s gone", listener.ID)

	go func() {
		defer stdin.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-listener.Done():
				return
			case frame, ok := <-listener.C:
				if !ok {
					return
				}
				if _, err := stdin.Write(audio.SamplesToBytes(frame)); err != nil {
					return
				}
			}
		}
	}()

	buf := make([]byte, 4096)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				break
			}
			flusher.Flush()
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("MP3 monitor: encoder read error: %v", err)
			}
			break
		}
	}

	cmd.Wait()
}
