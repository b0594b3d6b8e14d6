package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/imaimai17468/custom-asmr/internal/capture"
	"github.com/imaimai17468/custom-asmr/internal/config"
	"github.com/imaimai17468/custom-asmr/internal/playback"
	"github.com/imaimai17468/custom-asmr/internal/session"
	"github.com/imaimai17468/custom-asmr/internal/spatial"
	"github.com/imaimai17468/custom-asmr/internal/stream"
	"github.com/imaimai17468/custom-asmr/internal/web"
)

func main() {
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Println("custom-asmr starting up...")

	// Spatial engine and the fan-out of its rendered frames
	engine := spatial.NewEngine()
	defer engine.Cleanup()

	broadcaster := stream.NewBroadcaster()
	go broadcaster.Run(ctx, engine.Output())

	// Capture side
	captureCtl := capture.NewController()
	if !captureCtl.Supported() {
		log.Println("Warning: opus pipeline unavailable, capture will be refused")
	}

	// UI feed and the page player handle riding on it
	feed := playback.NewFeed()
	player := playback.NewPlayer(feed)

	coordinator := session.NewCoordinator(engine, captureCtl, session.Config{
		Spatial:      cfg.Spatial(),
		SourceHeight: cfg.SourceHeight,
		PlayerVolume: cfg.PlayerVolume,
	})
	coordinator.SetPlayer(player)
	coordinator.SetOnChange(func() {
		feed.Broadcast(playback.Message{Event: "status", Payload: coordinator.Status()})
	})

	feed.OnMessage(func(msg playback.Message) {
		if msg.Event == "player-ready" {
			coordinator.PlayerReady()
		}
	})

	// HTTP routes
	mux := http.NewServeMux()

	// Web UI
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(web.IndexHTML)
	})

	// Capture negotiation and monitor outputs
	mux.Handle("/api/capture/offer", capture.NewOfferHandler(captureCtl, broadcaster))
	mux.Handle("/api/capture/fail", capture.NewFailHandler(captureCtl))
	mux.Handle("/api/monitor/offer", stream.NewMonitorHandler(broadcaster))
	mux.Handle("/stream", stream.NewMP3Handler(broadcaster, cfg.MP3Bitrate))
	mux.Handle("/ws", feed)

	// Session control
	mux.HandleFunc("/api/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		// blocks until the page delivers a stream or reports failure; the
		// page abandoning the request cancels via r.Context()
		err := coordinator.Start(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			log.Printf("Start failed: %v", err)
			json.NewEncoder(w).Encode(map[string]any{"ok": false, "status": coordinator.Status()})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "status": coordinator.Status()})
	})

	mux.HandleFunc("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		coordinator.Stop()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	// Pad, gain, height
	mux.HandleFunc("/api/pad", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			X      float64 `json:"x"`
			Y      float64 `json:"y"`
			Width  float64 `json:"width"`
			Height float64 `json:"height"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		p := coordinator.SetPad(req.X, req.Y, req.Width, req.Height)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p)
	})

	mux.HandleFunc("/api/gain", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Gain float64 `json:"gain"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		coordinator.SetGain(req.Gain)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "gain": coordinator.Status().Gain})
	})

	mux.HandleFunc("/api/height", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Height float64 `json:"height"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		coordinator.SetHeight(req.Height)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "height": coordinator.Status().Height})
	})

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		json.NewEncoder(w).Encode(coordinator.Status())
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		coordinator.Stop()
		server.Close()
	}()

	log.Printf("custom-asmr live on %s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}
}
