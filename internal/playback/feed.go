package playback

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Feed is the websocket hub between the daemon and the page: player commands
// and status snapshots go out, player-ready and capture-failure reports come
// in. The push direction is what lets the UI observe an externally ended
// stream without polling or pressing stop.
type Feed struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	onMessage func(Message)
}

// NewFeed creates an empty hub.
func NewFeed() *Feed {
	return &Feed{
		upgrader: websocket.Upgrader{
			// single-user local daemon, the page may be opened from anywhere
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// OnMessage sets the handler for messages arriving from the page.
func (f *Feed) OnMessage(fn func(Message)) {
	f.mu.Lock()
	f.onMessage = fn
	f.mu.Unlock()
}

// ServeHTTP upgrades the connection and pumps incoming messages until the
// page goes away.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Feed: upgrade failed: %v", err)
		return
	}

	f.mu.Lock()
	f.conns[conn] = struct{}{}
	n := len(f.conns)
	f.mu.Unlock()
	log.Printf("Feed: page connected (total: %d)", n)

	defer func() {
		f.mu.Lock()
		delete(f.conns, conn)
		f.mu.Unlock()
		conn.Close()
		log.Println("Feed: page disconnected")
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		f.mu.Lock()
		fn := f.onMessage
		f.mu.Unlock()
		if fn != nil {
			fn(msg)
		}
	}
}

// Broadcast sends a message to every connected page. Dead connections are
// dropped on the next read; a failed write here just skips that page.
func (f *Feed) Broadcast(msg Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("Feed: write failed: %v", err)
		}
	}
}

// ConnCount returns the number of connected pages.
func (f *Feed) ConnCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}
