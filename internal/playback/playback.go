// Package playback exposes the page's embedded player to the rest of the
// system as an opaque volume/mute handle. The player itself lives in the
// browser; commands travel over the websocket feed and the page applies them.
package playback

// Message is one control or status event on the feed, in either direction.
// Volume is never omitted: 0 is a legal setting and the page must see it.
type Message struct {
	Event   string `json:"event"`
	Reason  string `json:"reason,omitempty"`
	Volume  int    `json:"volume"`
	Payload any    `json:"payload,omitempty"`
}

// Publisher pushes messages to every connected page.
type Publisher interface {
	Broadcast(Message)
}

// Handle is the only surface the orchestrator sees of the player.
type Handle interface {
	Mute()
	Unmute()
	SetVolume(v int) // 0-100, clamped
}

// Player implements Handle over a Publisher.
type Player struct {
	pub Publisher
}

// NewPlayer wraps a publisher as a player handle.
func NewPlayer(pub Publisher) *Player {
	return &Player{pub: pub}
}

func (p *Player) Mute() {
	p.pub.Broadcast(Message{Event: "player-mute"})
}

func (p *Player) Unmute() {
	p.pub.Broadcast(Message{Event: "player-unmute"})
}

func (p *Player) SetVolume(v int) {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	p.pub.Broadcast(Message{Event: "player-volume", Volume: v})
}
