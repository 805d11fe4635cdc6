package service

// Event types passed to a Broadcaster.
const (
	EventTurnResolved = "turn_resolved"
	EventGameReplayed = "game_replayed"
)

// Broadcaster receives progress events while games are replayed.
type Broadcaster interface {
	BroadcastGameEvent(game int, eventType string, data any)
}

// NoopBroadcaster drops every event.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastGameEvent(int, string, any) {}
