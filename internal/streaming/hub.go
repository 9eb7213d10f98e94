package streaming

import "context"

// StreamEvent is a real-time paper event: a fit or a rendering.
type StreamEvent struct {
	// Source names the surface that triggered the event ("panel", "mcp", "cli").
	Source    string `json:"source"`
	CellID    string `json:"cell_id,omitempty"`
	EventType string `json:"event_type"`
	Payload   any    `json:"payload,omitempty"`
}

// EventFilter specifies which events a subscriber wants to receive.
type EventFilter struct {
	Source     string   `json:"source,omitempty"`
	EventTypes []string `json:"event_types,omitempty"`
}

// EventHub provides pub/sub for paper events.
type EventHub interface {
	Publish(ctx context.Context, event StreamEvent) error
	Subscribe(ctx context.Context, filter EventFilter) (<-chan StreamEvent, func(), error)
}
