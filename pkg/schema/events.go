package schema

// Event type constants for paper events.
const (
	EventPaperFitted   = "paper_fitted"
	EventPaperRendered = "paper_rendered"
)
