package mcp

import (
	"slices"
	"sync"
)

// SessionRegistry tracks the MCP sessions that asked to watch paper events.
// Populated when a client calls flowpaper.fit with watch set.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]struct{}
}

// NewSessionRegistry creates a new empty SessionRegistry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]struct{})}
}

// Register adds a session. Registering twice is a no-op.
func (r *SessionRegistry) Register(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = struct{}{}
}

// Watching reports whether the session is registered.
func (r *SessionRegistry) Watching(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[sessionID]
	return ok
}

// Sessions returns the registered session IDs in sorted order.
func (r *SessionRegistry) Sessions() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Remove forgets a session. Called when a session disconnects.
func (r *SessionRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}
