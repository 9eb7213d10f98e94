package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/server"
)

// SessionNotifier pushes notifications to watching sessions.
type SessionNotifier interface {
	NotifyAll(ctx context.Context, payload map[string]any) error
}

// MCPNotifier implements SessionNotifier using MCP server push.
type MCPNotifier struct {
	mcpServer *server.MCPServer
	sessions  *SessionRegistry
}

// NewMCPNotifier creates a notifier that pushes via the MCP server.
func NewMCPNotifier(mcpServer *server.MCPServer, sessions *SessionRegistry) *MCPNotifier {
	return &MCPNotifier{mcpServer: mcpServer, sessions: sessions}
}

// NotifyAll sends payload to every watching session. Sessions that are gone
// are dropped from the registry; other failures are joined.
func (n *MCPNotifier) NotifyAll(_ context.Context, payload map[string]any) error {
	var errs []error
	for _, sessionID := range n.sessions.Sessions() {
		err := n.mcpServer.SendNotificationToSpecificClient(sessionID, "notifications/message", payload)
		if errors.Is(err, server.ErrSessionNotFound) {
			n.sessions.Remove(sessionID)
			continue
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ SessionNotifier = (*MCPNotifier)(nil)
