// internal/chat/conversation.go
package chat

import (
	"context"

	"claims-gateway/internal/common/logger"
)

// Conversation ties the resolver to the session store: every exchange appends
// the user turn, resolves a reply, and appends the assistant turn — the
// apologetic fallback when resolution fails. Failures are not retried.
type Conversation struct {
	resolver *Resolver
	store    *SessionStore
	logger   logger.Logger
}

func NewConversation(resolver *Resolver, store *SessionStore, log logger.Logger) *Conversation {
	return &Conversation{
		resolver: resolver,
		store:    store,
		logger:   log.WithFields(map[string]interface{}{"component": "chat-conversation"}),
	}
}

// Exchange runs one user turn and returns the stored assistant reply.
func (c *Conversation) Exchange(ctx context.Context, sessionID, claimID, message string) (*Message, error) {
	if c.store != nil {
		if _, err := c.store.Append(ctx, sessionID, RoleUser, message); err != nil {
			return nil, err
		}
	}

	reply, err := c.resolver.Resolve(ctx, claimID, message)
	if err != nil {
		c.logger.Warn("resolution failed, replying with fallback", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		reply = FallbackReply
	}

	if c.store == nil {
		return &Message{Role: RoleAssistant, Text: reply}, nil
	}
	return c.store.Append(ctx, sessionID, RoleAssistant, reply)
}

// History exposes the stored transcript for a session.
func (c *Conversation) History(ctx context.Context, sessionID string) ([]Message, error) {
	if c.store == nil {
		return nil, nil
	}
	return c.store.History(ctx, sessionID)
}
