// internal/chat/session.go
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	commonerrors "claims-gateway/internal/common/errors"
	"claims-gateway/internal/common/logger"
)

// Role of a chat message author.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn. The id is assigned once, strictly increasing
// within a session; the timestamp is fixed at creation.
type Message struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore persists chat transcripts in Redis. Each session keeps a
// counter key for id allocation and a list key holding the messages in
// chronological order.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewSessionStore(client *redis.Client, ttl time.Duration, log logger.Logger) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "chat-sessions"}),
	}
}

func seqKey(sessionID string) string      { return fmt.Sprintf("chat:%s:seq", sessionID) }
func messagesKey(sessionID string) string { return fmt.Sprintf("chat:%s:messages", sessionID) }

// Append stores a new message and returns it with its assigned id and
// creation timestamp.
func (s *SessionStore) Append(ctx context.Context, sessionID, role, text string) (*Message, error) {
	id, err := s.client.Incr(ctx, seqKey(sessionID)).Result()
	if err != nil {
		return nil, commonerrors.NewSessionStoreFailedError(err)
	}

	msg := &Message{
		ID:        id,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		return nil, commonerrors.NewSessionStoreFailedError(err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, messagesKey(sessionID), encoded)
	if s.ttl > 0 {
		pipe.Expire(ctx, messagesKey(sessionID), s.ttl)
		pipe.Expire(ctx, seqKey(sessionID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, commonerrors.NewSessionStoreFailedError(err)
	}

	return msg, nil
}

// History returns the session's messages in chronological order.
func (s *SessionStore) History(ctx context.Context, sessionID string) ([]Message, error) {
	raw, err := s.client.LRange(ctx, messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, commonerrors.NewSessionStoreFailedError(err)
	}

	messages := make([]Message, 0, len(raw))
	for _, entry := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			s.logger.Warn("skipping undecodable chat message", map[string]interface{}{
				"sessionId": sessionID,
				"error":     err.Error(),
			})
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
