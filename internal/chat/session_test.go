// internal/chat/session_test.go
package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "claims-gateway/internal/common/errors"
	"claims-gateway/internal/common/logger"
	"claims-gateway/internal/models"
)

func newTestSessionStore(t *testing.T) *SessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionStore(client, time.Hour, logger.NewNoOpLogger())
}

func TestSessionStore_IDsStrictlyIncrease(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	var lastID int64
	for i := 0; i < 5; i++ {
		msg, err := store.Append(ctx, "session-1", RoleUser, "hello")
		require.NoError(t, err)
		assert.Greater(t, msg.ID, lastID)
		assert.False(t, msg.CreatedAt.IsZero())
		lastID = msg.ID
	}

	// Another session allocates independently, starting from 1 again.
	msg, err := store.Append(ctx, "session-2", RoleUser, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.ID)
}

func TestSessionStore_HistoryIsChronological(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "session-1", RoleUser, "why was my claim rejected")
	require.NoError(t, err)
	_, err = store.Append(ctx, "session-1", RoleAssistant, "Your claim was not approved because the policy had expired.")
	require.NoError(t, err)

	history, err := store.History(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, RoleAssistant, history[1].Role)
	assert.Less(t, history[0].ID, history[1].ID)
}

func TestConversation_Exchange(t *testing.T) {
	store := newTestSessionStore(t)
	claim := &models.Claim{ID: "5", PolicyExpiredFlag: true}
	resolver := NewResolver(staticFetcher(claim), logger.NewNoOpLogger())
	conv := NewConversation(resolver, store, logger.NewNoOpLogger())

	reply, err := conv.Exchange(context.Background(), "session-1", "5", "why was it rejected")
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, reply.Role)
	assert.Contains(t, reply.Text, "expired")

	history, err := conv.History(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "why was it rejected", history[0].Text)
}

func TestConversation_FallbackReplyOnResolverFailure(t *testing.T) {
	store := newTestSessionStore(t)
	failing := fetcherFunc(func(ctx context.Context, id string) (*models.Claim, error) {
		return nil, commonerrors.NewFallbackExhaustedError("get", []error{errors.New("down")})
	})
	conv := NewConversation(NewResolver(failing, logger.NewNoOpLogger()), store, logger.NewNoOpLogger())

	reply, err := conv.Exchange(context.Background(), "session-1", "5", "status please")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply.Text)

	// The failed exchange is still part of the transcript.
	history, err := conv.History(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, FallbackReply, history[1].Text)
}
