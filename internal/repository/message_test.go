package repository

import (
	"context"
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationIsBidirectional(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewMessageRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	require.NoError(t, repo.Create(ctx, &models.Message{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi bob"}))
	require.NoError(t, repo.Create(ctx, &models.Message{SenderID: bob.ID, ReceiverID: alice.ID, Content: "hi alice"}))
	require.NoError(t, repo.Create(ctx, &models.Message{SenderID: alice.ID, ReceiverID: carol.ID, Content: "hi carol"}))

	conv, err := repo.Conversation(ctx, alice.ID, bob.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, conv, 2, "messages in both directions, other conversations excluded")
	assert.Equal(t, "hi bob", conv[0].Content)
	assert.Equal(t, "hi alice", conv[1].Content)

	// Same conversation regardless of argument order.
	conv2, err := repo.Conversation(ctx, bob.ID, alice.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, conv2, 2)
}

func TestMarkConversationRead(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewMessageRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.Create(ctx, &models.Message{SenderID: bob.ID, ReceiverID: alice.ID, Content: "one"}))
	require.NoError(t, repo.Create(ctx, &models.Message{SenderID: bob.ID, ReceiverID: alice.ID, Content: "two"}))
	require.NoError(t, repo.Create(ctx, &models.Message{SenderID: alice.ID, ReceiverID: bob.ID, Content: "mine"}))

	unread, err := repo.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	marked, err := repo.MarkConversationRead(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	unread, err = repo.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	// Alice's own outgoing message stays unread for Bob.
	unreadBob, err := repo.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unreadBob)
}
