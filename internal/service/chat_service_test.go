package service

import (
	"errors"
	"testing"

	"exploresync-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture() (*ChatService, *memory.GroupRepository) {
	groupRepo := memory.NewGroupRepository()
	seedGroup(groupRepo, "g1", "alice", "bob")
	chat := NewChatService(memory.NewMessageRepository(), newGroupService(groupRepo), nil, noopLogger{})
	return chat, groupRepo
}

func TestAddMessageReturnsStoredCopy(t *testing.T) {
	chat, _ := newChatFixture()
	ctx := t.Context()

	msg, err := chat.AddMessage(ctx, "alice", "on my way", "g1")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, msg.Id)
	assert.False(t, msg.CreatedAt.IsZero())
	assert.Equal(t, "alice", msg.Author)
	assert.Equal(t, "g1", msg.GroupId)
}

func TestAddMessageMissingGroupPersistsNothing(t *testing.T) {
	chat, _ := newChatFixture()
	ctx := t.Context()

	_, err := chat.AddMessage(ctx, "alice", "hello?", "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGroupNotFound))

	history, err := chat.History(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryKeepsCreationOrder(t *testing.T) {
	chat, _ := newChatFixture()
	ctx := t.Context()

	for _, content := range []string{"a", "b", "c"} {
		_, err := chat.AddMessage(ctx, "alice", content, "g1")
		require.NoError(t, err)
	}

	history, err := chat.History(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "a", history[0].Content)
	assert.Equal(t, "c", history[2].Content)
}

func TestGroupLookupCachesPresence(t *testing.T) {
	groupRepo := memory.NewGroupRepository()
	seedGroup(groupRepo, "g1", "alice")
	groups := newGroupService(groupRepo)
	ctx := t.Context()

	exists, err := groups.Exists(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, exists)

	// Absence is never cached: a group created after a miss shows up on
	// the next lookup.
	exists, err = groups.Exists(ctx, "g2")
	require.NoError(t, err)
	assert.False(t, exists)

	seedGroup(groupRepo, "g2", "bob")
	exists, err = groups.Exists(ctx, "g2")
	require.NoError(t, err)
	assert.True(t, exists)

	members, err := groups.Members(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, members)

	_, err = groups.Members(ctx, "missing")
	assert.True(t, errors.Is(err, ErrGroupNotFound))
}
