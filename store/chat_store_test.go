package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeWithHak/sorted/store"
)

func createThread(t *testing.T, st *store.Store, creatorID string) *store.ChatThread {
	t.Helper()
	thread, err := st.CreateChatThread(context.Background(), &store.ChatThread{
		UID:       shortuuid.New(),
		CreatorID: creatorID,
		Title:     "New conversation",
	})
	require.NoError(t, err)
	return thread
}

func TestChatThreadOwnership(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	thread := createThread(t, st, "u1")

	owner, stranger := "u1", "u2"
	got, err := st.GetChatThread(ctx, &store.FindChatThread{UID: &thread.UID, CreatorID: &owner})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, thread.ID, got.ID)

	got, err = st.GetChatThread(ctx, &store.FindChatThread{UID: &thread.UID, CreatorID: &stranger})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChatThreadTitleUpdate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	thread := createThread(t, st, "u1")

	title := "Grocery planning"
	updated, err := st.UpdateChatThread(ctx, &store.UpdateChatThread{UID: thread.UID, Title: &title})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Grocery planning", updated.Title)

	// An empty update still bumps updated_ts; the title survives.
	touched, err := st.UpdateChatThread(ctx, &store.UpdateChatThread{UID: thread.UID})
	require.NoError(t, err)
	require.NotNil(t, touched)
	assert.Equal(t, "Grocery planning", touched.Title)
}

func TestChatMessageOrdering(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	thread := createThread(t, st, "u1")

	for i := 0; i < 5; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		_, err := st.CreateChatMessage(ctx, &store.ChatMessage{
			UID:      uuid.NewString(),
			ThreadID: thread.ID,
			Role:     role,
			Content:  fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	t.Run("chronological by default", func(t *testing.T) {
		msgs, err := st.ListChatMessages(ctx, &store.FindChatMessage{ThreadID: thread.ID})
		require.NoError(t, err)
		require.Len(t, msgs, 5)
		assert.Equal(t, "message 0", msgs[0].Content)
		assert.Equal(t, "message 4", msgs[4].Content)
	})

	t.Run("descending tail fetch", func(t *testing.T) {
		limit := 2
		msgs, err := st.ListChatMessages(ctx, &store.FindChatMessage{
			ThreadID:  thread.ID,
			Limit:     &limit,
			OrderDesc: true,
		})
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "message 4", msgs[0].Content)
		assert.Equal(t, "message 3", msgs[1].Content)
	})

	t.Run("count", func(t *testing.T) {
		count, err := st.CountChatMessages(ctx, &store.FindChatMessage{ThreadID: thread.ID})
		require.NoError(t, err)
		assert.Equal(t, 5, count)
	})
}

func TestChatMessageActionSummary(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	thread := createThread(t, st, "u1")

	summary := `[{"action":"created","task_id":"abc","title":"Buy milk"}]`
	msg, err := st.CreateChatMessage(ctx, &store.ChatMessage{
		UID:           uuid.NewString(),
		ThreadID:      thread.ID,
		Role:          "assistant",
		Content:       "I've added Buy milk.",
		ActionSummary: summary,
	})
	require.NoError(t, err)

	msgs, err := st.ListChatMessages(ctx, &store.FindChatMessage{ThreadID: thread.ID})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, msg.UID, msgs[0].UID)
	assert.JSONEq(t, summary, msgs[0].ActionSummary)
}
