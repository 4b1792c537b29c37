package service

import (
	"context"
	"testing"

	"ai-finance-chat/backend/internal/models"
	apperrors "ai-finance-chat/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConversationService(store *fakeStore) *ConversationService {
	return NewConversationService(store, messageRepoAdapter{store}, nil)
}

// seedConversation runs one chat turn so the store holds a realistic
// conversation with a user and an assistant message
func seedConversation(t *testing.T, store *fakeStore, userID uint, message string) uint {
	t.Helper()
	svc := newTestChatService(store, &fakeGateway{result: okResult()})
	resp, err := svc.SendMessage(context.Background(), userID, models.ChatRequest{Message: message})
	require.NoError(t, err)
	return resp.ConversationID
}

func TestConversationDetail(t *testing.T) {
	store := newFakeStore()
	id := seedConversation(t, store, 1, "How do index funds work?")
	svc := newTestConversationService(store)

	detail, err := svc.Detail(context.Background(), 1, id)
	require.NoError(t, err)

	assert.Equal(t, "How do index funds work?", detail.Conversation.Title)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, models.RoleUser, detail.Messages[0].Role)
	assert.Equal(t, models.RoleAssistant, detail.Messages[1].Role)
}

func TestConversationDetailOwnership(t *testing.T) {
	store := newFakeStore()
	id := seedConversation(t, store, 1, "Mine")
	svc := newTestConversationService(store)

	_, err := svc.Detail(context.Background(), 2, id)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConversationNotFound, apperrors.GetErrorCode(err))
}

func TestConversationUpdate(t *testing.T) {
	store := newFakeStore()
	id := seedConversation(t, store, 1, "Original title material")
	svc := newTestConversationService(store)

	title := "Renamed"
	archived := models.ConversationArchived
	conv, err := svc.Update(context.Background(), 1, id, models.ConversationUpdate{
		Title:  &title,
		Status: &archived,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", conv.Title)
	assert.Equal(t, models.ConversationArchived, conv.Status)

	// An absent field leaves the stored value alone
	prompt := "Answer briefly"
	conv, err = svc.Update(context.Background(), 1, id, models.ConversationUpdate{
		SystemPrompt: &prompt,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", conv.Title)
	require.NotNil(t, conv.SystemPrompt)
	assert.Equal(t, "Answer briefly", *conv.SystemPrompt)
}

func TestConversationUpdateInvalidStatus(t *testing.T) {
	store := newFakeStore()
	id := seedConversation(t, store, 1, "hello")
	svc := newTestConversationService(store)

	bogus := models.ConversationStatus("paused")
	_, err := svc.Update(context.Background(), 1, id, models.ConversationUpdate{Status: &bogus})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.GetErrorCode(err))
}

func TestConversationDelete(t *testing.T) {
	store := newFakeStore()
	id := seedConversation(t, store, 1, "short-lived")
	svc := newTestConversationService(store)

	require.NoError(t, svc.Delete(context.Background(), 1, id))

	stored := store.conversations[id]
	assert.Equal(t, models.ConversationDeleted, stored.Status)
	assert.True(t, stored.IsDeleted)
	assert.NotNil(t, stored.DeletedAt)

	// Gone from the default listing
	listed, err := svc.List(context.Background(), 1, nil, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// Still reachable through an explicit status filter
	deleted := models.ConversationDeleted
	listed, err = svc.List(context.Background(), 1, &deleted, 0, 100)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	// A second delete resolves like any other access to a deleted row
	err = svc.Delete(context.Background(), 1, id)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConversationNotFound, apperrors.GetErrorCode(err))
}

func TestConversationSearch(t *testing.T) {
	store := newFakeStore()
	seedConversation(t, store, 1, "Tell me about dividend stocks")
	seedConversation(t, store, 1, "Explain bond ladders")
	seedConversation(t, store, 2, "dividend yield of index funds")
	svc := newTestConversationService(store)

	found, err := svc.Search(context.Background(), 1, "DIVIDEND", 0, 50)
	require.NoError(t, err)
	require.Len(t, found, 1, "matching is case-insensitive and scoped to the caller")
	assert.Equal(t, "Tell me about dividend stocks", found[0].Content)

	_, err = svc.Search(context.Background(), 1, "", 0, 50)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.GetErrorCode(err))
}

func TestConversationStatsSkipDeletedMessages(t *testing.T) {
	store := newFakeStore()
	seedConversation(t, store, 1, "keep me")
	svc := newTestConversationService(store)

	store.messages[1].IsDeleted = true

	stats, err := svc.Stats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalMessages)
	assert.Equal(t, int64(1), stats.UserMessages)
	assert.Equal(t, int64(0), stats.AssistantMessages)
}

func TestConversationStats(t *testing.T) {
	store := newFakeStore()
	seedConversation(t, store, 1, "one")
	id := seedConversation(t, store, 1, "two")
	seedConversation(t, store, 2, "someone else")
	svc := newTestConversationService(store)

	require.NoError(t, svc.Delete(context.Background(), 1, id))

	stats, err := svc.Stats(context.Background(), 1)
	require.NoError(t, err)

	// Deleted conversations still count toward lifetime totals
	assert.Equal(t, int64(2), stats.TotalConversations)
	assert.Equal(t, int64(1), stats.ActiveConversations)
	assert.Equal(t, int64(4), stats.TotalMessages)
	assert.Equal(t, int64(2), stats.UserMessages)
	assert.Equal(t, int64(2), stats.AssistantMessages)
	assert.Equal(t, int64(0), stats.SystemMessages)
}
