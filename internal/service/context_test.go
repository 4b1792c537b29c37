package service

import (
	"testing"

	"ai-finance-chat/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newestFirst builds a history slice the way RecentContext returns it
func newestFirst(contents ...string) []models.Message {
	msgs := make([]models.Message, 0, len(contents))
	role := models.RoleUser
	for i := len(contents) - 1; i >= 0; i-- {
		msgs = append(msgs, models.Message{Role: role, Content: contents[i]})
		if role == models.RoleUser {
			role = models.RoleAssistant
		} else {
			role = models.RoleUser
		}
	}
	return msgs
}

func TestBuildContextOrdering(t *testing.T) {
	history := newestFirst("one", "two", "three")

	out := BuildContext("", history, 10)
	require.Len(t, out, 3)
	assert.Equal(t, "one", out[0].Content)
	assert.Equal(t, "two", out[1].Content)
	assert.Equal(t, "three", out[2].Content)
}

func TestBuildContextSystemDirectiveFirst(t *testing.T) {
	history := newestFirst("hello")

	out := BuildContext("You are helpful", history, 10)
	require.Len(t, out, 2)
	assert.Equal(t, "system", out[0].Role)
	assert.Equal(t, "You are helpful", out[0].Content)
	assert.Equal(t, "hello", out[1].Content)
}

func TestBuildContextWindowCap(t *testing.T) {
	history := newestFirst("a", "b", "c", "d", "e")

	out := BuildContext("", history, 3)
	require.Len(t, out, 3)
	// The newest three, still in chronological order
	assert.Equal(t, "c", out[0].Content)
	assert.Equal(t, "d", out[1].Content)
	assert.Equal(t, "e", out[2].Content)

	// The directive rides on top of the window, not inside it
	withDirective := BuildContext("sys", history, 3)
	assert.Len(t, withDirective, 4)
}

func TestBuildContextEmptyHistory(t *testing.T) {
	assert.Empty(t, BuildContext("", nil, 10))

	out := BuildContext("sys only", nil, 10)
	require.Len(t, out, 1)
	assert.Equal(t, "system", out[0].Role)
}

func TestBuildContextDoesNotMutateInput(t *testing.T) {
	history := newestFirst("first", "second")
	original := make([]models.Message, len(history))
	copy(original, history)

	BuildContext("sys", history, 1)
	assert.Equal(t, original, history)
}
