package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-finance-chat/backend/internal/models"
	"ai-finance-chat/backend/internal/service"
	"ai-finance-chat/backend/pkg/errors"
	"ai-finance-chat/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubConversationRepo serves a single canned conversation for user 1
type stubConversationRepo struct {
	conv *models.Conversation
}

func (s *stubConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	return nil
}

func (s *stubConversationRepo) GetByIDForUser(ctx context.Context, id, userID uint) (*models.Conversation, error) {
	if s.conv != nil && s.conv.ID == id && s.conv.UserID == userID {
		copied := *s.conv
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubConversationRepo) ListByUser(ctx context.Context, userID uint, status *models.ConversationStatus, skip, limit int) ([]models.Conversation, error) {
	if s.conv != nil && s.conv.UserID == userID {
		return []models.Conversation{*s.conv}, nil
	}
	return []models.Conversation{}, nil
}

func (s *stubConversationRepo) Save(ctx context.Context, conv *models.Conversation) error {
	copied := *conv
	s.conv = &copied
	return nil
}

func (s *stubConversationRepo) RefreshStats(ctx context.Context, conversationID uint) (*models.Conversation, error) {
	return s.conv, nil
}

func (s *stubConversationRepo) StatsForUser(ctx context.Context, userID uint) (*models.ChatStats, error) {
	return &models.ChatStats{TotalConversations: 1, ActiveConversations: 1}, nil
}

type stubMessageRepo struct{}

func (stubMessageRepo) Create(ctx context.Context, msg *models.Message) error { return nil }
func (stubMessageRepo) RecentContext(ctx context.Context, conversationID uint, limit int) ([]models.Message, error) {
	return []models.Message{}, nil
}
func (stubMessageRepo) ListByConversation(ctx context.Context, conversationID uint) ([]models.Message, error) {
	return []models.Message{}, nil
}
func (stubMessageRepo) SearchByUser(ctx context.Context, userID uint, query string, skip, limit int) ([]models.Message, error) {
	return []models.Message{}, nil
}

// fakeAuth injects a fixed principal the way the JWT middleware would
func fakeAuth(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	}
}

func newTestRouter(repo *stubConversationRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(errors.ErrorHandler())

	svc := service.NewConversationService(repo, stubMessageRepo{}, nil)
	handler := NewConversationHandler(svc)

	authed := engine.Group("/", fakeAuth(1))
	authed.GET("/conversations", handler.List)
	authed.GET("/conversations/:id", handler.Get)
	authed.DELETE("/conversations/:id", handler.Delete)
	authed.GET("/messages/search", handler.Search)
	authed.GET("/stats", handler.Stats)

	return engine
}

func seededRepo() *stubConversationRepo {
	now := time.Now()
	return &stubConversationRepo{conv: &models.Conversation{
		ID:        7,
		UUID:      "11111111-1111-1111-1111-111111111111",
		UserID:    1,
		Title:     "Portfolio questions",
		Status:    models.ConversationActive,
		ModelName: models.DefaultModel,
		CreatedAt: now,
		UpdatedAt: now,
	}}
}

func perform(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestListConversations(t *testing.T) {
	engine := newTestRouter(seededRepo())

	w := perform(engine, http.MethodGet, "/conversations")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Conversations []models.Conversation `json:"conversations"`
		Count         int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "Portfolio questions", body.Conversations[0].Title)
}

func TestListConversationsValidation(t *testing.T) {
	engine := newTestRouter(seededRepo())

	for _, target := range []string{
		"/conversations?status=paused",
		"/conversations?skip=-1",
		"/conversations?limit=0",
		"/conversations?limit=1001",
		"/conversations?limit=abc",
	} {
		w := perform(engine, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w), target)
	}
}

func TestGetConversationNotFound(t *testing.T) {
	engine := newTestRouter(seededRepo())

	w := perform(engine, http.MethodGet, "/conversations/999")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CONVERSATION_NOT_FOUND", errorCode(t, w))
}

func TestGetConversationBadID(t *testing.T) {
	engine := newTestRouter(seededRepo())

	w := perform(engine, http.MethodGet, "/conversations/abc")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestDeleteConversation(t *testing.T) {
	repo := seededRepo()
	engine := newTestRouter(repo)

	w := perform(engine, http.MethodDelete, "/conversations/7")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ConversationDeleted, repo.conv.Status)
	assert.True(t, repo.conv.IsDeleted)
}

func TestSearchRequiresQuery(t *testing.T) {
	engine := newTestRouter(seededRepo())

	w := perform(engine, http.MethodGet, "/messages/search")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = perform(engine, http.MethodGet, "/messages/search?q=bonds&limit=500")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	engine := newTestRouter(seededRepo())

	w := perform(engine, http.MethodGet, "/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.ChatStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalConversations)
}
