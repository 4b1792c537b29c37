package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"ai-finance-chat/backend/gateway"
	"ai-finance-chat/backend/internal/service"
	"ai-finance-chat/backend/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway scripts the upstream surface of the chat service
type stubGateway struct {
	models  []gateway.ModelInfo
	healthy bool
}

func (g *stubGateway) SendChat(ctx context.Context, req gateway.ChatRequest) (*gateway.ChatResult, error) {
	return &gateway.ChatResult{Content: "ok", Model: req.Model}, nil
}

func (g *stubGateway) ListModels(ctx context.Context) []gateway.ModelInfo { return g.models }

func (g *stubGateway) HealthCheck(ctx context.Context) bool { return g.healthy }

func newChatTestRouter(gw *stubGateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(errors.ErrorHandler())

	svc := service.NewChatService(seededRepo(), stubMessageRepo{}, gw, nil, nil, service.ChatServiceConfig{})
	handler := NewChatHandler(svc)

	authed := engine.Group("/", fakeAuth(1))
	authed.GET("/models", handler.ListModels)
	authed.GET("/health", handler.Health)

	return engine
}

func TestListModelsResponseShape(t *testing.T) {
	engine := newChatTestRouter(&stubGateway{models: []gateway.ModelInfo{
		{ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet"},
		{ID: "openai/gpt-4-turbo", Name: "GPT-4 Turbo"},
	}})

	w := perform(engine, http.MethodGet, "/models")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Models []gateway.ModelInfo `json:"models"`
		Total  int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Len(t, body.Models, 2)
}

func TestGatewayHealthEndpoint(t *testing.T) {
	type healthBody struct {
		Status        string `json:"status"`
		OpenRouterAPI string `json:"openrouter_api"`
		Timestamp     string `json:"timestamp"`
	}

	engine := newChatTestRouter(&stubGateway{healthy: true})
	w := perform(engine, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body healthBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "available", body.OpenRouterAPI)
	assert.NotEmpty(t, body.Timestamp)

	// Unreachable upstream still answers 200 with a degraded body
	engine = newChatTestRouter(&stubGateway{healthy: false})
	w = perform(engine, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unavailable", body.OpenRouterAPI)
}
