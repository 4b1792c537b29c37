package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"ai-finance-chat/backend/pkg/logger"
	"ai-finance-chat/backend/pkg/observability"
)

// Sentinel errors for upstream failures. Chat sending never degrades;
// only the model catalog has a fallback.
var (
	// ErrUnavailable means the transport could not reach the provider
	// or the provider rejected the request.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrEmptyResponse means the provider returned zero choices or
	// empty content. Surfaced, never treated as success.
	ErrEmptyResponse = errors.New("empty response from upstream")
)

const (
	defaultBaseURL     = "https://openrouter.ai/api/v1"
	defaultModel       = "anthropic/claude-3.5-sonnet"
	defaultMinInterval = time.Second
	defaultTimeout     = 60 * time.Second
)

// Config holds the settings for a gateway client
type Config struct {
	APIKey  string
	BaseURL string
	SiteURL string
	AppName string
	// MinRequestInterval is the minimum spacing between outbound
	// calls across the whole process.
	MinRequestInterval time.Duration
	Timeout            time.Duration
}

// Client talks to the remote model provider under a shared rate budget
// and normalizes its responses. Safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *logger.Logger

	// Rate-limit clock. The mutex is held across the whole
	// read-delay-sleep-stamp sequence so concurrent callers cannot
	// compute a stale delay.
	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a gateway client. A nil logger falls back to the
// global one.
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MinRequestInterval <= 0 {
		cfg.MinRequestInterval = defaultMinInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = logger.GetGlobal()
	}
	if log == nil {
		log = logger.New(logger.DefaultConfig())
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// waitTurn blocks until this caller may dispatch, then stamps the clock.
// Callers are served in arrival order because the mutex is held for the
// duration of the wait.
func (c *Client) waitTurn(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.cfg.MinRequestInterval - time.Since(c.lastRequest); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	c.lastRequest = time.Now()
	return nil
}

// doRequest performs one rate-limited call and decodes the JSON response
func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	if err := c.waitTurn(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error marshaling request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.SiteURL != "" {
		req.Header.Set("HTTP-Referer", c.cfg.SiteURL)
	}
	if c.cfg.AppName != "" {
		req.Header.Set("X-Title", c.cfg.AppName)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: error reading response body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: request failed with status code %d: %s", ErrUnavailable, resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: error unmarshaling response: %v", ErrUnavailable, err)
	}

	return nil
}

// SendChat sends one chat-completion request and returns the normalized
// result with usage, estimated cost and latency attached.
func (c *Client) SendChat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if req.Model == "" {
		req.Model = defaultModel
	}

	start := time.Now()

	wireReq := chatCompletionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stream:      false,
		MaxTokens:   req.MaxTokens,
	}

	c.log.Info("Sending chat request to gateway", "model", req.Model, "messages", len(req.Messages))

	var wireResp chatCompletionResponse
	if err := c.doRequest(ctx, http.MethodPost, "/chat/completions", wireReq, &wireResp); err != nil {
		observability.RecordGatewayRequest("chat", "error", time.Since(start))
		return nil, err
	}

	if wireResp.Error != nil {
		observability.RecordGatewayRequest("chat", "error", time.Since(start))
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, wireResp.Error.Message)
	}

	if len(wireResp.Choices) == 0 {
		observability.RecordGatewayRequest("chat", "empty", time.Since(start))
		return nil, fmt.Errorf("%w: no response choices returned", ErrEmptyResponse)
	}

	content := wireResp.Choices[0].Message.Content
	if content == "" {
		observability.RecordGatewayRequest("chat", "empty", time.Since(start))
		return nil, fmt.Errorf("%w: empty response content", ErrEmptyResponse)
	}

	var usage Usage
	if wireResp.Usage != nil {
		usage = *wireResp.Usage
	}

	modelUsed := wireResp.Model
	if modelUsed == "" {
		modelUsed = req.Model
	}

	elapsed := time.Since(start)
	result := &ChatResult{
		Content:       content,
		Model:         modelUsed,
		Usage:         usage,
		EstimatedCost: EstimateCost(req.Model, usage.PromptTokens, usage.CompletionTokens),
		ResponseTime:  elapsed.Seconds(),
	}

	observability.RecordGatewayRequest("chat", "ok", elapsed)
	c.log.Info("Chat request completed",
		"model", modelUsed,
		"total_tokens", usage.TotalTokens,
		"estimated_cost", result.EstimatedCost,
		"response_time", result.ResponseTime,
	)

	return result, nil
}

// fetchModels retrieves the model catalog and propagates failures
func (c *Client) fetchModels(ctx context.Context) ([]ModelInfo, error) {
	start := time.Now()

	var wireResp modelListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/models", nil, &wireResp); err != nil {
		observability.RecordGatewayRequest("models", "error", time.Since(start))
		return nil, err
	}
	observability.RecordGatewayRequest("models", "ok", time.Since(start))

	models := make([]ModelInfo, 0, len(wireResp.Data))
	for _, m := range wireResp.Data {
		models = append(models, ModelInfo{
			ID:            m.ID,
			Name:          m.Name,
			Description:   m.Description,
			ContextLength: m.ContextLength,
			Pricing:       m.Pricing,
		})
	}
	return models, nil
}

// ListModels returns the provider's model catalog. Catalog listing is
// advisory, so upstream failures degrade to a built-in default catalog
// instead of failing the caller.
func (c *Client) ListModels(ctx context.Context) []ModelInfo {
	models, err := c.fetchModels(ctx)
	if err != nil {
		c.log.LogError(err, "Failed to fetch model catalog, serving defaults")
		return defaultCatalog()
	}
	c.log.Info("Retrieved model catalog from gateway", "count", len(models))
	return models
}

// HealthCheck reports whether the provider is reachable. It never
// returns an error; any catalog fetch failure reads as false.
func (c *Client) HealthCheck(ctx context.Context) bool {
	if _, err := c.fetchModels(ctx); err != nil {
		c.log.LogError(err, "Gateway health check failed")
		return false
	}
	return true
}
