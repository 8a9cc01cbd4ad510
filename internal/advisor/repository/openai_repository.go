package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/ratelimit"

	"golang.org/x/time/rate"
)

type openaiAIRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
}

// NewOpenAIRepository creates an AIRepository for any OpenAI compatible chat completions endpoint.
func NewOpenAIRepository(cfg *config.Config, logger *logger.Logger) AIRepository {
	return &openaiAIRepository{
		client: &http.Client{
			Timeout: timeoutOrDefault(cfg.Advisor.SynthesisTimeout, 90*time.Second),
		},
		cfg:            cfg,
		logger:         logger,
		requestLimiter: newRequestLimiter(cfg.OpenAI.MaxRequestPerMinute, 1),
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.OpenAI.MaxTokenPerMinute),
	}
}

func (r *openaiAIRepository) Name() string { return "openai" }

func (r *openaiAIRepository) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.logger.Error("failed to wait for request limit", logger.ErrorField(err))
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.OpenAIChatRequest{
		Model: r.cfg.OpenAI.Model,
		Messages: []dto.OpenAIMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		Temperature:    r.cfg.AI.Temperature,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.OpenAI.BaseURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.cfg.OpenAI.APIKey))

	r.logger.Debug("Sending request to OpenAI API", logger.StringField("url", r.cfg.OpenAI.BaseURL), logger.StringField("model", r.cfg.OpenAI.Model))

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Received non-OK response from OpenAI API", logger.IntField("status_code", resp.StatusCode), logger.StringField("model", r.cfg.OpenAI.Model))
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-OK response from OpenAI API: %d - %s", resp.StatusCode, string(body))
	}

	var openaiResp dto.OpenAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if r.cfg.OpenAI.MaxTokenPerMinute > 0 && openaiResp.Usage.TotalTokens > r.cfg.OpenAI.MaxTokenPerMinute/2 {
		r.logger.Warn("Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	// Usage is only known after the call, so the budget is charged against the next request.
	if err := r.tokenLimiter.Wait(ctx, openaiResp.Usage.TotalTokens); err != nil {
		r.logger.Error("failed to wait for token limit", logger.ErrorField(err))
		return "", fmt.Errorf("failed to wait for token limit: %w", err)
	}

	if len(openaiResp.Choices) == 0 || openaiResp.Choices[0].Message.Content == "" {
		return "", errors.New("no content found in OpenAI response")
	}
	return openaiResp.Choices[0].Message.Content, nil
}
