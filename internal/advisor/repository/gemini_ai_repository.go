package repository

import (
	"context"
	"errors"
	"fmt"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an implementation of AIRepository that uses the Google Gemini API.
type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	if genAiClient == nil {
		return nil, errors.New("gemini client is required")
	}
	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.Gemini.MaxRequestPerMinute, 1),
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute),
		genAiClient:    genAiClient,
	}, nil
}

func (r *geminiAIRepository) Name() string { return "gemini" }

func (r *geminiAIRepository) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	tokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	if r.cfg.Gemini.MaxTokenPerMinute > 0 && int(tokenResp.TotalTokens) > r.cfg.Gemini.MaxTokenPerMinute/2 {
		r.logger.Warn("Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(r.cfg.AI.Temperature)),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("no content found in Gemini response")
	}
	return text, nil
}
