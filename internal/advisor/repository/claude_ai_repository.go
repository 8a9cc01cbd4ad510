package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/pkg/logger"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

type claudeAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	client         anthropic.Client
}

// NewClaudeAIRepository creates an AIRepository backed by the Anthropic Messages API.
func NewClaudeAIRepository(cfg *config.Config, log *logger.Logger, opts ...option.RequestOption) (AIRepository, error) {
	if cfg.Claude.APIKey == "" {
		return nil, errors.New("claude api key is required")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.Claude.APIKey)}, opts...)
	return &claudeAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.Claude.MaxRequestPerMinute, 1),
		client:         anthropic.NewClient(opts...),
	}, nil
}

func (r *claudeAIRepository) Name() string { return "claude" }

func (r *claudeAIRepository) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	maxTokens := r.cfg.Claude.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	resp, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(r.cfg.Claude.Model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(r.cfg.AI.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to send request to Claude API: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	r.logger.Debug("Claude response received",
		logger.IntField("input_tokens", int(resp.Usage.InputTokens)),
		logger.IntField("output_tokens", int(resp.Usage.OutputTokens)),
	)

	if sb.Len() == 0 {
		return "", errors.New("no content found in Claude response")
	}
	return sb.String(), nil
}
