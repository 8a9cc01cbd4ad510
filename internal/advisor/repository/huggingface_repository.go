package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/logger"
)

type huggingFaceRepository struct {
	client *http.Client
	cfg    *config.Config
	logger *logger.Logger
}

// NewHuggingFaceRepository creates a sentiment classifier backed by the Hugging Face inference API.
// The primary model is tried first, then the fallback model.
func NewHuggingFaceRepository(cfg *config.Config, log *logger.Logger) SentimentRepository {
	return &huggingFaceRepository{
		client: &http.Client{
			Timeout: timeoutOrDefault(cfg.Advisor.SentimentTimeout, 15*time.Second),
		},
		cfg:    cfg,
		logger: log,
	}
}

func (r *huggingFaceRepository) Classify(ctx context.Context, text string) (dto.Classification, error) {
	var errs []error
	for _, model := range []string{r.cfg.HuggingFace.PrimaryModel, r.cfg.HuggingFace.FallbackModel} {
		if model == "" {
			continue
		}
		labels, err := r.infer(ctx, model, text)
		if err != nil {
			r.logger.Debug("Sentiment model failed", logger.StringField("model", model), logger.ErrorField(err))
			errs = append(errs, fmt.Errorf("%s: %w", model, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		top, ok := topLabel(labels)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: empty classification", model))
			continue
		}
		label, ok := mapSentimentLabel(top.Label)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: unknown label %q", model, top.Label))
			continue
		}
		return dto.Classification{Label: label, Score: clamp01(top.Score), Model: model}, nil
	}
	if len(errs) == 0 {
		return dto.Classification{}, errors.New("no sentiment model configured")
	}
	return dto.Classification{}, fmt.Errorf("failed to classify text: %w", errors.Join(errs...))
}

func (r *huggingFaceRepository) infer(ctx context.Context, model, text string) ([]dto.HuggingFaceLabel, error) {
	payload, err := json.Marshal(dto.HuggingFaceRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := strings.TrimRight(r.cfg.HuggingFace.BaseURL, "/") + "/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.HuggingFace.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.HuggingFace.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-OK response: %d - %s", resp.StatusCode, string(body))
	}

	// The API answers either [[{label,score}...]] or [{label,score}...].
	var nested [][]dto.HuggingFaceLabel
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, nil
		}
		return nested[0], nil
	}
	var flat []dto.HuggingFaceLabel
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return flat, nil
}

func topLabel(labels []dto.HuggingFaceLabel) (dto.HuggingFaceLabel, bool) {
	if len(labels) == 0 {
		return dto.HuggingFaceLabel{}, false
	}
	best := labels[0]
	for _, l := range labels[1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	return best, true
}

// mapSentimentLabel normalises the label vocabularies of the supported models.
func mapSentimentLabel(raw string) (dto.SentimentLabel, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "label_2", "positive", "pos", "4 stars", "5 stars":
		return dto.SentimentPositive, true
	case "label_0", "negative", "neg", "1 star", "2 stars":
		return dto.SentimentNegative, true
	case "label_1", "neutral", "neu", "3 stars":
		return dto.SentimentNeutral, true
	}
	return "", false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
