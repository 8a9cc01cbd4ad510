package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/utils"

	"golang.org/x/time/rate"
)

type serperNewsRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	now            func() time.Time
}

// NewSerperNewsRepository creates a news source backed by the Serper search API.
func NewSerperNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	return &serperNewsRepository{
		client: &http.Client{
			Timeout: timeoutOrDefault(cfg.Advisor.NewsTimeout, 15*time.Second),
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.Serper.MaxRequestPerMinute, cfg.Serper.MaxRequestPerMinute),
		now:            time.Now,
	}
}

func (r *serperNewsRepository) Name() string { return "serper" }

func (r *serperNewsRepository) Search(ctx context.Context, query string) ([]dto.NewsSearchResult, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.SerperSearchRequest{
		Q:    query,
		Num:  10,
		Type: "search",
		TBS:  r.cfg.Serper.TimeRange,
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Serper.BaseURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", r.cfg.Serper.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Serper API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		r.logger.Error("Received non-OK response from Serper API", logger.IntField("status_code", resp.StatusCode), logger.StringField("query", query))
		return nil, fmt.Errorf("received non-OK response from Serper API: %d - %s", resp.StatusCode, string(body))
	}

	var serperResp dto.SerperSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&serperResp); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	now := r.now()
	items := append(serperResp.News, serperResp.Organic...)
	results := make([]dto.NewsSearchResult, 0, len(items))
	for _, item := range items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		source := item.Source
		if source == "" {
			source = hostnameOf(item.Link)
		}
		results = append(results, dto.NewsSearchResult{
			Title:       utils.SafeText(item.Title),
			Link:        item.Link,
			Snippet:     utils.SafeText(item.Snippet),
			Source:      source,
			PublishedAt: parseSerperDate(item.Date, now),
		})
	}

	r.logger.Debug("Serper search completed", logger.StringField("query", query), logger.IntField("results", len(results)))
	return results, nil
}

func hostnameOf(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

var relativeDatePattern = regexp.MustCompile(`^(\d+)\s+(second|minute|min|hour|day|week|month|year)s?\s+ago$`)

var absoluteDateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006-01-02",
	time.RFC3339,
}

// parseSerperDate understands "3 hours ago" style and a few absolute layouts.
// Unknown or empty dates resolve to now.
func parseSerperDate(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}
	if m := relativeDatePattern.FindStringSubmatch(strings.ToLower(raw)); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2] {
		case "second":
			return now.Add(-time.Duration(n) * time.Second)
		case "minute", "min":
			return now.Add(-time.Duration(n) * time.Minute)
		case "hour":
			return now.Add(-time.Duration(n) * time.Hour)
		case "day":
			return now.AddDate(0, 0, -n)
		case "week":
			return now.AddDate(0, 0, -7*n)
		case "month":
			return now.AddDate(0, -n, 0)
		case "year":
			return now.AddDate(-n, 0, 0)
		}
	}
	for _, layout := range absoluteDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return now
}

// newRequestLimiter spaces requests evenly over a minute, allowing bursts of up to burst
// requests. A non-positive rate disables limiting.
func newRequestLimiter(perMinute, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

func timeoutOrDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
