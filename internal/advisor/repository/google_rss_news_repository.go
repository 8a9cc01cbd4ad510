package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
)

const maxSnippetLength = 300

type googleRSSNewsRepository struct {
	cfg        *config.Config
	logger     *logger.Logger
	httpClient *http.Client
	now        func() time.Time
}

// NewGoogleRSSNewsRepository creates a news source backed by the Google News RSS search feed.
func NewGoogleRSSNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	return &googleRSSNewsRepository{
		cfg:    cfg,
		logger: log,
		httpClient: &http.Client{
			Timeout: timeoutOrDefault(cfg.Advisor.NewsTimeout, 10*time.Second),
		},
		now: time.Now,
	}
}

func (r *googleRSSNewsRepository) Name() string { return "google_rss" }

func (r *googleRSSNewsRepository) Search(ctx context.Context, query string) ([]dto.NewsSearchResult, error) {
	feedURL := fmt.Sprintf("%s?q=%s&hl=en-US&gl=US&ceid=US:en", r.cfg.News.RSSBaseURL, url.QueryEscape(query))

	fp := gofeed.NewParser()
	fp.Client = r.httpClient
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		r.logger.Error("Failed to parse RSS feed", logger.ErrorField(err), logger.StringField("query", query))
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	results := make([]dto.NewsSearchResult, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		title, source := splitPublisher(item.Title)
		if source == "" {
			source = hostnameOf(item.Link)
		}

		published := r.now()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		snippet := htmlToText(item.Description)
		if snippet == "" && r.cfg.News.FetchContent {
			content, err := r.fetchContent(ctx, item.Link)
			if err != nil {
				r.logger.Warn("Failed to fetch article content", logger.ErrorField(err), logger.StringField("url", item.Link))
			} else {
				snippet = content
			}
		}

		results = append(results, dto.NewsSearchResult{
			Title:       utils.SafeText(title),
			Link:        item.Link,
			Snippet:     utils.Truncate(snippet, maxSnippetLength),
			Source:      source,
			PublishedAt: published,
		})
	}

	r.logger.Debug("RSS search completed", logger.StringField("query", query), logger.IntField("results", len(results)))
	return results, nil
}

// fetchContent downloads the article and extracts its readable text.
func (r *googleRSSNewsRepository) fetchContent(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; stock-advisor/1.0)")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK response fetching article: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := readability.NewDocument(string(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse news content: %w", err)
	}
	return htmlToText(doc.Content()), nil
}

// splitPublisher separates Google News' "Headline - Publisher" titles.
func splitPublisher(title string) (string, string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 || idx+3 >= len(title) {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}

func htmlToText(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return utils.SafeText(content)
	}
	return utils.SafeText(doc.Text())
}
