package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/internal/advisor/repository"
	"golang-stock-advisor/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// NewsService collects recent articles about a ticker.
type NewsService interface {
	Fetch(ctx context.Context, ticker, companyName string) (dto.NewsBatch, []dto.Degradation, error)
}

type newsService struct {
	repo        repository.NewsRepository
	logger      *logger.Logger
	maxArticles int
	concurrency int
	now         func() time.Time
}

// NewNewsService creates a NewsService. repo may be nil, in which case canned articles are used.
func NewNewsService(repo repository.NewsRepository, log *logger.Logger, maxArticles, concurrency int, now func() time.Time) NewsService {
	if maxArticles <= 0 {
		maxArticles = 10
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if now == nil {
		now = time.Now
	}
	return &newsService{repo: repo, logger: log, maxArticles: maxArticles, concurrency: concurrency, now: now}
}

// BuildNewsQueries returns the search variants for a ticker, in a fixed order.
func BuildNewsQueries(ticker, companyName string) []string {
	return []string{
		ticker + " earnings",
		companyName + " news",
		ticker + " stock news",
		companyName + " financial results",
		ticker + " product launch",
		ticker + " regulatory",
		ticker + " lawsuit",
		companyName + " partnership",
		ticker + " analyst rating",
	}
}

func (s *newsService) Fetch(ctx context.Context, ticker, companyName string) (dto.NewsBatch, []dto.Degradation, error) {
	now := s.now()
	queries := BuildNewsQueries(ticker, companyName)
	batch := dto.NewsBatch{
		Ticker:      ticker,
		CompanyName: companyName,
		Queries:     queries,
		FetchedAt:   now,
	}

	if s.repo == nil {
		s.logger.WarnContext(ctx, "No news provider configured, using canned articles", logger.StringField("ticker", ticker))
		batch.Articles = FallbackArticles(ticker, companyName, now)
		batch.Fallback = true
		return batch, []dto.Degradation{degrade(StageNews, "news provider not configured, using sample articles")}, nil
	}

	// Each query writes its own slot so collection order stays stable.
	perQuery := make([][]dto.NewsSearchResult, len(queries))
	failures := make([]error, len(queries))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			results, err := s.repo.Search(ctx, q)
			if err != nil {
				s.logger.WarnContext(ctx, "Failed to fetch news for query", logger.StringField("query", q), logger.ErrorField(err))
				failures[i] = err
				return nil
			}
			perQuery[i] = results
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return dto.NewsBatch{}, nil, ctx.Err()
	}

	failed := 0
	var lastErr error
	for _, err := range failures {
		if err != nil {
			failed++
			lastErr = err
		}
	}
	if failed == len(queries) {
		s.logger.WarnContext(ctx, "All news queries failed, using canned articles", logger.StringField("ticker", ticker), logger.ErrorField(lastErr))
		batch.Articles = FallbackArticles(ticker, companyName, now)
		batch.Fallback = true
		return batch, []dto.Degradation{degrade(StageNews, "news search failed (%v), using sample articles", lastErr)}, nil
	}

	batch.Articles = MergeArticles(perQuery, s.maxArticles)
	s.logger.InfoContext(ctx, "Fetched news articles",
		logger.StringField("ticker", ticker),
		logger.IntField("articles", len(batch.Articles)),
		logger.IntField("failed_queries", failed))

	var degradations []dto.Degradation
	if failed > 0 {
		degradations = append(degradations, degrade(StageNews, "%d of %d news queries failed", failed, len(queries)))
	}
	return batch, degradations, nil
}

// MergeArticles dedups by URL (first occurrence wins), orders newest first and keeps at most limit.
func MergeArticles(perQuery [][]dto.NewsSearchResult, limit int) []dto.NewsArticle {
	seen := make(map[string]struct{})
	articles := make([]dto.NewsArticle, 0)
	for _, results := range perQuery {
		for _, r := range results {
			key := strings.TrimSpace(r.Link)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			articles = append(articles, dto.NewsArticle{
				ID:          ArticleID(key),
				Title:       r.Title,
				URL:         key,
				PublishedAt: r.PublishedAt,
				Source:      r.Source,
				Snippet:     r.Snippet,
			})
		}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles
}

// ArticleID is the hex md5 of the article URL.
func ArticleID(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// FallbackArticles returns a fixed set of sample articles used when no news source answers.
func FallbackArticles(ticker, companyName string, now time.Time) []dto.NewsArticle {
	lower := strings.ToLower(ticker)
	daysAgo := func(d int) time.Time { return now.Add(-time.Duration(d) * 24 * time.Hour) }

	articles := []dto.NewsArticle{
		{
			Title:       fmt.Sprintf("%s Reports Strong Quarterly Earnings", companyName),
			URL:         fmt.Sprintf("https://example.com/news/%s-earnings", lower),
			PublishedAt: daysAgo(2),
			Source:      "Financial Times",
			Snippet:     fmt.Sprintf("%s exceeded analyst expectations with robust quarterly performance.", companyName),
		},
		{
			Title:       fmt.Sprintf("%s Stock Analysis: Technical Indicators Show Bullish Trend", ticker),
			URL:         fmt.Sprintf("https://example.com/analysis/%s-technical", lower),
			PublishedAt: daysAgo(3),
			Source:      "MarketWatch",
			Snippet:     fmt.Sprintf("Technical analysis suggests positive momentum for %s stock.", ticker),
		},
		{
			Title:       fmt.Sprintf("%s Announces New Strategic Partnership", companyName),
			URL:         fmt.Sprintf("https://example.com/news/%s-partnership", lower),
			PublishedAt: daysAgo(5),
			Source:      "Reuters",
			Snippet:     fmt.Sprintf("%s has entered into a strategic partnership to expand market reach.", companyName),
		},
		{
			Title:       fmt.Sprintf("Analyst Upgrades %s to Buy Rating", ticker),
			URL:         fmt.Sprintf("https://example.com/ratings/%s-upgrade", lower),
			PublishedAt: daysAgo(7),
			Source:      "Bloomberg",
			Snippet:     fmt.Sprintf("Leading analysts have upgraded %s stock to a buy rating.", ticker),
		},
		{
			Title:       fmt.Sprintf("%s Faces Regulatory Challenges in Key Markets", companyName),
			URL:         fmt.Sprintf("https://example.com/news/%s-regulatory", lower),
			PublishedAt: daysAgo(10),
			Source:      "Wall Street Journal",
			Snippet:     fmt.Sprintf("%s encounters regulatory headwinds in several important markets.", companyName),
		},
	}
	for i := range articles {
		articles[i].ID = ArticleID(articles[i].URL)
	}
	return articles
}
