package dto

import "time"

// NewsArticle is a single deduplicated article about the ticker.
type NewsArticle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`
	Snippet     string    `json:"snippet"`
}

// NewsBatch is the output of the news stage.
type NewsBatch struct {
	Ticker      string        `json:"ticker"`
	CompanyName string        `json:"company_name"`
	Queries     []string      `json:"queries"`
	Articles    []NewsArticle `json:"articles"`
	FetchedAt   time.Time     `json:"fetched_at"`
	Fallback    bool          `json:"fallback"`
}

// NewsSearchResult is one raw hit returned by a news provider before dedup.
type NewsSearchResult struct {
	Title       string
	Link        string
	Snippet     string
	Source      string
	PublishedAt time.Time
}
