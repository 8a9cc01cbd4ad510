package repository

import (
	"context"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/internal/entity"
)

// NewsRepository searches a news source for a single query.
type NewsRepository interface {
	Name() string
	Search(ctx context.Context, query string) ([]dto.NewsSearchResult, error)
}

// SentimentRepository classifies a piece of text with a hosted model.
type SentimentRepository interface {
	Classify(ctx context.Context, text string) (dto.Classification, error)
}

// MarketDataRepository provides daily prices and technical indicators.
type MarketDataRepository interface {
	DailySeries(ctx context.Context, ticker string) ([]dto.OHLCV, error)
	Indicator(ctx context.Context, ticker, function string, params map[string]string) (*dto.IndicatorPoint, error)
}

// AIRepository sends a prompt to a generative model and returns its raw text.
type AIRepository interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// StockRecommendationRepository persists pipeline results per user.
type StockRecommendationRepository interface {
	Create(ctx context.Context, rec *entity.StockRecommendation) error
	FindByUser(ctx context.Context, userID string, offset, limit int) ([]entity.StockRecommendation, int64, error)
	FindLatest(ctx context.Context, userID, ticker string) (*entity.StockRecommendation, error)
	Delete(ctx context.Context, userID string, id uint) (bool, error)
}

// FinancialHealthRepository reads previously computed health assessments.
type FinancialHealthRepository interface {
	GetLatest(ctx context.Context, userID string) (*entity.FinancialHealthAssessment, error)
}
