package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/internal/advisor/repository"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/pkg/logger"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ErrRecommendationNotFound is returned when a user has no matching recommendation.
var ErrRecommendationNotFound = errors.New("recommendation not found")

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryService stores and reads a user's past recommendations.
type HistoryService interface {
	Save(ctx context.Context, userID string, rec *dto.Recommendation) error
	List(ctx context.Context, userID string, page, limit int) (*dto.HistoryPage, error)
	Latest(ctx context.Context, userID, ticker string) (*dto.Recommendation, error)
	Delete(ctx context.Context, userID string, id uint) error
}

type historyService struct {
	repo   repository.StockRecommendationRepository
	logger *logger.Logger
}

func NewHistoryService(repo repository.StockRecommendationRepository, log *logger.Logger) HistoryService {
	return &historyService{repo: repo, logger: log}
}

// Save persists rec and sets its ID.
func (s *historyService) Save(ctx context.Context, userID string, rec *dto.Recommendation) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}
	row := &entity.StockRecommendation{
		UserID:            userID,
		Ticker:            rec.Ticker,
		CompanyName:       rec.CompanyName,
		Decision:          string(rec.Decision),
		Confidence:        rec.Confidence,
		SuggestedQuantity: rec.SuggestedQuantity,
		Source:            rec.Source,
		SentimentScore:    rec.SentimentSummary.WeightedScore,
		Caveats:           pq.StringArray(rec.Caveats),
		Data:              datatypes.JSON(data),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return fmt.Errorf("failed to create stock recommendation: %w", err)
	}
	rec.ID = row.ID
	return nil
}

func (s *historyService) List(ctx context.Context, userID string, page, limit int) (*dto.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, total, err := s.repo.FindByUser(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock recommendations: %w", err)
	}

	items := make([]dto.HistoryItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.HistoryItem{
			ID:                r.ID,
			Ticker:            r.Ticker,
			CompanyName:       r.CompanyName,
			Decision:          dto.Decision(r.Decision),
			Confidence:        r.Confidence,
			SuggestedQuantity: r.SuggestedQuantity,
			Source:            r.Source,
			CreatedAt:         r.CreatedAt,
		})
	}
	return &dto.HistoryPage{Items: items, Page: page, Limit: limit, Total: total}, nil
}

func (s *historyService) Latest(ctx context.Context, userID, ticker string) (*dto.Recommendation, error) {
	row, err := s.repo.FindLatest(ctx, userID, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest stock recommendation: %w", err)
	}
	if row == nil {
		return nil, ErrRecommendationNotFound
	}

	var rec dto.Recommendation
	if err := json.Unmarshal(row.Data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored recommendation %d: %w", row.ID, err)
	}
	rec.ID = row.ID
	return &rec, nil
}

func (s *historyService) Delete(ctx context.Context, userID string, id uint) error {
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete stock recommendation: %w", err)
	}
	if !deleted {
		return ErrRecommendationNotFound
	}
	return nil
}
