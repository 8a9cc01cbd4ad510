package repository

import (
	"context"
	"errors"

	"golang-stock-advisor/internal/entity"

	"gorm.io/gorm"
)

// NewStockRecommendationRepository creates a new instance of StockRecommendationRepository.
func NewStockRecommendationRepository(db *gorm.DB) StockRecommendationRepository {
	return &stockRecommendationRepository{
		db: db,
	}
}

type stockRecommendationRepository struct {
	db *gorm.DB
}

// Create saves a new recommendation.
func (r *stockRecommendationRepository) Create(ctx context.Context, rec *entity.StockRecommendation) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *stockRecommendationRepository) FindByUser(ctx context.Context, userID string, offset, limit int) ([]entity.StockRecommendation, int64, error) {
	var (
		total int64
		recs  []entity.StockRecommendation
	)

	byUser := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&entity.StockRecommendation{}).Where("user_id = ?", userID)
	}
	if err := byUser().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := byUser().Omit("data").Order("created_at desc").Offset(offset).Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (r *stockRecommendationRepository) FindLatest(ctx context.Context, userID, ticker string) (*entity.StockRecommendation, error) {
	var rec entity.StockRecommendation
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND ticker = ?", userID, ticker).
		Order("created_at desc").
		First(&rec)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &rec, nil
}

// Delete soft-deletes a recommendation owned by the user and reports whether a row matched.
func (r *stockRecommendationRepository) Delete(ctx context.Context, userID string, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.StockRecommendation{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
