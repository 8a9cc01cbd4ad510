package repository

import (
	"context"
	"errors"

	"golang-stock-advisor/internal/entity"

	"gorm.io/gorm"
)

// NewFinancialHealthRepository creates a new instance of FinancialHealthRepository.
func NewFinancialHealthRepository(db *gorm.DB) FinancialHealthRepository {
	return &financialHealthRepository{db: db}
}

type financialHealthRepository struct {
	db *gorm.DB
}

// GetLatest returns the newest assessment for the user, or nil when none exists.
func (r *financialHealthRepository) GetLatest(ctx context.Context, userID string) (*entity.FinancialHealthAssessment, error) {
	var a entity.FinancialHealthAssessment
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").First(&a)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &a, nil
}
