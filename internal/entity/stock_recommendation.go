package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StockRecommendation is a persisted pipeline result.
type StockRecommendation struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            string         `gorm:"type:varchar(100);not null;index" json:"user_id"`
	Ticker            string         `gorm:"type:varchar(20);not null" json:"ticker"`
	CompanyName       string         `gorm:"type:varchar(255)" json:"company_name"`
	Decision          string         `gorm:"type:varchar(10);not null" json:"decision"`
	Confidence        float64        `json:"confidence"`
	SuggestedQuantity int64          `json:"suggested_quantity"`
	Source            string         `gorm:"type:varchar(20)" json:"source"`
	SentimentScore    float64        `json:"sentiment_score"`
	Caveats           pq.StringArray `gorm:"type:text[]" json:"caveats"`
	Data              datatypes.JSON `gorm:"type:jsonb" json:"data"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"deleted_at"`
}

func (StockRecommendation) TableName() string {
	return "stock_recommendations"
}
