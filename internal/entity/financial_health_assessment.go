package entity

import (
	"time"

	"github.com/lib/pq"
)

// FinancialHealthAssessment is written by the health scoring engine and read as a prior.
type FinancialHealthAssessment struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	UserID                string         `gorm:"type:varchar(100);not null;index" json:"user_id"`
	OverallScore          float64        `json:"overall_score"`
	IncomeExpenseRatio    float64        `json:"income_expense_ratio"`
	SavingsRate           float64        `json:"savings_rate"`
	EmergencyFundAdequacy float64        `json:"emergency_fund_adequacy"`
	DebtToIncomeRatio     float64        `json:"debt_to_income_ratio"`
	SpendingEfficiency    float64        `json:"spending_efficiency"`
	PriorityActions       pq.StringArray `gorm:"type:text[]" json:"priority_actions"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (FinancialHealthAssessment) TableName() string {
	return "financial_health_assessments"
}
