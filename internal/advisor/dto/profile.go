package dto

import "time"

type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

func (r RiskTolerance) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

type TimeHorizon string

const (
	HorizonWeeks  TimeHorizon = "weeks"
	HorizonMonths TimeHorizon = "months"
	HorizonYears  TimeHorizon = "years"
)

func (h TimeHorizon) Valid() bool {
	return h == HorizonWeeks || h == HorizonMonths || h == HorizonYears
}

// UserProfile is the caller's financial situation. Amounts are monthly except Savings.
type UserProfile struct {
	MonthlyIncome    float64          `json:"monthly_income"`
	MonthlyExpenses  float64          `json:"monthly_expenses"`
	Savings          float64          `json:"savings"`
	RiskTolerance    RiskTolerance    `json:"risk_tolerance"`
	CurrentPortfolio map[string]int64 `json:"current_portfolio,omitempty"`
	TimeHorizon      TimeHorizon      `json:"time_horizon"`
}

// CategoryScores are the 0..100 sub-scores of a financial health assessment.
type CategoryScores struct {
	IncomeExpenseRatio    float64 `json:"income_expense_ratio"`
	SavingsRate           float64 `json:"savings_rate"`
	EmergencyFundAdequacy float64 `json:"emergency_fund_adequacy"`
	DebtToIncomeRatio     float64 `json:"debt_to_income_ratio"`
	SpendingEfficiency    float64 `json:"spending_efficiency"`
}

// FinancialHealthPrior is a previously computed health assessment for the user.
type FinancialHealthPrior struct {
	OverallScore    float64        `json:"overall_score"`
	CategoryScores  CategoryScores `json:"category_scores"`
	PriorityActions []string       `json:"priority_actions"`
	AssessedAt      time.Time      `json:"assessed_at"`
}

// Health score sources.
const (
	HealthSourcePrior        = "prior"
	HealthSourceHeuristic    = "heuristic"
	HealthSourceConservative = "conservative"
)

// RiskAssessment is the price-independent part of the risk budget.
type RiskAssessment struct {
	DisposableIncome     float64        `json:"disposable_income"`
	SafeAllocation       float64        `json:"safe_allocation"`
	FinancialHealthScore float64        `json:"financial_health_score"`
	CategoryScores       CategoryScores `json:"category_scores"`
	RiskFactors          []string       `json:"risk_factors"`
	Recommendations      []string       `json:"recommendations"`
	HealthSource         string         `json:"health_source"`
}

// RiskBudget bounds what the user can afford at the current price.
// MaxQuantity is floor(SafeAllocation / PricePerShare) and never negative.
type RiskBudget struct {
	RiskAssessment
	PricePerShare float64 `json:"price_per_share"`
	MaxQuantity   int64   `json:"max_quantity"`
}
