package service

import (
	"context"
	"fmt"
	"time"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/internal/advisor/repository"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/pkg/logger"

	"github.com/shopspring/decimal"
)

var (
	riskFactors = map[dto.RiskTolerance]decimal.Decimal{
		dto.RiskLow:    decimal.RequireFromString("0.05"),
		dto.RiskMedium: decimal.RequireFromString("0.10"),
		dto.RiskHigh:   decimal.RequireFromString("0.20"),
	}
	horizonFactors = map[dto.TimeHorizon]decimal.Decimal{
		dto.HorizonWeeks:  decimal.RequireFromString("0.5"),
		dto.HorizonMonths: decimal.NewFromInt(1),
		dto.HorizonYears:  decimal.NewFromInt(3),
	}
	conservativeFactor = riskFactors[dto.RiskLow]

	defaultPriorityActions = []string{"Consider building emergency fund", "Maintain current savings rate"}
)

const improveHealthAdvice = "Consider improving financial health before investing"

// RiskBudgetCalculator assesses how much a user can safely commit.
type RiskBudgetCalculator interface {
	// Assess computes the price-independent assessment. A failing prior lookup
	// degrades to the heuristic score; only cancellation is returned as an error.
	Assess(ctx context.Context, userID string, profile dto.UserProfile) (dto.RiskAssessment, []dto.Degradation, error)
}

type riskBudgetCalculator struct {
	repo    repository.FinancialHealthRepository
	logger  *logger.Logger
	timeout time.Duration
}

// NewRiskBudgetCalculator creates a RiskBudgetCalculator. repo may be nil when no store is configured.
func NewRiskBudgetCalculator(repo repository.FinancialHealthRepository, log *logger.Logger, timeout time.Duration) RiskBudgetCalculator {
	return &riskBudgetCalculator{repo: repo, logger: log, timeout: timeout}
}

func (c *riskBudgetCalculator) Assess(ctx context.Context, userID string, profile dto.UserProfile) (dto.RiskAssessment, []dto.Degradation, error) {
	var degradations []dto.Degradation

	prior, err := c.lookupPrior(ctx, userID)
	if err != nil {
		if ctx.Err() != nil {
			return dto.RiskAssessment{}, nil, ctx.Err()
		}
		c.logger.WarnContext(ctx, "Financial health lookup failed, using heuristic score",
			logger.StringField("user_id", userID), logger.ErrorField(err))
		degradations = append(degradations, degrade(StageRisk, "financial health history unavailable, score estimated from profile"))
	}

	assessment, err := AssessRisk(profile, prior)
	if err != nil {
		c.logger.WarnContext(ctx, "Risk assessment failed, using conservative allocation", logger.ErrorField(err))
		return ConservativeAssessment(profile), append(degradations, degrade(StageRisk, "risk assessment failed, using conservative allocation")), nil
	}
	return assessment, degradations, nil
}

func (c *riskBudgetCalculator) lookupPrior(ctx context.Context, userID string) (*dto.FinancialHealthPrior, error) {
	if c.repo == nil || userID == "" {
		return nil, nil
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	row, err := c.repo.GetLatest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest financial health assessment: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	return priorFromEntity(row), nil
}

func priorFromEntity(row *entity.FinancialHealthAssessment) *dto.FinancialHealthPrior {
	return &dto.FinancialHealthPrior{
		OverallScore: row.OverallScore,
		CategoryScores: dto.CategoryScores{
			IncomeExpenseRatio:    row.IncomeExpenseRatio,
			SavingsRate:           row.SavingsRate,
			EmergencyFundAdequacy: row.EmergencyFundAdequacy,
			DebtToIncomeRatio:     row.DebtToIncomeRatio,
			SpendingEfficiency:    row.SpendingEfficiency,
		},
		PriorityActions: append([]string(nil), row.PriorityActions...),
		AssessedAt:      row.CreatedAt,
	}
}

// AssessRisk computes the allocation bounds. When prior is nil the health score
// comes from the profile heuristic.
func AssessRisk(profile dto.UserProfile, prior *dto.FinancialHealthPrior) (dto.RiskAssessment, error) {
	if !isFinite(profile.MonthlyIncome, profile.MonthlyExpenses, profile.Savings) {
		return dto.RiskAssessment{}, fmt.Errorf("profile contains non-finite amounts")
	}
	riskFactor, ok := riskFactors[profile.RiskTolerance]
	if !ok {
		return dto.RiskAssessment{}, fmt.Errorf("unknown risk tolerance %q", profile.RiskTolerance)
	}
	horizonFactor, ok := horizonFactors[profile.TimeHorizon]
	if !ok {
		return dto.RiskAssessment{}, fmt.Errorf("unknown time horizon %q", profile.TimeHorizon)
	}

	income := decimal.NewFromFloat(profile.MonthlyIncome)
	expenses := decimal.NewFromFloat(profile.MonthlyExpenses)
	savings := decimal.NewFromFloat(profile.Savings)

	disposable := income.Sub(expenses)
	safe := decimal.Min(savings.Mul(riskFactor), disposable.Mul(horizonFactor))
	if safe.IsNegative() {
		safe = decimal.Zero
	}

	source := dto.HealthSourcePrior
	if prior == nil {
		source = dto.HealthSourceHeuristic
		prior = &dto.FinancialHealthPrior{
			OverallScore:    HeuristicHealthScore(profile),
			CategoryScores:  HeuristicCategoryScores(profile),
			PriorityActions: defaultPriorityActions,
		}
	}

	return dto.RiskAssessment{
		DisposableIncome:     disposable.InexactFloat64(),
		SafeAllocation:       safe.InexactFloat64(),
		FinancialHealthScore: clampScore(prior.OverallScore),
		CategoryScores:       prior.CategoryScores,
		RiskFactors:          extractRiskFactors(prior),
		Recommendations:      extractRecommendations(prior),
		HealthSource:         source,
	}, nil
}

// ConservativeAssessment is used when the profile cannot be assessed at all.
func ConservativeAssessment(profile dto.UserProfile) dto.RiskAssessment {
	disposable := decimal.NewFromFloat(finiteOrZero(profile.MonthlyIncome)).Sub(decimal.NewFromFloat(finiteOrZero(profile.MonthlyExpenses)))
	if disposable.IsNegative() {
		disposable = decimal.Zero
	}
	safe := decimal.NewFromFloat(finiteOrZero(profile.Savings)).Mul(conservativeFactor)
	if safe.IsNegative() {
		safe = decimal.Zero
	}
	return dto.RiskAssessment{
		DisposableIncome:     disposable.InexactFloat64(),
		SafeAllocation:       safe.InexactFloat64(),
		FinancialHealthScore: 50,
		RiskFactors:          []string{"Financial analysis unavailable - using conservative estimates"},
		Recommendations:      []string{"Consult with financial advisor", "Use conservative allocation"},
		HealthSource:         dto.HealthSourceConservative,
	}
}

// WithPrice derives the share quantity the allocation affords at price.
func WithPrice(assessment dto.RiskAssessment, price float64) dto.RiskBudget {
	budget := dto.RiskBudget{RiskAssessment: assessment, PricePerShare: price}
	budget.MaxQuantity = affordableShares(assessment.SafeAllocation, price)
	return budget
}

func affordableShares(allocation, price float64) int64 {
	if !isFinite(allocation, price) || price <= 0 || allocation <= 0 {
		return 0
	}
	return decimal.NewFromFloat(allocation).Div(decimal.NewFromFloat(price)).Floor().IntPart()
}

// HeuristicHealthScore scores a profile out of 100: income vs expenses (30),
// savings in months of income (25), risk tolerance (20), time horizon (15) and
// investment capacity (10).
func HeuristicHealthScore(p dto.UserProfile) float64 {
	score := 0.0
	disposable := p.MonthlyIncome - p.MonthlyExpenses

	switch {
	case disposable > 0:
		score += 30
	case disposable > -p.MonthlyIncome*0.1:
		score += 15
	}

	if p.MonthlyIncome > 0 {
		ratio := p.Savings / p.MonthlyIncome
		switch {
		case ratio >= 6:
			score += 25
		case ratio >= 3:
			score += 20
		case ratio >= 1:
			score += 10
		}
	}

	switch p.RiskTolerance {
	case dto.RiskLow:
		score += 20
	case dto.RiskMedium:
		score += 15
	default:
		score += 10
	}

	switch p.TimeHorizon {
	case dto.HorizonWeeks:
		score += 5
	case dto.HorizonYears:
		score += 15
	default:
		score += 10
	}

	switch {
	case disposable >= p.MonthlyIncome*0.1:
		score += 10
	case disposable >= p.MonthlyIncome*0.05:
		score += 5
	}

	return clampScore(score)
}

// HeuristicCategoryScores derives category scores from the profile alone.
func HeuristicCategoryScores(p dto.UserProfile) dto.CategoryScores {
	return dto.CategoryScores{
		IncomeExpenseRatio:    incomeExpenseScore(p),
		SavingsRate:           savingsRateScore(p),
		EmergencyFundAdequacy: emergencyFundScore(p),
		DebtToIncomeRatio:     0,
		SpendingEfficiency:    75,
	}
}

func incomeExpenseScore(p dto.UserProfile) float64 {
	if p.MonthlyExpenses <= 0 {
		if p.MonthlyIncome > 0 {
			return 100
		}
		return 20
	}
	ratio := p.MonthlyIncome / p.MonthlyExpenses
	switch {
	case ratio >= 2:
		return 100
	case ratio >= 1.5:
		return 80
	case ratio >= 1.2:
		return 60
	case ratio >= 1:
		return 40
	default:
		return 20
	}
}

func savingsRateScore(p dto.UserProfile) float64 {
	if p.MonthlyIncome <= 0 {
		return 20
	}
	rate := p.Savings / p.MonthlyIncome * 12
	switch {
	case rate >= 0.2:
		return 100
	case rate >= 0.15:
		return 80
	case rate >= 0.10:
		return 60
	case rate >= 0.05:
		return 40
	default:
		return 20
	}
}

func emergencyFundScore(p dto.UserProfile) float64 {
	if p.MonthlyExpenses <= 0 {
		if p.Savings > 0 {
			return 100
		}
		return 25
	}
	months := p.Savings / p.MonthlyExpenses
	switch {
	case months >= 6:
		return 100
	case months >= 3:
		return 75
	case months >= 1:
		return 50
	default:
		return 25
	}
}

func extractRiskFactors(prior *dto.FinancialHealthPrior) []string {
	factors := []string{}
	if prior.OverallScore < 50 {
		factors = append(factors, "Low overall financial health score")
	}
	if prior.CategoryScores.IncomeExpenseRatio < 50 {
		factors = append(factors, "Income-expense ratio needs improvement")
	}
	if prior.CategoryScores.SavingsRate < 50 {
		factors = append(factors, "Savings rate below recommended levels")
	}
	if prior.CategoryScores.EmergencyFundAdequacy < 50 {
		factors = append(factors, "Insufficient emergency fund")
	}
	return factors
}

func extractRecommendations(prior *dto.FinancialHealthPrior) []string {
	recs := append([]string{}, prior.PriorityActions...)
	if prior.OverallScore < 75 {
		recs = append(recs, improveHealthAdvice)
	}
	return recs
}

func clampScore(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
