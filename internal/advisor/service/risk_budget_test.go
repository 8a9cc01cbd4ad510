package service

import (
	"context"
	"math"
	"testing"
	"time"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/internal/entity"
	"golang-stock-advisor/pkg/logger"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessRiskHeuristic(t *testing.T) {
	a, err := AssessRisk(sampleProfile, nil)
	require.NoError(t, err)

	assert.Equal(t, 2000.0, a.DisposableIncome)
	assert.Equal(t, 2000.0, a.SafeAllocation)
	assert.Equal(t, 90.0, a.FinancialHealthScore)
	assert.Equal(t, dto.HealthSourceHeuristic, a.HealthSource)
	assert.Equal(t, 80.0, a.CategoryScores.IncomeExpenseRatio)
	assert.Equal(t, 100.0, a.CategoryScores.EmergencyFundAdequacy)
	assert.Empty(t, a.RiskFactors)
	assert.Equal(t, []string{"Consider building emergency fund", "Maintain current savings rate"}, a.Recommendations)

	budget := WithPrice(a, 150)
	assert.Equal(t, int64(13), budget.MaxQuantity)
	assert.Equal(t, 150.0, budget.PricePerShare)
}

func TestAssessRiskStrainedProfile(t *testing.T) {
	p := dto.UserProfile{
		MonthlyIncome:   2000,
		MonthlyExpenses: 2500,
		Savings:         500,
		RiskTolerance:   dto.RiskLow,
		TimeHorizon:     dto.HorizonWeeks,
	}
	a, err := AssessRisk(p, nil)
	require.NoError(t, err)

	assert.Equal(t, -500.0, a.DisposableIncome)
	assert.Equal(t, 0.0, a.SafeAllocation)
	assert.Equal(t, 25.0, a.FinancialHealthScore)
	assert.Equal(t, []string{
		"Low overall financial health score",
		"Income-expense ratio needs improvement",
		"Insufficient emergency fund",
	}, a.RiskFactors)
	assert.Contains(t, a.Recommendations, improveHealthAdvice)
	assert.Equal(t, int64(0), WithPrice(a, 100).MaxQuantity)
}

func TestAssessRiskUsesPrior(t *testing.T) {
	prior := &dto.FinancialHealthPrior{
		OverallScore:    60,
		CategoryScores:  dto.CategoryScores{IncomeExpenseRatio: 70, SavingsRate: 40, EmergencyFundAdequacy: 80},
		PriorityActions: []string{"Pay down card debt"},
	}
	a, err := AssessRisk(sampleProfile, prior)
	require.NoError(t, err)
	assert.Equal(t, dto.HealthSourcePrior, a.HealthSource)
	assert.Equal(t, 60.0, a.FinancialHealthScore)
	assert.Equal(t, []string{"Savings rate below recommended levels"}, a.RiskFactors)
	assert.Equal(t, []string{"Pay down card debt", improveHealthAdvice}, a.Recommendations)
}

func TestAssessRiskAllocationNeverExceedsSavingsCap(t *testing.T) {
	for _, risk := range []dto.RiskTolerance{dto.RiskLow, dto.RiskMedium, dto.RiskHigh} {
		for _, horizon := range []dto.TimeHorizon{dto.HorizonWeeks, dto.HorizonMonths, dto.HorizonYears} {
			p := dto.UserProfile{MonthlyIncome: 50000, MonthlyExpenses: 1000, Savings: 12345, RiskTolerance: risk, TimeHorizon: horizon}
			a, err := AssessRisk(p, nil)
			require.NoError(t, err)
			assert.LessOrEqual(t, a.SafeAllocation, p.Savings*0.2)
			assert.GreaterOrEqual(t, a.SafeAllocation, 0.0)
			assert.GreaterOrEqual(t, WithPrice(a, 7.5).MaxQuantity, int64(0))
		}
	}
}

func TestAssessRiskRejectsNonFiniteProfile(t *testing.T) {
	p := sampleProfile
	p.Savings = math.Inf(1)
	_, err := AssessRisk(p, nil)
	assert.Error(t, err)

	c := ConservativeAssessment(p)
	assert.Equal(t, dto.HealthSourceConservative, c.HealthSource)
	assert.Equal(t, 0.0, c.SafeAllocation)
	assert.Equal(t, 50.0, c.FinancialHealthScore)
}

func TestWithPriceGuardsNonPositivePrice(t *testing.T) {
	a := dto.RiskAssessment{SafeAllocation: 1000}
	assert.Equal(t, int64(0), WithPrice(a, 0).MaxQuantity)
	assert.Equal(t, int64(0), WithPrice(a, -5).MaxQuantity)
	assert.Equal(t, int64(0), WithPrice(a, math.NaN()).MaxQuantity)
	assert.Equal(t, int64(3), WithPrice(a, 333.33).MaxQuantity)
}

func TestRiskBudgetCalculatorPriorLookup(t *testing.T) {
	t.Run("uses stored assessment", func(t *testing.T) {
		repo := &fakeHealthRepo{row: &entity.FinancialHealthAssessment{
			UserID:                "u1",
			OverallScore:          82,
			IncomeExpenseRatio:    90,
			SavingsRate:           85,
			EmergencyFundAdequacy: 70,
			PriorityActions:       pq.StringArray{"Rebalance portfolio"},
		}}
		calc := NewRiskBudgetCalculator(repo, logger.NewNop(), time.Second)

		a, degradations, err := calc.Assess(context.Background(), "u1", sampleProfile)
		require.NoError(t, err)
		assert.Empty(t, degradations)
		assert.Equal(t, dto.HealthSourcePrior, a.HealthSource)
		assert.Equal(t, 82.0, a.FinancialHealthScore)
		assert.Equal(t, []string{"Rebalance portfolio"}, a.Recommendations)
	})

	t.Run("lookup failure degrades to heuristic", func(t *testing.T) {
		calc := NewRiskBudgetCalculator(&fakeHealthRepo{err: errProvider}, logger.NewNop(), time.Second)

		a, degradations, err := calc.Assess(context.Background(), "u1", sampleProfile)
		require.NoError(t, err)
		assert.Equal(t, dto.HealthSourceHeuristic, a.HealthSource)
		require.Len(t, degradations, 1)
		assert.Equal(t, StageRisk, degradations[0].Stage)
	})

	t.Run("no stored assessment", func(t *testing.T) {
		calc := NewRiskBudgetCalculator(&fakeHealthRepo{}, logger.NewNop(), time.Second)

		a, degradations, err := calc.Assess(context.Background(), "u1", sampleProfile)
		require.NoError(t, err)
		assert.Empty(t, degradations)
		assert.Equal(t, dto.HealthSourceHeuristic, a.HealthSource)
	})
}
