package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateRules(t *testing.T) {
	tests := []struct {
		name       string
		signals    dto.MarketSignals
		ws         float64
		profile    dto.UserProfile
		decision   dto.Decision
		score      float64
		confidence float64
	}{
		{
			name:       "strong buy for aggressive long horizon",
			signals:    dto.MarketSignals{LatestPrice: 120, SMA50: 110, SMA200: 100, RSI14: 25, Trend: dto.TrendUp},
			ws:         0.5,
			profile:    dto.UserProfile{RiskTolerance: dto.RiskHigh, TimeHorizon: dto.HorizonYears},
			decision:   dto.DecisionBuy,
			score:      0.792,
			confidence: 0.896,
		},
		{
			name:       "sell on bearish setup",
			signals:    dto.MarketSignals{LatestPrice: 80, SMA50: 90, SMA200: 100, RSI14: 75, Trend: dto.TrendDown},
			ws:         -0.5,
			profile:    dto.UserProfile{RiskTolerance: dto.RiskMedium, TimeHorizon: dto.HorizonMonths},
			decision:   dto.DecisionSell,
			score:      -0.6,
			confidence: 0.8,
		},
		{
			name:       "hold when signals are flat",
			signals:    dto.MarketSignals{LatestPrice: 100, SMA50: 100, SMA200: 100, RSI14: 50, Trend: dto.TrendFlat},
			profile:    dto.UserProfile{RiskTolerance: dto.RiskLow, TimeHorizon: dto.HorizonWeeks},
			decision:   dto.DecisionHold,
			confidence: 0.6,
		},
		{
			name:       "short horizon dampens a buy into hold",
			signals:    dto.MarketSignals{LatestPrice: 120, SMA50: 110, SMA200: 100, RSI14: 50, Trend: dto.TrendUp},
			ws:         0.2,
			profile:    dto.UserProfile{RiskTolerance: dto.RiskLow, TimeHorizon: dto.HorizonWeeks},
			decision:   dto.DecisionHold,
			score:      0.38 * 0.8 * 0.7,
			confidence: 0.6,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateRules(tt.signals, tt.ws, tt.profile)
			require.NoError(t, err)
			assert.Equal(t, tt.decision, got.Decision)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
		})
	}
}

func TestEvaluateRulesRejectsBadInput(t *testing.T) {
	_, err := EvaluateRules(dto.MarketSignals{LatestPrice: 0}, 0, sampleProfile)
	assert.Error(t, err)
	_, err = EvaluateRules(dto.MarketSignals{LatestPrice: 10, RSI14: math.NaN()}, 0, sampleProfile)
	assert.Error(t, err)
}

func TestParseAIDecision(t *testing.T) {
	d, err := ParseAIDecision("```json\n{\"recommendation\":\"buy\",\"confidence\":1.4,\"rationale\":\" Strong momentum \"}\n```")
	require.NoError(t, err)
	assert.Equal(t, dto.DecisionBuy, d.Decision)
	assert.Equal(t, 1.0, *d.Confidence)
	assert.Equal(t, "Strong momentum", d.Rationale)

	d, err = ParseAIDecision(`Here you go: {"recommendation":"SELL","confidence":-0.2,"rationale":"Weak"} hope it helps`)
	require.NoError(t, err)
	assert.Equal(t, dto.DecisionSell, d.Decision)
	assert.Equal(t, 0.0, *d.Confidence)

	for _, raw := range []string{
		"no json here",
		`{"recommendation":"BUY","confidence":0.7}`,
		`{"recommendation":"MAYBE","confidence":0.7,"rationale":"x"}`,
		`{"recommendation":"HOLD","rationale":"x"}`,
		`{"recommendation":"HOLD","confidence":"high","rationale":"x"}`,
	} {
		_, err := ParseAIDecision(raw)
		var perr *ParseError
		assert.True(t, errors.As(err, &perr), raw)
	}
}

func synthesisInput() SynthesisInput {
	signals := dto.MarketSignals{LatestPrice: 100, SMA50: 95, SMA200: 90, RSI14: 55, Trend: dto.TrendUp, Momentum: dto.MomentumNeutral}
	return SynthesisInput{
		Ticker:      "AAPL",
		CompanyName: "Apple Inc.",
		Profile:     sampleProfile,
		Signals:     signals,
		Indicators:  dto.Indicators{SMA50: 95, SMA200: 90, RSI14: 55, MACD: dto.MACD{Histogram: 0.4}},
		Sentiment: dto.SentimentReport{
			Results: []dto.SentimentResult{
				{ArticleID: "a", Title: "Apple beats estimates", Label: dto.SentimentPositive, Score: 0.9},
				{ArticleID: "b", Title: "Apple faces probe", Label: dto.SentimentNegative, Score: 0.6},
			},
			Aggregate: dto.SentimentAggregate{PositiveFraction: 0.5, NegativeFraction: 0.5, WeightedScore: 0.15},
		},
		Budget: dto.RiskBudget{
			RiskAssessment: dto.RiskAssessment{SafeAllocation: 1000, FinancialHealthScore: 90},
			PricePerShare:  100,
			MaxQuantity:    10,
		},
	}
}

func TestSynthesizerAIPathCapsQuantity(t *testing.T) {
	ai := &fakeAI{text: `{"recommendation":"BUY","confidence":0.83,"rationale":"Momentum and sentiment align.","suggested_quantity":500}`}
	s := NewSynthesizer(ai, logger.NewNop(), 0)

	res, err := s.Synthesize(context.Background(), synthesisInput())
	require.NoError(t, err)
	assert.Equal(t, common.SourceAI, res.Source)
	assert.Equal(t, dto.DecisionBuy, res.Decision)
	assert.Equal(t, 0.83, res.Confidence)
	assert.Equal(t, int64(10), res.SuggestedQuantity)
	assert.Equal(t, 1, ai.calls)
	assert.Empty(t, res.Degradations)

	assert.Len(t, res.Evidence, 6)
	assert.Equal(t, dto.EvidenceNews, res.Evidence[0].Type)
	assert.Equal(t, "RSI14", res.Evidence[2].Name)
	assert.Equal(t, "neutral", res.Evidence[2].Interpretation)
	assert.Equal(t, "price above SMA50", res.Evidence[3].Interpretation)
	assert.Equal(t, "bullish momentum", res.Evidence[5].Interpretation)

	assert.Equal(t, []string{CaveatInsufficientNews, CaveatDataLatency, CaveatPastPerformance, CaveatNotAdvice}, res.Caveats)
	assert.Contains(t, res.ActionableItems, "Set a stop-loss at 5-10% below entry price")
}

func TestSynthesizerFallsBackToRules(t *testing.T) {
	in := synthesisInput()
	in.Degradations = []dto.Degradation{{Stage: StageMarket, Reason: "generated prices"}}
	s := NewSynthesizer(&fakeAI{text: "I cannot answer that"}, logger.NewNop(), 0)

	res, err := s.Synthesize(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, common.SourceRuleBased, res.Source)
	assert.Equal(t, int64(10), res.SuggestedQuantity)
	require.Len(t, res.Degradations, 2)
	assert.Equal(t, StageSynthesis, res.Degradations[1].Stage)
	assert.Contains(t, res.Caveats, "Degraded market data: generated prices")
	assert.Len(t, res.Caveats, 6)
	assert.Contains(t, res.Rationale, "Based on rule-based analysis")
}

func TestSynthesizerFailsWhenRulesCannotRun(t *testing.T) {
	in := synthesisInput()
	in.Signals.LatestPrice = 0
	s := NewSynthesizer(&fakeAI{err: errProvider}, logger.NewNop(), 0)

	_, err := s.Synthesize(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, errProvider)
}

func TestQuantityCap(t *testing.T) {
	b := dto.RiskBudget{RiskAssessment: dto.RiskAssessment{SafeAllocation: 1000}, MaxQuantity: 20}
	assert.Equal(t, int64(10), QuantityCap(b, 100))
	b.MaxQuantity = 4
	assert.Equal(t, int64(4), QuantityCap(b, 100))
	assert.Equal(t, int64(0), QuantityCap(b, 0))
}

func TestActionableItems(t *testing.T) {
	items := ActionableItems(dto.DecisionBuy, dto.RiskLow, dto.MarketSignals{RSI14: 75})
	assert.Equal(t, []string{
		"Consider dollar-cost averaging to reduce timing risk",
		"Set a stop-loss at 5-10% below entry price",
		"Start with a small position size",
		"RSI indicates overbought conditions - consider waiting for pullback",
	}, items)

	items = ActionableItems(dto.DecisionHold, dto.RiskHigh, dto.MarketSignals{RSI14: 20})
	assert.Len(t, items, 3)
	assert.Equal(t, "RSI indicates oversold conditions - potential buying opportunity", items[2])
}

func TestBuildCaveatsZeroArticles(t *testing.T) {
	caveats := BuildCaveats(0, nil)
	assert.Equal(t, []string{CaveatNoNews, CaveatInsufficientNews, CaveatDataLatency, CaveatPastPerformance, CaveatNotAdvice}, caveats)
	assert.Equal(t, []string{CaveatDataLatency, CaveatPastPerformance, CaveatNotAdvice}, BuildCaveats(5, nil))
}
