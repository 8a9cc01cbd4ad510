package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/internal/advisor/repository"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/utils"
)

// Fixed caveat texts.
const (
	CaveatNoNews           = "No recent news available - analysis based primarily on technical indicators"
	CaveatInsufficientNews = "Limited news data may affect sentiment analysis accuracy"
	CaveatDataLatency      = "Market data may be delayed by 15-20 minutes"
	CaveatPastPerformance  = "Past performance does not guarantee future results"
	CaveatNotAdvice        = "This analysis is for informational purposes only, not financial advice"
)

var (
	riskMultipliers    = map[dto.RiskTolerance]float64{dto.RiskLow: 0.8, dto.RiskMedium: 1.0, dto.RiskHigh: 1.2}
	horizonMultipliers = map[dto.TimeHorizon]float64{dto.HorizonWeeks: 0.7, dto.HorizonMonths: 1.0, dto.HorizonYears: 1.1}
)

// SynthesisInput is everything the synthesizer needs from the upstream stages.
type SynthesisInput struct {
	Ticker      string
	CompanyName string
	Profile     dto.UserProfile
	Signals     dto.MarketSignals
	Indicators  dto.Indicators
	Sentiment   dto.SentimentReport
	Budget      dto.RiskBudget
	// Degradations recorded by earlier stages; each becomes a caveat.
	Degradations []dto.Degradation
}

// SynthesisResult is the decision plus its supporting material.
type SynthesisResult struct {
	Decision          dto.Decision
	Confidence        float64
	SuggestedQuantity int64
	Rationale         string
	Source            string
	ActionableItems   []string
	Evidence          []dto.EvidenceItem
	Caveats           []string
	// Degradations includes the input degradations plus any added during synthesis.
	Degradations []dto.Degradation
}

// RuleDecision is the output of the deterministic rule engine.
type RuleDecision struct {
	Score      float64
	Decision   dto.Decision
	Confidence float64
	Factors    []string
}

// Synthesizer turns the signal bundles into a final decision.
type Synthesizer interface {
	Synthesize(ctx context.Context, in SynthesisInput) (SynthesisResult, error)
}

type synthesizer struct {
	ai      repository.AIRepository
	logger  *logger.Logger
	timeout time.Duration
}

// NewSynthesizer creates a Synthesizer. A nil ai repository means the rule engine decides alone.
func NewSynthesizer(ai repository.AIRepository, log *logger.Logger, timeout time.Duration) Synthesizer {
	return &synthesizer{ai: ai, logger: log, timeout: timeout}
}

func (s *synthesizer) Synthesize(ctx context.Context, in SynthesisInput) (SynthesisResult, error) {
	degradations := append([]dto.Degradation{}, in.Degradations...)
	quantityCap := QuantityCap(in.Budget, in.Signals.LatestPrice)

	var (
		result SynthesisResult
		aiErr  error
	)
	if s.ai != nil {
		var decision dto.AIDecision
		decision, aiErr = s.generate(ctx, in)
		if aiErr == nil {
			quantity := quantityCap
			if decision.SuggestedQuantity != nil && *decision.SuggestedQuantity < quantity {
				quantity = *decision.SuggestedQuantity
			}
			if quantity < 0 {
				quantity = 0
			}
			result = SynthesisResult{
				Decision:          decision.Decision,
				Confidence:        *decision.Confidence,
				SuggestedQuantity: quantity,
				Rationale:         decision.Rationale,
				Source:            common.SourceAI,
			}
		} else {
			if ctx.Err() != nil {
				return SynthesisResult{}, ctx.Err()
			}
			s.logger.WarnContext(ctx, "AI recommendation failed, using rule-based fallback",
				logger.StringField("ticker", in.Ticker), logger.StringField("provider", s.ai.Name()), logger.ErrorField(aiErr))
			degradations = append(degradations, degrade(StageSynthesis, "AI synthesis unavailable, decision produced by rule engine"))
		}
	}

	if result.Source == "" {
		rule, err := EvaluateRules(in.Signals, in.Sentiment.Aggregate.WeightedScore, in.Profile)
		if err != nil {
			return SynthesisResult{}, errors.Join(aiErr, fmt.Errorf("rule engine failed: %w", err))
		}
		result = SynthesisResult{
			Decision:          rule.Decision,
			Confidence:        rule.Confidence,
			SuggestedQuantity: quantityCap,
			Rationale:         ruleRationale(rule, in.Profile, in.Budget, quantityCap),
			Source:            common.SourceRuleBased,
		}
	}

	result.ActionableItems = ActionableItems(result.Decision, in.Profile.RiskTolerance, in.Signals)
	result.Evidence = BuildEvidence(in.Sentiment.Results, in.Signals, in.Indicators)
	result.Degradations = degradations
	result.Caveats = BuildCaveats(len(in.Sentiment.Results), degradations)
	return result, nil
}

func (s *synthesizer) generate(ctx context.Context, in SynthesisInput) (dto.AIDecision, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	text, err := s.ai.Generate(ctx, BuildRecommendationPrompt(in))
	if err != nil {
		return dto.AIDecision{}, fmt.Errorf("failed to generate recommendation: %w", err)
	}
	return ParseAIDecision(text)
}

// QuantityCap is min(maxQuantity, floor(safeAllocation/price)), never negative.
func QuantityCap(budget dto.RiskBudget, price float64) int64 {
	q := budget.MaxQuantity
	if affordable := affordableShares(budget.SafeAllocation, price); affordable < q {
		q = affordable
	}
	if q < 0 {
		return 0
	}
	return q
}

// EvaluateRules runs the weighted rule engine.
func EvaluateRules(signals dto.MarketSignals, weightedScore float64, profile dto.UserProfile) (RuleDecision, error) {
	if !isFinite(signals.LatestPrice, signals.SMA50, signals.SMA200, signals.RSI14, weightedScore) {
		return RuleDecision{}, fmt.Errorf("non-finite rule input")
	}
	if signals.LatestPrice <= 0 {
		return RuleDecision{}, fmt.Errorf("non-positive price %v", signals.LatestPrice)
	}

	var factors []string
	score := weightedScore * 0.4
	if weightedScore > 0.2 {
		factors = append(factors, "positive news sentiment")
	} else if weightedScore < -0.2 {
		factors = append(factors, "negative news sentiment")
	}

	price, sma50, sma200 := signals.LatestPrice, signals.SMA50, signals.SMA200
	if price > sma50 && sma50 > sma200 {
		score += 0.2
		factors = append(factors, "price above key moving averages")
	} else if price < sma50 && sma50 < sma200 {
		score -= 0.2
		factors = append(factors, "price below key moving averages")
	}

	if signals.RSI14 > 70 {
		score -= 0.1
		factors = append(factors, "overbought conditions (RSI > 70)")
	} else if signals.RSI14 < 30 {
		score += 0.1
		factors = append(factors, "oversold conditions (RSI < 30)")
	}

	switch signals.Trend {
	case dto.TrendUp:
		score += 0.1
		factors = append(factors, "uptrend confirmed")
	case dto.TrendDown:
		score -= 0.1
		factors = append(factors, "downtrend confirmed")
	}

	if m, ok := riskMultipliers[profile.RiskTolerance]; ok {
		score *= m
	}
	if m, ok := horizonMultipliers[profile.TimeHorizon]; ok {
		score *= m
	}

	d := RuleDecision{Score: score, Factors: factors}
	switch {
	case score > 0.3:
		d.Decision = dto.DecisionBuy
		d.Confidence = math.Min(0.9, 0.5+score*0.5)
	case score < -0.3:
		d.Decision = dto.DecisionSell
		d.Confidence = math.Min(0.9, 0.5+math.Abs(score)*0.5)
	default:
		d.Decision = dto.DecisionHold
		d.Confidence = 0.6
	}
	return d, nil
}

func ruleRationale(rule RuleDecision, profile dto.UserProfile, budget dto.RiskBudget, quantity int64) string {
	factors := "no strong signals"
	if len(rule.Factors) > 0 {
		factors = strings.Join(rule.Factors, ", ")
	}
	return fmt.Sprintf("Based on rule-based analysis: %s. The combined score of %.2f suggests a %s recommendation with %.1f%% confidence. "+
		"This recommendation considers your %s risk tolerance and %s time horizon. "+
		"Based on your financial health score of %.0f/100, you can safely invest up to %d shares.",
		factors, rule.Score, rule.Decision, rule.Confidence*100,
		profile.RiskTolerance, profile.TimeHorizon, budget.FinancialHealthScore, quantity)
}

// BuildEvidence lists the top three articles and the indicator readings.
func BuildEvidence(results []dto.SentimentResult, signals dto.MarketSignals, ind dto.Indicators) []dto.EvidenceItem {
	evidence := make([]dto.EvidenceItem, 0, 7)
	for i, r := range results {
		if i == 3 {
			break
		}
		evidence = append(evidence, dto.EvidenceItem{
			Type:      dto.EvidenceNews,
			ID:        r.ArticleID,
			Snippet:   utils.Truncate(r.Title, 200),
			Sentiment: r.Label,
			Score:     r.Score,
		})
	}

	above := func(name string, level float64) string {
		if signals.LatestPrice > level {
			return "price above " + name
		}
		return "price below " + name
	}
	macd := "bearish momentum"
	if ind.MACD.Histogram > 0 {
		macd = "bullish momentum"
	}

	evidence = append(evidence,
		dto.EvidenceItem{Type: dto.EvidenceIndicator, Name: "RSI14", Value: signals.RSI14, Interpretation: string(ClassifyMomentum(signals.RSI14))},
		dto.EvidenceItem{Type: dto.EvidenceIndicator, Name: "SMA50", Value: signals.SMA50, Interpretation: above("SMA50", signals.SMA50)},
		dto.EvidenceItem{Type: dto.EvidenceIndicator, Name: "SMA200", Value: signals.SMA200, Interpretation: above("SMA200", signals.SMA200)},
		dto.EvidenceItem{Type: dto.EvidenceIndicator, Name: "MACD", Value: finiteOrZero(ind.MACD.Histogram), Interpretation: macd},
	)
	return evidence
}

// ActionableItems gives next steps for a decision, plus RSI specific advice.
func ActionableItems(decision dto.Decision, risk dto.RiskTolerance, signals dto.MarketSignals) []string {
	var items []string
	switch decision {
	case dto.DecisionBuy:
		items = append(items,
			"Consider dollar-cost averaging to reduce timing risk",
			"Set a stop-loss at 5-10% below entry price",
		)
		if risk == dto.RiskLow {
			items = append(items, "Start with a small position size")
		}
	case dto.DecisionSell:
		items = append(items,
			"Consider taking profits if holding gains",
			"Set a stop-loss to protect against further losses",
		)
	default:
		items = append(items,
			"Monitor for better entry/exit opportunities",
			"Review position size based on risk tolerance",
		)
	}

	switch ClassifyMomentum(signals.RSI14) {
	case dto.MomentumOverbought:
		items = append(items, "RSI indicates overbought conditions - consider waiting for pullback")
	case dto.MomentumOversold:
		items = append(items, "RSI indicates oversold conditions - potential buying opportunity")
	}
	return items
}

// BuildCaveats returns the fixed disclaimers followed by one caveat per degradation.
func BuildCaveats(articleCount int, degradations []dto.Degradation) []string {
	var caveats []string
	if articleCount == 0 {
		caveats = append(caveats, CaveatNoNews)
	}
	if articleCount < 5 {
		caveats = append(caveats, CaveatInsufficientNews)
	}
	caveats = append(caveats, CaveatDataLatency, CaveatPastPerformance, CaveatNotAdvice)
	for _, d := range degradations {
		caveats = append(caveats, fmt.Sprintf("Degraded %s data: %s", d.Stage, d.Reason))
	}
	return caveats
}
