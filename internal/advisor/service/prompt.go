package service

import (
	"fmt"
	"sort"
	"strings"

	"golang-stock-advisor/internal/advisor/dto"
)

// BuildRecommendationPrompt renders every signal bundle into the synthesis prompt.
func BuildRecommendationPrompt(in SynthesisInput) string {
	p := in.Profile

	holdings := "none"
	if len(p.CurrentPortfolio) > 0 {
		keys := make([]string, 0, len(p.CurrentPortfolio))
		for k := range p.CurrentPortfolio {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %d", k, p.CurrentPortfolio[k]))
		}
		holdings = strings.Join(parts, ", ")
	}

	summary := SummarizeNews(in.Sentiment.Results)
	agg := in.Sentiment.Aggregate

	var recent strings.Builder
	for i, r := range in.Sentiment.Results {
		if i == 5 {
			break
		}
		fmt.Fprintf(&recent, "- %q (%s, %.1f%% confidence)\n", r.Title, r.Label, r.Score*100)
	}
	if recent.Len() == 0 {
		recent.WriteString("- no recent articles\n")
	}

	return fmt.Sprintf(`You are a financial analyst providing stock recommendations. Analyze the following data and provide a BUY/HOLD/SELL recommendation.

STOCK: %s (%s)
USER PROFILE:
- Risk Tolerance: %s
- Time Horizon: %s
- Monthly Income: $%.2f
- Monthly Expenses: $%.2f
- Savings: $%.2f
- Current Portfolio: %s

FINANCIAL HEALTH ANALYSIS:
- Financial Health Score: %.0f/100
- Safe Allocation: $%.2f
- Max Quantity: %d shares
- Risk Factors: %s
- Recommendations: %s

NEWS SENTIMENT ANALYSIS:
- Positive Articles: %d
- Negative Articles: %d
- Neutral Articles: %d
- Weighted Sentiment Score: %.3f (%s)
- Top Headlines: %s

MARKET TECHNICAL ANALYSIS:
- Current Price: $%.2f
- 50-day SMA: $%.2f
- 200-day SMA: $%.2f
- RSI(14): %.1f
- MACD: %.3f (signal %.3f, histogram %.3f)
- Trend: %s

RECENT NEWS SENTIMENTS:
%s
ANALYSIS REQUIREMENTS:
1. Consider the user's risk tolerance and time horizon
2. Weigh news sentiment against technical indicators
3. Account for market trends and momentum
4. Provide confidence level (0.0-1.0)
5. Give clear reasoning for the recommendation

RESPOND WITH ONLY THIS JSON FORMAT:
{
  "recommendation": "BUY|HOLD|SELL",
  "confidence": 0.0-1.0,
  "rationale": "2-5 paragraphs explaining your reasoning, considering both fundamental (news) and technical (market) factors, and how they align with the user's risk profile and time horizon."
}`,
		in.Ticker, in.CompanyName,
		p.RiskTolerance, p.TimeHorizon, p.MonthlyIncome, p.MonthlyExpenses, p.Savings, holdings,
		in.Budget.FinancialHealthScore, in.Budget.SafeAllocation, in.Budget.MaxQuantity,
		joinOrNone(in.Budget.RiskFactors), joinOrNone(in.Budget.Recommendations),
		summary.PositiveCount, summary.NegativeCount, summary.NeutralCount,
		agg.WeightedScore, InterpretSentiment(agg.WeightedScore), joinOrNone(summary.TopHeadlines),
		in.Signals.LatestPrice, in.Signals.SMA50, in.Signals.SMA200, in.Signals.RSI14,
		in.Indicators.MACD.MACD, in.Indicators.MACD.Signal, in.Indicators.MACD.Histogram,
		in.Signals.Trend,
		recent.String(),
	)
}

// SummarizeNews counts labels and lists the top three headlines.
func SummarizeNews(results []dto.SentimentResult) dto.NewsSummary {
	s := dto.NewsSummary{TotalArticles: len(results), TopHeadlines: []string{}}
	for i, r := range results {
		switch r.Label {
		case dto.SentimentPositive:
			s.PositiveCount++
		case dto.SentimentNegative:
			s.NegativeCount++
		default:
			s.NeutralCount++
		}
		if i < 3 {
			s.TopHeadlines = append(s.TopHeadlines, fmt.Sprintf("%s - %s", r.Title, r.Label))
		}
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
