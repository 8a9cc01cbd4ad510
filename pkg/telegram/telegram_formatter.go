package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/utils"
)

// MaxMessageLength leaves a little headroom under Telegram's 4096 character limit.
const MaxMessageLength = 4090

// SplitMessage breaks text on line boundaries into parts of at most maxLen bytes.
func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var (
		parts   []string
		current strings.Builder
	)
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > maxLen {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			parts = append(parts, line[:maxLen])
			line = line[maxLen:]
		}
		if current.Len()+len(line) > maxLen {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func decisionIcon(d dto.Decision) string {
	switch d {
	case dto.DecisionBuy:
		return "🟢"
	case dto.DecisionSell:
		return "🔴"
	default:
		return "🟡"
	}
}

func sentimentIcon(score float64) string {
	switch {
	case score > 0.1:
		return "😊"
	case score < -0.1:
		return "😟"
	default:
		return "😐"
	}
}

// FormatRecommendationMessage formats a recommendation into a Markdown string for Telegram.
func FormatRecommendationMessage(rec *dto.Recommendation) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📊 *Recommendation for %s* (%s)\n", rec.Ticker, rec.CompanyName))
	sb.WriteString(fmt.Sprintf("%s Decision: *%s*\n", decisionIcon(rec.Decision), rec.Decision))
	sb.WriteString(fmt.Sprintf("🎯 Confidence: %.0f%%\n", rec.Confidence*100))
	sb.WriteString(fmt.Sprintf("🧮 Suggested quantity: %d (max %d)\n\n", rec.SuggestedQuantity, rec.UserProfileSummary.MaxQuantity))

	sb.WriteString("🔧 *Market:*\n")
	sb.WriteString(fmt.Sprintf("• Price: $%.2f\n", rec.MarketSignals.LatestPrice))
	sb.WriteString(fmt.Sprintf("• SMA50 / SMA200: $%.2f / $%.2f\n", rec.MarketSignals.SMA50, rec.MarketSignals.SMA200))
	sb.WriteString(fmt.Sprintf("• RSI(14): %.1f (%s)\n", rec.MarketSignals.RSI14, rec.MarketSignals.Momentum))
	sb.WriteString(fmt.Sprintf("• Trend: %s\n\n", rec.MarketSignals.Trend))

	sb.WriteString(fmt.Sprintf("%s *Sentiment:* %s (%.2f)\n", sentimentIcon(rec.SentimentSummary.WeightedScore),
		rec.SentimentSummary.Interpretation, rec.SentimentSummary.WeightedScore))
	sb.WriteString(fmt.Sprintf("📰 %d articles: %d positive, %d negative, %d neutral\n\n",
		rec.NewsSummary.TotalArticles, rec.NewsSummary.PositiveCount, rec.NewsSummary.NegativeCount, rec.NewsSummary.NeutralCount))

	sb.WriteString(fmt.Sprintf("🧠 *Rationale:*\n%s\n\n", rec.Rationale))

	if len(rec.ActionableItems) > 0 {
		sb.WriteString("📌 *Next steps:*\n")
		for _, item := range rec.ActionableItems {
			sb.WriteString(fmt.Sprintf("• %s\n", item))
		}
		sb.WriteString("\n")
	}

	if len(rec.Degradations) > 0 {
		sb.WriteString("⚠️ _Some inputs were unavailable; see caveats._\n")
	}
	sb.WriteString(fmt.Sprintf("📅 _Generated: %s (%s)_\n", utils.PrettyDate(rec.GeneratedAt), rec.Source))
	return sb.String()
}

func FormatErrorAlertMessage(t time.Time, errType string, errMsg string, data string) string {
	return fmt.Sprintf(`📛 [ERROR ALERT]
%s
🔧 %s
⚠️ %s

📄 Data: %s
`, utils.PrettyDate(t), errType, errMsg, data)
}
