package telegram

import (
	"strings"
	"testing"
	"time"

	"golang-stock-advisor/internal/advisor/dto"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 10))

	text := "line one\nline two\nline three\n"
	parts := SplitMessage(text, 12)
	assert.Equal(t, text, strings.Join(parts, ""))
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 12)
	}

	long := strings.Repeat("x", 25)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, SplitMessage(long, 10))
}

func TestFormatRecommendationMessage(t *testing.T) {
	rec := &dto.Recommendation{
		Ticker:            "AAPL",
		CompanyName:       "Apple Inc.",
		GeneratedAt:       time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
		Decision:          dto.DecisionBuy,
		Confidence:        0.82,
		SuggestedQuantity: 7,
		Rationale:         "Momentum is strong.",
		Source:            "ai",
		ActionableItems:   []string{"Set a stop-loss at 5-10% below entry price"},
		Degradations:      []dto.Degradation{{Stage: "market", Reason: "generated"}},
	}
	msg := FormatRecommendationMessage(rec)
	assert.Contains(t, msg, "Recommendation for AAPL")
	assert.Contains(t, msg, "🟢 Decision: *BUY*")
	assert.Contains(t, msg, "Confidence: 82%")
	assert.Contains(t, msg, "• Set a stop-loss")
	assert.Contains(t, msg, "Some inputs were unavailable")
	assert.Contains(t, msg, "Mon, 10 Mar 2025 14:00 UTC")
}

func TestFormatErrorAlertMessage(t *testing.T) {
	msg := FormatErrorAlertMessage(time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC), "Retry count exceeded", "boom", `{"ticker":"AAPL"}`)
	assert.Contains(t, msg, "[ERROR ALERT]")
	assert.Contains(t, msg, "Retry count exceeded")
	assert.Contains(t, msg, `{"ticker":"AAPL"}`)
}
