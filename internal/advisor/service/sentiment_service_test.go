package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicalClassifier(t *testing.T) {
	c := NewLexicalClassifier()
	tests := []struct {
		text  string
		label dto.SentimentLabel
		score float64
	}{
		{"Apple reports strong growth and record profit", dto.SentimentPositive, 0.8},
		{"Shares crash after earnings miss raises concern", dto.SentimentNegative, 0.8},
		{"Company schedules annual meeting", dto.SentimentNeutral, 0.5},
		{"Great, excellent, strong, positive gain with profit growth success", dto.SentimentPositive, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.label, got.Label)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.Equal(t, "lexical", got.Model)
		})
	}
}

func TestSentenceSentiments(t *testing.T) {
	got := SentenceSentiments("Great quarter for the firm. Ok. Losses widened sharply this time!")
	require.Len(t, got, 2)
	assert.Equal(t, "Great quarter for the firm", got[0].Text)
	assert.Equal(t, dto.SentimentPositive, got[0].Label)
	assert.InDelta(t, 0.6, got[0].Score, 1e-9)
	assert.Equal(t, dto.SentimentNegative, got[1].Label)

	long := strings.Repeat("Nothing notable happened today. ", 5)
	assert.Len(t, SentenceSentiments(long), 3)
}

func TestAggregateSentiment(t *testing.T) {
	t.Run("zero articles", func(t *testing.T) {
		agg := AggregateSentiment(nil, nil, testNow)
		assert.Equal(t, dto.SentimentAggregate{NeutralFraction: 1}, agg)
	})

	t.Run("recency weighted", func(t *testing.T) {
		articles := []dto.NewsArticle{
			{PublishedAt: testNow},
			{PublishedAt: testNow.Add(-15 * 24 * time.Hour)},
			{PublishedAt: testNow.Add(-60 * 24 * time.Hour)},
		}
		results := []dto.SentimentResult{
			{Label: dto.SentimentPositive, Score: 0.8},
			{Label: dto.SentimentNegative, Score: 0.6},
			{Label: dto.SentimentNeutral, Score: 0.5},
		}
		agg := AggregateSentiment(results, articles, testNow)
		assert.InDelta(t, 0.5/1.6, agg.WeightedScore, 1e-9)
		assert.InDelta(t, 1.0, agg.PositiveFraction+agg.NegativeFraction+agg.NeutralFraction, 1e-9)
	})

	t.Run("future dates count as fresh", func(t *testing.T) {
		articles := []dto.NewsArticle{{PublishedAt: testNow.Add(48 * time.Hour)}}
		results := []dto.SentimentResult{{Label: dto.SentimentNegative, Score: 0.7}}
		agg := AggregateSentiment(results, articles, testNow)
		assert.InDelta(t, -0.7, agg.WeightedScore, 1e-9)
		assert.Equal(t, 1.0, agg.NegativeFraction)
	})
}

func TestInterpretSentiment(t *testing.T) {
	assert.Equal(t, "strongly positive", InterpretSentiment(0.31))
	assert.Equal(t, "mildly positive", InterpretSentiment(0.2))
	assert.Equal(t, "neutral", InterpretSentiment(0))
	assert.Equal(t, "mildly negative", InterpretSentiment(-0.2))
	assert.Equal(t, "strongly negative", InterpretSentiment(-0.3))
}

func sampleArticles() []dto.NewsArticle {
	return []dto.NewsArticle{
		{ID: "a", Title: "Apple beats estimates", Snippet: "Record quarter", PublishedAt: testNow},
		{ID: "b", Title: "Apple faces probe", Snippet: "Regulators look closer", PublishedAt: testNow},
		{ID: "c", Title: "Apple launches phone", Snippet: "New lineup", PublishedAt: testNow},
	}
}

func TestSentimentServiceSingleFailureDegradesOnlyThatArticle(t *testing.T) {
	classifier := &fakeClassifier{fail: func(text string) bool { return strings.Contains(text, "probe") }}
	svc := NewSentimentService(classifier, logger.NewNop(), time.Second, 2, fixedClock)

	report, degradations, err := svc.Analyze(context.Background(), "AAPL", sampleArticles())
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	assert.Equal(t, dto.SentimentPositive, report.Results[0].Label)
	assert.Equal(t, dto.SentimentNeutral, report.Results[1].Label)
	assert.Equal(t, 0.5, report.Results[1].Score)
	assert.True(t, report.Results[1].Fallback)
	assert.NotEmpty(t, report.Results[1].Notes)
	assert.Equal(t, "fake-model", report.Classifier)

	require.Len(t, degradations, 1)
	assert.Equal(t, StageSentiment, degradations[0].Stage)
}

func TestSentimentServiceFallsBackToLexicalWhenModelIsDown(t *testing.T) {
	classifier := &fakeClassifier{fail: func(string) bool { return true }}
	svc := NewSentimentService(classifier, logger.NewNop(), time.Second, 3, fixedClock)

	report, degradations, err := svc.Analyze(context.Background(), "AAPL", sampleArticles())
	require.NoError(t, err)
	assert.Equal(t, "lexical", report.Classifier)
	for _, r := range report.Results {
		assert.True(t, r.Fallback)
		assert.Equal(t, "lexical", r.Model)
	}
	assert.Equal(t, dto.SentimentPositive, report.Results[0].Label)
	require.Len(t, degradations, 1)
}

func TestSentimentServiceWithoutModelUsesLexical(t *testing.T) {
	svc := NewSentimentService(nil, logger.NewNop(), 0, 0, fixedClock)

	report, degradations, err := svc.Analyze(context.Background(), "AAPL", nil)
	require.NoError(t, err)
	assert.Empty(t, degradations)
	assert.Empty(t, report.Results)
	assert.Equal(t, 1.0, report.Aggregate.NeutralFraction)
	assert.Equal(t, "lexical", report.Classifier)
}
