package dto

import "time"

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// SentenceSentiment is the lexical score of one sentence of an article.
type SentenceSentiment struct {
	Text  string         `json:"text"`
	Label SentimentLabel `json:"label"`
	Score float64        `json:"score"`
}

// Classification is what a classifier returns for one piece of text.
type Classification struct {
	Label SentimentLabel
	Score float64
	Model string
}

// SentimentResult is the sentiment of a single article.
type SentimentResult struct {
	ArticleID     string              `json:"article_id"`
	Title         string              `json:"title"`
	Label         SentimentLabel      `json:"label"`
	Score         float64             `json:"score"`
	Model         string              `json:"model,omitempty"`
	Fallback      bool                `json:"fallback"`
	Notes         string              `json:"notes,omitempty"`
	SentenceLevel []SentenceSentiment `json:"sentence_level,omitempty"`
}

// SentimentAggregate summarises a batch. Fractions sum to 1 and WeightedScore is in [-1, 1].
type SentimentAggregate struct {
	PositiveFraction float64 `json:"positive_fraction"`
	NegativeFraction float64 `json:"negative_fraction"`
	NeutralFraction  float64 `json:"neutral_fraction"`
	WeightedScore    float64 `json:"weighted_score"`
}

// SentimentReport is the output of the sentiment stage.
type SentimentReport struct {
	Ticker       string             `json:"ticker"`
	AnalysisDate time.Time          `json:"analysis_date"`
	Results      []SentimentResult  `json:"results"`
	Aggregate    SentimentAggregate `json:"aggregate"`
	Classifier   string             `json:"classifier"`
}

func (l SentimentLabel) Valid() bool {
	return l == SentimentPositive || l == SentimentNegative || l == SentimentNeutral
}
