package dto

import "time"

type Decision string

const (
	DecisionBuy  Decision = "BUY"
	DecisionHold Decision = "HOLD"
	DecisionSell Decision = "SELL"
)

func (d Decision) Valid() bool {
	return d == DecisionBuy || d == DecisionHold || d == DecisionSell
}

const (
	EvidenceNews      = "news"
	EvidenceIndicator = "indicator"
)

// EvidenceItem supports a recommendation with either a headline or an indicator reading.
type EvidenceItem struct {
	Type           string         `json:"type"`
	ID             string         `json:"id,omitempty"`
	Name           string         `json:"name,omitempty"`
	Snippet        string         `json:"snippet,omitempty"`
	Value          float64        `json:"value"`
	Sentiment      SentimentLabel `json:"sentiment,omitempty"`
	Score          float64        `json:"score"`
	Interpretation string         `json:"interpretation,omitempty"`
}

// Degradation records a stage that ran on fallback data.
type Degradation struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// RawInputs keeps every upstream output that fed the recommendation.
type RawInputs struct {
	News       NewsBatch       `json:"news"`
	Sentiment  SentimentReport `json:"sentiment"`
	Market     MarketSnapshot  `json:"market"`
	RiskBudget RiskBudget      `json:"risk_budget"`
}

type UserProfileSummary struct {
	RiskTolerance        RiskTolerance `json:"risk_tolerance"`
	TimeHorizon          TimeHorizon   `json:"time_horizon"`
	FinancialHealthScore float64       `json:"financial_health_score"`
	DisposableIncome     float64       `json:"disposable_income"`
	SafeAllocation       float64       `json:"safe_allocation"`
	MaxQuantity          int64         `json:"max_quantity"`
	CurrentHolding       int64         `json:"current_holding"`
}

type NewsSummary struct {
	TotalArticles int      `json:"total_articles"`
	PositiveCount int      `json:"positive_count"`
	NegativeCount int      `json:"negative_count"`
	NeutralCount  int      `json:"neutral_count"`
	TopHeadlines  []string `json:"top_headlines"`
}

type SentimentSummary struct {
	SentimentAggregate
	Interpretation string `json:"interpretation"`
}

// Recommendation is the final, fully assembled output of a pipeline run.
type Recommendation struct {
	ID                 uint               `json:"id,omitempty"`
	Ticker             string             `json:"ticker"`
	CompanyName        string             `json:"company_name"`
	GeneratedAt        time.Time          `json:"generated_at"`
	Decision           Decision           `json:"decision"`
	Confidence         float64            `json:"confidence"`
	SuggestedQuantity  int64              `json:"suggested_quantity"`
	Rationale          string             `json:"rationale"`
	Source             string             `json:"source"`
	ActionableItems    []string           `json:"actionable_items"`
	Evidence           []EvidenceItem     `json:"evidence"`
	Caveats            []string           `json:"caveats"`
	Degradations       []Degradation      `json:"degradations,omitempty"`
	UserProfileSummary UserProfileSummary `json:"user_profile_summary"`
	NewsSummary        NewsSummary        `json:"news_summary"`
	MarketSignals      MarketSignals      `json:"market_signals"`
	SentimentSummary   SentimentSummary   `json:"sentiment_summary"`
	Raw                RawInputs          `json:"raw"`
}

// AIDecision is the structured answer expected from the generative model.
type AIDecision struct {
	Decision          Decision `json:"recommendation"`
	Confidence        *float64 `json:"confidence"`
	Rationale         string   `json:"rationale"`
	SuggestedQuantity *int64   `json:"suggested_quantity,omitempty"`
}
