package common

const (
	RedisStreamStockRecommendation = "stock.recommendation"

	RedisStreamGroup    = "advisor-group"
	RedisStreamConsumer = "advisor-consumer"

	// Redis key prefix for cached market data responses.
	RedisKeyMarketDataPrefix = "advisor:market:"
)

// Recommendation sources.
const (
	SourceAI        = "ai"
	SourceRuleBased = "rule_based"
)
