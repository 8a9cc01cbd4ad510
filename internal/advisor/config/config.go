package config

import (
	"time"

	"golang-stock-advisor/pkg/config"
)

// Advisor holds the pipeline limits and timeouts.
type Advisor struct {
	PipelineTimeout      time.Duration `mapstructure:"pipeline_timeout"`
	NewsTimeout          time.Duration `mapstructure:"news_timeout"`
	MarketTimeout        time.Duration `mapstructure:"market_timeout"`
	RiskTimeout          time.Duration `mapstructure:"risk_timeout"`
	SentimentTimeout     time.Duration `mapstructure:"sentiment_timeout"`
	SynthesisTimeout     time.Duration `mapstructure:"synthesis_timeout"`
	MaxArticles          int           `mapstructure:"max_articles"`
	NewsConcurrency      int           `mapstructure:"news_concurrency"`
	SentimentConcurrency int           `mapstructure:"sentiment_concurrency"`
	SaveHistory          bool          `mapstructure:"save_history"`
}

// News selects and tunes the news source.
type News struct {
	Provider     string        `mapstructure:"provider"` // serper, google_rss or none
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	RSSBaseURL   string        `mapstructure:"rss_base_url"`
	FetchContent bool          `mapstructure:"fetch_content"`
}

// Serper holds the configuration for the Serper search API.
type Serper struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	TimeRange           string `mapstructure:"time_range"`
}

// HuggingFace holds the configuration for the sentiment inference API.
type HuggingFace struct {
	BaseURL       string `mapstructure:"base_url"`
	APIKey        string `mapstructure:"api_key"`
	PrimaryModel  string `mapstructure:"primary_model"`
	FallbackModel string `mapstructure:"fallback_model"`
}

// AlphaVantage holds the configuration for the market data API.
type AlphaVantage struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
}

// AI holds configuration for AI providers.
type AI struct {
	Provider    string  `mapstructure:"provider"` // gemini, claude, openai or none
	Temperature float64 `mapstructure:"temperature"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// Claude holds the configuration for the Anthropic API.
type Claude struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxTokens           int    `mapstructure:"max_tokens"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// OpenAI holds the configuration for an OpenAI compatible chat completions API.
type OpenAI struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Consumer tunes the recommendation stream worker.
type Consumer struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
	MaxIdleDuration time.Duration `mapstructure:"max_idle_duration"`
	MaxRetry        int           `mapstructure:"max_retry"`
}

// WatchlistProfile mirrors dto.UserProfile for YAML decoding.
type WatchlistProfile struct {
	MonthlyIncome   float64 `mapstructure:"monthly_income"`
	MonthlyExpenses float64 `mapstructure:"monthly_expenses"`
	Savings         float64 `mapstructure:"savings"`
	RiskTolerance   string  `mapstructure:"risk_tolerance"`
	TimeHorizon     string  `mapstructure:"time_horizon"`
}

// WatchlistEntry is a ticker that is re-analysed on a cron schedule.
type WatchlistEntry struct {
	UserID         string           `mapstructure:"user_id"`
	Ticker         string           `mapstructure:"ticker"`
	CompanyName    string           `mapstructure:"company_name"`
	CronExpression string           `mapstructure:"cron"`
	TelegramID     int64            `mapstructure:"telegram_id"`
	Profile        WatchlistProfile `mapstructure:"profile"`
}

// Watchlist holds scheduled analyses.
type Watchlist struct {
	PollingInterval time.Duration    `mapstructure:"polling_interval"`
	Entries         []WatchlistEntry `mapstructure:"entries"`
}

// Config holds the full configuration for the advisor service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	API          config.API      `mapstructure:"api"`
	Advisor      Advisor         `mapstructure:"advisor"`
	News         News            `mapstructure:"news"`
	Serper       Serper          `mapstructure:"serper"`
	HuggingFace  HuggingFace     `mapstructure:"huggingface"`
	AlphaVantage AlphaVantage    `mapstructure:"alpha_vantage"`
	AI           AI              `mapstructure:"ai"`
	Gemini       Gemini          `mapstructure:"gemini"`
	Claude       Claude          `mapstructure:"claude"`
	OpenAI       OpenAI          `mapstructure:"openai"`
	Telegram     Telegram        `mapstructure:"telegram"`
	Consumer     Consumer        `mapstructure:"consumer"`
	Watchlist    Watchlist       `mapstructure:"watchlist"`
}

// Defaults are applied before the file and the environment.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":      "stock-advisor",
		"app.env":       "development",
		"app.time_zone": "America/New_York",

		"logger.level":    "info",
		"logger.encoding": "json",

		"database.enabled":           false,
		"database.host":              "localhost",
		"database.port":              5432,
		"database.ssl_mode":          "disable",
		"database.max_idle_conns":    5,
		"database.max_open_conns":    20,
		"database.conn_max_lifetime": "30m",

		"redis.enabled":        false,
		"redis.host":           "localhost",
		"redis.port":           6379,
		"redis.pool_size":      10,
		"redis.stream_max_len": 10000,

		"api.port": 8080,

		"advisor.pipeline_timeout":      "90s",
		"advisor.news_timeout":          "20s",
		"advisor.market_timeout":        "20s",
		"advisor.risk_timeout":          "5s",
		"advisor.sentiment_timeout":     "15s",
		"advisor.synthesis_timeout":     "45s",
		"advisor.max_articles":          10,
		"advisor.news_concurrency":      3,
		"advisor.sentiment_concurrency": 5,
		"advisor.save_history":          true,

		"news.provider":      "serper",
		"news.cache_ttl":     "5m",
		"news.rss_base_url":  "https://news.google.com/rss/search",
		"news.fetch_content": false,

		"serper.base_url":               "https://google.serper.dev/search",
		"serper.api_key":                "",
		"serper.max_request_per_minute": 60,
		"serper.time_range":             "qdr:w",

		"huggingface.base_url":       "https://api-inference.huggingface.co/models",
		"huggingface.api_key":        "",
		"huggingface.primary_model":  "cardiffnlp/twitter-roberta-base-sentiment-latest",
		"huggingface.fallback_model": "nlptown/bert-base-multilingual-uncased-sentiment",

		"alpha_vantage.base_url":               "https://www.alphavantage.co/query",
		"alpha_vantage.api_key":                "",
		"alpha_vantage.max_request_per_minute": 5,
		"alpha_vantage.cache_ttl":              "15m",

		"ai.provider":    "gemini",
		"ai.temperature": 0.2,

		"gemini.api_key":                "",
		"gemini.model":                  "gemini-2.5-flash",
		"gemini.max_request_per_minute": 10,
		"gemini.max_token_per_minute":   250000,

		"claude.api_key":                "",
		"claude.model":                  "claude-3-5-haiku-latest",
		"claude.max_tokens":             1024,
		"claude.max_request_per_minute": 20,

		"openai.base_url":               "https://api.openai.com/v1/chat/completions",
		"openai.api_key":                "",
		"openai.model":                  "gpt-4o-mini",
		"openai.max_request_per_minute": 20,
		"openai.max_token_per_minute":   200000,

		"telegram.bot_token": "",
		"telegram.chat_id":   0,

		"consumer.timeout":           "2m",
		"consumer.retry_interval":    "1m",
		"consumer.max_idle_duration": "5m",
		"consumer.max_retry":         3,

		"watchlist.polling_interval": "1m",
	}
}

// Load loads the advisor configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
