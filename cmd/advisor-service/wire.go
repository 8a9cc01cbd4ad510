package main

import (
	"context"
	"fmt"
	"time"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/internal/advisor/repository"
	"golang-stock-advisor/internal/advisor/service"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/postgres"
	"golang-stock-advisor/pkg/redis"
	"golang-stock-advisor/pkg/telegram"

	"google.golang.org/genai"
)

// application holds every wired component shared by serve and analyze.
type application struct {
	cfg          *config.Config
	logger       *logger.Logger
	db           *postgres.DB
	redisClient  *redis.Client
	orchestrator service.Orchestrator
	history      service.HistoryService
	notifier     telegram.Notifier
}

func (a *application) Close() {
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.logger.Sync()
}

func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app := &application{cfg: cfg, logger: appLogger, notifier: telegram.NewNopNotifier()}

	if cfg.Database.Enabled {
		db, err := postgres.NewDB(postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			TimeZone:        cfg.Database.TimeZone,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        cfg.Database.LogLevel,
		})
		if err != nil {
			return nil, err
		}
		app.db = db
	}

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			app.Close()
			return nil, err
		}
		app.redisClient = redisClient
	}

	if cfg.Telegram.BotToken != "" {
		notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
		app.notifier = notifier
	}

	aiRepo, err := newAIRepository(ctx, cfg, appLogger)
	if err != nil {
		app.Close()
		return nil, err
	}

	// Initialize repositories
	newsRepo := newNewsRepository(cfg, appLogger)

	var marketRepo repository.MarketDataRepository
	if cfg.AlphaVantage.APIKey != "" {
		marketRepo = repository.NewAlphaVantageRepository(cfg, appLogger)
		if app.redisClient != nil {
			marketRepo = repository.NewCachedMarketDataRepository(marketRepo, app.redisClient.Client, cfg.AlphaVantage.CacheTTL, appLogger)
		}
	}

	var classifier service.Classifier
	if cfg.HuggingFace.APIKey != "" {
		classifier = service.NewModelClassifier(repository.NewHuggingFaceRepository(cfg, appLogger))
	}

	var healthRepo repository.FinancialHealthRepository
	if app.db != nil {
		healthRepo = repository.NewFinancialHealthRepository(app.db.DB)
		if cfg.Advisor.SaveHistory {
			app.history = service.NewHistoryService(repository.NewStockRecommendationRepository(app.db.DB), appLogger)
		}
	}

	// Initialize services
	app.orchestrator = service.NewOrchestrator(service.OrchestratorDeps{
		News:        service.NewNewsService(newsRepo, appLogger, cfg.Advisor.MaxArticles, cfg.Advisor.NewsConcurrency, time.Now),
		Sentiment:   service.NewSentimentService(classifier, appLogger, cfg.Advisor.SentimentTimeout, cfg.Advisor.SentimentConcurrency, time.Now),
		Market:      service.NewMarketDataService(marketRepo, appLogger, time.Now),
		Risk:        service.NewRiskBudgetCalculator(healthRepo, appLogger, cfg.Advisor.RiskTimeout),
		Synthesizer: service.NewSynthesizer(aiRepo, appLogger, cfg.Advisor.SynthesisTimeout),
		History:     app.history,
	}, appLogger, cfg.Advisor.PipelineTimeout, time.Now)

	return app, nil
}

func newNewsRepository(cfg *config.Config, log *logger.Logger) repository.NewsRepository {
	var repo repository.NewsRepository
	switch cfg.News.Provider {
	case "serper":
		if cfg.Serper.APIKey == "" {
			log.Warn("Serper API key is empty, falling back to Google News RSS")
			repo = repository.NewGoogleRSSNewsRepository(cfg, log)
		} else {
			repo = repository.NewSerperNewsRepository(cfg, log)
		}
	case "google_rss":
		repo = repository.NewGoogleRSSNewsRepository(cfg, log)
	default:
		log.Warn("No news provider configured, canned articles will be used", logger.StringField("provider", cfg.News.Provider))
		return nil
	}
	return repository.NewCachedNewsRepository(repo, cfg.News.CacheTTL, log)
}

// newAIRepository returns nil when no provider is configured; the rule engine is used instead.
func newAIRepository(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.AIRepository, error) {
	switch cfg.AI.Provider {
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			log.Warn("Gemini API key is empty, using the rule engine only")
			return nil, nil
		}
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini AI client: %w", err)
		}
		return repository.NewGeminiAIRepository(cfg, log, genAiClient)
	case "claude":
		if cfg.Claude.APIKey == "" {
			log.Warn("Claude API key is empty, using the rule engine only")
			return nil, nil
		}
		return repository.NewClaudeAIRepository(cfg, log)
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			log.Warn("OpenAI API key is empty, using the rule engine only")
			return nil, nil
		}
		return repository.NewOpenAIRepository(cfg, log), nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid AI provider %q", cfg.AI.Provider)
	}
}
