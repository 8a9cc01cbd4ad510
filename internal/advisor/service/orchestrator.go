package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// ErrSynthesisFailed is the only fatal pipeline outcome besides cancellation.
var ErrSynthesisFailed = errors.New("recommendation synthesis failed")

// Orchestrator runs the full recommendation pipeline for one request.
type Orchestrator interface {
	Analyze(ctx context.Context, userID string, req dto.StockAnalysisRequest) (*dto.Recommendation, error)
}

// OrchestratorDeps are the stages wired into the orchestrator. History may be nil.
type OrchestratorDeps struct {
	News        NewsService
	Sentiment   SentimentService
	Market      MarketDataService
	Risk        RiskBudgetCalculator
	Synthesizer Synthesizer
	History     HistoryService
}

type orchestrator struct {
	deps    OrchestratorDeps
	logger  *logger.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewOrchestrator(deps OrchestratorDeps, log *logger.Logger, timeout time.Duration, now func() time.Time) Orchestrator {
	if now == nil {
		now = time.Now
	}
	return &orchestrator{deps: deps, logger: log, timeout: timeout, now: now}
}

func (o *orchestrator) Analyze(ctx context.Context, userID string, req dto.StockAnalysisRequest) (*dto.Recommendation, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := o.now()
	o.logger.InfoContext(ctx, "Starting stock analysis",
		logger.StringField("ticker", req.Ticker), logger.StringField("user_id", userID))

	var (
		news         dto.NewsBatch
		sentiment    dto.SentimentReport
		snapshot     dto.MarketSnapshot
		assessment   dto.RiskAssessment
		newsDeg      []dto.Degradation
		sentimentDeg []dto.Degradation
		marketDeg    []dto.Degradation
		riskDeg      []dto.Degradation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		news, newsDeg, err = o.deps.News.Fetch(gctx, req.Ticker, req.CompanyName)
		if err != nil {
			return fmt.Errorf("news stage: %w", err)
		}
		sentiment, sentimentDeg, err = o.deps.Sentiment.Analyze(gctx, req.Ticker, news.Articles)
		if err != nil {
			return fmt.Errorf("sentiment stage: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snapshot, marketDeg, err = o.deps.Market.Snapshot(gctx, req.Ticker)
		if err != nil {
			return fmt.Errorf("market stage: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assessment, riskDeg, err = o.deps.Risk.Assess(gctx, userID, req.UserProfile)
		if err != nil {
			return fmt.Errorf("risk stage: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		o.logger.WarnContext(ctx, "Stock analysis aborted", logger.StringField("ticker", req.Ticker), logger.ErrorField(err))
		return nil, err
	}

	signals := ExtractSignals(snapshot)
	budget := WithPrice(assessment, signals.LatestPrice)

	var degradations []dto.Degradation
	for _, d := range [][]dto.Degradation{newsDeg, sentimentDeg, marketDeg, riskDeg} {
		degradations = append(degradations, d...)
	}

	synthesis, err := o.deps.Synthesizer.Synthesize(ctx, SynthesisInput{
		Ticker:       req.Ticker,
		CompanyName:  req.CompanyName,
		Profile:      req.UserProfile,
		Signals:      signals,
		Indicators:   snapshot.Indicators,
		Sentiment:    sentiment,
		Budget:       budget,
		Degradations: degradations,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.logger.ErrorContext(ctx, "Recommendation synthesis failed", logger.StringField("ticker", req.Ticker), logger.ErrorField(err))
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	rec := &dto.Recommendation{
		Ticker:            req.Ticker,
		CompanyName:       req.CompanyName,
		GeneratedAt:       o.now(),
		Decision:          synthesis.Decision,
		Confidence:        synthesis.Confidence,
		SuggestedQuantity: synthesis.SuggestedQuantity,
		Rationale:         synthesis.Rationale,
		Source:            synthesis.Source,
		ActionableItems:   synthesis.ActionableItems,
		Evidence:          synthesis.Evidence,
		Caveats:           synthesis.Caveats,
		Degradations:      synthesis.Degradations,
		UserProfileSummary: dto.UserProfileSummary{
			RiskTolerance:        req.UserProfile.RiskTolerance,
			TimeHorizon:          req.UserProfile.TimeHorizon,
			FinancialHealthScore: budget.FinancialHealthScore,
			DisposableIncome:     budget.DisposableIncome,
			SafeAllocation:       budget.SafeAllocation,
			MaxQuantity:          budget.MaxQuantity,
			CurrentHolding:       req.UserProfile.CurrentPortfolio[req.Ticker],
		},
		NewsSummary:   SummarizeNews(sentiment.Results),
		MarketSignals: signals,
		SentimentSummary: dto.SentimentSummary{
			SentimentAggregate: sentiment.Aggregate,
			Interpretation:     InterpretSentiment(sentiment.Aggregate.WeightedScore),
		},
		Raw: dto.RawInputs{
			News:       news,
			Sentiment:  sentiment,
			Market:     snapshot,
			RiskBudget: budget,
		},
	}

	if o.deps.History != nil && userID != "" {
		if err := o.deps.History.Save(ctx, userID, rec); err != nil {
			o.logger.WarnContext(ctx, "Failed to save recommendation history",
				logger.StringField("ticker", req.Ticker), logger.ErrorField(err))
		}
	}

	o.logger.InfoContext(ctx, "Stock analysis completed",
		logger.StringField("ticker", req.Ticker),
		logger.StringField("decision", string(rec.Decision)),
		logger.Float64Field("confidence", rec.Confidence),
		logger.StringField("source", rec.Source),
		logger.IntField("degradations", len(rec.Degradations)),
		logger.DurationField("duration", o.now().Sub(start)),
	)
	return rec, nil
}
