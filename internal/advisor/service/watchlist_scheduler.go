package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/logger"

	"github.com/robfig/cron/v3"
)

// TaskDispatcher hands an analysis off for execution.
type TaskDispatcher interface {
	Dispatch(ctx context.Context, data dto.StreamDataRecommendation) error
}

// QueueDispatcher publishes tasks on the recommendation stream.
type QueueDispatcher struct {
	Tasks RecommendationTaskService
}

func (d QueueDispatcher) Dispatch(ctx context.Context, data dto.StreamDataRecommendation) error {
	_, err := d.Tasks.Enqueue(ctx, data)
	return err
}

// InlineDispatcher runs tasks synchronously. Used when Redis is disabled.
type InlineDispatcher struct {
	Tasks RecommendationTaskService
}

func (d InlineDispatcher) Dispatch(ctx context.Context, data dto.StreamDataRecommendation) error {
	return d.Tasks.Execute(ctx, data)
}

// WatchlistScheduler re-analyses configured tickers on their cron schedules.
type WatchlistScheduler interface {
	Start(ctx context.Context)
	ProcessJobs(ctx context.Context)
}

type watchlistJob struct {
	entry    config.WatchlistEntry
	schedule cron.Schedule
	next     time.Time
}

type watchlistScheduler struct {
	jobs            []*watchlistJob
	dispatcher      TaskDispatcher
	logger          *logger.Logger
	pollingInterval time.Duration
	now             func() time.Time
	mu              sync.Mutex
}

// NewWatchlistScheduler parses every entry's cron expression up front.
func NewWatchlistScheduler(cfg config.Watchlist, dispatcher TaskDispatcher, log *logger.Logger, now func() time.Time) (WatchlistScheduler, error) {
	if now == nil {
		now = time.Now
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	start := now()
	jobs := make([]*watchlistJob, 0, len(cfg.Entries))
	for _, entry := range cfg.Entries {
		schedule, err := parser.Parse(entry.CronExpression)
		if err != nil {
			return nil, fmt.Errorf("invalid cron expression %q for %s: %w", entry.CronExpression, entry.Ticker, err)
		}
		jobs = append(jobs, &watchlistJob{entry: entry, schedule: schedule, next: schedule.Next(start)})
	}

	interval := cfg.PollingInterval
	if interval <= 0 {
		interval = time.Minute
	}
	return &watchlistScheduler{
		jobs:            jobs,
		dispatcher:      dispatcher,
		logger:          log,
		pollingInterval: interval,
		now:             now,
	}, nil
}

// Start begins the periodic polling loop.
func (s *watchlistScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Watchlist scheduler stopping")
			return
		case <-ticker.C:
			s.ProcessJobs(ctx)
		}
	}
}

// ProcessJobs dispatches every entry that is due and advances its next run.
func (s *watchlistScheduler) ProcessJobs(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, job := range s.jobs {
		if job.next.After(now) {
			continue
		}
		job.next = job.schedule.Next(now)

		data := watchlistTask(job.entry)
		if err := s.dispatcher.Dispatch(ctx, data); err != nil {
			s.logger.Error("Failed to dispatch watchlist analysis", logger.ErrorField(err),
				logger.StringField("ticker", job.entry.Ticker), logger.StringField("user_id", job.entry.UserID))
			continue
		}
		s.logger.Info("Watchlist analysis dispatched",
			logger.StringField("ticker", job.entry.Ticker),
			logger.Field("next_execution", job.next))
	}
}

func watchlistTask(entry config.WatchlistEntry) dto.StreamDataRecommendation {
	return dto.StreamDataRecommendation{
		UserID: entry.UserID,
		Request: dto.StockAnalysisRequest{
			Ticker:      entry.Ticker,
			CompanyName: entry.CompanyName,
			UserProfile: dto.UserProfile{
				MonthlyIncome:   entry.Profile.MonthlyIncome,
				MonthlyExpenses: entry.Profile.MonthlyExpenses,
				Savings:         entry.Profile.Savings,
				RiskTolerance:   dto.RiskTolerance(entry.Profile.RiskTolerance),
				TimeHorizon:     dto.TimeHorizon(entry.Profile.TimeHorizon),
			},
		},
		NotifyUser: entry.TelegramID != 0,
		TelegramID: entry.TelegramID,
	}
}
