package service

import (
	"context"
	"testing"
	"time"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	tasks []dto.StreamDataRecommendation
}

func (r *recordingDispatcher) Dispatch(ctx context.Context, data dto.StreamDataRecommendation) error {
	r.tasks = append(r.tasks, data)
	return nil
}

func TestWatchlistScheduler(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	cfg := config.Watchlist{Entries: []config.WatchlistEntry{
		{UserID: "u1", Ticker: "AAPL", CompanyName: "Apple Inc.", CronExpression: "30 9 * * *", TelegramID: 42,
			Profile: config.WatchlistProfile{MonthlyIncome: 5000, RiskTolerance: "medium", TimeHorizon: "years"}},
		{UserID: "u1", Ticker: "MSFT", CompanyName: "Microsoft", CronExpression: "@hourly"},
	}}
	d := &recordingDispatcher{}

	s, err := NewWatchlistScheduler(cfg, d, logger.NewNop(), clock)
	require.NoError(t, err)

	s.ProcessJobs(context.Background())
	assert.Empty(t, d.tasks)

	now = now.Add(61 * time.Minute)
	s.ProcessJobs(context.Background())
	require.Len(t, d.tasks, 2)
	assert.Equal(t, "AAPL", d.tasks[0].Request.Ticker)
	assert.True(t, d.tasks[0].NotifyUser)
	assert.Equal(t, int64(42), d.tasks[0].TelegramID)
	assert.Equal(t, dto.HorizonYears, d.tasks[0].Request.UserProfile.TimeHorizon)
	assert.False(t, d.tasks[1].NotifyUser)

	s.ProcessJobs(context.Background())
	assert.Len(t, d.tasks, 2)
}

func TestWatchlistSchedulerRejectsBadCron(t *testing.T) {
	cfg := config.Watchlist{Entries: []config.WatchlistEntry{{Ticker: "AAPL", CronExpression: "every day"}}}
	_, err := NewWatchlistScheduler(cfg, &recordingDispatcher{}, logger.NewNop(), nil)
	assert.Error(t, err)
}

func TestRecommendationTaskServiceExecute(t *testing.T) {
	o := newTestOrchestrator(&fakeNewsRepo{}, &fakeMarketRepo{seriesErr: errProvider}, nil, nil)
	notifier := &recordingNotifier{}
	svc := NewRecommendationTaskService(&config.Config{}, logger.NewNop(), nil, o, notifier)

	req := sampleRequest()
	require.NoError(t, svc.Execute(context.Background(), dto.StreamDataRecommendation{UserID: "u1", Request: req, NotifyUser: true, TelegramID: 7}))
	require.Len(t, notifier.user, 1)
	assert.Equal(t, int64(7), notifier.chat)

	req.Ticker = "??"
	assert.NoError(t, svc.Execute(context.Background(), dto.StreamDataRecommendation{Request: req}))
	assert.Len(t, notifier.user, 1)

	_, err := svc.Enqueue(context.Background(), dto.StreamDataRecommendation{Request: sampleRequest()})
	assert.Error(t, err)
}

type recordingNotifier struct {
	operator []string
	user     []string
	chat     int64
}

func (r *recordingNotifier) SendMessage(text string) error {
	r.operator = append(r.operator, text)
	return nil
}

func (r *recordingNotifier) SendMessageUser(text string, chatID int64) error {
	r.user = append(r.user, text)
	r.chat = chatID
	return nil
}
