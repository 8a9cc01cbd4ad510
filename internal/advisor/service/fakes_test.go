package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/internal/entity"
)

var (
	testNow       = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	errProvider   = errors.New("provider unavailable")
	fixedClock    = func() time.Time { return testNow }
	sampleProfile = dto.UserProfile{
		MonthlyIncome:   5000,
		MonthlyExpenses: 3000,
		Savings:         30000,
		RiskTolerance:   dto.RiskMedium,
		TimeHorizon:     dto.HorizonMonths,
	}
)

type fakeNewsRepo struct {
	mu      sync.Mutex
	calls   int
	results map[string][]dto.NewsSearchResult
	err     error
}

func (f *fakeNewsRepo) Name() string { return "fake" }

func (f *fakeNewsRepo) Search(ctx context.Context, query string) ([]dto.NewsSearchResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

type fakeMarketRepo struct {
	bars       []dto.OHLCV
	seriesErr  error
	indicators map[string]*dto.IndicatorPoint
}

func (f *fakeMarketRepo) DailySeries(ctx context.Context, ticker string) ([]dto.OHLCV, error) {
	if f.seriesErr != nil {
		return nil, f.seriesErr
	}
	return f.bars, nil
}

func (f *fakeMarketRepo) Indicator(ctx context.Context, ticker, function string, params map[string]string) (*dto.IndicatorPoint, error) {
	key := function + params["time_period"]
	if p, ok := f.indicators[key]; ok {
		return p, nil
	}
	return nil, errProvider
}

type fakeClassifier struct {
	fail func(text string) bool
}

func (f *fakeClassifier) Name() string { return "fake-model" }

func (f *fakeClassifier) Classify(ctx context.Context, text string) (dto.Classification, error) {
	if f.fail != nil && f.fail(text) {
		return dto.Classification{}, errProvider
	}
	return dto.Classification{Label: dto.SentimentPositive, Score: 0.9, Model: "fake-model"}, nil
}

type fakeHealthRepo struct {
	row *entity.FinancialHealthAssessment
	err error
}

func (f *fakeHealthRepo) GetLatest(ctx context.Context, userID string) (*entity.FinancialHealthAssessment, error) {
	return f.row, f.err
}

type fakeAI struct {
	text  string
	err   error
	calls int
}

func (f *fakeAI) Name() string { return "fake-ai" }

func (f *fakeAI) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeRecommendationRepo struct {
	mu      sync.Mutex
	rows    []entity.StockRecommendation
	created int
	err     error
}

func (f *fakeRecommendationRepo) Create(ctx context.Context, rec *entity.StockRecommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created++
	rec.ID = uint(f.created)
	rec.CreatedAt = testNow
	f.rows = append(f.rows, *rec)
	return nil
}

func (f *fakeRecommendationRepo) FindByUser(ctx context.Context, userID string, offset, limit int) ([]entity.StockRecommendation, int64, error) {
	var mine []entity.StockRecommendation
	for _, r := range f.rows {
		if r.UserID == userID {
			mine = append(mine, r)
		}
	}
	total := int64(len(mine))
	if offset >= len(mine) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[offset:end], total, nil
}

func (f *fakeRecommendationRepo) FindLatest(ctx context.Context, userID, ticker string) (*entity.StockRecommendation, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID && f.rows[i].Ticker == ticker {
			r := f.rows[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeRecommendationRepo) Delete(ctx context.Context, userID string, id uint) (bool, error) {
	for i, r := range f.rows {
		if r.ID == id && r.UserID == userID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// risingBars returns n daily bars, most recent first, with closes rising by step.
func risingBars(n int, start, step float64) []dto.OHLCV {
	bars := make([]dto.OHLCV, n)
	for i := 0; i < n; i++ {
		c := start + step*float64(n-1-i)
		bars[i] = dto.OHLCV{Date: testNow.AddDate(0, 0, -i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return bars
}
