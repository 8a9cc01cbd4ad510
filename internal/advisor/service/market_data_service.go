package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/internal/advisor/repository"
	"golang-stock-advisor/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// MarketDataService builds the market snapshot for a ticker. Provider failures
// degrade to locally computed indicators or a generated snapshot; only caller
// cancellation is returned as an error.
type MarketDataService interface {
	Snapshot(ctx context.Context, ticker string) (dto.MarketSnapshot, []dto.Degradation, error)
}

type marketDataService struct {
	repo   repository.MarketDataRepository
	logger *logger.Logger
	now    func() time.Time
}

// NewMarketDataService creates a MarketDataService. repo may be nil when no provider is configured.
func NewMarketDataService(repo repository.MarketDataRepository, log *logger.Logger, now func() time.Time) MarketDataService {
	if now == nil {
		now = time.Now
	}
	return &marketDataService{repo: repo, logger: log, now: now}
}

type indicatorSpec struct {
	name     string
	label    string
	function string
	params   map[string]string
	minBars  int // closes needed to compute the indicator locally
}

var indicatorSpecs = []indicatorSpec{
	{name: "sma50", label: "SMA50", function: "SMA", params: map[string]string{"time_period": "50", "series_type": "close"}, minBars: 50},
	{name: "sma200", label: "SMA200", function: "SMA", params: map[string]string{"time_period": "200", "series_type": "close"}, minBars: 200},
	{name: "rsi14", label: "RSI14", function: "RSI", params: map[string]string{"time_period": "14", "series_type": "close"}, minBars: 15},
	{name: "macd", label: "MACD", function: "MACD", params: map[string]string{"series_type": "close"}, minBars: 26},
}

func (s *marketDataService) Snapshot(ctx context.Context, ticker string) (dto.MarketSnapshot, []dto.Degradation, error) {
	now := s.now()
	if s.repo == nil {
		s.logger.WarnContext(ctx, "No market data provider configured, using generated snapshot", logger.StringField("ticker", ticker))
		return GenerateFallbackSnapshot(ticker, now), []dto.Degradation{
			degrade(StageMarket, "market data provider not configured, using generated price history"),
		}, nil
	}

	bars, err := s.repo.DailySeries(ctx, ticker)
	if err == nil && len(bars) == 0 {
		err = errEmptySeries
	}
	if err != nil {
		if ctx.Err() != nil {
			return dto.MarketSnapshot{}, nil, ctx.Err()
		}
		s.logger.WarnContext(ctx, "Market data unavailable, using generated snapshot", logger.StringField("ticker", ticker), logger.ErrorField(err))
		return GenerateFallbackSnapshot(ticker, now), []dto.Degradation{
			degrade(StageMarket, "market data unavailable (%v), using generated price history", err),
		}, nil
	}

	snapshot := dto.MarketSnapshot{
		Ticker:      ticker,
		FetchedAt:   now,
		LatestPrice: bars[0].Close,
	}
	if len(bars) > 1 && bars[1].Close != 0 {
		snapshot.ChangePercent = (bars[0].Close - bars[1].Close) / bars[1].Close * 100
	}

	// Indicators are computed over the whole series; the snapshot keeps only the recent part.
	computed, shortfalls, err := s.fillIndicators(ctx, ticker, &snapshot, closesOldestFirst(bars))
	if err != nil {
		return dto.MarketSnapshot{}, nil, err
	}
	snapshot.History = bars
	if len(bars) > repository.MaxHistoryPoints {
		snapshot.History = bars[:repository.MaxHistoryPoints]
	}

	var degradations []dto.Degradation
	if len(computed) > 0 {
		snapshot.Computed = computed
		degradations = append(degradations, degrade(StageMarket,
			"indicator provider unavailable for %s, computed from daily history", strings.Join(computed, ", ")))
	}
	for _, reason := range shortfalls {
		degradations = append(degradations, degrade(StageMarket, "%s", reason))
	}
	return snapshot, degradations, nil
}

// fillIndicators fetches every indicator concurrently and computes any that fail locally.
// An indicator whose window is longer than the available closes keeps its neutral
// value (0 for averages, 50 for RSI) and is reported as a shortfall.
func (s *marketDataService) fillIndicators(ctx context.Context, ticker string, snapshot *dto.MarketSnapshot, closes []float64) ([]string, []string, error) {
	var (
		mu         sync.Mutex
		computed   []string
		shortfalls []string
	)

	g := new(errgroup.Group)
	for _, ind := range indicatorSpecs {
		ind := ind
		g.Go(func() error {
			point, err := s.repo.Indicator(ctx, ticker, ind.function, ind.params)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil || !applyIndicator(&snapshot.Indicators, ind.name, point) {
				s.logger.DebugContext(ctx, "Computing indicator locally", logger.StringField("indicator", ind.name), logger.ErrorField(err))
				computeIndicator(&snapshot.Indicators, ind.name, closes)
				if len(closes) < ind.minBars {
					shortfalls = append(shortfalls, fmt.Sprintf("insufficient history for %s: %d of %d bars",
						ind.label, len(closes), ind.minBars))
					return nil
				}
				computed = append(computed, ind.name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	sort.Strings(computed)
	sort.Strings(shortfalls)
	return computed, shortfalls, nil
}

func applyIndicator(ind *dto.Indicators, name string, point *dto.IndicatorPoint) bool {
	if point == nil {
		return false
	}
	switch name {
	case "sma50", "sma200":
		v, ok := point.Values["SMA"]
		if !ok {
			return false
		}
		if name == "sma50" {
			ind.SMA50 = v
		} else {
			ind.SMA200 = v
		}
	case "rsi14":
		v, ok := point.Values["RSI"]
		if !ok {
			return false
		}
		ind.RSI14 = v
	case "macd":
		v, ok := point.Values["MACD"]
		if !ok {
			return false
		}
		ind.MACD = dto.MACD{MACD: v, Signal: point.Values["MACD_Signal"], Histogram: point.Values["MACD_Hist"]}
	}
	return true
}

func computeIndicator(ind *dto.Indicators, name string, closes []float64) {
	switch name {
	case "sma50":
		ind.SMA50 = SMALatest(closes, 50)
	case "sma200":
		ind.SMA200 = SMALatest(closes, 200)
	case "rsi14":
		ind.RSI14 = RSILatest(closes, 14)
	case "macd":
		ind.MACD = MACDLatest(closes)
	}
}

const fallbackHistoryDays = 250

// GenerateFallbackSnapshot produces a deterministic price history seeded by the ticker,
// so repeated runs for the same ticker and day yield the same snapshot.
func GenerateFallbackSnapshot(ticker string, now time.Time) dto.MarketSnapshot {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToUpper(ticker)))
	seed := h.Sum64()
	rng := rand.New(rand.NewSource(int64(seed)))

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 0, fallbackHistoryDays)
	for len(dates) < fallbackHistoryDays {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dates = append(dates, day)
		}
		day = day.AddDate(0, 0, -1)
	}

	closes := make([]float64, fallbackHistoryDays)
	bars := make([]dto.OHLCV, fallbackHistoryDays)
	price := 20 + float64(seed%480)
	for i := 0; i < fallbackHistoryDays; i++ {
		open := price
		price = math.Max(1, price*(1+0.0003+0.015*rng.NormFloat64()))
		high := math.Max(open, price) * (1 + rng.Float64()*0.01)
		low := math.Min(open, price) * (1 - rng.Float64()*0.01)
		closes[i] = roundCents(price)
		// bars are built oldest first and reversed below
		bars[i] = dto.OHLCV{
			Date:   dates[fallbackHistoryDays-1-i],
			Open:   roundCents(open),
			High:   roundCents(high),
			Low:    roundCents(low),
			Close:  closes[i],
			Volume: 1_000_000 + rng.Int63n(4_000_000),
		}
	}

	history := make([]dto.OHLCV, 0, 90)
	for i := fallbackHistoryDays - 1; i >= 0 && len(history) < repository.MaxHistoryPoints; i-- {
		history = append(history, bars[i])
	}

	last := closes[fallbackHistoryDays-1]
	prev := closes[fallbackHistoryDays-2]
	return dto.MarketSnapshot{
		Ticker:        ticker,
		FetchedAt:     now,
		LatestPrice:   last,
		ChangePercent: (last - prev) / prev * 100,
		History:       history,
		Indicators: dto.Indicators{
			SMA50:  SMALatest(closes, 50),
			SMA200: SMALatest(closes, 200),
			RSI14:  RSILatest(closes, 14),
			MACD:   MACDLatest(closes),
		},
		Fallback: true,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
