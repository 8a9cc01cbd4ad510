package service

import (
	"context"
	"math"
	"testing"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name                 string
		price, sma50, sma200 float64
		want                 dto.Trend
	}{
		{"up", 115, 110, 100, dto.TrendUp},
		{"down", 85, 90, 100, dto.TrendDown},
		{"flat when equal", 100, 100, 100, dto.TrendFlat},
		{"flat when price below rising averages", 105, 110, 100, dto.TrendFlat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTrend(tt.price, tt.sma50, tt.sma200))
		})
	}
}

func TestClassifyMomentum(t *testing.T) {
	assert.Equal(t, dto.MomentumOverbought, ClassifyMomentum(71))
	assert.Equal(t, dto.MomentumOversold, ClassifyMomentum(29.9))
	assert.Equal(t, dto.MomentumNeutral, ClassifyMomentum(70))
	assert.Equal(t, dto.MomentumNeutral, ClassifyMomentum(30))
}

func TestExtractSignalsTreatsNonFiniteAsZero(t *testing.T) {
	s := ExtractSignals(dto.MarketSnapshot{
		LatestPrice: 115,
		Indicators:  dto.Indicators{SMA50: math.NaN(), SMA200: math.Inf(1), RSI14: 40},
	})
	assert.Equal(t, 0.0, s.SMA50)
	assert.Equal(t, 0.0, s.SMA200)
	assert.Equal(t, dto.TrendFlat, s.Trend)
	assert.Equal(t, dto.MomentumNeutral, s.Momentum)
}

func TestIndicators(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, 4.5, SMALatest(closes, 2))
	assert.Equal(t, 0.0, SMALatest(closes, 50))
	assert.Equal(t, 0.0, SMALatest(nil, 50))

	assert.Equal(t, 50.0, RSILatest(closes, 14))
	rising := make([]float64, 30)
	flat := make([]float64, 30)
	for i := range rising {
		rising[i] = float64(100 + i)
		flat[i] = 100
	}
	assert.Equal(t, 100.0, RSILatest(rising, 14))
	assert.Equal(t, 50.0, RSILatest(flat, 14))

	assert.Equal(t, dto.MACD{}, MACDLatest(closes))
	m := MACDLatest(flat)
	assert.InDelta(t, 0, m.MACD, 1e-9)
	assert.InDelta(t, 0, m.Histogram, 1e-9)
	assert.Greater(t, MACDLatest(rising).MACD, 0.0)
}

func TestMarketDataServiceFallsBackWhenSeriesFails(t *testing.T) {
	svc := NewMarketDataService(&fakeMarketRepo{seriesErr: errProvider}, logger.NewNop(), fixedClock)

	snap, degradations, err := svc.Snapshot(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, snap.Fallback)
	assert.Len(t, snap.History, 90)
	assert.Greater(t, snap.LatestPrice, 0.0)
	require.Len(t, degradations, 1)
	assert.Equal(t, StageMarket, degradations[0].Stage)

	again := GenerateFallbackSnapshot("AAPL", testNow)
	assert.Equal(t, snap.LatestPrice, again.LatestPrice)
	assert.Equal(t, snap.Indicators, again.Indicators)
}

func TestMarketDataServiceComputesMissingIndicators(t *testing.T) {
	repo := &fakeMarketRepo{
		bars: risingBars(60, 100, 1),
		indicators: map[string]*dto.IndicatorPoint{
			"SMA50": {Values: map[string]float64{"SMA": 140}},
		},
	}
	svc := NewMarketDataService(repo, logger.NewNop(), fixedClock)

	snap, degradations, err := svc.Snapshot(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.False(t, snap.Fallback)
	assert.Equal(t, 159.0, snap.LatestPrice)
	assert.Equal(t, 140.0, snap.Indicators.SMA50)
	assert.Equal(t, 0.0, snap.Indicators.SMA200)
	assert.Equal(t, 100.0, snap.Indicators.RSI14)
	assert.Equal(t, []string{"macd", "rsi14"}, snap.Computed)
	require.Len(t, degradations, 2)
	assert.Contains(t, degradations[0].Reason, "macd, rsi14")
	assert.Equal(t, "insufficient history for SMA200: 60 of 200 bars", degradations[1].Reason)
}

func TestMarketDataServiceDoesNotShrinkSMA200Window(t *testing.T) {
	repo := &fakeMarketRepo{
		bars: risingBars(90, 100, 1),
		indicators: map[string]*dto.IndicatorPoint{
			"SMA50": {Values: map[string]float64{"SMA": 160}},
			"RSI14": {Values: map[string]float64{"RSI": 55}},
			"MACD":  {Values: map[string]float64{"MACD": 1, "MACD_Signal": 0.5, "MACD_Hist": 0.5}},
		},
	}
	svc := NewMarketDataService(repo, logger.NewNop(), fixedClock)

	snap, degradations, err := svc.Snapshot(context.Background(), "AAPL")
	require.NoError(t, err)
	// The mean of the 90 available closes is 144.5; it must not stand in for SMA200.
	assert.Equal(t, 0.0, snap.Indicators.SMA200)
	assert.Empty(t, snap.Computed)
	require.Len(t, degradations, 1)
	assert.Equal(t, StageMarket, degradations[0].Stage)
	assert.Equal(t, "insufficient history for SMA200: 90 of 200 bars", degradations[0].Reason)
}

func TestMarketDataServiceComputesSMA200OverFullSeries(t *testing.T) {
	repo := &fakeMarketRepo{
		bars: risingBars(250, 100, 1),
		indicators: map[string]*dto.IndicatorPoint{
			"SMA50": {Values: map[string]float64{"SMA": 320}},
			"RSI14": {Values: map[string]float64{"RSI": 55}},
			"MACD":  {Values: map[string]float64{"MACD": 1, "MACD_Signal": 0.5, "MACD_Hist": 0.5}},
		},
	}
	svc := NewMarketDataService(repo, logger.NewNop(), fixedClock)

	snap, degradations, err := svc.Snapshot(context.Background(), "AAPL")
	require.NoError(t, err)
	// Closes run 100..349; the last 200 are 150..349.
	assert.InDelta(t, 249.5, snap.Indicators.SMA200, 1e-9)
	assert.Equal(t, []string{"sma200"}, snap.Computed)
	assert.Len(t, snap.History, 90)
	assert.Equal(t, 349.0, snap.History[0].Close)
	require.Len(t, degradations, 1)
	assert.Contains(t, degradations[0].Reason, "sma200")
}

func TestMarketDataServiceReturnsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewMarketDataService(&fakeMarketRepo{seriesErr: context.Canceled}, logger.NewNop(), fixedClock)

	_, _, err := svc.Snapshot(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}
