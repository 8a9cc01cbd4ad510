package service

import (
	"math"

	"golang-stock-advisor/internal/advisor/dto"
)

// ExtractSignals interprets a snapshot into trend and momentum. Non-finite readings count as zero.
func ExtractSignals(snapshot dto.MarketSnapshot) dto.MarketSignals {
	price := finiteOrZero(snapshot.LatestPrice)
	sma50 := finiteOrZero(snapshot.Indicators.SMA50)
	sma200 := finiteOrZero(snapshot.Indicators.SMA200)
	rsi := finiteOrZero(snapshot.Indicators.RSI14)

	return dto.MarketSignals{
		LatestPrice: price,
		SMA50:       sma50,
		SMA200:      sma200,
		RSI14:       rsi,
		Trend:       ClassifyTrend(price, sma50, sma200),
		Momentum:    ClassifyMomentum(rsi),
	}
}

// ClassifyTrend is up when price > SMA50 > SMA200, down when price < SMA50 < SMA200, flat otherwise.
func ClassifyTrend(price, sma50, sma200 float64) dto.Trend {
	switch {
	case sma50 > sma200 && price > sma50:
		return dto.TrendUp
	case sma50 < sma200 && price < sma50:
		return dto.TrendDown
	default:
		return dto.TrendFlat
	}
}

func ClassifyMomentum(rsi float64) dto.Momentum {
	switch {
	case rsi > 70:
		return dto.MomentumOverbought
	case rsi < 30:
		return dto.MomentumOversold
	default:
		return dto.MomentumNeutral
	}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func isFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
