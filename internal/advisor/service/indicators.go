package service

import "golang-stock-advisor/internal/advisor/dto"

// closesOldestFirst reverses a most-recent-first history into a close series.
func closesOldestFirst(history []dto.OHLCV) []float64 {
	closes := make([]float64, len(history))
	for i, bar := range history {
		closes[len(history)-1-i] = bar.Close
	}
	return closes
}

// SMALatest averages the last period closes. It is 0 when fewer than period closes exist.
func SMALatest(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period {
		return 0
	}
	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period)
}

// RSILatest uses Wilder's smoothing. Too little data reads as neutral (50).
func RSILatest(closes []float64, period int) float64 {
	if period <= 0 {
		period = 14
	}
	if len(closes) < period+1 {
		return 50
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

func ema(data []float64, period int) []float64 {
	if len(data) == 0 || period <= 0 {
		return nil
	}
	out := make([]float64, len(data))
	k := 2.0 / float64(period+1)
	out[0] = data[0]
	for i := 1; i < len(data); i++ {
		out[i] = data[i]*k + out[i-1]*(1-k)
	}
	return out
}

// MACDLatest computes the 12/26/9 MACD on the close series.
func MACDLatest(closes []float64) dto.MACD {
	if len(closes) < 26 {
		return dto.MACD{}
	}
	fast := ema(closes, 12)
	slow := ema(closes, 26)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal := ema(line, 9)
	last := len(closes) - 1
	return dto.MACD{
		MACD:      line[last],
		Signal:    signal[last],
		Histogram: line[last] - signal[last],
	}
}
