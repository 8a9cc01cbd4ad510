package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/logger"

	"golang.org/x/time/rate"
)

const (
	// MaxHistoryPoints caps the price history carried in a snapshot.
	MaxHistoryPoints = 90
	// MaxSeriesPoints caps the daily series returned by DailySeries. It covers the
	// longest indicator window (SMA200) with room for the MACD warm-up.
	MaxSeriesPoints = 260
)

type alphaVantageRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewAlphaVantageRepository creates a market data source backed by Alpha Vantage.
func NewAlphaVantageRepository(cfg *config.Config, log *logger.Logger) MarketDataRepository {
	return &alphaVantageRepository{
		client: &http.Client{
			Timeout: timeoutOrDefault(cfg.Advisor.MarketTimeout, 15*time.Second),
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.AlphaVantage.MaxRequestPerMinute, cfg.AlphaVantage.MaxRequestPerMinute),
	}
}

func (r *alphaVantageRepository) DailySeries(ctx context.Context, ticker string) ([]dto.OHLCV, error) {
	var resp dto.AlphaVantageDailyResponse
	if err := r.get(ctx, map[string]string{
		"function":   "TIME_SERIES_DAILY",
		"symbol":     ticker,
		"outputsize": "full",
	}, &resp); err != nil {
		return nil, err
	}
	if msg := firstNonEmpty(resp.ErrorMessage, resp.Note, resp.Information); msg != "" {
		return nil, fmt.Errorf("alpha vantage rejected request: %s", msg)
	}
	if len(resp.TimeSeries) == 0 {
		return nil, fmt.Errorf("alpha vantage returned no daily series for %s", ticker)
	}

	bars := make([]dto.OHLCV, 0, len(resp.TimeSeries))
	for date, values := range resp.TimeSeries {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			r.logger.Warn("Skipping malformed daily bar", logger.StringField("date", date))
			continue
		}
		volume, _ := strconv.ParseInt(values["5. volume"], 10, 64)
		bars = append(bars, dto.OHLCV{
			Date:   day,
			Open:   parseFloat(values["1. open"]),
			High:   parseFloat(values["2. high"]),
			Low:    parseFloat(values["3. low"]),
			Close:  parseFloat(values["4. close"]),
			Volume: volume,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.After(bars[j].Date) })
	if len(bars) > MaxSeriesPoints {
		bars = bars[:MaxSeriesPoints]
	}
	return bars, nil
}

// Indicator returns the most recent reading of a technical indicator function (SMA, RSI, MACD).
func (r *alphaVantageRepository) Indicator(ctx context.Context, ticker, function string, params map[string]string) (*dto.IndicatorPoint, error) {
	query := map[string]string{
		"function": function,
		"symbol":   ticker,
		"interval": "daily",
	}
	for k, v := range params {
		query[k] = v
	}

	var resp dto.AlphaVantageIndicatorResponse
	if err := r.get(ctx, query, &resp); err != nil {
		return nil, err
	}

	for _, key := range []string{"Error Message", "Note", "Information"} {
		if msg, ok := resp[key]; ok {
			return nil, fmt.Errorf("alpha vantage rejected request: %v", msg)
		}
	}

	var series map[string]interface{}
	for key, value := range resp {
		if strings.HasPrefix(key, "Technical Analysis") {
			series, _ = value.(map[string]interface{})
			break
		}
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("alpha vantage returned no %s data for %s", function, ticker)
	}

	latest := ""
	for date := range series {
		if date > latest {
			latest = date
		}
	}
	raw, _ := series[latest].(map[string]interface{})
	point := &dto.IndicatorPoint{Date: latest, Values: make(map[string]float64, len(raw))}
	for k, v := range raw {
		if s, ok := v.(string); ok {
			point.Values[k] = parseFloat(s)
		}
	}
	return point, nil
}

func (r *alphaVantageRepository) get(ctx context.Context, params map[string]string, out interface{}) error {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for request limit: %w", err)
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("apikey", r.cfg.AlphaVantage.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.AlphaVantage.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create new http request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Alpha Vantage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		r.logger.Error("Received non-OK response from Alpha Vantage", logger.IntField("status_code", resp.StatusCode), logger.StringField("function", params["function"]))
		return fmt.Errorf("received non-OK response from Alpha Vantage: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
