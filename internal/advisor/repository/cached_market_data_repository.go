package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"

	"github.com/redis/go-redis/v9"
)

type cachedMarketDataRepository struct {
	next        MarketDataRepository
	redisClient *redis.Client
	ttl         time.Duration
	logger      *logger.Logger
}

// NewCachedMarketDataRepository wraps a market data source with a Redis read-through cache.
// Redis failures are logged and bypassed.
func NewCachedMarketDataRepository(next MarketDataRepository, redisClient *redis.Client, ttl time.Duration, log *logger.Logger) MarketDataRepository {
	if redisClient == nil || ttl <= 0 {
		return next
	}
	return &cachedMarketDataRepository{
		next:        next,
		redisClient: redisClient,
		ttl:         ttl,
		logger:      log,
	}
}

func (r *cachedMarketDataRepository) DailySeries(ctx context.Context, ticker string) ([]dto.OHLCV, error) {
	key := common.RedisKeyMarketDataPrefix + ticker + ":daily"

	var bars []dto.OHLCV
	if r.load(ctx, key, &bars) {
		return bars, nil
	}

	bars, err := r.next.DailySeries(ctx, ticker)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, bars)
	return bars, nil
}

func (r *cachedMarketDataRepository) Indicator(ctx context.Context, ticker, function string, params map[string]string) (*dto.IndicatorPoint, error) {
	key := common.RedisKeyMarketDataPrefix + ticker + ":" + function + ":" + encodeParams(params)

	var point dto.IndicatorPoint
	if r.load(ctx, key, &point) {
		return &point, nil
	}

	p, err := r.next.Indicator(ctx, ticker, function, params)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, p)
	return p, nil
}

func (r *cachedMarketDataRepository) load(ctx context.Context, key string, out interface{}) bool {
	raw, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("Failed to read market data cache", logger.ErrorField(err), logger.StringField("key", key))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		r.logger.Warn("Discarding corrupt market data cache entry", logger.ErrorField(err), logger.StringField("key", key))
		return false
	}
	return true
}

func (r *cachedMarketDataRepository) store(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.redisClient.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn("Failed to write market data cache", logger.ErrorField(err), logger.StringField("key", key))
	}
}

func encodeParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, params[k]))
	}
	return strings.Join(parts, ",")
}
