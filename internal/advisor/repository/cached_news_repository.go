package repository

import (
	"context"
	"time"

	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/logger"

	"github.com/patrickmn/go-cache"
)

type cachedNewsRepository struct {
	next   NewsRepository
	cache  *cache.Cache
	logger *logger.Logger
}

// NewCachedNewsRepository wraps a news source with an in-memory read-through cache.
// Cached slices are copied on read so callers cannot mutate shared state.
func NewCachedNewsRepository(next NewsRepository, ttl time.Duration, log *logger.Logger) NewsRepository {
	if ttl <= 0 {
		return next
	}
	return &cachedNewsRepository{
		next:   next,
		cache:  cache.New(ttl, 2*ttl),
		logger: log,
	}
}

func (r *cachedNewsRepository) Name() string { return r.next.Name() }

func (r *cachedNewsRepository) Search(ctx context.Context, query string) ([]dto.NewsSearchResult, error) {
	key := r.next.Name() + ":" + query
	if v, ok := r.cache.Get(key); ok {
		r.logger.Debug("News cache hit", logger.StringField("query", query))
		cached := v.([]dto.NewsSearchResult)
		out := make([]dto.NewsSearchResult, len(cached))
		copy(out, cached)
		return out, nil
	}

	results, err := r.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	stored := make([]dto.NewsSearchResult, len(results))
	copy(stored, results)
	r.cache.SetDefault(key, stored)
	return results, nil
}
