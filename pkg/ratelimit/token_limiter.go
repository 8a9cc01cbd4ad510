package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// TokenLimiter bounds the number of model tokens spent per minute.
type TokenLimiter struct {
	limiter *rate.Limiter
	max     int
}

// NewTokenLimiter allows up to maxTokensPerMinute tokens, refilled continuously.
// A non-positive limit disables limiting.
func NewTokenLimiter(maxTokensPerMinute int) *TokenLimiter {
	if maxTokensPerMinute <= 0 {
		return &TokenLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	perSecond := rate.Limit(float64(maxTokensPerMinute) / time.Minute.Seconds())
	return &TokenLimiter{
		limiter: rate.NewLimiter(perSecond, maxTokensPerMinute),
		max:     maxTokensPerMinute,
	}
}

// Wait blocks until n tokens are available or ctx is done.
func (t *TokenLimiter) Wait(ctx context.Context, n int) error {
	if n <= 0 || t.max == 0 {
		return nil
	}
	if n > t.max {
		return fmt.Errorf("requested %d tokens exceeds per-minute budget %d", n, t.max)
	}
	return t.limiter.WaitN(ctx, n)
}

// GetRemaining reports the tokens currently available.
func (t *TokenLimiter) GetRemaining() int {
	if t.max == 0 {
		return 0
	}
	return int(t.limiter.Tokens())
}
