package consumer

import (
	"context"
	"sync"
	"time"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/internal/advisor/service"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/utils"
)

// RedisConsumer drains the recommendation stream and reclaims stalled tasks.
type RedisConsumer struct {
	cfg         *config.Config
	taskService service.RecommendationTaskService
	logger      *logger.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(cfg *config.Config, taskService service.RecommendationTaskService, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		cfg:         cfg,
		taskService: taskService,
		logger:      log,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the consumer's task processing loop.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.taskService.ProcessTask, common.RedisStreamStockRecommendation, c.cfg.Consumer.Timeout)

	// handle retry
	c.RegisterTickerHandler(ctx, c.taskService.ProcessRetries, c.cfg.Consumer.RetryInterval, c.cfg.Consumer.Timeout,
		common.RedisStreamStockRecommendation+"-retry")
}

func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

func (c *RedisConsumer) RegisterTickerHandler(ctx context.Context, fn func(ctx context.Context), interval time.Duration, timeout time.Duration, name string) {
	c.logger.Info("Registering ticker handler",
		logger.Field("name", name),
		logger.Field("interval", interval),
		logger.Field("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			case <-ctx.Done():
				c.logger.Info("Ticker handler stopping due to context cancellation", logger.Field("name", name))
				return
			case <-c.stopChan:
				c.logger.Info("Ticker handler stopping", logger.Field("name", name))
				return
			}
		}
	})
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
