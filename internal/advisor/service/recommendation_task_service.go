package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/internal/advisor/dto"
	"golang-stock-advisor/pkg/common"
	"golang-stock-advisor/pkg/logger"
	"golang-stock-advisor/pkg/telegram"
	"golang-stock-advisor/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RecommendationTaskService runs analyses queued on the recommendation stream.
type RecommendationTaskService interface {
	Enqueue(ctx context.Context, data dto.StreamDataRecommendation) (*dto.AsyncAnalysisResponse, error)
	ProcessTask(ctx context.Context)
	ProcessRetries(ctx context.Context)
	Execute(ctx context.Context, data dto.StreamDataRecommendation) error
}

type recommendationTaskService struct {
	cfg          *config.Config
	log          *logger.Logger
	redisClient  *redis.Client
	orchestrator Orchestrator
	telegramBot  telegram.Notifier
}

// NewRecommendationTaskService creates a new RecommendationTaskService.
func NewRecommendationTaskService(cfg *config.Config, log *logger.Logger, redisClient *redis.Client,
	orchestrator Orchestrator, telegramBot telegram.Notifier) RecommendationTaskService {
	if telegramBot == nil {
		telegramBot = telegram.NewNopNotifier()
	}
	return &recommendationTaskService{
		cfg:          cfg,
		log:          log,
		redisClient:  redisClient,
		orchestrator: orchestrator,
		telegramBot:  telegramBot,
	}
}

// Enqueue publishes the request on the stream. The request is validated first so bad input never reaches a worker.
func (s *recommendationTaskService) Enqueue(ctx context.Context, data dto.StreamDataRecommendation) (*dto.AsyncAnalysisResponse, error) {
	if s.redisClient == nil {
		return nil, errors.New("redis is not configured")
	}
	data.Request.Normalize()
	if err := data.Request.Validate(); err != nil {
		return nil, err
	}
	if data.RequestID == "" {
		data.RequestID = uuid.NewString()
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stream data: %w", err)
	}

	id, err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamStockRecommendation,
		MaxLen: s.cfg.Redis.StreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to publish analysis task: %w", err)
	}

	s.log.InfoContext(ctx, "Analysis task enqueued",
		logger.StringField("request_id", data.RequestID),
		logger.StringField("ticker", data.Request.Ticker),
		logger.StringField("message_id", id))
	return &dto.AsyncAnalysisResponse{RequestID: data.RequestID, MessageID: id, Status: "queued"}, nil
}

func (s *recommendationTaskService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamStockRecommendation, ">"},
		Count:    1,
		Block:    2 * time.Second,
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	streamData, ok := s.decode(message)
	if !ok {
		return
	}

	ctx = logger.WithRequestID(ctx, streamData.RequestID)
	if err := s.Execute(ctx, streamData); err != nil {
		s.log.ErrorContext(ctx, "Failed to run queued analysis", logger.ErrorField(err),
			logger.StringField("message_id", message.ID), logger.StringField("ticker", streamData.Request.Ticker))
		return
	}
	if err := s.AckNDel(ctx, common.RedisStreamStockRecommendation, message.ID); err != nil {
		return
	}
	s.log.DebugContext(ctx, "Queued analysis processed", logger.StringField("ticker", streamData.Request.Ticker))
}

func (s *recommendationTaskService) decode(message redis.XMessage) (dto.StreamDataRecommendation, bool) {
	var streamData dto.StreamDataRecommendation
	taskData, ok := message.Values["payload"].(string)
	if !ok {
		s.log.Error("field 'payload' not found or not a string in stream message", logger.StringField("message_id", message.ID))
		return streamData, false
	}
	if err := json.Unmarshal([]byte(taskData), &streamData); err != nil {
		s.log.Error("Failed to unmarshal task data", logger.ErrorField(err), logger.StringField("message_id", message.ID))
		return streamData, false
	}
	return streamData, true
}

// Execute runs one analysis and notifies the user when asked to.
// Invalid requests are dropped rather than retried.
func (s *recommendationTaskService) Execute(ctx context.Context, data dto.StreamDataRecommendation) error {
	rec, err := s.orchestrator.Analyze(ctx, data.UserID, data.Request)
	if err != nil {
		if errors.Is(err, dto.ErrInvalidRequest) {
			s.log.WarnContext(ctx, "Dropping invalid analysis task", logger.ErrorField(err))
			return nil
		}
		return err
	}

	if data.NotifyUser && data.TelegramID != 0 {
		if err := s.telegramBot.SendMessageUser(telegram.FormatRecommendationMessage(rec), data.TelegramID); err != nil {
			s.log.ErrorContext(ctx, "Failed to send recommendation to telegram", logger.ErrorField(err),
				logger.StringField("ticker", rec.Ticker))
		}
	}
	return nil
}

func (s *recommendationTaskService) AckNDel(ctx context.Context, streamName string, messageID string) error {
	if err := s.redisClient.XAck(ctx, streamName, common.RedisStreamGroup, messageID).Err(); err != nil {
		s.log.Error("Failed to acknowledge analysis task", logger.ErrorField(err), logger.StringField("message_id", messageID))
		return err
	}
	if err := s.redisClient.XDel(ctx, streamName, messageID).Err(); err != nil {
		s.log.Error("Failed to delete analysis task", logger.ErrorField(err), logger.StringField("message_id", messageID))
		return err
	}
	return nil
}

func (s *recommendationTaskService) ProcessRetries(ctx context.Context) {
	msgs, _, err := s.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   common.RedisStreamStockRecommendation,
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer + "-retry",
		MinIdle:  s.cfg.Consumer.MaxIdleDuration,
		Start:    "0",
		Count:    1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to claim analysis task on retry", logger.ErrorField(err))
		return
	}
	if len(msgs) == 0 {
		return
	}

	pendingInfo, err := s.redisClient.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: common.RedisStreamStockRecommendation,
		Group:  common.RedisStreamGroup,
		Start:  msgs[0].ID,
		End:    msgs[0].ID,
		Count:  1,
	}).Result()
	if err != nil {
		s.log.Error("Failed to get pending info", logger.ErrorField(err))
		return
	}
	if len(pendingInfo) == 0 {
		s.log.Warn("pending msg not found, but exist on xautoclaim", logger.StringField("message_id", msgs[0].ID))
		return
	}

	msg := msgs[0]
	streamData, ok := s.decode(msg)
	if !ok {
		_ = s.AckNDel(ctx, common.RedisStreamStockRecommendation, msg.ID)
		return
	}

	ctx = logger.WithRequestID(ctx, streamData.RequestID)
	if err := s.Execute(ctx, streamData); err != nil {
		retryCount := pendingInfo[0].RetryCount + 1
		s.log.ErrorContext(ctx, "Retry of queued analysis failed", logger.ErrorField(err),
			logger.StringField("message_id", msg.ID), logger.IntField("retry_count", int(retryCount)))

		if retryCount >= int64(s.cfg.Consumer.MaxRetry) {
			errType := fmt.Sprintf("Retry count exceeded for event %s", common.RedisStreamStockRecommendation)
			rawJSON, _ := json.Marshal(streamData)
			alert := telegram.FormatErrorAlertMessage(utils.TimeNowIn(s.cfg.App.TimeZone), errType, err.Error(), string(rawJSON))
			if err := s.telegramBot.SendMessage(alert); err != nil {
				s.log.Error("Failed to send telegram retry alert", logger.ErrorField(err))
			}
			_ = s.AckNDel(ctx, common.RedisStreamStockRecommendation, msg.ID)
		}
		return
	}

	if err := s.AckNDel(ctx, common.RedisStreamStockRecommendation, msg.ID); err != nil {
		return
	}
	s.log.InfoContext(ctx, "Retried analysis task processed", logger.StringField("ticker", streamData.Request.Ticker))
}
