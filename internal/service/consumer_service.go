package service

import (
	"context"
	"encoding/json"
	"time"

	"storepal-voice-be/internal/dto"
	"storepal-voice-be/internal/entity"
	"storepal-voice-be/internal/pkg/logger"
	"storepal-voice-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the search-performed topic and persists one
// SearchLog row per event. Invalid payloads are acked to prevent infinite
// retry; repository failures are nacked for redelivery.
type consumerService struct {
	pubSub     message.Subscriber
	topicName  string
	searchLogs contract.SearchLogRepository
	logger     logger.ILogger
}

func NewConsumerService(
	pubSub message.Subscriber,
	topicName string,
	searchLogs contract.SearchLogRepository,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		searchLogs: searchLogs,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.SearchPerformedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal search event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	searchLog := entity.SearchLog{
		Id:             uuid.New(),
		ConversationId: payload.ConversationId,
		Query:          payload.Query,
		ResultCount:    payload.ResultCount,
		TopScore:       payload.TopScore,
		DurationMs:     payload.DurationMs,
		CreatedAt:      time.Now(),
	}

	if err := cs.searchLogs.Create(ctx, &searchLog); err != nil {
		cs.logger.Error("ConsumerService", "Failed to persist search log", map[string]interface{}{
			"query": payload.Query,
			"error": err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}
