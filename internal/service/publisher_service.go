package service

import (
	"context"
	"encoding/json"

	"storepal-voice-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
	PublishSearchPerformed(msg *dto.SearchPerformedMessage) error
}

type publisherService struct {
	topicName string
	pubSub    message.Publisher
}

func NewPublisherService(topicName string, pubSub message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return p.pubSub.Publish(p.topicName, msg)
}

func (p *publisherService) PublishSearchPerformed(payload *dto.SearchPerformedMessage) error {
	msgJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Publish(context.Background(), msgJson)
}
