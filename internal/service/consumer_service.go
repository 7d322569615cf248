package service

import (
	"context"
	"encoding/json"

	"docinsight-be/internal/dto"
	"docinsight-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService bridges the in-process message bus to the processor queue.
// API handlers publish ingest tasks; this consumer feeds them into the
// deduplicating processor.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	processor *ProcessorService
	log       logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	processor *ProcessorService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		processor: processor,
		log:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.IngestTaskMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		cs.log.Error("consumer", "failed to unmarshal ingest task", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.processor.Enqueue(payload)
	msg.Ack()
}
