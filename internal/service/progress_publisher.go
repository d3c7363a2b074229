package service

import (
	"context"
	"encoding/json"
	"fmt"

	"prime-research/internal/dto"
	"prime-research/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	ProgressTopic   = "research.progress"
	publisherModule = "PROGRESS_PUBLISHER"
)

type IProgressPublisher interface {
	Publish(ctx context.Context, event dto.ProgressEvent) error
	// Subscribe streams events until ctx is done.
	Subscribe(ctx context.Context) (<-chan dto.ProgressEvent, error)
}

// progressPublisher expects a GoChannel configured with
// BlockPublishUntilSubscriberAck so subscribers see events in stage order.
type progressPublisher struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewProgressPublisher(pubSub *gochannel.GoChannel, logger logger.ILogger) IProgressPublisher {
	return &progressPublisher{
		pubSub: pubSub,
		logger: logger,
	}
}

func (p *progressPublisher) Publish(ctx context.Context, event dto.ProgressEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode progress event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return p.pubSub.Publish(ProgressTopic, msg)
}

func (p *progressPublisher) Subscribe(ctx context.Context) (<-chan dto.ProgressEvent, error) {
	messages, err := p.pubSub.Subscribe(ctx, ProgressTopic)
	if err != nil {
		return nil, err
	}

	out := make(chan dto.ProgressEvent)
	go func() {
		defer close(out)
		for msg := range messages {
			var event dto.ProgressEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				p.logger.Warn(publisherModule, "Dropping malformed progress message", map[string]interface{}{"error": err})
				msg.Ack()
				continue
			}
			select {
			case out <- event:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}
