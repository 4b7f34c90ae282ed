package progress

import (
	"context"
	"encoding/json"

	"gm-shield-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Sink receives decoded progress events, typically the websocket hub.
type Sink interface {
	BroadcastProgress(event Event)
}

type IConsumer interface {
	Consume(ctx context.Context) error
}

type consumer struct {
	pubSub *gochannel.GoChannel
	topic  string
	sink   Sink
	log    logger.ILogger
}

func NewConsumer(pubSub *gochannel.GoChannel, sink Sink, log logger.ILogger) IConsumer {
	return &consumer{
		pubSub: pubSub,
		topic:  TopicName,
		sink:   sink,
		log:    log,
	}
}

func (c *consumer) Consume(ctx context.Context) error {
	messages, err := c.pubSub.Subscribe(ctx, c.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(msg)
		}
	}()

	return nil
}

func (c *consumer) processMessage(msg *message.Message) {
	var event Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		// Ack malformed messages to prevent infinite retry
		c.log.Warn("progress", "dropping malformed progress message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	c.sink.BroadcastProgress(event)
	msg.Ack()
}
