package progress

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// TopicName is the in-process topic carrying ingestion progress updates.
const TopicName = "knowledge.progress"

// Event is a single progress update for an ingestion run.
type Event struct {
	SourceId uuid.UUID `json:"source_id"`
	FilePath string    `json:"file_path"`
	Status   string    `json:"status"`
	Progress float64   `json:"progress"`
	Step     string    `json:"step,omitempty"`
	Error    string    `json:"error,omitempty"`
}

type IPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type publisher struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewPublisher(pubSub *gochannel.GoChannel) IPublisher {
	return &publisher{
		pubSub: pubSub,
		topic:  TopicName,
	}
}

func (p *publisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return p.pubSub.Publish(p.topic, msg)
}
