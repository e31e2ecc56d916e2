package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"exploresync-be/internal/repository"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// groupActivityMessage travels over the in-process bus from the hub's
// write paths to the activity consumer.
type groupActivityMessage struct {
	GroupId    string    `json:"group_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// IActivityPublisher decouples the domain services from the bus; the hub
// records activity without waiting for the group row update.
type IActivityPublisher interface {
	PublishActivity(groupId string)
}

type activityPublisher struct {
	pubSub    *gochannel.GoChannel
	topicName string
}

func NewActivityPublisher(pubSub *gochannel.GoChannel, topicName string) IActivityPublisher {
	return &activityPublisher{pubSub: pubSub, topicName: topicName}
}

func (p *activityPublisher) PublishActivity(groupId string) {
	payload, err := json.Marshal(groupActivityMessage{
		GroupId:    groupId,
		OccurredAt: time.Now(),
	})
	if err != nil {
		log.Printf("[ERROR] Failed to marshal activity message: %v", err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pubSub.Publish(p.topicName, msg); err != nil {
		log.Printf("[ERROR] Failed to publish activity for group %s: %v", groupId, err)
	}
}

type IActivityConsumer interface {
	Consume(ctx context.Context) error
}

// activityConsumer drains the bus and stamps Group.LastActivityAt.
type activityConsumer struct {
	pubSub    *gochannel.GoChannel
	topicName string
	groups    repository.GroupRepository
}

func NewActivityConsumer(pubSub *gochannel.GoChannel, topicName string, groups repository.GroupRepository) IActivityConsumer {
	return &activityConsumer{
		pubSub:    pubSub,
		topicName: topicName,
		groups:    groups,
	}
}

func (c *activityConsumer) Consume(ctx context.Context) error {
	messages, err := c.pubSub.Subscribe(ctx, c.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			c.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (c *activityConsumer) processMessage(ctx context.Context, msg *message.Message) {
	var payload groupActivityMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal activity message: %v", err)
		msg.Ack() // invalid payloads would never succeed on retry
		return
	}

	if err := c.groups.TouchActivity(ctx, payload.GroupId, payload.OccurredAt); err != nil {
		log.Printf("[ERROR] Failed to touch activity for group %s: %v", payload.GroupId, err)
		msg.Nack()
		return
	}

	msg.Ack()
}
