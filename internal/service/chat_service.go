package service

import (
	"context"
	"time"

	"exploresync-be/internal/model"
	"exploresync-be/internal/pkg/logger"
	"exploresync-be/internal/repository"
	"exploresync-be/pkg/events"
	pktNats "exploresync-be/pkg/nats"
)

// ChatService persists chat messages and serves join-time history.
type ChatService struct {
	messages repository.MessageRepository
	groups   *GroupService
	natsPub  *pktNats.Publisher
	logger   logger.ILogger
}

func NewChatService(messages repository.MessageRepository, groups *GroupService, natsPub *pktNats.Publisher, log logger.ILogger) *ChatService {
	return &ChatService{
		messages: messages,
		groups:   groups,
		natsPub:  natsPub,
		logger:   log,
	}
}

// AddMessage validates the target group, persists the message and returns
// the stored copy with its server-assigned id and timestamp. A missing
// group yields ErrGroupNotFound and persists nothing.
func (s *ChatService) AddMessage(ctx context.Context, username, content, groupId string) (*model.Message, error) {
	exists, err := s.groups.Exists(ctx, groupId)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrGroupNotFound
	}

	message := &model.Message{
		Author:  username,
		Content: content,
		GroupId: groupId,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}

	if s.natsPub != nil {
		evt := events.BaseEvent{
			Type: "MESSAGE_CREATED",
			Data: map[string]interface{}{
				"message_id": message.Id.String(),
				"author":     message.Author,
				"group_id":   message.GroupId,
			},
			OccurredAt: time.Now(),
		}
		if err := s.natsPub.Publish(ctx, evt); err != nil {
			s.logger.Warn("ChatService", "Failed to publish MESSAGE_CREATED", map[string]interface{}{"error": err.Error()})
		}
	}

	return message, nil
}

// History returns the full message history of a group, oldest first.
func (s *ChatService) History(ctx context.Context, groupId string) ([]model.Message, error) {
	return s.messages.FindByGroup(ctx, groupId)
}
