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

// GroupNotificationService persists group event announcements.
type GroupNotificationService struct {
	notifications repository.NotificationRepository
	groups        *GroupService
	natsPub       *pktNats.Publisher
	logger        logger.ILogger
}

func NewGroupNotificationService(notifications repository.NotificationRepository, groups *GroupService, natsPub *pktNats.Publisher, log logger.ILogger) *GroupNotificationService {
	return &GroupNotificationService{
		notifications: notifications,
		groups:        groups,
		natsPub:       natsPub,
		logger:        log,
	}
}

// Add validates the target group and persists the notification, returning
// the stored copy.
func (s *GroupNotificationService) Add(ctx context.Context, groupId, title, description string) (*model.Notification, error) {
	exists, err := s.groups.Exists(ctx, groupId)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrGroupNotFound
	}

	notification := &model.Notification{
		GroupId:     groupId,
		Title:       title,
		Description: description,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, err
	}

	if s.natsPub != nil {
		evt := events.BaseEvent{
			Type: "GROUP_NOTIFICATION_CREATED",
			Data: map[string]interface{}{
				"notification_id": notification.Id.String(),
				"group_id":        notification.GroupId,
				"title":           notification.Title,
			},
			OccurredAt: time.Now(),
		}
		if err := s.natsPub.Publish(ctx, evt); err != nil {
			s.logger.Warn("GroupNotificationService", "Failed to publish GROUP_NOTIFICATION_CREATED", map[string]interface{}{"error": err.Error()})
		}
	}

	return notification, nil
}

// List returns a group's notifications, newest first.
func (s *GroupNotificationService) List(ctx context.Context, groupId string) ([]model.Notification, error) {
	return s.notifications.FindByGroup(ctx, groupId)
}
