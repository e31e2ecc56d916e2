package repository

import (
	"context"

	"exploresync-be/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	// FindByGroup returns all notifications for a group, newest first.
	FindByGroup(ctx context.Context, groupId string) ([]model.Notification, error)
}
