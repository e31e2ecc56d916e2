package memory

import (
	"context"
	"sync"
	"time"

	"exploresync-be/internal/model"

	"github.com/google/uuid"
)

type NotificationRepository struct {
	mu            sync.Mutex
	notifications []model.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if notification.Id == uuid.Nil {
		notification.Id = uuid.New()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	notification.UpdatedAt = notification.CreatedAt
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *NotificationRepository) FindByGroup(ctx context.Context, groupId string) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Newest first.
	var out []model.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].GroupId == groupId {
			out = append(out, r.notifications[i])
		}
	}
	return out, nil
}
