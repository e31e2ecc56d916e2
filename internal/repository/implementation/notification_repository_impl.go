package implementation

import (
	"context"

	"exploresync-be/internal/model"
	"exploresync-be/internal/repository"

	"gorm.io/gorm"
)

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindByGroup(ctx context.Context, groupId string) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupId).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}
