package implementation

import (
	"context"

	"exploresync-be/internal/model"
	"exploresync-be/internal/repository"

	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &MessageRepositoryImpl{db: db}
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *MessageRepositoryImpl) FindByGroup(ctx context.Context, groupId string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupId).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}
