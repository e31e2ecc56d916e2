package repository

import (
	"context"

	"exploresync-be/internal/model"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	// FindByGroup returns all messages for a group in creation order
	// (oldest first).
	FindByGroup(ctx context.Context, groupId string) ([]model.Message, error)
}
