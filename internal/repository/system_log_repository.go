package repository

import (
	"context"

	"exploresync-be/internal/model"
)

type SystemLogRepository interface {
	Create(ctx context.Context, entry *model.SystemLog) error
}
