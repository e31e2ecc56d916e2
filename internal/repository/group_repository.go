package repository

import (
	"context"
	"time"

	"exploresync-be/internal/model"
)

type GroupRepository interface {
	// FindById returns (nil, nil) when the group does not exist.
	FindById(ctx context.Context, id string) (*model.Group, error)
	TouchActivity(ctx context.Context, id string, at time.Time) error
}
