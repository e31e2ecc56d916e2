package repository

import (
	"context"

	"exploresync-be/internal/model"
)

type LocationRepository interface {
	// Upsert writes the location row for location.Username, creating it if
	// absent. Last write wins; the stored row is written back to location.
	Upsert(ctx context.Context, location *model.Location) error
	FindByUsername(ctx context.Context, username string) (*model.Location, error)
	FindByUsernames(ctx context.Context, usernames []string) ([]model.Location, error)
}
