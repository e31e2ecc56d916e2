package memory

import (
	"context"
	"sync"
	"time"

	"exploresync-be/internal/model"

	"github.com/google/uuid"
)

type LocationRepository struct {
	mu        sync.Mutex
	locations map[string]model.Location
}

func NewLocationRepository() *LocationRepository {
	return &LocationRepository{locations: make(map[string]model.Location)}
}

func (r *LocationRepository) Upsert(ctx context.Context, location *model.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.locations[location.Username]; ok {
		location.Id = existing.Id
		location.CreatedAt = existing.CreatedAt
	} else {
		location.Id = uuid.New()
		location.CreatedAt = time.Now()
	}
	location.UpdatedAt = time.Now()
	r.locations[location.Username] = *location
	return nil
}

func (r *LocationRepository) FindByUsername(ctx context.Context, username string) (*model.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if loc, ok := r.locations[username]; ok {
		return &loc, nil
	}
	return nil, nil
}

func (r *LocationRepository) FindByUsernames(ctx context.Context, usernames []string) ([]model.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Location
	for _, u := range usernames {
		if loc, ok := r.locations[u]; ok {
			out = append(out, loc)
		}
	}
	return out, nil
}
