package service

import (
	"context"
	"time"

	"exploresync-be/internal/model"
	"exploresync-be/internal/pkg/logger"
	"exploresync-be/internal/repository"
	"exploresync-be/pkg/events"
	pktNats "exploresync-be/pkg/nats"

	"gorm.io/datatypes"
)

// LocationService maintains the last known position per user. One row per
// username, last write wins.
type LocationService struct {
	locations repository.LocationRepository
	users     repository.UserRepository
	groups    *GroupService
	natsPub   *pktNats.Publisher
	logger    logger.ILogger
}

func NewLocationService(locations repository.LocationRepository, users repository.UserRepository, groups *GroupService, natsPub *pktNats.Publisher, log logger.ILogger) *LocationService {
	return &LocationService{
		locations: locations,
		users:     users,
		groups:    groups,
		natsPub:   natsPub,
		logger:    log,
	}
}

// Update validates that both user and group exist, then upserts the user's
// location and returns the stored copy.
func (s *LocationService) Update(ctx context.Context, username string, coordinates []float64, groupId string) (*model.Location, error) {
	userExists, err := s.users.Exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if !userExists {
		return nil, ErrUserNotFound
	}

	groupExists, err := s.groups.Exists(ctx, groupId)
	if err != nil {
		return nil, err
	}
	if !groupExists {
		return nil, ErrGroupNotFound
	}

	location := &model.Location{
		Username:    username,
		Coordinates: datatypes.NewJSONSlice(coordinates),
	}
	if err := s.locations.Upsert(ctx, location); err != nil {
		return nil, err
	}

	if s.natsPub != nil {
		evt := events.BaseEvent{
			Type: "LOCATION_UPDATED",
			Data: map[string]interface{}{
				"username": username,
				"group_id": groupId,
			},
			OccurredAt: time.Now(),
		}
		if err := s.natsPub.Publish(ctx, evt); err != nil {
			s.logger.Warn("LocationService", "Failed to publish LOCATION_UPDATED", map[string]interface{}{"error": err.Error()})
		}
	}

	return location, nil
}

// GroupLocations returns the stored locations of a group's members, for
// map snapshots.
func (s *LocationService) GroupLocations(ctx context.Context, groupId string) ([]model.Location, error) {
	members, err := s.groups.Members(ctx, groupId)
	if err != nil {
		return nil, err
	}
	return s.locations.FindByUsernames(ctx, members)
}
