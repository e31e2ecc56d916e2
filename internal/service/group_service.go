package service

import (
	"context"
	"time"

	"exploresync-be/internal/model"
	"exploresync-be/internal/repository"

	"github.com/patrickmn/go-cache"
)

// GroupService answers group existence and membership questions for the
// session layer. The hub validates the target group on every message, so
// lookups sit behind a short TTL cache.
type GroupService struct {
	repo  repository.GroupRepository
	cache *cache.Cache
}

func NewGroupService(repo repository.GroupRepository, ttl time.Duration) *GroupService {
	return &GroupService{
		repo:  repo,
		cache: cache.New(ttl, 10*ttl),
	}
}

func (s *GroupService) find(ctx context.Context, groupId string) (*model.Group, error) {
	if x, found := s.cache.Get(groupId); found {
		return x.(*model.Group), nil
	}

	group, err := s.repo.FindById(ctx, groupId)
	if err != nil {
		return nil, err
	}
	if group != nil {
		// Absence is not cached: a group created moments later must be
		// visible on the next lookup.
		s.cache.Set(groupId, group, cache.DefaultExpiration)
	}
	return group, nil
}

func (s *GroupService) Exists(ctx context.Context, groupId string) (bool, error) {
	group, err := s.find(ctx, groupId)
	if err != nil {
		return false, err
	}
	return group != nil, nil
}

// Members returns the stored member list, or ErrGroupNotFound.
func (s *GroupService) Members(ctx context.Context, groupId string) ([]string, error) {
	group, err := s.find(ctx, groupId)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group.Members, nil
}
