package service

import (
	"context"

	"exploresync-be/internal/model"
	"exploresync-be/internal/pkg/logger"
	"exploresync-be/internal/repository"
)

// CounterService owns the per-(group, user) unread tallies. Increment is a
// bulk atomic update over every counter row of the group except the actor's;
// Reset is the only path that ever lowers a value and it sets exactly 0.
type CounterService struct {
	repo   repository.CounterRepository
	logger logger.ILogger
}

func NewCounterService(repo repository.CounterRepository, log logger.ILogger) *CounterService {
	return &CounterService{repo: repo, logger: log}
}

// Ensure guarantees the (groupId, username) counter row exists so later
// increments reach this user.
func (s *CounterService) Ensure(ctx context.Context, groupId, username string) error {
	return s.repo.Ensure(ctx, groupId, username)
}

// Increment adds 1 to kind for every member of the group except
// exceptUsername.
func (s *CounterService) Increment(ctx context.Context, groupId, exceptUsername string, kind model.CounterKind) error {
	return s.repo.IncrementExcept(ctx, groupId, exceptUsername, kind)
}

// Reset zeroes kind for the single (groupId, username) row and returns the
// new value. Resetting an absent or already-zero counter is not an error.
func (s *CounterService) Reset(ctx context.Context, groupId, username string, kind model.CounterKind) (int64, error) {
	if err := s.repo.Reset(ctx, groupId, username, kind); err != nil {
		return 0, err
	}
	return 0, nil
}

// Read returns the current value of kind, 0 when no row exists.
func (s *CounterService) Read(ctx context.Context, groupId, username string, kind model.CounterKind) (int64, error) {
	return s.repo.Get(ctx, groupId, username, kind)
}
