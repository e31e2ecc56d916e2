package memory

import (
	"context"
	"sync"
	"time"

	"exploresync-be/internal/model"
)

type GroupRepository struct {
	mu     sync.Mutex
	groups map[string]model.Group
}

func NewGroupRepository() *GroupRepository {
	return &GroupRepository{groups: make(map[string]model.Group)}
}

// Put seeds a group; test setup helper.
func (r *GroupRepository) Put(group model.Group) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[group.Id] = group
}

func (r *GroupRepository) FindById(ctx context.Context, id string) (*model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if group, ok := r.groups[id]; ok {
		return &group, nil
	}
	return nil, nil
}

func (r *GroupRepository) TouchActivity(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if group, ok := r.groups[id]; ok {
		group.LastActivityAt = &at
		r.groups[id] = group
	}
	return nil
}
