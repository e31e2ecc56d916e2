package memory

import (
	"context"
	"sync"
)

type UserRepository struct {
	mu    sync.Mutex
	users map[string]struct{}
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]struct{})}
}

// Put seeds a user; test setup helper.
func (r *UserRepository) Put(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[username] = struct{}{}
}

func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[username]
	return ok, nil
}
