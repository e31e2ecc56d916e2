package memory

import (
	"context"
	"fmt"
	"sync"

	"exploresync-be/internal/model"

	"github.com/google/uuid"
)

type counterKey struct {
	groupId  string
	username string
}

type CounterRepository struct {
	mu       sync.Mutex
	counters map[counterKey]*model.NotificationCounter
}

func NewCounterRepository() *CounterRepository {
	return &CounterRepository{counters: make(map[counterKey]*model.NotificationCounter)}
}

func (r *CounterRepository) Ensure(ctx context.Context, groupId, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := counterKey{groupId, username}
	if _, ok := r.counters[key]; !ok {
		r.counters[key] = &model.NotificationCounter{
			Id:       uuid.New(),
			GroupId:  groupId,
			Username: username,
		}
	}
	return nil
}

func (r *CounterRepository) IncrementExcept(ctx context.Context, groupId, exceptUsername string, kind model.CounterKind) error {
	if kind.Column() == "" {
		return fmt.Errorf("unknown counter kind %q", kind)
	}

	// The single lock makes the whole sweep atomic, mirroring the bulk
	// UPDATE of the GORM implementation.
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, counter := range r.counters {
		if key.groupId != groupId || key.username == exceptUsername {
			continue
		}
		if kind == model.ChatCount {
			counter.ChatCount++
		} else {
			counter.GroupCount++
		}
	}
	return nil
}

func (r *CounterRepository) Reset(ctx context.Context, groupId, username string, kind model.CounterKind) error {
	if kind.Column() == "" {
		return fmt.Errorf("unknown counter kind %q", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	counter, ok := r.counters[counterKey{groupId, username}]
	if !ok {
		return nil
	}
	if kind == model.ChatCount {
		counter.ChatCount = 0
	} else {
		counter.GroupCount = 0
	}
	return nil
}

func (r *CounterRepository) Get(ctx context.Context, groupId, username string, kind model.CounterKind) (int64, error) {
	if kind.Column() == "" {
		return 0, fmt.Errorf("unknown counter kind %q", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	counter, ok := r.counters[counterKey{groupId, username}]
	if !ok {
		return 0, nil
	}
	if kind == model.ChatCount {
		return counter.ChatCount, nil
	}
	return counter.GroupCount, nil
}
