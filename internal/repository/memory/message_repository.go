// Package memory holds map-backed repository implementations. They keep the
// same contracts as the GORM implementations and back the hub and service
// tests, where a database would only get in the way.
package memory

import (
	"context"
	"sync"
	"time"

	"exploresync-be/internal/model"

	"github.com/google/uuid"
)

type MessageRepository struct {
	mu       sync.Mutex
	messages []model.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	message.UpdatedAt = message.CreatedAt
	r.messages = append(r.messages, *message)
	return nil
}

func (r *MessageRepository) FindByGroup(ctx context.Context, groupId string) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Insertion order doubles as creation order here.
	var out []model.Message
	for _, m := range r.messages {
		if m.GroupId == groupId {
			out = append(out, m)
		}
	}
	return out, nil
}
