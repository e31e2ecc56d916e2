package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is a persisted chat entry. Messages are append-only: the hub
// never mutates or deletes them (group deletion cascades externally).
type Message struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Author    string    `gorm:"type:varchar(100);not null;index" json:"author"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	GroupId   string    `gorm:"type:varchar(100);not null;index:idx_messages_group_created,priority:1" json:"group_id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_messages_group_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Message) TableName() string {
	return "messages"
}
