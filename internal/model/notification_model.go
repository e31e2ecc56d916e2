package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a persisted group event announcement. Same lifecycle as
// Message; retrieval is newest first.
type Notification struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GroupId     string    `gorm:"type:varchar(100);not null;index:idx_notifications_group_created,priority:1" json:"group_id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_notifications_group_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
