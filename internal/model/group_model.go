package model

import (
	"time"

	"gorm.io/datatypes"
)

// Group is the collaborator record the session layer reads for existence
// and membership checks. Group CRUD itself lives outside this subsystem;
// LastActivityAt is maintained by the activity consumer.
type Group struct {
	Id             string                      `gorm:"type:varchar(100);primaryKey" json:"id"`
	Title          string                      `gorm:"type:varchar(200);not null" json:"title"`
	Host           string                      `gorm:"type:varchar(100);not null" json:"host"`
	Members        datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"members"`
	LastActivityAt *time.Time                  `json:"last_activity_at,omitempty"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Group) TableName() string {
	return "groups"
}
