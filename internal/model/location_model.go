package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Location is the last known position of a user. One row per username,
// last write wins; no history is kept.
type Location struct {
	Id          uuid.UUID                    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Username    string                       `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	Coordinates datatypes.JSONSlice[float64] `gorm:"type:jsonb" json:"coordinates"`
	IsManual    bool                         `gorm:"default:false" json:"is_manual"`
	CreatedAt   time.Time                    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Location) TableName() string {
	return "locations"
}
