package model

import "time"

// User is the collaborator record consulted for existence checks before a
// location upsert. Credentials and 2FA fields belong to the auth service
// and are not mapped here.
type User struct {
	Username  string    `gorm:"type:varchar(100);primaryKey" json:"username"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
