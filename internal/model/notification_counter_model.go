package model

import (
	"github.com/google/uuid"
)

// CounterKind selects which unread tally a counter operation targets.
// It is a closed enum so repository code never interpolates a raw column
// name coming from the wire.
type CounterKind string

const (
	ChatCount  CounterKind = "chat_count"
	GroupCount CounterKind = "group_count"
)

// Column returns the database column backing this kind, or "" for an
// unknown kind.
func (k CounterKind) Column() string {
	switch k {
	case ChatCount, GroupCount:
		return string(k)
	default:
		return ""
	}
}

// NotificationCounter holds the per-(group, user) unread tallies. Exactly
// one row per pair that has ever joined; counts only ever move up by the
// bulk increment or down to exactly zero on read acknowledgement.
type NotificationCounter struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GroupId    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_counters_group_user,priority:1" json:"group_id"`
	Username   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_counters_group_user,priority:2" json:"username"`
	ChatCount  int64     `gorm:"not null;default:0" json:"chat_count"`
	GroupCount int64     `gorm:"not null;default:0" json:"group_count"`
}

func (NotificationCounter) TableName() string {
	return "notification_counters"
}
