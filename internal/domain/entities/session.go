package entities

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SessionStatusActive  = "active"
	SessionStatusExpired = "expired"
)

// Session correlates a browser's activity via the sessionId cookie,
// independent of any user authentication.
type Session struct {
	ID           string            `json:"id" gorm:"type:text;primary_key;column:id"`
	CreatedAt    time.Time         `json:"createdAt" gorm:"column:created_at;not null;default:now()"`
	LastActivity time.Time         `json:"lastActivity" gorm:"column:last_activity;not null;default:now()"`
	Status       string            `json:"status" gorm:"column:status;not null;default:'active'"`
	UserEmail    *string           `json:"userEmail,omitempty" gorm:"column:user_email"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty" gorm:"column:metadata;type:jsonb"`
}

func (Session) TableName() string {
	return "sessions"
}
