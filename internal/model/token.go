package model

import (
	"time"

	"github.com/google/uuid"
)

// Token is one active bearer credential issued to a user. The rows for a user
// form the ordered set of active sessions: appended on signup/login, removed
// one at a time on logout, cleared on logout-all and account deletion.
type Token struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;index"`
	Token     string    `json:"token" gorm:"size:512;not null;index"`
	CreatedAt time.Time `json:"created_at"`
}
