package notification

import (
	"time"

	"github.com/KarlovS28/dela/internal"
)

// Notification is an in-app message for one user. Notifications are
// produced by event subscribers, never directly by handlers. EntityType
// and EntityID point at the record the message is about so the UI can
// link to it.
type Notification struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	UserID     int64     `json:"user_id" gorm:"column:user_id;not null;index"`
	Title      string    `json:"title" gorm:"size:255;not null"`
	Body       string    `json:"body" gorm:"size:1000"`
	EntityType string    `json:"entity_type" gorm:"column:entity_type;size:100"`
	EntityID   int64     `json:"entity_id" gorm:"column:entity_id"`
	IsRead     bool      `json:"is_read" gorm:"column:is_read;default:false;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Domain errors
var (
	ErrNotificationNotFound = internal.NewNotFoundError("notification not found", internal.ErrCodeNotificationNotFound)
)
