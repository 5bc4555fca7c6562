package user

import (
	"time"

	"github.com/KarlovS28/dela/internal"
)

// User is an account that can sign in. Every user has exactly one role;
// deactivated users keep their row but cannot authenticate.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;size:255;not null"`
	RoleID       int64     `json:"role_id" gorm:"column:role_id;not null;index"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

// Snapshot captures the audit-relevant fields. Password hashes never go
// into the audit trail.
type Snapshot struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	RoleID   int64  `json:"role_id"`
	IsActive bool   `json:"is_active"`
}

func (u *User) Snapshot() Snapshot {
	return Snapshot{
		Email:    u.Email,
		Name:     u.Name,
		RoleID:   u.RoleID,
		IsActive: u.IsActive,
	}
}

// Domain errors
var (
	ErrUserNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrEmailTaken   = internal.NewConflictError("email already registered", internal.ErrCodeEmailTaken)
)
