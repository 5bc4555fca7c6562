package registration

import (
	"time"

	"github.com/KarlovS28/dela/internal"
)

// Status of a registration request. Pending requests await an
// administrator's decision; approved and rejected are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is a self-service sign-up awaiting review. Approval creates a
// user account with the configured default role.
type Request struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"size:255;not null;index"`
	FullName     string     `json:"full_name" gorm:"column:full_name;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;size:255;not null"`
	Status       Status     `json:"status" gorm:"size:20;not null;default:pending;index"`
	DecidedBy    *int64     `json:"decided_by,omitempty" gorm:"column:decided_by"`
	DecidedAt    *time.Time `json:"decided_at,omitempty" gorm:"column:decided_at"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Request) TableName() string {
	return "registration_requests"
}

func (r *Request) IsDecided() bool {
	return r.Status != StatusPending
}

// Snapshot captures the audit-relevant fields.
type Snapshot struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Status   Status `json:"status"`
}

func (r *Request) Snapshot() Snapshot {
	return Snapshot{Email: r.Email, FullName: r.FullName, Status: r.Status}
}

// Domain errors
var (
	ErrRequestNotFound = internal.NewNotFoundError("registration request not found", internal.ErrCodeRequestNotFound)
	ErrRequestDecided  = internal.NewConflictError("registration request already decided", internal.ErrCodeRequestDecided)
)
