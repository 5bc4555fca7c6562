package department

import (
	"time"

	"github.com/KarlovS28/dela/internal"
)

// Department groups employees on the roster. Names are unique.
type Department struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Description string    `json:"description,omitempty" gorm:"size:500"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Department) TableName() string {
	return "departments"
}

// Snapshot captures the mutable fields for audit entries.
type Snapshot struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d *Department) Snapshot() Snapshot {
	return Snapshot{Name: d.Name, Description: d.Description}
}

// Domain errors
var (
	ErrDepartmentNotFound  = internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
	ErrDepartmentNameTaken = internal.NewConflictError("department name already taken", internal.ErrCodeDepartmentNameTaken)
	ErrDepartmentInUse     = internal.NewConflictError("department still has employees", internal.ErrCodeDepartmentInUse)
)
