package employee

import (
	"time"

	"github.com/KarlovS28/dela/internal"
)

// Employee is a staff record. Its lifecycle has two states: Active and
// Archived. Archiving is terminal (there is no un-archive operation)
// and forces every assigned equipment item back to the warehouse.
type Employee struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	FullName       string    `json:"full_name" gorm:"column:full_name;size:255;not null"`
	Position       string    `json:"position" gorm:"size:255"`
	Grade          string    `json:"grade" gorm:"size:100"`
	DepartmentID   *int64    `json:"department_id,omitempty" gorm:"column:department_id;index"`
	PassportNumber string    `json:"passport_number,omitempty" gorm:"column:passport_number;size:100"`
	Snils          string    `json:"snils,omitempty" gorm:"size:50"`
	Phone          string    `json:"phone,omitempty" gorm:"size:50"`
	Email          string    `json:"email,omitempty" gorm:"size:255"`
	IsArchived     bool      `json:"is_archived" gorm:"column:is_archived;default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Employee) TableName() string {
	return "employees"
}

// Snapshot captures the mutable fields for audit entries.
type Snapshot struct {
	FullName     string `json:"full_name"`
	Position     string `json:"position"`
	Grade        string `json:"grade"`
	DepartmentID *int64 `json:"department_id"`
	IsArchived   bool   `json:"is_archived"`
}

func (e *Employee) Snapshot() Snapshot {
	var departmentID *int64
	if e.DepartmentID != nil {
		v := *e.DepartmentID
		departmentID = &v
	}
	return Snapshot{
		FullName:     e.FullName,
		Position:     e.Position,
		Grade:        e.Grade,
		DepartmentID: departmentID,
		IsArchived:   e.IsArchived,
	}
}

// ReturnedEquipment describes one item the archive cascade sent back to
// the warehouse, so the service can audit each move.
type ReturnedEquipment struct {
	EquipmentID     int64
	InventoryNumber string
}

// Domain errors
var (
	ErrEmployeeNotFound = internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	ErrEmployeeArchived = internal.NewConflictError("employee is archived", internal.ErrCodeEmployeeArchived)
	ErrHoldsEquipment   = internal.NewConflictError("employee still holds assigned equipment", internal.ErrCodeEmployeeHasItems)
)
