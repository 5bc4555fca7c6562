package equipment

import (
	"time"

	"github.com/KarlovS28/dela/internal"
)

// Category is the equipment classification.
type Category string

const (
	CategoryTechnika  Category = "technika"
	CategoryFurniture Category = "furniture"
)

func (c Category) Valid() bool {
	return c == CategoryTechnika || c == CategoryFurniture
}

// Equipment is a single inventory item. Its lifecycle has three states:
// Assigned (EmployeeID set), Warehouse (no employee, not decommissioned)
// and Decommissioned, which is terminal. A decommissioned item never
// carries an employee reference.
type Equipment struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	InventoryNumber  string    `json:"inventory_number" gorm:"column:inventory_number;uniqueIndex;size:100;not null"`
	Name             string    `json:"name" gorm:"size:255;not null"`
	Category         Category  `json:"category" gorm:"size:50;not null"`
	CostKopecks      int64     `json:"cost_kopecks" gorm:"column:cost_kopecks;not null"`
	EmployeeID       *int64    `json:"employee_id,omitempty" gorm:"column:employee_id;index"`
	IsDecommissioned bool      `json:"is_decommissioned" gorm:"column:is_decommissioned;default:false"`
	CreatedAt        time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Equipment) TableName() string {
	return "equipment"
}

func (e *Equipment) IsAssigned() bool {
	return e.EmployeeID != nil && !e.IsDecommissioned
}

func (e *Equipment) IsInWarehouse() bool {
	return e.EmployeeID == nil && !e.IsDecommissioned
}

// Snapshot captures the mutable lifecycle fields for audit entries.
type Snapshot struct {
	EmployeeID       *int64 `json:"employee_id"`
	IsDecommissioned bool   `json:"is_decommissioned"`
}

func (e *Equipment) Snapshot() Snapshot {
	var employeeID *int64
	if e.EmployeeID != nil {
		v := *e.EmployeeID
		employeeID = &v
	}
	return Snapshot{
		EmployeeID:       employeeID,
		IsDecommissioned: e.IsDecommissioned,
	}
}

// Domain errors
var (
	ErrEquipmentNotFound    = internal.NewNotFoundError("equipment not found", internal.ErrCodeEquipmentNotFound)
	ErrInventoryNumberTaken = internal.NewValidationError("inventory number is already taken", internal.ErrCodeInventoryNumTaken)
	ErrDecommissioned       = internal.NewConflictError("equipment is decommissioned", internal.ErrCodeDecommissioned)
	ErrAlreadyAssigned      = internal.NewConflictError("equipment is already assigned to another employee", internal.ErrCodeEquipmentAssigned)
	ErrHolderNotFound       = internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	ErrHolderArchived       = internal.NewConflictError("employee is archived and cannot hold equipment", internal.ErrCodeEmployeeArchived)
)
