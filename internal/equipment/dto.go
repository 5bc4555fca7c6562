package equipment

import "errors"

// CreateEquipmentDTO registers a new inventory item. When EmployeeID is
// set the item starts its life Assigned, otherwise it goes to the
// warehouse.
type CreateEquipmentDTO struct {
	InventoryNumber string   `json:"inventory_number"`
	Name            string   `json:"name"`
	Category        Category `json:"category"`
	CostKopecks     int64    `json:"cost_kopecks"`
	EmployeeID      *int64   `json:"employee_id,omitempty"`
}

func (dto CreateEquipmentDTO) Validate() error {
	if dto.InventoryNumber == "" {
		return errors.New("inventory number is required")
	}
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if !dto.Category.Valid() {
		return errors.New("category must be technika or furniture")
	}
	if dto.CostKopecks < 0 {
		return errors.New("cost cannot be negative")
	}
	return nil
}

// UpdateEquipmentDTO edits descriptive fields. Lifecycle transitions go
// through the dedicated assign/return/decommission operations.
type UpdateEquipmentDTO struct {
	Name        string `json:"name"`
	CostKopecks int64  `json:"cost_kopecks"`
}

func (dto UpdateEquipmentDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if dto.CostKopecks < 0 {
		return errors.New("cost cannot be negative")
	}
	return nil
}

// AssignDTO names the employee receiving a warehouse item.
type AssignDTO struct {
	EmployeeID int64 `json:"employee_id"`
}

func (dto AssignDTO) Validate() error {
	if dto.EmployeeID <= 0 {
		return errors.New("employee_id is required")
	}
	return nil
}
