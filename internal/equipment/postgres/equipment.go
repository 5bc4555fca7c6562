package postgres

import (
	"time"

	"github.com/KarlovS28/dela/internal/equipment"
	"gorm.io/gorm"
)

// EquipmentRepository implements the equipment.Repository interface using GORM.
type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) equipment.Repository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) Create(item *equipment.Equipment) error {
	return r.db.Create(item).Error
}

func (r *EquipmentRepository) GetByID(id int64) (*equipment.Equipment, error) {
	var item equipment.Equipment
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, equipment.ErrEquipmentNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *EquipmentRepository) GetByInventoryNumber(number string) (*equipment.Equipment, error) {
	var item equipment.Equipment
	err := r.db.Where("inventory_number = ?", number).First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, equipment.ErrEquipmentNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *EquipmentRepository) List(filter equipment.ListFilter) ([]*equipment.Equipment, error) {
	var items []*equipment.Equipment

	query := r.db.Model(&equipment.Equipment{})
	switch filter.State {
	case "assigned":
		query = query.Where("employee_id IS NOT NULL AND is_decommissioned = ?", false)
	case "warehouse":
		query = query.Where("employee_id IS NULL AND is_decommissioned = ?", false)
	case "decommissioned":
		query = query.Where("is_decommissioned = ?", true)
	}
	if filter.EmployeeID != 0 {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}

	err := query.Order("inventory_number ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&items).Error
	return items, err
}

func (r *EquipmentRepository) Update(item *equipment.Equipment) error {
	item.UpdatedAt = time.Now()
	return r.db.Save(item).Error
}

// UpdateState rewrites the lifecycle columns in one UPDATE so a transition
// is atomic at the row level.
func (r *EquipmentRepository) UpdateState(id int64, employeeID *int64, decommissioned bool) error {
	return r.db.Model(&equipment.Equipment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"employee_id":       employeeID,
			"is_decommissioned": decommissioned,
			"updated_at":        time.Now(),
		}).Error
}

func (r *EquipmentRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&equipment.Equipment{}).Error
}
