package postgres

import (
	"time"

	"github.com/KarlovS28/dela/internal/employee"
	"github.com/KarlovS28/dela/internal/equipment"
	"gorm.io/gorm"
)

// EmployeeRepository implements the employee.Repository interface using GORM.
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.Repository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(emp *employee.Employee) error {
	return r.db.Create(emp).Error
}

func (r *EmployeeRepository) GetByID(id int64) (*employee.Employee, error) {
	var emp employee.Employee
	err := r.db.Where("id = ?", id).First(&emp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) List(archived bool, departmentID int64, limit, offset int) ([]*employee.Employee, error) {
	var employees []*employee.Employee

	query := r.db.Where("is_archived = ?", archived)
	if departmentID != 0 {
		query = query.Where("department_id = ?", departmentID)
	}

	err := query.Order("full_name ASC").
		Limit(limit).
		Offset(offset).
		Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) Update(emp *employee.Employee) error {
	emp.UpdatedAt = time.Now()
	return r.db.Save(emp).Error
}

// ArchiveWithEquipment runs the archive cascade in a single transaction:
// the employee row flips to archived and every assigned, non-decommissioned
// item loses its employee reference. Either both happen or neither does.
func (r *EmployeeRepository) ArchiveWithEquipment(id int64) ([]employee.ReturnedEquipment, error) {
	var returned []employee.ReturnedEquipment

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&employee.Employee{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"is_archived": true,
				"updated_at":  time.Now(),
			}).Error; err != nil {
			return err
		}

		var items []*equipment.Equipment
		if err := tx.Where("employee_id = ? AND is_decommissioned = ?", id, false).
			Find(&items).Error; err != nil {
			return err
		}

		if len(items) > 0 {
			if err := tx.Model(&equipment.Equipment{}).
				Where("employee_id = ? AND is_decommissioned = ?", id, false).
				Updates(map[string]interface{}{
					"employee_id": nil,
					"updated_at":  time.Now(),
				}).Error; err != nil {
				return err
			}
		}

		for _, item := range items {
			returned = append(returned, employee.ReturnedEquipment{
				EquipmentID:     item.ID,
				InventoryNumber: item.InventoryNumber,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return returned, nil
}

func (r *EmployeeRepository) CountAssignedEquipment(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&equipment.Equipment{}).
		Where("employee_id = ? AND is_decommissioned = ?", id, false).
		Count(&count).Error
	return count, err
}

func (r *EmployeeRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&employee.Employee{}).Error
}
