package postgres

import (
	"github.com/KarlovS28/dela/internal/rbac"
	"gorm.io/gorm"
)

// RBACRepository implements rbac.Repository using GORM.
type RBACRepository struct {
	db *gorm.DB
}

func NewRBACRepository(db *gorm.DB) *RBACRepository {
	return &RBACRepository{db: db}
}

func (r *RBACRepository) GetAllPermissions() ([]*rbac.Permission, error) {
	var permissions []*rbac.Permission
	err := r.db.Order("id ASC").Find(&permissions).Error
	return permissions, err
}

func (r *RBACRepository) GetPermissionByID(id int64) (*rbac.Permission, error) {
	var permission rbac.Permission
	err := r.db.Where("id = ?", id).First(&permission).Error
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

func (r *RBACRepository) GetAllRoles() ([]*rbac.Role, error) {
	var roles []*rbac.Role
	err := r.db.Preload("Permissions").Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *RBACRepository) GetRoleByID(id int64) (*rbac.Role, error) {
	var role rbac.Role
	err := r.db.Preload("Permissions").Where("id = ?", id).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RBACRepository) GetRoleByName(name string) (*rbac.Role, error) {
	var role rbac.Role
	err := r.db.Preload("Permissions").Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RBACRepository) CreateRole(role *rbac.Role) error {
	return r.db.Create(role).Error
}

func (r *RBACRepository) UpdateRole(role *rbac.Role) error {
	return r.db.Model(&rbac.Role{}).
		Where("id = ?", role.ID).
		Updates(map[string]interface{}{
			"display_name": role.DisplayName,
			"description":  role.Description,
		}).Error
}

// DeleteRole removes the role and its grant rows in one transaction.
// Permission definitions are never touched.
func (r *RBACRepository) DeleteRole(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&rbac.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&rbac.Role{}).Error
	})
}

func (r *RBACRepository) HasGrant(roleID, permissionID int64) (bool, error) {
	var count int64
	err := r.db.Model(&rbac.RolePermission{}).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Count(&count).Error
	return count > 0, err
}

func (r *RBACRepository) AddGrant(roleID, permissionID int64) error {
	return r.db.Create(&rbac.RolePermission{
		RoleID:       roleID,
		PermissionID: permissionID,
	}).Error
}

func (r *RBACRepository) RemoveGrant(roleID, permissionID int64) error {
	return r.db.Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&rbac.RolePermission{}).Error
}

// RoleExists is the lookup the user service uses before assigning a role.
func (r *RBACRepository) RoleExists(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&rbac.Role{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *RBACRepository) CountUsersWithRole(roleID int64) (int64, error) {
	var count int64
	err := r.db.Table("users").Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}
