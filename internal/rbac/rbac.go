package rbac

import (
	"time"

	"github.com/KarlovS28/dela/internal"
)

// Role is a named set of permission atoms. System roles are seeded and can
// never be deleted, though their permission set stays editable. A super
// role passes every authorization check without consulting the grant
// table.
type Role struct {
	ID          int64        `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"uniqueIndex;size:100;not null"`
	DisplayName string       `json:"display_name" gorm:"column:display_name;size:100"`
	Description string       `json:"description" gorm:"size:255"`
	IsSystem    bool         `json:"is_system" gorm:"column:is_system;default:false"`
	IsSuperRole bool         `json:"is_super_role" gorm:"column:is_super_role;default:false"`
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_permissions;"`
	CreatedAt   time.Time    `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Role) TableName() string {
	return "roles"
}

// HasPermission reports whether the permission name is in the role's
// granted set. It does not apply the super-role bypass; use Allowed for
// full authorization semantics.
func (r *Role) HasPermission(name string) bool {
	for _, p := range r.Permissions {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (r *Role) PermissionNames() []string {
	names := make([]string, len(r.Permissions))
	for i, p := range r.Permissions {
		names[i] = p.Name
	}
	return names
}

// Permission is an atomic unit of access control in resource.action form,
// e.g. "employees.archive". Permissions are seeded from the static catalog
// and are never composed of other permissions.
type Permission struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Category    string    `json:"category" gorm:"size:100;not null"`
	DisplayName string    `json:"display_name" gorm:"column:display_name;size:100"`
	Description string    `json:"description" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Permission) TableName() string {
	return "permissions"
}

// RolePermission is the roles<->permissions join table. Deleting a role
// removes its rows here but never touches the permission definitions.
type RolePermission struct {
	RoleID       int64 `gorm:"primaryKey;column:role_id"`
	PermissionID int64 `gorm:"primaryKey;column:permission_id"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

// Allowed is the authorization check: a nil role denies (fail closed), a
// super role allows any permission name including names absent from the
// registry, otherwise membership in the granted set decides.
func Allowed(role *Role, permission string) bool {
	if role == nil {
		return false
	}
	if role.IsSuperRole {
		return true
	}
	return role.HasPermission(permission)
}

// HasAny reports whether any required permission is present in the granted
// names. Used by middleware operating on the flattened permission list
// carried with the authenticated user.
func HasAny(granted []string, required []string) bool {
	for _, g := range granted {
		for _, req := range required {
			if g == req {
				return true
			}
		}
	}
	return false
}

// Permission catalog. Seeded into the permissions table and used by route
// guards; category groups drive the admin UI layout.
const (
	CategoryEmployees     = "employees"
	CategoryEquipment     = "equipment"
	CategoryDepartments   = "departments"
	CategoryRoles         = "roles"
	CategoryUsers         = "users"
	CategoryAudit         = "audit"
	CategoryRegistrations = "registrations"
)

const (
	PermEmployeesView    = "employees.view"
	PermEmployeesCreate  = "employees.create"
	PermEmployeesEdit    = "employees.edit"
	PermEmployeesArchive = "employees.archive"
	PermEmployeesDelete  = "employees.delete"

	PermEquipmentView         = "equipment.view"
	PermEquipmentCreate       = "equipment.create"
	PermEquipmentEdit         = "equipment.edit"
	PermEquipmentAssign       = "equipment.assign"
	PermEquipmentReturn       = "equipment.return"
	PermEquipmentDecommission = "equipment.decommission"
	PermEquipmentDelete       = "equipment.delete"

	PermDepartmentsManage = "departments.manage"

	PermRolesView   = "roles.view"
	PermRolesManage = "roles.manage"

	PermUsersManage = "users.manage"

	PermAuditView = "audit.view"

	PermRegistrationsManage = "registrations.manage"
)

// Catalog lists every permission atom the system knows about, in display
// order. The seeder inserts these and ListPermissions groups them by
// category.
func Catalog() []Permission {
	return []Permission{
		{Name: PermEmployeesView, Category: CategoryEmployees, DisplayName: "View employees", Description: "View active employee rosters"},
		{Name: PermEmployeesCreate, Category: CategoryEmployees, DisplayName: "Create employees", Description: "Add new employees"},
		{Name: PermEmployeesEdit, Category: CategoryEmployees, DisplayName: "Edit employees", Description: "Edit employee records"},
		{Name: PermEmployeesArchive, Category: CategoryEmployees, DisplayName: "Archive employees", Description: "Archive employees and return their equipment to the warehouse"},
		{Name: PermEmployeesDelete, Category: CategoryEmployees, DisplayName: "Delete employees", Description: "Permanently delete non-archived employees"},

		{Name: PermEquipmentView, Category: CategoryEquipment, DisplayName: "View equipment", Description: "View equipment and warehouse stock"},
		{Name: PermEquipmentCreate, Category: CategoryEquipment, DisplayName: "Create equipment", Description: "Register new equipment"},
		{Name: PermEquipmentEdit, Category: CategoryEquipment, DisplayName: "Edit equipment", Description: "Edit equipment records"},
		{Name: PermEquipmentAssign, Category: CategoryEquipment, DisplayName: "Assign equipment", Description: "Assign warehouse equipment to employees"},
		{Name: PermEquipmentReturn, Category: CategoryEquipment, DisplayName: "Return equipment", Description: "Return assigned equipment to the warehouse"},
		{Name: PermEquipmentDecommission, Category: CategoryEquipment, DisplayName: "Decommission equipment", Description: "Irreversibly decommission equipment"},
		{Name: PermEquipmentDelete, Category: CategoryEquipment, DisplayName: "Delete equipment", Description: "Permanently delete equipment records"},

		{Name: PermDepartmentsManage, Category: CategoryDepartments, DisplayName: "Manage departments", Description: "Create, rename and delete departments"},

		{Name: PermRolesView, Category: CategoryRoles, DisplayName: "View roles", Description: "View roles and the permission registry"},
		{Name: PermRolesManage, Category: CategoryRoles, DisplayName: "Manage roles", Description: "Create and delete roles, grant and revoke permissions"},

		{Name: PermUsersManage, Category: CategoryUsers, DisplayName: "Manage users", Description: "Create users, change roles, deactivate accounts"},

		{Name: PermAuditView, Category: CategoryAudit, DisplayName: "View audit log", Description: "Read the audit trail"},

		{Name: PermRegistrationsManage, Category: CategoryRegistrations, DisplayName: "Manage registrations", Description: "Approve or reject self-service registration requests"},
	}
}

// Domain errors
var (
	ErrRoleNotFound       = internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
	ErrRoleNameTaken      = internal.NewValidationError("role name is already taken", internal.ErrCodeRoleNameTaken)
	ErrSystemRole         = internal.NewConflictError("system roles cannot be deleted", internal.ErrCodeSystemRole)
	ErrRoleInUse          = internal.NewConflictError("role is still assigned to users", internal.ErrCodeRoleInUse)
	ErrPermissionNotFound = internal.NewNotFoundError("permission not found", internal.ErrCodePermissionUnknown)
)
