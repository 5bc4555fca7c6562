package rbac

import "errors"

// CreateRoleDTO is the request payload for creating a role. New roles
// start with zero permissions.
type CreateRoleDTO struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

func (dto CreateRoleDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 100 {
		return errors.New("name must be less than 100 characters")
	}
	if len(dto.DisplayName) > 100 {
		return errors.New("display name must be less than 100 characters")
	}
	return nil
}

// UpdateRoleDTO edits display metadata only; the name and the system flag
// are fixed at creation.
type UpdateRoleDTO struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

func (dto UpdateRoleDTO) Validate() error {
	if len(dto.DisplayName) > 100 {
		return errors.New("display name must be less than 100 characters")
	}
	if len(dto.Description) > 255 {
		return errors.New("description must be less than 255 characters")
	}
	return nil
}

// GrantDTO names the permission to grant or revoke on a role.
type GrantDTO struct {
	PermissionID int64 `json:"permission_id"`
}

func (dto GrantDTO) Validate() error {
	if dto.PermissionID <= 0 {
		return errors.New("permission_id is required")
	}
	return nil
}

// PermissionGroup is the display grouping returned by ListPermissions.
type PermissionGroup struct {
	Category    string        `json:"category"`
	Permissions []*Permission `json:"permissions"`
}
