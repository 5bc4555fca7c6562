package rbac

import (
	"context"
	"log/slog"

	"github.com/KarlovS28/dela/internal"
	"github.com/KarlovS28/dela/internal/audit"
)

// Repository defines the data access methods for roles and the permission
// registry.
type Repository interface {
	GetAllPermissions() ([]*Permission, error)
	GetPermissionByID(id int64) (*Permission, error)
	GetAllRoles() ([]*Role, error)
	GetRoleByID(id int64) (*Role, error)
	GetRoleByName(name string) (*Role, error)
	CreateRole(role *Role) error
	UpdateRole(role *Role) error
	DeleteRole(id int64) error
	HasGrant(roleID, permissionID int64) (bool, error)
	AddGrant(roleID, permissionID int64) error
	RemoveGrant(roleID, permissionID int64) error
	CountUsersWithRole(roleID int64) (int64, error)
}

type Service struct {
	repo     Repository
	recorder audit.RecorderAPI
	logger   *slog.Logger
}

func NewService(repo Repository, recorder audit.RecorderAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		logger:   logger,
	}
}

// roleSnapshot is the audited shape of a role's mutable fields.
type roleSnapshot struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func snapshotRole(r *Role) roleSnapshot {
	return roleSnapshot{
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Description: r.Description,
		Permissions: r.PermissionNames(),
	}
}

// ListPermissions returns the whole registry grouped by category, in
// catalog order. Pure read.
func (s *Service) ListPermissions() ([]PermissionGroup, error) {
	permissions, err := s.repo.GetAllPermissions()
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, err
	}

	byCategory := make(map[string][]*Permission)
	var order []string
	for _, p := range permissions {
		if _, seen := byCategory[p.Category]; !seen {
			order = append(order, p.Category)
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	groups := make([]PermissionGroup, 0, len(order))
	for _, category := range order {
		groups = append(groups, PermissionGroup{
			Category:    category,
			Permissions: byCategory[category],
		})
	}
	return groups, nil
}

func (s *Service) GetRoles() ([]*Role, error) {
	roles, err := s.repo.GetAllRoles()
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, err
	}
	return roles, nil
}

func (s *Service) GetRole(id int64) (*Role, error) {
	role, err := s.repo.GetRoleByID(id)
	if err != nil {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

// CreateRole creates a non-system role with zero permissions.
func (s *Service) CreateRole(ctx context.Context, dto CreateRoleDTO, actorID int64) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if existing, err := s.repo.GetRoleByName(dto.Name); err == nil && existing != nil {
		return nil, ErrRoleNameTaken
	}

	role := &Role{
		Name:        dto.Name,
		DisplayName: dto.DisplayName,
		Description: dto.Description,
	}

	if err := s.repo.CreateRole(role); err != nil {
		s.logger.Error("failed to create role", "error", err, "name", dto.Name)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionCreate,
		EntityType:  audit.EntityRole,
		EntityID:    role.ID,
		ActorID:     actorID,
		NewValue:    snapshotRole(role),
		Description: "created role " + role.Name,
	})

	s.logger.Info("role created", "role_id", role.ID, "name", role.Name, "actor_id", actorID)
	return role, nil
}

func (s *Service) UpdateRole(ctx context.Context, id int64, dto UpdateRoleDTO, actorID int64) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	role, err := s.repo.GetRoleByID(id)
	if err != nil {
		return nil, ErrRoleNotFound
	}

	before := snapshotRole(role)
	role.DisplayName = dto.DisplayName
	role.Description = dto.Description

	if err := s.repo.UpdateRole(role); err != nil {
		s.logger.Error("failed to update role", "error", err, "role_id", id)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionUpdate,
		EntityType:  audit.EntityRole,
		EntityID:    role.ID,
		ActorID:     actorID,
		OldValue:    before,
		NewValue:    snapshotRole(role),
		Description: "updated role " + role.Name,
	})

	return role, nil
}

// DeleteRole removes a role and its grants. System roles can never be
// deleted, and a role still assigned to users is rejected rather than
// orphaning them.
func (s *Service) DeleteRole(ctx context.Context, id int64, actorID int64) error {
	role, err := s.repo.GetRoleByID(id)
	if err != nil {
		return ErrRoleNotFound
	}

	if role.IsSystem {
		s.logger.Warn("refusing to delete system role", "role_id", id, "name", role.Name)
		return ErrSystemRole
	}

	inUse, err := s.repo.CountUsersWithRole(id)
	if err != nil {
		s.logger.Error("failed to count users with role", "error", err, "role_id", id)
		return err
	}
	if inUse > 0 {
		s.logger.Warn("refusing to delete role in use", "role_id", id, "users", inUse)
		return ErrRoleInUse
	}

	before := snapshotRole(role)
	if err := s.repo.DeleteRole(id); err != nil {
		s.logger.Error("failed to delete role", "error", err, "role_id", id)
		return err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionDelete,
		EntityType:  audit.EntityRole,
		EntityID:    id,
		ActorID:     actorID,
		OldValue:    before,
		Description: "deleted role " + role.Name,
	})

	s.logger.Info("role deleted", "role_id", id, "name", role.Name, "actor_id", actorID)
	return nil
}

// GrantPermission adds a permission to a role. Granting an already granted
// permission is a no-op success and records no second audit entry.
func (s *Service) GrantPermission(ctx context.Context, roleID, permissionID, actorID int64) error {
	role, err := s.repo.GetRoleByID(roleID)
	if err != nil {
		return ErrRoleNotFound
	}

	permission, err := s.repo.GetPermissionByID(permissionID)
	if err != nil {
		return ErrPermissionNotFound
	}

	granted, err := s.repo.HasGrant(roleID, permissionID)
	if err != nil {
		return err
	}
	if granted {
		return nil
	}

	before := snapshotRole(role)
	if err := s.repo.AddGrant(roleID, permissionID); err != nil {
		s.logger.Error("failed to grant permission", "error", err, "role_id", roleID, "permission", permission.Name)
		return err
	}

	after := before
	after.Permissions = append(append([]string{}, before.Permissions...), permission.Name)

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionGrant,
		EntityType:  audit.EntityRole,
		EntityID:    roleID,
		ActorID:     actorID,
		OldValue:    before,
		NewValue:    after,
		Description: "granted " + permission.Name + " to role " + role.Name,
	})

	s.logger.Info("permission granted", "role_id", roleID, "permission", permission.Name, "actor_id", actorID)
	return nil
}

// RevokePermission removes a permission from a role. Revoking a permission
// that is not granted is a no-op success.
func (s *Service) RevokePermission(ctx context.Context, roleID, permissionID, actorID int64) error {
	role, err := s.repo.GetRoleByID(roleID)
	if err != nil {
		return ErrRoleNotFound
	}

	permission, err := s.repo.GetPermissionByID(permissionID)
	if err != nil {
		return ErrPermissionNotFound
	}

	granted, err := s.repo.HasGrant(roleID, permissionID)
	if err != nil {
		return err
	}
	if !granted {
		return nil
	}

	before := snapshotRole(role)
	if err := s.repo.RemoveGrant(roleID, permissionID); err != nil {
		s.logger.Error("failed to revoke permission", "error", err, "role_id", roleID, "permission", permission.Name)
		return err
	}

	after := before
	after.Permissions = nil
	for _, name := range before.Permissions {
		if name != permission.Name {
			after.Permissions = append(after.Permissions, name)
		}
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionRevoke,
		EntityType:  audit.EntityRole,
		EntityID:    roleID,
		ActorID:     actorID,
		OldValue:    before,
		NewValue:    after,
		Description: "revoked " + permission.Name + " from role " + role.Name,
	})

	s.logger.Info("permission revoked", "role_id", roleID, "permission", permission.Name, "actor_id", actorID)
	return nil
}

// RoleHasPermission reports whether the named role grants the permission.
func (s *Service) RoleHasPermission(roleName, permission string) (bool, error) {
	role, err := s.repo.GetRoleByName(roleName)
	if err != nil {
		return false, ErrRoleNotFound
	}
	return role.HasPermission(permission), nil
}

// Authorize is the data-driven authorization check: super roles allow
// everything, unknown role names deny.
func (s *Service) Authorize(roleName, permission string) bool {
	role, err := s.repo.GetRoleByName(roleName)
	if err != nil {
		s.logger.Warn("authorize: unknown role denied", "role", roleName, "permission", permission)
		return false
	}
	return Allowed(role, permission)
}
