package user

import (
	"context"
	"log/slog"

	"github.com/KarlovS28/dela/internal"
	"github.com/KarlovS28/dela/internal/audit"
)

// Repository defines the data access methods for user accounts.
type Repository interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	GetAll() ([]*User, error)
	Update(u *User) error
	Delete(id int64) error
}

// RoleDirectory answers whether a role exists. Implemented by the rbac
// repository.
type RoleDirectory interface {
	RoleExists(id int64) (bool, error)
}

// PasswordHasher hashes plaintext passwords. Implemented by the auth
// service so the bcrypt cost is configured in one place.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo     Repository
	roles    RoleDirectory
	hasher   PasswordHasher
	recorder audit.RecorderAPI
	logger   *slog.Logger
}

func NewService(repo Repository, roles RoleDirectory, hasher PasswordHasher, recorder audit.RecorderAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		roles:    roles,
		hasher:   hasher,
		recorder: recorder,
		logger:   logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO, actorID int64) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if existing, err := s.repo.GetByEmail(dto.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	exists, err := s.roles.RoleExists(dto.RoleID)
	if err != nil {
		s.logger.Error("failed to check role", "error", err, "role_id", dto.RoleID)
		return nil, err
	}
	if !exists {
		return nil, internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	u := &User{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		RoleID:       dto.RoleID,
		IsActive:     true,
	}
	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionCreate,
		EntityType:  audit.EntityUser,
		EntityID:    u.ID,
		ActorID:     actorID,
		NewValue:    u.Snapshot(),
		Description: "created user " + u.Email,
	})

	s.logger.Info("user created", "user_id", u.ID, "actor_id", actorID)
	return u, nil
}

func (s *Service) Get(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *Service) List() ([]*User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, err
	}
	return users, nil
}

// ChangeRole moves a user to another role. The new permissions apply on
// the user's next request because the middleware reloads them per request.
func (s *Service) ChangeRole(ctx context.Context, id int64, dto ChangeRoleDTO, actorID int64) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if u.RoleID == dto.RoleID {
		return u, nil
	}

	exists, err := s.roles.RoleExists(dto.RoleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
	}

	before := u.Snapshot()
	u.RoleID = dto.RoleID
	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to change user role", "error", err, "user_id", id)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionUpdate,
		EntityType:  audit.EntityUser,
		EntityID:    u.ID,
		ActorID:     actorID,
		OldValue:    before,
		NewValue:    u.Snapshot(),
		Description: "changed role of user " + u.Email,
	})

	return u, nil
}

// Deactivate blocks the account from signing in. Existing tokens stop
// working on the next request because the middleware checks is_active.
func (s *Service) Deactivate(ctx context.Context, id int64, actorID int64) (*User, error) {
	return s.setActive(ctx, id, actorID, false, "deactivated user ")
}

// Activate re-enables a previously deactivated account.
func (s *Service) Activate(ctx context.Context, id int64, actorID int64) (*User, error) {
	return s.setActive(ctx, id, actorID, true, "activated user ")
}

func (s *Service) setActive(ctx context.Context, id int64, actorID int64, active bool, desc string) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if u.IsActive == active {
		return u, nil
	}

	before := u.Snapshot()
	u.IsActive = active
	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionUpdate,
		EntityType:  audit.EntityUser,
		EntityID:    u.ID,
		ActorID:     actorID,
		OldValue:    before,
		NewValue:    u.Snapshot(),
		Description: desc + u.Email,
	})

	return u, nil
}

func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return ErrUserNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionDelete,
		EntityType:  audit.EntityUser,
		EntityID:    id,
		ActorID:     actorID,
		OldValue:    u.Snapshot(),
		Description: "deleted user " + u.Email,
	})

	s.logger.Info("user deleted", "user_id", id, "actor_id", actorID)
	return nil
}
