package registration

import (
	"context"
	"log/slog"
	"time"

	"github.com/KarlovS28/dela/internal"
	"github.com/KarlovS28/dela/internal/audit"
	"github.com/KarlovS28/dela/internal/core/events"
	"github.com/KarlovS28/dela/internal/rbac"
	"github.com/KarlovS28/dela/internal/user"
)

// Repository defines the data access methods for registration requests.
type Repository interface {
	Create(req *Request) error
	GetByID(id int64) (*Request, error)
	List(status Status, limit, offset int) ([]*Request, error)
	Update(req *Request) error
	HasPending(email string) (bool, error)
}

// RoleLookup resolves the default role for approved sign-ups. Implemented
// by the rbac repository.
type RoleLookup interface {
	GetRoleByName(name string) (*rbac.Role, error)
}

// PasswordHasher hashes the sign-up password before it is stored on the
// request.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo            Repository
	users           user.Repository
	roles           RoleLookup
	hasher          PasswordHasher
	recorder        audit.RecorderAPI
	bus             *events.EventBus
	defaultRoleName string
	logger          *slog.Logger
}

func NewService(
	repo Repository,
	users user.Repository,
	roles RoleLookup,
	hasher PasswordHasher,
	recorder audit.RecorderAPI,
	bus *events.EventBus,
	defaultRoleName string,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:            repo,
		users:           users,
		roles:           roles,
		hasher:          hasher,
		recorder:        recorder,
		bus:             bus,
		defaultRoleName: defaultRoleName,
		logger:          logger,
	}
}

// Submit files a sign-up request. It is the only unauthenticated write in
// the system. The password is hashed immediately; plaintext never reaches
// the database.
func (s *Service) Submit(ctx context.Context, dto SubmitDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if existing, err := s.users.GetByEmail(dto.Email); err == nil && existing != nil {
		return nil, user.ErrEmailTaken
	}

	pending, err := s.repo.HasPending(dto.Email)
	if err != nil {
		s.logger.Error("failed to check pending registrations", "error", err)
		return nil, err
	}
	if pending {
		return nil, internal.NewConflictError("a registration for this email is already pending", internal.ErrCodeEmailTaken)
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	req := &Request{
		Email:        dto.Email,
		FullName:     dto.FullName,
		PasswordHash: hash,
		Status:       StatusPending,
	}
	if err := s.repo.Create(req); err != nil {
		s.logger.Error("failed to create registration request", "error", err)
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewRegistrationSubmittedEvent(req.ID, req.Email, req.FullName))
	}

	s.logger.Info("registration submitted", "request_id", req.ID, "email", req.Email)
	return req, nil
}

func (s *Service) Get(id int64) (*Request, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

func (s *Service) List(status Status, limit, offset int) ([]*Request, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(status, limit, offset)
}

// Approve creates the account with the configured default role and marks
// the request approved. A decided request cannot be decided again.
func (s *Service) Approve(ctx context.Context, id int64, actorID int64) (*Request, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrRequestNotFound
	}
	if req.IsDecided() {
		return nil, ErrRequestDecided
	}

	if existing, err := s.users.GetByEmail(req.Email); err == nil && existing != nil {
		return nil, user.ErrEmailTaken
	}

	role, err := s.roles.GetRoleByName(s.defaultRoleName)
	if err != nil {
		s.logger.Error("default role missing", "error", err, "role", s.defaultRoleName)
		return nil, internal.NewInternalError("default role is not configured", err)
	}

	account := &user.User{
		Email:        req.Email,
		Name:         req.FullName,
		PasswordHash: req.PasswordHash,
		RoleID:       role.ID,
		IsActive:     true,
	}
	if err := s.users.Create(account); err != nil {
		s.logger.Error("failed to create account from registration", "error", err, "request_id", id)
		return nil, err
	}

	before := req.Snapshot()
	now := time.Now()
	req.Status = StatusApproved
	req.DecidedBy = &actorID
	req.DecidedAt = &now
	if err := s.repo.Update(req); err != nil {
		s.logger.Error("failed to mark registration approved", "error", err, "request_id", id)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionApprove,
		EntityType:  audit.EntityRegistration,
		EntityID:    req.ID,
		ActorID:     actorID,
		OldValue:    before,
		NewValue:    req.Snapshot(),
		Description: "approved registration of " + req.Email,
	})

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewRegistrationDecidedEvent(req.ID, req.Email, true, account.ID))
	}

	s.logger.Info("registration approved",
		"request_id", req.ID,
		"user_id", account.ID,
		"actor_id", actorID)
	return req, nil
}

// Reject marks the request rejected. No account is created.
func (s *Service) Reject(ctx context.Context, id int64, actorID int64) (*Request, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrRequestNotFound
	}
	if req.IsDecided() {
		return nil, ErrRequestDecided
	}

	before := req.Snapshot()
	now := time.Now()
	req.Status = StatusRejected
	req.DecidedBy = &actorID
	req.DecidedAt = &now
	if err := s.repo.Update(req); err != nil {
		s.logger.Error("failed to mark registration rejected", "error", err, "request_id", id)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionReject,
		EntityType:  audit.EntityRegistration,
		EntityID:    req.ID,
		ActorID:     actorID,
		OldValue:    before,
		NewValue:    req.Snapshot(),
		Description: "rejected registration of " + req.Email,
	})

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewRegistrationDecidedEvent(req.ID, req.Email, false, 0))
	}

	s.logger.Info("registration rejected", "request_id", req.ID, "actor_id", actorID)
	return req, nil
}
