package department

import (
	"context"
	"log/slog"

	"github.com/KarlovS28/dela/internal"
	"github.com/KarlovS28/dela/internal/audit"
)

// Repository defines the data access methods for departments.
type Repository interface {
	Create(dept *Department) error
	GetByID(id int64) (*Department, error)
	GetByName(name string) (*Department, error)
	GetAll() ([]*Department, error)
	Update(dept *Department) error
	Delete(id int64) error
	CountEmployees(id int64) (int64, error)
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

func (s *Service) Create(ctx context.Context, dto CreateDepartmentDTO, actorID int64) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if existing, err := s.repo.GetByName(dto.Name); err == nil && existing != nil {
		return nil, ErrDepartmentNameTaken
	}

	dept := &Department{
		Name:        dto.Name,
		Description: dto.Description,
	}
	if err := s.repo.Create(dept); err != nil {
		s.logger.Error("failed to create department", "error", err)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionCreate,
		EntityType:  audit.EntityDepartment,
		EntityID:    dept.ID,
		ActorID:     actorID,
		NewValue:    dept.Snapshot(),
		Description: "created department " + dept.Name,
	})

	s.logger.Info("department created", "department_id", dept.ID, "actor_id", actorID)
	return dept, nil
}

func (s *Service) Get(id int64) (*Department, error) {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrDepartmentNotFound
	}
	return dept, nil
}

func (s *Service) List() ([]*Department, error) {
	depts, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, err
	}
	return depts, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateDepartmentDTO, actorID int64) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	dept, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrDepartmentNotFound
	}

	if dto.Name != dept.Name {
		if existing, err := s.repo.GetByName(dto.Name); err == nil && existing != nil {
			return nil, ErrDepartmentNameTaken
		}
	}

	before := dept.Snapshot()
	dept.Name = dto.Name
	dept.Description = dto.Description

	if err := s.repo.Update(dept); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionUpdate,
		EntityType:  audit.EntityDepartment,
		EntityID:    dept.ID,
		ActorID:     actorID,
		OldValue:    before,
		NewValue:    dept.Snapshot(),
		Description: "updated department " + dept.Name,
	})

	return dept, nil
}

// Delete removes an empty department. A department that still has
// employees, active or archived, cannot be deleted.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		return ErrDepartmentNotFound
	}

	count, err := s.repo.CountEmployees(id)
	if err != nil {
		s.logger.Error("failed to count department employees", "error", err, "department_id", id)
		return err
	}
	if count > 0 {
		return ErrDepartmentInUse
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionDelete,
		EntityType:  audit.EntityDepartment,
		EntityID:    id,
		ActorID:     actorID,
		OldValue:    dept.Snapshot(),
		Description: "deleted department " + dept.Name,
	})

	s.logger.Info("department deleted", "department_id", id, "actor_id", actorID)
	return nil
}
