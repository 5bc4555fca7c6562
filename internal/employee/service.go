package employee

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KarlovS28/dela/internal"
	"github.com/KarlovS28/dela/internal/audit"
	"github.com/KarlovS28/dela/internal/auth"
	"github.com/KarlovS28/dela/internal/equipment"
	"github.com/KarlovS28/dela/internal/rbac"
)

// Repository defines the data access methods for employees.
type Repository interface {
	Create(emp *Employee) error
	GetByID(id int64) (*Employee, error)
	List(archived bool, departmentID int64, limit, offset int) ([]*Employee, error)
	Update(emp *Employee) error
	// ArchiveWithEquipment marks the employee archived and returns every
	// assigned, non-decommissioned item to the warehouse inside one
	// transaction, so a crash can never leave an archived employee still
	// holding equipment.
	ArchiveWithEquipment(id int64) ([]ReturnedEquipment, error)
	CountAssignedEquipment(id int64) (int64, error)
	Delete(id int64) error
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

func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO, actorID int64) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	emp := &Employee{
		FullName:       dto.FullName,
		Position:       dto.Position,
		Grade:          dto.Grade,
		DepartmentID:   dto.DepartmentID,
		PassportNumber: dto.PassportNumber,
		Snils:          dto.Snils,
		Phone:          dto.Phone,
		Email:          dto.Email,
	}

	if err := s.repo.Create(emp); err != nil {
		s.logger.Error("failed to create employee", "error", err)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionCreate,
		EntityType:  audit.EntityEmployee,
		EntityID:    emp.ID,
		ActorID:     actorID,
		NewValue:    emp.Snapshot(),
		Description: "created employee " + emp.FullName,
	})

	s.logger.Info("employee created", "employee_id", emp.ID, "actor_id", actorID)
	return emp, nil
}

func (s *Service) Get(id int64) (*Employee, error) {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return emp, nil
}

// List returns the active roster; ListArchived the archived one. The two
// rosters never overlap.
func (s *Service) List(departmentID int64, limit, offset int) ([]*Employee, error) {
	return s.list(false, departmentID, limit, offset)
}

func (s *Service) ListArchived(departmentID int64, limit, offset int) ([]*Employee, error) {
	return s.list(true, departmentID, limit, offset)
}

func (s *Service) list(archived bool, departmentID int64, limit, offset int) ([]*Employee, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	employees, err := s.repo.List(archived, departmentID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err, "archived", archived)
		return nil, err
	}
	return employees, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateEmployeeDTO, actorID int64) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if emp.IsArchived {
		return nil, ErrEmployeeArchived
	}

	before := emp.Snapshot()
	emp.FullName = dto.FullName
	emp.Position = dto.Position
	emp.Grade = dto.Grade
	emp.DepartmentID = dto.DepartmentID
	emp.PassportNumber = dto.PassportNumber
	emp.Snils = dto.Snils
	emp.Phone = dto.Phone
	emp.Email = dto.Email

	if err := s.repo.Update(emp); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionUpdate,
		EntityType:  audit.EntityEmployee,
		EntityID:    emp.ID,
		ActorID:     actorID,
		OldValue:    before,
		NewValue:    emp.Snapshot(),
		Description: "updated employee " + emp.FullName,
	})

	return emp, nil
}

// Archive soft-removes an employee from the active roster and cascades
// every assigned item back to the warehouse. Archiving an already archived
// employee is a lenient no-op. The caller must hold employees.archive.
func (s *Service) Archive(ctx context.Context, id int64, actor *auth.User) (*Employee, error) {
	if !actor.Can(rbac.PermEmployeesArchive) {
		s.logger.Warn("archive denied: insufficient permissions",
			"employee_id", id,
			"actor_id", actor.ID,
			"role", actor.RoleName)
		return nil, internal.ErrInsufficientPermission
	}

	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if emp.IsArchived {
		return emp, nil
	}

	before := emp.Snapshot()
	returned, err := s.repo.ArchiveWithEquipment(id)
	if err != nil {
		s.logger.Error("failed to archive employee", "error", err, "employee_id", id)
		return nil, err
	}
	emp.IsArchived = true

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionArchive,
		EntityType:  audit.EntityEmployee,
		EntityID:    emp.ID,
		ActorID:     actor.ID,
		OldValue:    before,
		NewValue:    emp.Snapshot(),
		Description: "archived employee " + emp.FullName,
	})

	for _, item := range returned {
		holder := id
		s.recorder.Record(ctx, audit.Entry{
			Action:      audit.ActionReturn,
			EntityType:  audit.EntityEquipment,
			EntityID:    item.EquipmentID,
			ActorID:     actor.ID,
			OldValue:    equipment.Snapshot{EmployeeID: &holder},
			NewValue:    equipment.Snapshot{},
			Description: fmt.Sprintf("returned equipment %s to warehouse on archive of %s", item.InventoryNumber, emp.FullName),
		})
	}

	s.logger.Info("employee archived",
		"employee_id", id,
		"equipment_returned", len(returned),
		"actor_id", actor.ID)
	return emp, nil
}

// Delete permanently removes a non-archived employee who holds no
// equipment. Archived records are kept forever.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if emp.IsArchived {
		return ErrEmployeeArchived
	}

	held, err := s.repo.CountAssignedEquipment(id)
	if err != nil {
		s.logger.Error("failed to count assigned equipment", "error", err, "employee_id", id)
		return err
	}
	if held > 0 {
		return ErrHoldsEquipment
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete employee", "error", err, "employee_id", id)
		return err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionDelete,
		EntityType:  audit.EntityEmployee,
		EntityID:    id,
		ActorID:     actorID,
		OldValue:    emp.Snapshot(),
		Description: "deleted employee " + emp.FullName,
	})

	s.logger.Info("employee deleted", "employee_id", id, "actor_id", actorID)
	return nil
}

// EmployeeExists implements the directory lookup the equipment service
// uses before assigning items.
func (s *Service) EmployeeExists(id int64) (bool, bool, error) {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		if err == ErrEmployeeNotFound {
			return false, false, nil
		}
		return false, false, err
	}
	return true, emp.IsArchived, nil
}
