package equipment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KarlovS28/dela/internal"
	"github.com/KarlovS28/dela/internal/audit"
	"github.com/KarlovS28/dela/internal/core/events"
)

// Repository defines the data access methods for equipment. Lookups
// return ErrEquipmentNotFound for missing rows; any other error is a
// storage failure.
type Repository interface {
	Create(item *Equipment) error
	GetByID(id int64) (*Equipment, error)
	GetByInventoryNumber(number string) (*Equipment, error)
	List(filter ListFilter) ([]*Equipment, error)
	Update(item *Equipment) error
	// UpdateState atomically rewrites the lifecycle columns in a single
	// UPDATE statement.
	UpdateState(id int64, employeeID *int64, decommissioned bool) error
	Delete(id int64) error
}

// ListFilter narrows equipment listings. State is one of "assigned",
// "warehouse", "decommissioned" or empty for all.
type ListFilter struct {
	State      string
	EmployeeID int64
	Limit      int
	Offset     int
}

// EmployeeDirectory is the slice of the employee domain this service
// needs: enough to refuse assignments to missing or archived employees.
type EmployeeDirectory interface {
	EmployeeExists(id int64) (exists bool, archived bool, err error)
}

type Service struct {
	repo      Repository
	directory EmployeeDirectory
	recorder  audit.RecorderAPI
	bus       *events.EventBus
	logger    *slog.Logger
}

func NewService(repo Repository, directory EmployeeDirectory, recorder audit.RecorderAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		recorder:  recorder,
		bus:       bus,
		logger:    logger,
	}
}

// Create registers a new item. With an employee id it starts Assigned,
// otherwise it lands in the warehouse.
func (s *Service) Create(ctx context.Context, dto CreateEquipmentDTO, actorID int64) (*Equipment, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if existing, err := s.repo.GetByInventoryNumber(dto.InventoryNumber); err == nil && existing != nil {
		return nil, ErrInventoryNumberTaken
	}

	if dto.EmployeeID != nil {
		if err := s.checkHolder(*dto.EmployeeID); err != nil {
			return nil, err
		}
	}

	item := &Equipment{
		InventoryNumber: dto.InventoryNumber,
		Name:            dto.Name,
		Category:        dto.Category,
		CostKopecks:     dto.CostKopecks,
		EmployeeID:      dto.EmployeeID,
	}

	if err := s.repo.Create(item); err != nil {
		s.logger.Error("failed to create equipment", "error", err, "inventory_number", dto.InventoryNumber)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionCreate,
		EntityType:  audit.EntityEquipment,
		EntityID:    item.ID,
		ActorID:     actorID,
		NewValue:    item.Snapshot(),
		Description: fmt.Sprintf("registered equipment %s (%s)", item.Name, item.InventoryNumber),
	})

	s.logger.Info("equipment created",
		"equipment_id", item.ID,
		"inventory_number", item.InventoryNumber,
		"assigned", item.IsAssigned(),
		"actor_id", actorID)
	return item, nil
}

func (s *Service) Get(id int64) (*Equipment, error) {
	item, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) List(filter ListFilter) ([]*Equipment, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list equipment", "error", err)
		return nil, err
	}
	return items, nil
}

// Update edits descriptive fields only; lifecycle state is untouched.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateEquipmentDTO, actorID int64) (*Equipment, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	item, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	before := item.Snapshot()
	item.Name = dto.Name
	item.CostKopecks = dto.CostKopecks

	if err := s.repo.Update(item); err != nil {
		s.logger.Error("failed to update equipment", "error", err, "equipment_id", id)
		return nil, err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionUpdate,
		EntityType:  audit.EntityEquipment,
		EntityID:    item.ID,
		ActorID:     actorID,
		OldValue:    before,
		NewValue:    item.Snapshot(),
		Description: fmt.Sprintf("updated equipment %s", item.InventoryNumber),
	})

	return item, nil
}

// AssignTo moves a warehouse item to an employee. Decommissioned items and
// archived employees are refused; assigning an item back to its current
// holder is a no-op success.
func (s *Service) AssignTo(ctx context.Context, id, employeeID, actorID int64) (*Equipment, error) {
	item, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if item.IsDecommissioned {
		s.logger.Warn("assign refused: equipment decommissioned", "equipment_id", id)
		return nil, ErrDecommissioned
	}
	if item.EmployeeID != nil {
		if *item.EmployeeID == employeeID {
			return item, nil
		}
		s.logger.Warn("assign refused: equipment already assigned",
			"equipment_id", id, "holder_id", *item.EmployeeID, "requested_id", employeeID)
		return nil, ErrAlreadyAssigned
	}

	if err := s.checkHolder(employeeID); err != nil {
		return nil, err
	}

	before := item.Snapshot()
	if err := s.repo.UpdateState(id, &employeeID, false); err != nil {
		s.logger.Error("failed to assign equipment", "error", err, "equipment_id", id)
		return nil, err
	}
	item.EmployeeID = &employeeID

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionAssign,
		EntityType:  audit.EntityEquipment,
		EntityID:    item.ID,
		ActorID:     actorID,
		OldValue:    before,
		NewValue:    item.Snapshot(),
		Description: fmt.Sprintf("assigned equipment %s to employee %d", item.InventoryNumber, employeeID),
	})

	s.logger.Info("equipment assigned", "equipment_id", id, "employee_id", employeeID, "actor_id", actorID)
	return item, nil
}

// ReturnToWarehouse clears the employee reference. Idempotent from the
// warehouse state; refused for decommissioned items.
func (s *Service) ReturnToWarehouse(ctx context.Context, id, actorID int64) (*Equipment, error) {
	item, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if item.IsDecommissioned {
		return nil, ErrDecommissioned
	}
	if item.EmployeeID == nil {
		return item, nil
	}

	before := item.Snapshot()
	if err := s.repo.UpdateState(id, nil, false); err != nil {
		s.logger.Error("failed to return equipment to warehouse", "error", err, "equipment_id", id)
		return nil, err
	}
	item.EmployeeID = nil

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionReturn,
		EntityType:  audit.EntityEquipment,
		EntityID:    item.ID,
		ActorID:     actorID,
		OldValue:    before,
		NewValue:    item.Snapshot(),
		Description: fmt.Sprintf("returned equipment %s to warehouse", item.InventoryNumber),
	})

	s.logger.Info("equipment returned to warehouse", "equipment_id", id, "actor_id", actorID)
	return item, nil
}

// Decommission irreversibly retires an item from either the Assigned or
// Warehouse state, clearing the employee reference unconditionally. There
// is no recommission operation.
func (s *Service) Decommission(ctx context.Context, id, actorID int64) (*Equipment, error) {
	item, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if item.IsDecommissioned {
		return nil, ErrDecommissioned
	}

	before := item.Snapshot()
	if err := s.repo.UpdateState(id, nil, true); err != nil {
		s.logger.Error("failed to decommission equipment", "error", err, "equipment_id", id)
		return nil, err
	}
	item.EmployeeID = nil
	item.IsDecommissioned = true

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionDecommission,
		EntityType:  audit.EntityEquipment,
		EntityID:    item.ID,
		ActorID:     actorID,
		OldValue:    before,
		NewValue:    item.Snapshot(),
		Description: fmt.Sprintf("decommissioned equipment %s", item.InventoryNumber),
	})

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewEquipmentDecommissionedEvent(item.ID, item.InventoryNumber, actorID))
	}

	s.logger.Info("equipment decommissioned", "equipment_id", id, "actor_id", actorID)
	return item, nil
}

// Delete permanently removes the record regardless of state. Unlike
// decommissioning this erases history; a second call fails with not found.
func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	item, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete equipment", "error", err, "equipment_id", id)
		return err
	}

	s.recorder.Record(ctx, audit.Entry{
		Action:      audit.ActionDelete,
		EntityType:  audit.EntityEquipment,
		EntityID:    id,
		ActorID:     actorID,
		OldValue:    item.Snapshot(),
		Description: fmt.Sprintf("deleted equipment %s", item.InventoryNumber),
	})

	s.logger.Info("equipment deleted", "equipment_id", id, "actor_id", actorID)
	return nil
}

func (s *Service) checkHolder(employeeID int64) error {
	exists, archived, err := s.directory.EmployeeExists(employeeID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrHolderNotFound
	}
	if archived {
		return ErrHolderArchived
	}
	return nil
}
