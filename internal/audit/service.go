package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

type RepositoryAPI interface {
	Create(entry *AuditLog) error
	List(filter Filter) ([]*AuditLog, error)
}

// Filter narrows the audit listing. Zero values mean "no constraint".
type Filter struct {
	EntityType string
	EntityID   int64
	ActorID    int64
	Action     Action
	Limit      int
	Offset     int
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Record appends one audit entry. Persistence failures are logged and
// swallowed so that an audit outage never aborts the business operation
// that triggered it.
func (s *Service) Record(ctx context.Context, entry Entry) {
	row := &AuditLog{
		Action:      entry.Action,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		ActorID:     entry.ActorID,
		Description: entry.Description,
		CreatedAt:   time.Now(),
	}

	if entry.OldValue != nil {
		data, err := json.Marshal(entry.OldValue)
		if err != nil {
			s.logger.Error("audit: failed to marshal old value",
				"error", err,
				"action", entry.Action,
				"entity_type", entry.EntityType,
				"entity_id", entry.EntityID)
		} else {
			row.OldValue = data
		}
	}

	if entry.NewValue != nil {
		data, err := json.Marshal(entry.NewValue)
		if err != nil {
			s.logger.Error("audit: failed to marshal new value",
				"error", err,
				"action", entry.Action,
				"entity_type", entry.EntityType,
				"entity_id", entry.EntityID)
		} else {
			row.NewValue = data
		}
	}

	if err := s.repo.Create(row); err != nil {
		s.logger.Error("audit: failed to persist entry",
			"error", err,
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"actor_id", entry.ActorID)
		return
	}

	s.logger.Debug("audit entry recorded",
		"audit_id", row.ID,
		"action", entry.Action,
		"entity_type", entry.EntityType,
		"entity_id", entry.EntityID)
}

// List returns audit entries newest first.
func (s *Service) List(filter Filter) ([]*AuditLog, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	entries, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		return nil, err
	}
	return entries, nil
}
