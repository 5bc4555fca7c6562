package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KarlovS28/dela/internal/audit"
	"github.com/KarlovS28/dela/internal/core/events"
)

// Repository defines the data access methods for notifications.
type Repository interface {
	Create(n *Notification) error
	GetByID(id int64) (*Notification, error)
	ListForUser(userID int64, unreadOnly bool, limit, offset int) ([]*Notification, error)
	CountUnread(userID int64) (int64, error)
	MarkRead(id int64) error
	MarkAllRead(userID int64) error
	SuperRoleUserIDs() ([]int64, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Notify creates one notification per recipient, each pointing at the
// entity the message is about. A failed insert is logged and skipped;
// one broken recipient must not starve the rest.
func (s *Service) Notify(userIDs []int64, title, body, entityType string, entityID int64) {
	for _, userID := range userIDs {
		n := &Notification{
			UserID:     userID,
			Title:      title,
			Body:       body,
			EntityType: entityType,
			EntityID:   entityID,
		}
		if err := s.repo.Create(n); err != nil {
			s.logger.Error("failed to create notification",
				"error", err,
				"user_id", userID,
				"title", title)
		}
	}
}

func (s *Service) ListForUser(userID int64, unreadOnly bool, limit, offset int) ([]*Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListForUser(userID, unreadOnly, limit, offset)
}

func (s *Service) UnreadCount(userID int64) (int64, error) {
	return s.repo.CountUnread(userID)
}

// MarkRead marks one notification read. Users can only touch their own.
func (s *Service) MarkRead(userID, id int64) error {
	n, err := s.repo.GetByID(id)
	if err != nil {
		return ErrNotificationNotFound
	}
	if n.UserID != userID {
		return ErrNotificationNotFound
	}
	if n.IsRead {
		return nil
	}
	return s.repo.MarkRead(id)
}

func (s *Service) MarkAllRead(userID int64) error {
	return s.repo.MarkAllRead(userID)
}

// SubscribeToEvents wires the notification fan-out to the event bus.
// Administrators with a super role hear about new registrations and
// decommissioned equipment.
func (s *Service) SubscribeToEvents(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeRegistrationSubmitted, func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.RegistrationSubmittedEvent)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", event.EventType())
		}

		admins, err := s.repo.SuperRoleUserIDs()
		if err != nil {
			return err
		}
		s.Notify(admins,
			"New registration request",
			fmt.Sprintf("%s <%s> requested an account", e.FullName, e.Email),
			audit.EntityRegistration, e.RequestID)
		return nil
	})

	bus.Subscribe(events.EventTypeEquipmentDecommissioned, func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.EquipmentDecommissionedEvent)
		if !ok {
			return fmt.Errorf("unexpected payload for %s", event.EventType())
		}

		admins, err := s.repo.SuperRoleUserIDs()
		if err != nil {
			return err
		}
		s.Notify(admins,
			"Equipment decommissioned",
			fmt.Sprintf("Item %s was decommissioned", e.InventoryNumber),
			audit.EntityEquipment, e.EquipmentID)
		return nil
	})
}
