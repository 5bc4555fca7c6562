package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRegistrationSubmitted   = "registration.submitted"
	EventTypeRegistrationDecided     = "registration.decided"
	EventTypeEquipmentDecommissioned = "equipment.decommissioned"
)

type RegistrationSubmittedEvent struct {
	BaseEvent
	RequestID int64  `json:"request_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
}

func NewRegistrationSubmittedEvent(requestID int64, email, fullName string) *RegistrationSubmittedEvent {
	return &RegistrationSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRegistrationSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id": requestID,
				"email":      email,
				"full_name":  fullName,
			},
		},
		RequestID: requestID,
		Email:     email,
		FullName:  fullName,
	}
}

type RegistrationDecidedEvent struct {
	BaseEvent
	RequestID int64  `json:"request_id"`
	Email     string `json:"email"`
	Approved  bool   `json:"approved"`
	UserID    int64  `json:"user_id,omitempty"`
}

func NewRegistrationDecidedEvent(requestID int64, email string, approved bool, userID int64) *RegistrationDecidedEvent {
	return &RegistrationDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRegistrationDecided,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id": requestID,
				"email":      email,
				"approved":   approved,
				"user_id":    userID,
			},
		},
		RequestID: requestID,
		Email:     email,
		Approved:  approved,
		UserID:    userID,
	}
}

type EquipmentDecommissionedEvent struct {
	BaseEvent
	EquipmentID     int64  `json:"equipment_id"`
	InventoryNumber string `json:"inventory_number"`
	ActorID         int64  `json:"actor_id"`
}

func NewEquipmentDecommissionedEvent(equipmentID int64, inventoryNumber string, actorID int64) *EquipmentDecommissionedEvent {
	return &EquipmentDecommissionedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEquipmentDecommissioned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"equipment_id":     equipmentID,
				"inventory_number": inventoryNumber,
				"actor_id":         actorID,
			},
		},
		EquipmentID:     equipmentID,
		InventoryNumber: inventoryNumber,
		ActorID:         actorID,
	}
}
