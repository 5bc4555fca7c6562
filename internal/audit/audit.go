package audit

import (
	"context"
	"encoding/json"
	"time"
)

// AuditLog is an immutable record of a mutating action. Rows are only ever
// appended; there is no update or delete path anywhere in this package.
type AuditLog struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	Action      Action          `json:"action" gorm:"size:100;not null"`
	EntityType  string          `json:"entity_type" gorm:"column:entity_type;size:100;not null;index"`
	EntityID    int64           `json:"entity_id" gorm:"column:entity_id;index"`
	ActorID     int64           `json:"actor_id" gorm:"column:actor_id;index"`
	OldValue    json.RawMessage `json:"old_value,omitempty" gorm:"column:old_value;type:text"`
	NewValue    json.RawMessage `json:"new_value,omitempty" gorm:"column:new_value;type:text"`
	Description string          `json:"description" gorm:"type:text"`
	CreatedAt   time.Time       `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Action names the kind of mutation an entry records.
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionArchive      Action = "archive"
	ActionAssign       Action = "assign"
	ActionReturn       Action = "return_to_warehouse"
	ActionDecommission Action = "decommission"
	ActionGrant        Action = "grant_permission"
	ActionRevoke       Action = "revoke_permission"
	ActionApprove      Action = "approve"
	ActionReject       Action = "reject"
)

const (
	EntityEmployee     = "employee"
	EntityEquipment    = "equipment"
	EntityRole         = "role"
	EntityDepartment   = "department"
	EntityUser         = "user"
	EntityRegistration = "registration_request"
)

// Entry is what mutating services hand to the recorder. OldValue and
// NewValue are entity snapshots; nil means absent (creates have no old
// value, deletes no new value).
type Entry struct {
	Action      Action
	EntityType  string
	EntityID    int64
	ActorID     int64
	OldValue    interface{}
	NewValue    interface{}
	Description string
}

// RecorderAPI is the consumer-side interface mutating services depend on.
// Record must never fail the triggering business operation.
type RecorderAPI interface {
	Record(ctx context.Context, entry Entry)
}
