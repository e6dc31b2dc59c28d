package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

// AuditLogEntry is append-only. Rows are never updated or deleted; the trail
// for an entity is its full decision history in insertion order.
type AuditLogEntry struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID    uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null;index"`
	EntityType  string            `gorm:"column:entity_type;not null;index:idx_audit_entity"`
	EntityID    uuid.UUID         `gorm:"column:entity_id;type:uuid;not null;index:idx_audit_entity"`
	Action      enums.AuditAction `gorm:"column:action;type:text;not null"`
	OldValues   json.RawMessage   `gorm:"column:old_values;type:jsonb"`
	NewValues   json.RawMessage   `gorm:"column:new_values;type:jsonb"`
	PerformedBy *uuid.UUID        `gorm:"column:performed_by;type:uuid"`
	PerformedAt time.Time         `gorm:"column:performed_at;autoCreateTime;index"`
	Notes       *string           `gorm:"column:notes"`
}
