package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

// AllocationRun is one invocation of the planning engine for a tenant.
// Supersession is scoped by run, so the latest completed run owns the only
// pending suggestions for its tenant.
type AllocationRun struct {
	ID               uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID         uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null;index"`
	RunType          enums.RunType    `gorm:"column:run_type;type:text;not null"`
	Status           enums.RunStatus  `gorm:"column:status;type:text;not null;index"`
	TriggeredBy      *uuid.UUID       `gorm:"column:triggered_by;type:uuid"`
	TotalSuggestions int              `gorm:"column:total_suggestions;not null;default:0"`
	TotalUnits       int              `gorm:"column:total_units;not null;default:0"`
	SkippedRows      int              `gorm:"column:skipped_rows;not null;default:0"`
	FailureReason    *string          `gorm:"column:failure_reason"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime;index"`
	CompletedAt      *time.Time       `gorm:"column:completed_at"`
}
