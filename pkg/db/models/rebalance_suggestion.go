package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

// RebalanceSuggestion is a single proposed transfer of one SKU size between
// two locations. Quantity overrides at approval time are recorded on the
// audit trail, not by mutating Qty.
type RebalanceSuggestion struct {
	ID                   uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RunID                uuid.UUID              `gorm:"column:run_id;type:uuid;not null;index"`
	TenantID             uuid.UUID              `gorm:"column:tenant_id;type:uuid;not null;index:idx_suggestions_tenant_status"`
	ProductID            uuid.UUID              `gorm:"column:product_id;type:uuid;not null;index"`
	SizeCode             string                 `gorm:"column:size_code;not null"`
	TransferType         enums.TransferType     `gorm:"column:transfer_type;type:text;not null"`
	FromStoreID          uuid.UUID              `gorm:"column:from_store_id;type:uuid;not null;index"`
	ToStoreID            uuid.UUID              `gorm:"column:to_store_id;type:uuid;not null;index"`
	Qty                  int                    `gorm:"column:qty;not null"`
	Priority             enums.Priority         `gorm:"column:priority;type:text;not null"`
	PotentialRevenueGain decimal.Decimal        `gorm:"column:potential_revenue_gain;type:numeric(12,2);not null;default:0"`
	Status               enums.SuggestionStatus `gorm:"column:status;type:text;not null;index:idx_suggestions_tenant_status"`
	ApprovedBy           *uuid.UUID             `gorm:"column:approved_by;type:uuid"`
	ApprovedAt           *time.Time             `gorm:"column:approved_at"`
	Notes                *string                `gorm:"column:notes"`
	CreatedAt            time.Time              `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt            time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
