package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SizeIntegrityRecord flags incomplete size assortments per (product, store)
// snapshot. Missing sizes steer lateral destinations even when aggregate
// cover looks adequate.
type SizeIntegrityRecord struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID            uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;index"`
	ProductID           uuid.UUID      `gorm:"column:product_id;type:uuid;not null;index:idx_size_integrity_key"`
	StoreID             uuid.UUID      `gorm:"column:store_id;type:uuid;not null;index:idx_size_integrity_key"`
	SnapshotDate        time.Time      `gorm:"column:snapshot_date;type:date;not null"`
	TotalSizesExpected  int            `gorm:"column:total_sizes_expected;not null;default:0"`
	TotalSizesAvailable int            `gorm:"column:total_sizes_available;not null;default:0"`
	IsFullSizeRun       bool           `gorm:"column:is_full_size_run;not null;default:false"`
	MissingSizes        pq.StringArray `gorm:"column:missing_sizes;type:text[]"`
	CreatedAt           time.Time      `gorm:"column:created_at;autoCreateTime"`
}
