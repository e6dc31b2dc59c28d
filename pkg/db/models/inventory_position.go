package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryPosition is one snapshot row per (product, store, size, day).
// Rows are immutable; the latest snapshot_date per key is authoritative.
type InventoryPosition struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID     uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:idx_positions_key"`
	StoreID      uuid.UUID `gorm:"column:store_id;type:uuid;not null;index:idx_positions_key"`
	SizeCode     string    `gorm:"column:size_code;not null;index:idx_positions_key"`
	SnapshotDate time.Time `gorm:"column:snapshot_date;type:date;not null"`
	OnHand       int       `gorm:"column:on_hand;not null;default:0"`
	Reserved     int       `gorm:"column:reserved;not null;default:0"`
	InTransit    int       `gorm:"column:in_transit;not null;default:0"`
	SafetyStock  int       `gorm:"column:safety_stock;not null;default:0"`
	WeeksOfCover float64   `gorm:"column:weeks_of_cover;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Available is on_hand minus reserved, floored at zero.
func (p InventoryPosition) Available() int {
	available := p.OnHand - p.Reserved
	if available < 0 {
		return 0
	}
	return available
}
