package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SKUPrice is the historical realized average unit price. A nil size code
// marks the product-level fallback row; a missing price never blocks a
// suggestion, it only zeroes its estimated gain.
type SKUPrice struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID     uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index:idx_sku_prices_key"`
	SizeCode     *string         `gorm:"column:size_code;index:idx_sku_prices_key"`
	AvgUnitPrice decimal.Decimal `gorm:"column:avg_unit_price;type:numeric(12,2);not null;default:0"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
