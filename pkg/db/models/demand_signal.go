package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

// DemandSignal is a read-only sales-velocity input produced by the external
// ingestion pipeline. Absence of a row is a valid zero-velocity state.
type DemandSignal struct {
	ID            uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID      uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null;index"`
	ProductID     uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index:idx_demand_key"`
	StoreID       uuid.UUID         `gorm:"column:store_id;type:uuid;not null;index:idx_demand_key"`
	PeriodStart   time.Time         `gorm:"column:period_start;type:date;not null"`
	PeriodEnd     time.Time         `gorm:"column:period_end;type:date;not null"`
	SalesVelocity float64           `gorm:"column:sales_velocity;not null;default:0"`
	AvgDailySales float64           `gorm:"column:avg_daily_sales;not null;default:0"`
	TotalSold     int               `gorm:"column:total_sold;not null;default:0"`
	Trend         enums.DemandTrend `gorm:"column:trend;type:text;not null;default:'flat'"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}
