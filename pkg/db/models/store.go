package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops-labs/retailops-backend/pkg/enums"
)

// Store is a selling location synced from store master data. Capacity is a
// hard unit ceiling for transfer destinations; zero means unconstrained.
// Warehouses carry stock for push allocation and are never destinations.
type Store struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID    uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index"`
	Name        string          `gorm:"column:name;not null"`
	Tier        enums.StoreTier `gorm:"column:tier;type:text;not null"`
	Capacity    int             `gorm:"column:capacity;not null;default:0"`
	Active      bool            `gorm:"column:active;not null;default:true"`
	IsWarehouse bool            `gorm:"column:is_warehouse;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
