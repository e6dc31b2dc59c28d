package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a family code owning one SKU per size in its assortment.
type Product struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID     uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index"`
	Code         string     `gorm:"column:code;not null"`
	Category     string     `gorm:"column:category;not null"`
	Season       string     `gorm:"column:season"`
	CollectionID *uuid.UUID `gorm:"column:collection_id;type:uuid"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	SKUs []ProductSKU `gorm:"foreignKey:ProductID"`
}

// ProductSKU is one (product, size) pair; the set of rows per product is the
// canonical size assortment the integrity checker compares against.
type ProductSKU struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	SizeCode  string    `gorm:"column:size_code;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
